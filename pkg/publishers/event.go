package publishers

import (
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/bacon-oracle/pkg/oracle"
)

// Event represents a lookup result published downstream.
type Event struct {
	ID          string    `json:"id"`
	QueryID     string    `json:"query_id,omitempty"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Kind        string    `json:"kind"`
	Path        []string  `json:"path,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
	Message     string    `json:"message,omitempty"`
	LookedUpAt  time.Time `json:"looked_up_at"`
}

// NewEvent constructs an Event for a classified response.
func NewEvent(queryID string, q *oracle.QuerySpec, resp oracle.Response) Event {
	evt := Event{
		ID:         uuid.NewString(),
		QueryID:    queryID,
		LookedUpAt: time.Now().UTC(),
	}
	if q != nil {
		evt.From, evt.To = q.From(), q.To()
	}
	if resp == nil {
		return evt
	}

	evt.Kind = string(resp.Kind())
	switch r := resp.(type) {
	case *oracle.Graph:
		evt.Path = append([]string(nil), r.Path...)
	case *oracle.Spellcheck:
		evt.Suggestions = append([]string(nil), r.Suggestions...)
	case *oracle.ServiceError:
		evt.Message = r.Message
	case *oracle.Unknown:
		evt.Message = r.Raw
	}
	return evt
}
