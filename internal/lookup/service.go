package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/bacon-oracle/internal/logger"
	"github.com/samvad-hq/bacon-oracle/internal/storage"
	"github.com/samvad-hq/bacon-oracle/pkg/oracle"
	"github.com/samvad-hq/bacon-oracle/pkg/publishers"
	"github.com/samvad-hq/bacon-oracle/pkg/queries"
)

// Service runs lookups one at a time and fans the results out to history and publishers.
type Service struct {
	finder    Finder
	publisher EventPublisher
	recorder  Recorder
	anchor    string
	log       logger.Logger
	now       func() time.Time
}

// NewService wires a lookup service. publisher and recorder may be nil.
func NewService(finder Finder, publisher EventPublisher, log logger.Logger, recorder Recorder, anchor string) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	if strings.TrimSpace(anchor) == "" {
		anchor = oracle.DefaultAnchorName
	}
	return &Service{
		finder:    finder,
		publisher: publisher,
		recorder:  recorder,
		anchor:    anchor,
		log:       log,
		now:       time.Now,
	}
}

// Anchor returns the name used for an unset side of a query.
func (s *Service) Anchor() string { return s.anchor }

// Lookup resolves q, records it and publishes the result. History and publish
// failures are logged; only the lookup itself can fail the call.
func (s *Service) Lookup(ctx context.Context, queryID string, q *oracle.QuerySpec) (oracle.Response, error) {
	if s == nil || s.finder == nil {
		return nil, fmt.Errorf("lookup service is not initialized")
	}

	resp, err := s.finder.FindConnections(ctx, q)
	if err != nil {
		s.record(historyEntry(queryID, q, nil, err, s.now()))
		return nil, err
	}

	s.record(historyEntry(queryID, q, resp, nil, s.now()))
	s.publish(ctx, publishers.NewEvent(queryID, q, resp))

	s.log.InfoObj("lookup completed", "lookup_result", map[string]any{
		"query_id": queryID,
		"from":     q.From(),
		"to":       q.To(),
		"kind":     resp.Kind(),
	})
	return resp, nil
}

// Run executes every entry sequentially and joins the lookup errors.
func (s *Service) Run(ctx context.Context, entries []queries.Entry) error {
	if s == nil || s.finder == nil {
		return fmt.Errorf("lookup service is not initialized")
	}
	if len(entries) == 0 {
		return fmt.Errorf("no queries configured")
	}

	errs := s.runAll(ctx, entries)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runAll(ctx context.Context, entries []queries.Entry) []error {
	errs := make([]error, 0, len(entries))

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return errs
		default:
		}

		if _, err := s.Lookup(ctx, entry.ID, entry.Spec(s.anchor)); err != nil {
			errs = append(errs, fmt.Errorf("query %s: %w", entry.ID, err))
			s.log.ErrorObj("lookup failed", "lookup_error", map[string]any{
				"query_id": entry.ID,
				"error":    err.Error(),
			})
		}
	}

	return errs
}

func (s *Service) record(e storage.Entry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(e); err != nil {
		s.log.WarnObj("history record failed", "history_error", map[string]any{
			"query_id": e.QueryID,
			"error":    err.Error(),
		})
	}
}

func (s *Service) publish(ctx context.Context, evt publishers.Event) {
	if s.publisher == nil {
		return
	}
	delivered, err := s.publisher.Publish(ctx, evt)
	if err != nil {
		s.log.WarnObj("event publish failed", "publish_error", map[string]any{
			"event_id":  evt.ID,
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
}

const (
	kindInvalid = "invalid"
	kindNetwork = "network_error"
	kindFailed  = "failed"

	maxSuggestionsInDetail = 5
)

// historyEntry summarises a lookup outcome for the history store.
func historyEntry(queryID string, q *oracle.QuerySpec, resp oracle.Response, err error, at time.Time) storage.Entry {
	e := storage.Entry{QueryID: queryID, LookedUpAt: at.UTC()}
	if q != nil {
		e.From, e.To = q.From(), q.To()
	}

	if err != nil {
		var netErr *oracle.NetworkError
		switch {
		case errors.Is(err, oracle.ErrInvalidQuery):
			e.Kind = kindInvalid
		case errors.As(err, &netErr):
			e.Kind = kindNetwork
		default:
			e.Kind = kindFailed
		}
		e.Detail = err.Error()
		return e
	}

	e.Kind = string(resp.Kind())
	switch r := resp.(type) {
	case *oracle.Graph:
		e.Path = append([]string(nil), r.Path...)
		e.Detail = fmt.Sprintf("%d degrees", r.Degrees())
	case *oracle.Spellcheck:
		shown := r.Suggestions
		if len(shown) > maxSuggestionsInDetail {
			shown = shown[:maxSuggestionsInDetail]
		}
		e.Detail = fmt.Sprintf("%d suggestions: %s", len(r.Suggestions), strings.Join(shown, ", "))
	case *oracle.ServiceError:
		e.Detail = r.Message
	case *oracle.Unknown:
		e.Detail = r.Raw
	}
	return e
}
