package lookup

import (
	"context"

	"github.com/samvad-hq/bacon-oracle/internal/storage"
	"github.com/samvad-hq/bacon-oracle/pkg/oracle"
	"github.com/samvad-hq/bacon-oracle/pkg/publishers"
)

// Finder resolves a single query against the service.
type Finder interface {
	FindConnections(ctx context.Context, q *oracle.QuerySpec) (oracle.Response, error)
}

// Recorder keeps a history of lookups.
type Recorder interface {
	Record(e storage.Entry) error
}

// EventPublisher publishes lookup results downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
