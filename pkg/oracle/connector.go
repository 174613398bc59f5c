package oracle

import (
	"context"
	"fmt"
	"strings"
)

// Transport performs the GET for a built URI. Timeouts, non-2xx statuses and
// connection failures must all surface as errors.
type Transport interface {
	Get(ctx context.Context, uri string) ([]byte, error)
}

// TransportFunc adapts a plain function to Transport.
type TransportFunc func(ctx context.Context, uri string) ([]byte, error)

func (f TransportFunc) Get(ctx context.Context, uri string) ([]byte, error) {
	return f(ctx, uri)
}

// Logger is the logging surface the connector relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}

// Connector sends validated queries to the service and classifies the reply.
// It holds no mutable state and issues exactly one request per lookup.
type Connector struct {
	apiKey    string
	baseURL   string
	transport Transport
	log       Logger
}

// Option customises a Connector.
type Option func(*Connector)

// WithBaseURL points the connector at a different endpoint.
func WithBaseURL(base string) Option {
	return func(c *Connector) {
		if base = strings.TrimSpace(base); base != "" {
			c.baseURL = base
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(log Logger) Option {
	return func(c *Connector) {
		if log != nil {
			c.log = log
		}
	}
}

// NewConnector builds a connector for apiKey that sends requests through transport.
func NewConnector(apiKey string, transport Transport, opts ...Option) *Connector {
	c := &Connector{
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		transport: transport,
		log:       noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URI returns the request the connector would send for q.
func (c *Connector) URI(q *QuerySpec) string {
	return BuildURI(c.baseURL, q, c.apiKey)
}

// FindConnections looks up the chain linking q.From() and q.To().
//
// An invalid query fails with *InvalidQueryError before any request is made.
// A transport failure fails with *NetworkError and is not retried. Otherwise
// the classified body is returned as is, including *ServiceError replies.
func (c *Connector) FindConnections(ctx context.Context, q *QuerySpec) (Response, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if c == nil || c.transport == nil {
		return nil, fmt.Errorf("connector has no transport configured")
	}

	uri := c.URI(q)
	c.log.DebugObj("oracle request", "oracle_request", map[string]any{
		"from": q.From(),
		"to":   q.To(),
	})

	body, err := c.transport.Get(ctx, uri)
	if err != nil {
		c.log.WarnObj("oracle request failed", "oracle_error", map[string]any{
			"from":  q.From(),
			"to":    q.To(),
			"error": err.Error(),
		})
		return nil, &NetworkError{URI: redactKey(uri), Err: err}
	}

	resp := Classify(body)
	c.log.DebugObj("oracle response classified", "oracle_response", map[string]any{
		"kind":       resp.Kind(),
		"body_bytes": len(body),
	})
	return resp, nil
}

// redactKey hides the API key value in a built URI.
func redactKey(uri string) string {
	i := strings.Index(uri, "?p=")
	if i < 0 {
		if i = strings.Index(uri, "&p="); i < 0 {
			return uri
		}
	}
	i++
	j := strings.IndexByte(uri[i:], '&')
	if j < 0 {
		return uri[:i+2] + "REDACTED"
	}
	return uri[:i+2] + "REDACTED" + uri[i+j:]
}
