package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var errTimeout = errors.New("i/o timeout")

// recordingTransport returns a canned body or error and records requested URIs.
type recordingTransport struct {
	body  []byte
	err   error
	calls []string
}

func (r *recordingTransport) Get(_ context.Context, uri string) ([]byte, error) {
	r.calls = append(r.calls, uri)
	if r.err != nil {
		return nil, r.err
	}
	return r.body, nil
}

func validQuery() *QuerySpec {
	q := NewQuery()
	q.SetFrom("Carrie Fisher")
	q.SetTo("Ian McKellen")
	return q
}

func TestFindConnectionsReturnsClassifiedBody(t *testing.T) {
	body := readFixture(t, "graph_example.xml")
	transport := &recordingTransport{body: body}
	conn := NewConnector("fake_api_key", transport)

	resp, err := conn.FindConnections(context.Background(), validQuery())
	if err != nil {
		t.Fatalf("FindConnections: %v", err)
	}
	if diff := cmp.Diff(Classify(body), resp); diff != "" {
		t.Fatalf("response differs from direct classification (-want +got):\n%s", diff)
	}
	if len(transport.calls) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(transport.calls))
	}
	if !strings.HasPrefix(transport.calls[0], DefaultBaseURL+"?p=fake_api_key&a=Carrie+Fisher&b=Ian+McKellen") {
		t.Fatalf("unexpected uri %q", transport.calls[0])
	}
}

func TestFindConnectionsWrapsTransportFailure(t *testing.T) {
	transport := &recordingTransport{err: errTimeout}
	conn := NewConnector("secret", transport)

	resp, err := conn.FindConnections(context.Background(), validQuery())
	if resp != nil {
		t.Fatalf("expected no response on network failure, got %#v", resp)
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
	if !errors.Is(err, errTimeout) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
	if strings.Contains(netErr.URI, "secret") {
		t.Fatalf("expected api key to be redacted, got %q", netErr.URI)
	}
	if len(transport.calls) != 1 {
		t.Fatalf("expected no retries, got %d calls", len(transport.calls))
	}
}

func TestFindConnectionsRejectsInvalidQueryBeforeRequest(t *testing.T) {
	transport := &recordingTransport{body: []byte("<link/>")}
	conn := NewConnector("key", transport)

	same := NewQuery()
	same.SetFrom("Ian McKellen")
	same.SetTo("Ian McKellen")

	for _, q := range []*QuerySpec{NewQuery(), same, nil} {
		_, err := conn.FindConnections(context.Background(), q)
		if !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("expected ErrInvalidQuery, got %v", err)
		}
	}
	if len(transport.calls) != 0 {
		t.Fatalf("expected no requests for invalid queries, got %d", len(transport.calls))
	}
}

func TestFindConnectionsServiceErrorIsNotAGoError(t *testing.T) {
	conn := NewConnector("bad", TransportFunc(func(context.Context, string) ([]byte, error) {
		return readFixture(t, "unauthorized_access.xml"), nil
	}))

	resp, err := conn.FindConnections(context.Background(), validQuery())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.Kind() != KindError {
		t.Fatalf("expected error kind, got %s", resp.Kind())
	}
}

func TestConnectorWithBaseURL(t *testing.T) {
	conn := NewConnector("k", nil, WithBaseURL("http://localhost:9999/xml"), WithBaseURL("  "))
	if got := conn.URI(validQuery()); !strings.HasPrefix(got, "http://localhost:9999/xml?p=k") {
		t.Fatalf("unexpected uri %q", got)
	}
	if _, err := conn.FindConnections(context.Background(), validQuery()); err == nil {
		t.Fatalf("expected error without transport")
	}
}

func TestRedactKey(t *testing.T) {
	cases := map[string]string{
		"http://x/xml?p=abc&a=1&b=2": "http://x/xml?p=REDACTED&a=1&b=2",
		"http://x/xml?q=1&p=abc":     "http://x/xml?q=1&p=REDACTED",
		"http://x/xml":               "http://x/xml",
	}
	for in, want := range cases {
		if got := redactKey(in); got != want {
			t.Errorf("redactKey(%q) = %q, want %q", in, got, want)
		}
	}
}
