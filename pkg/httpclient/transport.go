package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const snippetMaxLen = 512

// StatusError reports a non-2xx reply.
type StatusError struct {
	Code    int
	Snippet string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d body: %s", e.Code, e.Snippet)
}

// BodyTransport turns a Client into a body-returning GET that fails on non-2xx statuses.
type BodyTransport struct {
	client  Client
	headers map[string]string
}

// NewBodyTransport wraps client; headers are sent with every request.
func NewBodyTransport(client Client, headers map[string]string) *BodyTransport {
	if client == nil {
		client = NewRestyClient(15 * time.Second)
	}
	return &BodyTransport{client: client, headers: headers}
}

// Get fetches uri and returns the response body.
func (t *BodyTransport) Get(ctx context.Context, uri string) ([]byte, error) {
	resp, err := t.client.Get(ctx, uri, t.headers)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}

	body := resp.Body()
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, &StatusError{Code: code, Snippet: ResponseSnippet(body)}
	}
	return body, nil
}

// ResponseSnippet summarises an error body. HTML pages are reduced to their title.
func ResponseSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty>"
	}
	if looksLikeHTML(s) {
		if title := htmlTitle(body); title != "" {
			return title
		}
	}
	if len(s) > snippetMaxLen {
		return s[:snippetMaxLen] + "..."
	}
	return s
}

func looksLikeHTML(s string) bool {
	head := strings.ToLower(s)
	if len(head) > 64 {
		head = head[:64]
	}
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
}
