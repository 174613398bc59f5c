package oracle

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the XML interface of the public service.
const DefaultBaseURL = "http://oracleofbacon.org/cgi-bin/xml"

// BuildURI renders the GET request for q as <base>?p=<key>&a=<from>&b=<to>.
// Every value is query-escaped exactly once, so a literal "%" becomes "%25"
// and a space becomes "+". Empty values are not rejected here.
func BuildURI(base string, q *QuerySpec, apiKey string) string {
	if strings.TrimSpace(base) == "" {
		base = DefaultBaseURL
	}
	var from, to string
	if q != nil {
		from, to = q.From(), q.To()
	}

	var b strings.Builder
	b.WriteString(base)
	if strings.Contains(base, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	b.WriteString("p=")
	b.WriteString(url.QueryEscape(apiKey))
	b.WriteString("&a=")
	b.WriteString(url.QueryEscape(from))
	b.WriteString("&b=")
	b.WriteString(url.QueryEscape(to))
	return b.String()
}
