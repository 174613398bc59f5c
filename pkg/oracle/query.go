package oracle

import "strings"

// DefaultAnchorName is substituted for whichever side of a query was left unset.
const DefaultAnchorName = "Kevin Bacon"

// QuerySpec holds the two names of a connection lookup.
// A QuerySpec is not safe for concurrent use; give each caller its own.
type QuerySpec struct {
	from   string
	to     string
	anchor string
}

// NewQuery returns an empty query anchored on DefaultAnchorName.
func NewQuery() *QuerySpec {
	return NewQueryWithAnchor(DefaultAnchorName)
}

// NewQueryWithAnchor returns an empty query that falls back to anchor when only one name is set.
func NewQueryWithAnchor(anchor string) *QuerySpec {
	anchor = strings.TrimSpace(anchor)
	if anchor == "" {
		anchor = DefaultAnchorName
	}
	return &QuerySpec{anchor: anchor}
}

func (q *QuerySpec) SetFrom(name string) { q.from = name }
func (q *QuerySpec) SetTo(name string)   { q.to = name }

// Anchor returns the fallback name used for an unset side.
func (q *QuerySpec) Anchor() string {
	if q.anchor == "" {
		return DefaultAnchorName
	}
	return q.anchor
}

// From returns the effective source name.
func (q *QuerySpec) From() string {
	return q.effective(q.from, q.to)
}

// To returns the effective target name.
func (q *QuerySpec) To() string {
	return q.effective(q.to, q.from)
}

// effective resolves one side: the caller's value, else the anchor when the other side is set.
func (q *QuerySpec) effective(own, other string) string {
	if isSet(own) {
		return own
	}
	if isSet(other) {
		return q.Anchor()
	}
	return ""
}

// IsValid reports whether both effective names are present and distinct.
func (q *QuerySpec) IsValid() bool {
	return q.Validate() == nil
}

// Validate returns an *InvalidQueryError when the query cannot be sent.
func (q *QuerySpec) Validate() error {
	if q == nil {
		return &InvalidQueryError{Reason: "query is nil"}
	}
	from, to := q.From(), q.To()
	switch {
	case from == "" && to == "":
		return &InvalidQueryError{Reason: "from and to are both unset"}
	case from == to:
		return &InvalidQueryError{From: from, To: to, Reason: "from and to name the same person"}
	}
	return nil
}

func isSet(name string) bool {
	return strings.TrimSpace(name) != ""
}
