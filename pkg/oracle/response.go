package oracle

import (
	"slices"
	"strings"
)

// Kind names the shape of a classified response.
type Kind string

const (
	KindGraph      Kind = "graph"
	KindSpellcheck Kind = "spellcheck"
	KindError      Kind = "error"
	KindUnknown    Kind = "unknown"
)

// Response is the result of classifying a service payload. Exactly one of
// *Graph, *Spellcheck, *ServiceError or *Unknown.
type Response interface {
	Kind() Kind
	isResponse()
}

// Graph is a connection chain alternating person and movie names,
// starting and ending with a person.
type Graph struct {
	Path []string `json:"path"`
}

// People returns the person names on the chain.
func (g *Graph) People() []string {
	out := make([]string, 0, len(g.Path)/2+1)
	for i := 0; i < len(g.Path); i += 2 {
		out = append(out, g.Path[i])
	}
	return out
}

// Movies returns the shared works linking consecutive people.
func (g *Graph) Movies() []string {
	out := make([]string, 0, len(g.Path)/2)
	for i := 1; i < len(g.Path); i += 2 {
		out = append(out, g.Path[i])
	}
	return out
}

// Degrees is the number of movie hops on the chain.
func (g *Graph) Degrees() int { return len(g.Path) / 2 }

// Spellcheck lists candidate spellings for a name the service could not resolve.
// Suggestions is sorted and holds no duplicates.
type Spellcheck struct {
	Suggestions []string `json:"suggestions"`
}

func newSpellcheck(matches []string) *Spellcheck {
	set := make([]string, 0, len(matches))
	for _, m := range matches {
		if m != "" {
			set = append(set, m)
		}
	}
	slices.Sort(set)
	return &Spellcheck{Suggestions: slices.Compact(set)}
}

// Contains reports whether name is one of the suggestions. Exact match only.
func (s *Spellcheck) Contains(name string) bool {
	_, ok := slices.BinarySearch(s.Suggestions, name)
	return ok
}

// ServiceError carries an error the service reported, e.g. an invalid API key.
// It is a successful classification, not a Go error.
type ServiceError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// Unknown is the fallback for payloads that match no other shape.
// Raw always contains the word "unknown".
type Unknown struct {
	Raw string `json:"raw"`
}

const unknownPrefix = "unknown response: "

func newUnknown(text string) *Unknown {
	return &Unknown{Raw: unknownPrefix + strings.Join(strings.Fields(text), " ")}
}

func (*Graph) Kind() Kind        { return KindGraph }
func (*Spellcheck) Kind() Kind   { return KindSpellcheck }
func (*ServiceError) Kind() Kind { return KindError }
func (*Unknown) Kind() Kind      { return KindUnknown }

func (*Graph) isResponse()        {}
func (*Spellcheck) isResponse()   {}
func (*ServiceError) isResponse() {}
func (*Unknown) isResponse()      {}
