package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samvad-hq/bacon-oracle/internal/storage"
	"github.com/samvad-hq/bacon-oracle/pkg/oracle"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorDim    = lipgloss.Color("240")
)

const arrow = "→"

// styles are bound to the output's renderer so piped output carries no escape codes.
type styles struct {
	person  lipgloss.Style
	movie   lipgloss.Style
	title   lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	dim     lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		person:  r.NewStyle().Bold(true),
		movie:   r.NewStyle().Foreground(colorDim).Italic(true),
		title:   r.NewStyle().Bold(true).Foreground(colorCyan),
		warning: r.NewStyle().Foreground(colorYellow),
		failure: r.NewStyle().Foreground(colorRed),
		dim:     r.NewStyle().Foreground(colorDim),
	}
}

func renderResponse(w io.Writer, resp oracle.Response) {
	st := newStyles(w)

	switch r := resp.(type) {
	case *oracle.Graph:
		fmt.Fprintln(w, st.title.Render(fmt.Sprintf("%d degrees of separation", r.Degrees())))
		parts := make([]string, len(r.Path))
		for i, name := range r.Path {
			if i%2 == 0 {
				parts[i] = st.person.Render(name)
			} else {
				parts[i] = st.movie.Render(name)
			}
		}
		fmt.Fprintln(w, strings.Join(parts, " "+arrow+" "))
	case *oracle.Spellcheck:
		fmt.Fprintln(w, st.warning.Render("Name not found. Did you mean:"))
		for _, s := range r.Suggestions {
			fmt.Fprintln(w, "  "+s)
		}
	case *oracle.ServiceError:
		label := "service error"
		if r.Type != "" {
			label += " (" + r.Type + ")"
		}
		fmt.Fprintln(w, st.failure.Render(label+": "+r.Message))
	case *oracle.Unknown:
		fmt.Fprintln(w, st.failure.Render(r.Raw))
	}
}

func renderHistory(w io.Writer, entries []storage.Entry) {
	st := newStyles(w)
	if len(entries) == 0 {
		fmt.Fprintln(w, st.dim.Render("no lookups recorded"))
		return
	}

	for _, e := range entries {
		ts := e.LookedUpAt.Local().Format("2006-01-02 15:04:05")
		line := fmt.Sprintf("%s  %-13s %s %s %s", st.dim.Render(ts), e.Kind, e.From, arrow, e.To)
		if e.QueryID != "" {
			line += st.dim.Render(" [" + e.QueryID + "]")
		}
		fmt.Fprintln(w, line)
		if e.Detail != "" {
			fmt.Fprintln(w, "    "+st.dim.Render(e.Detail))
		}
	}
}
