package oracle

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html/charset"
)

const (
	elemError      = "error"
	elemSpellcheck = "spellcheck"
	elemMatch      = "match"
	elemLink       = "link"
	elemActor      = "actor"
	elemMovie      = "movie"
)

// Classify maps a service payload onto exactly one Response variant.
// It never fails: malformed XML yields *Unknown.
//
// Precedence is error, then spellcheck, then link; anything else is unknown.
func Classify(body []byte) Response {
	doc, err := scanDocument(body)
	if err != nil {
		return newUnknown(string(body))
	}

	switch {
	case doc.hasError:
		return &ServiceError{Type: doc.errorType, Message: doc.errorText}
	case doc.hasSpellcheck:
		return newSpellcheck(doc.matches)
	}
	if path, ok := flattenLinks(doc.links); ok {
		return &Graph{Path: path}
	}
	return newUnknown(doc.text.String())
}

// scannedDocument collects the nodes Classify cares about in one pass.
type scannedDocument struct {
	text strings.Builder

	hasError  bool
	errorType string
	errorText string

	hasSpellcheck bool
	matches       []string

	links [][]linkNode
}

// linkNode is one actor or movie inside a <link>.
type linkNode struct {
	name  string
	movie bool
}

func scanDocument(body []byte) (*scannedDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel
	dec.Entity = xml.HTMLEntity

	doc := &scannedDocument{}
	var (
		stack     []string
		openLinks []int
		leaf      strings.Builder
		inLeaf    bool
		inError   bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := strings.ToLower(t.Name.Local)
			stack = append(stack, name)
			if inError {
				continue
			}
			switch name {
			case elemError:
				if !doc.hasError {
					doc.hasError, inError = true, true
					doc.errorType = attr(t, "type")
					leaf.Reset()
					inLeaf = true
				}
			case elemSpellcheck:
				doc.hasSpellcheck = true
			case elemLink:
				doc.links = append(doc.links, nil)
				openLinks = append(openLinks, len(doc.links)-1)
			case elemMatch, elemActor, elemMovie:
				leaf.Reset()
				inLeaf = true
			}

		case xml.CharData:
			doc.text.Write(t)
			doc.text.WriteByte(' ')
			if inLeaf {
				leaf.Write(t)
			}

		case xml.EndElement:
			name := strings.ToLower(t.Name.Local)
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			if inError {
				if name == elemError && !slices.Contains(stack, elemError) {
					doc.errorText = strings.TrimSpace(leaf.String())
					inError, inLeaf = false, false
				}
				continue
			}
			switch name {
			case elemMatch:
				if inLeaf && slices.Contains(stack, elemSpellcheck) {
					doc.matches = append(doc.matches, strings.TrimSpace(leaf.String()))
				}
				inLeaf = false
			case elemActor, elemMovie:
				if inLeaf && len(openLinks) > 0 {
					i := openLinks[len(openLinks)-1]
					doc.links[i] = append(doc.links[i], linkNode{
						name:  strings.TrimSpace(leaf.String()),
						movie: name == elemMovie,
					})
				}
				inLeaf = false
			case elemLink:
				if len(openLinks) > 0 {
					openLinks = openLinks[:len(openLinks)-1]
				}
			}
		}
	}
	return doc, nil
}

// flattenLinks joins link entries into one chain. Every link after the first
// must start on the person the previous one ended on; that person is kept once.
// The chain must alternate person and movie, starting and ending with a person,
// otherwise ok is false.
func flattenLinks(links [][]linkNode) (path []string, ok bool) {
	for _, entry := range links {
		nodes := make([]linkNode, 0, len(entry))
		for _, n := range entry {
			if n.name != "" {
				nodes = append(nodes, n)
			}
		}
		if len(nodes) == 0 {
			continue
		}
		if len(path) > 0 {
			if nodes[0].movie || nodes[0].name != path[len(path)-1] {
				return nil, false
			}
			nodes = nodes[1:]
		}
		for _, n := range nodes {
			if n.movie != (len(path)%2 == 1) {
				return nil, false
			}
			path = append(path, n.name)
		}
	}
	if len(path) < 3 || len(path)%2 == 0 {
		return nil, false
	}
	return path, true
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if strings.EqualFold(a.Name.Local, name) {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}
