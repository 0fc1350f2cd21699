// Package dom wraps a rendered page as a queryable element tree.
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Document is a read-only snapshot of a rendered page's element tree.
type Document struct {
	root *html.Node
}

// Parse builds a Document from HTML markup.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse document markup: %w", err)
	}
	return &Document{root: root}, nil
}

// statePseudoClasses lists pseudo-classes that depend on dynamic UI state.
// A static snapshot cannot answer them: cascadia compiles them to selectors
// that never match, which would silently classify every such selector as
// unused. Treating them as unsupported here makes Query fail instead, which
// the matcher relies on to try the normalized ancestor form. The exact set
// is a compatibility boundary of the query engine, not part of the contract.
var statePseudoClasses = []string{
	":hover",
	":active",
	":focus",
	":focus-within",
	":focus-visible",
	":visited",
	":target",
}

// Query returns all nodes matching the selector, in document order.
// It returns an error when the selector syntax is not supported by the
// query engine; callers depend on that to trigger fallback matching.
func (d *Document) Query(selector string) ([]*html.Node, error) {
	for _, pseudo := range statePseudoClasses {
		if containsUnquoted(selector, pseudo) {
			return nil, fmt.Errorf("unsupported dynamic-state selector %q", selector)
		}
	}
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("unsupported selector %q: %w", selector, err)
	}
	return sel.MatchAll(d.root), nil
}

// containsUnquoted reports whether s contains sub outside of quoted substrings.
func containsUnquoted(s, sub string) bool {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		if c == '"' || c == '\'' {
			quote = c
			continue
		}
		if strings.HasPrefix(s[i:], sub) {
			return true
		}
	}
	return false
}

// HTML serializes the snapshot back to markup (used for debug reporting).
func (d *Document) HTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.root); err != nil {
		return nil, fmt.Errorf("unable to serialize document: %w", err)
	}
	return buf.Bytes(), nil
}
