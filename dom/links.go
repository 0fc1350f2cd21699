package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StylesheetLinks returns the ordered href values of stylesheet link
// elements on the page. A link qualifies when its media attribute is
// absent or empty, or names one of "screen", "all", or a caller-supplied
// extra media type (matched case-insensitively). The query is a flat
// walk of the snapshot; @import chains are not followed.
func (d *Document) StylesheetLinks(extraMedia []string) []string {
	accepted := map[string]bool{"screen": true, "all": true}
	for _, m := range extraMedia {
		accepted[strings.ToLower(strings.TrimSpace(m))] = true
	}

	var hrefs []string
	for node := range d.root.Descendants() {
		if node.Type != html.ElementNode || node.DataAtom != atom.Link {
			continue
		}
		if !strings.EqualFold(attr(node, "rel"), "stylesheet") {
			continue
		}
		media := strings.ToLower(strings.TrimSpace(attr(node, "media")))
		if media != "" && !accepted[media] {
			continue
		}
		if href := attr(node, "href"); href != "" {
			hrefs = append(hrefs, href)
		}
	}
	return hrefs
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
