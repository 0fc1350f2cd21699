package analyze

import (
	"fmt"
	"regexp"
	"strings"
)

// IgnoreEntry exempts a selector from removal. Exactly one of Literal or
// Pattern is set: a literal compares for string equality with the full
// selector, a pattern is tested against the full selector string.
type IgnoreEntry struct {
	Literal string
	Pattern *regexp.Regexp
}

// IgnoreList is an ordered list of exemptions. An empty list is valid and
// exempts nothing.
type IgnoreList []IgnoreEntry

// Matches reports whether the selector is exempt from removal. Entries are
// checked in list order and evaluation stops at the first match.
func (l IgnoreList) Matches(selector string) bool {
	for _, e := range l {
		if e.Pattern != nil {
			if e.Pattern.MatchString(selector) {
				return true
			}
			continue
		}
		if e.Literal == selector {
			return true
		}
	}
	return false
}

// ParseIgnoreList builds an IgnoreList from configuration entries.
// An entry wrapped in slashes (`/re/`) is compiled as a regular
// expression; anything else is an exact selector literal.
func ParseIgnoreList(entries []string) (IgnoreList, error) {
	list := make(IgnoreList, 0, len(entries))
	for _, e := range entries {
		if len(e) > 1 && strings.HasPrefix(e, "/") && strings.HasSuffix(e, "/") {
			re, err := regexp.Compile(e[1 : len(e)-1])
			if err != nil {
				return nil, fmt.Errorf("invalid ignore pattern %s: %w", e, err)
			}
			list = append(list, IgnoreEntry{Pattern: re})
			continue
		}
		list = append(list, IgnoreEntry{Literal: e})
	}
	return list, nil
}
