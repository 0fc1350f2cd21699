package analyze

import (
	"regexp"
	"strings"
)

// commentPattern matches CSS comments, across newlines.
var commentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)

// Normalize rewrites a selector the query engine rejected into its
// ancestor-testable form: per compound token, everything from the first
// colon outside quotes onward is dropped, so pseudo-classes and
// pseudo-elements disappear while combinators and attribute selectors
// stay intact. Quoted substrings are atomic throughout — a space inside
// an attribute value never splits a token and a colon inside one never
// truncates. Best effort only: the result is not guaranteed to be a
// valid selector either.
func Normalize(selector string) string {
	selector = commentPattern.ReplaceAllString(selector, "")

	var out []string
	for _, token := range splitTokens(selector) {
		if t := truncateAtColon(token); t != "" {
			out = append(out, t)
		}
	}
	return strings.Join(out, " ")
}

// splitTokens splits a selector on whitespace, keeping quoted substrings
// atomic so `[class*=" icon-"]` survives as one token.
func splitTokens(s string) []string {
	var tokens []string
	var b strings.Builder
	var quote byte

	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			b.WriteByte(c)
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			flush()
		default:
			b.WriteByte(c)
		}
	}
	flush()
	return tokens
}

// truncateAtColon cuts a compound token at its first colon outside quotes,
// dropping the pseudo-class/element suffix.
func truncateAtColon(token string) string {
	var quote byte
	for i := 0; i < len(token); i++ {
		c := token[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ':':
			return token[:i]
		}
	}
	return token
}
