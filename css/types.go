package css

import (
	"fmt"
	"io"
	"strings"
)

// Declaration is a single property declaration kept as raw text.
// The analysis engine never interprets or rewrites values.
type Declaration struct {
	Property string // Property name (e.g., "color", "--accent")
	Value    string // Raw value text (e.g., "1.2em", "url(\"bg.png\") no-repeat")
}

// Rule is an ordered list of selectors sharing one declaration block.
// Selector order is significant and duplicates are allowed.
type Rule struct {
	Selectors    []string
	Declarations []Declaration
}

// ConditionalBlock is an @media block: a condition string plus a nested
// sequence of nodes of the same shape as the top level.
type ConditionalBlock struct {
	Condition string // Media query text without the "@media" keyword
	Nodes     []Node
}

// Verbatim is any construct the usage analysis does not look into:
// @font-face, @keyframes, @supports, @import, comments. It is captured
// as CSS text and written back unmodified, and it is never pruned.
type Verbatim struct {
	Text string
}

// Node is a single item in a stylesheet sequence.
// Exactly one of Rule, Block, or Verbatim is non-nil.
type Node struct {
	Rule     *Rule
	Block    *ConditionalBlock
	Verbatim *Verbatim
}

// Stylesheet is a parsed CSS document: an ordered sequence of nodes.
type Stylesheet struct {
	Nodes []Node
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	return writeNodes(w, s.Nodes, "")
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeNodes(w io.Writer, nodes []Node, indent string) (int64, error) {
	var total int64
	for i, node := range nodes {
		var n int64
		var err error

		switch {
		case node.Rule != nil:
			n, err = writeRule(w, node.Rule, indent)
		case node.Block != nil:
			n, err = writeBlock(w, node.Block, indent)
		case node.Verbatim != nil:
			n, err = writeVerbatim(w, node.Verbatim, indent)
		}

		total += n
		if err != nil {
			return total, err
		}

		// Blank line between items (except after last)
		if i < len(nodes)-1 {
			m, err := fmt.Fprint(w, "\n")
			total += int64(m)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// writeRule writes a single CSS rule to w.
func writeRule(w io.Writer, rule *Rule, indent string) (int64, error) {
	var total int64
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, strings.Join(rule.Selectors, ", "))
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, d := range rule.Declarations {
		n, err = fmt.Fprintf(w, "%s  %s: %s;\n", indent, d.Property, d.Value)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += int64(n)
	return total, err
}

// writeBlock writes an @media block with its nested nodes indented one level.
func writeBlock(w io.Writer, block *ConditionalBlock, indent string) (int64, error) {
	var total int64
	n, err := fmt.Fprintf(w, "%s@media %s {\n", indent, block.Condition)
	total += int64(n)
	if err != nil {
		return total, err
	}

	m, err := writeNodes(w, block.Nodes, indent+"  ")
	total += m
	if err != nil {
		return total, err
	}

	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += int64(n)
	return total, err
}

// writeVerbatim writes a pass-through construct, prefixing every line
// with the current indent.
func writeVerbatim(w io.Writer, v *Verbatim, indent string) (int64, error) {
	var total int64
	for line := range strings.Lines(v.Text) {
		n, err := fmt.Fprintf(w, "%s%s", indent, line)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	if !strings.HasSuffix(v.Text, "\n") {
		n, err := fmt.Fprint(w, "\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
