package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS text into a Stylesheet tree.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	input := parse.NewInput(bytes.NewReader(data))
	parser := css.NewParser(input, false)

	nodes := p.parseNodes(parser, true)
	if err := parser.Err(); err != nil && err.Error() != "EOF" {
		p.log.Debug("CSS parse error", zap.Error(err))
	}
	return &Stylesheet{Nodes: nodes}
}

// parseNodes consumes grammar events until end of input (top level) or the
// end of the enclosing at-rule block (nested level) and returns the node
// sequence. It recurses for @media blocks so arbitrarily nested conditional
// blocks keep the same shape as the top level.
func (p *Parser) parseNodes(parser *css.Parser, topLevel bool) []Node {
	var nodes []Node
	var pending []string // selectors accumulated for the next ruleset

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			return nodes

		case css.CommentGrammar:
			nodes = append(nodes, Node{Verbatim: &Verbatim{Text: string(data)}})

		case css.AtRuleGrammar:
			// Simple at-rule without a block (@import, @charset, @namespace).
			nodes = append(nodes, Node{Verbatim: &Verbatim{Text: atRulePrelude(string(data), parser.Values()) + ";"}})

		case css.BeginAtRuleGrammar:
			name := string(data)
			if strings.EqualFold(name, "@media") {
				cond := rawText(parser.Values())
				nested := p.parseNodes(parser, false)
				p.log.Debug("Parsed @media block", zap.String("condition", cond), zap.Int("nodes", len(nested)))
				nodes = append(nodes, Node{Block: &ConditionalBlock{Condition: cond, Nodes: nested}})
				continue
			}
			// Any other block at-rule (@font-face, @keyframes, @supports, ...)
			// is captured as text and passed through untouched.
			p.log.Debug("Capturing at-rule verbatim", zap.String("rule", name))
			nodes = append(nodes, Node{Verbatim: &Verbatim{Text: p.captureAtRule(parser, name)}})

		case css.EndAtRuleGrammar:
			if !topLevel {
				return nodes
			}

		case css.QualifiedRuleGrammar:
			// Comma-separated selector preludes before the final one.
			pending = append(pending, splitSelectors(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			pending = append(pending, splitSelectors(data, parser.Values())...)
			decls := p.parseDeclarations(parser)
			nodes = append(nodes, Node{Rule: &Rule{Selectors: pending, Declarations: decls}})
			pending = nil
		}
	}
}

// parseDeclarations collects raw property declarations until the end of the
// current ruleset.
func (p *Parser) parseDeclarations(parser *css.Parser) []Declaration {
	var decls []Declaration

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decls = append(decls, Declaration{
				Property: string(data),
				Value:    rawText(parser.Values()),
			})
		}
	}
}

// captureAtRule reconstructs the text of an unanalyzed at-rule block from
// grammar events, consuming events up to and including the matching end.
func (p *Parser) captureAtRule(parser *css.Parser, name string) string {
	var b strings.Builder
	b.WriteString(atRulePrelude(name, parser.Values()))
	b.WriteString(" {\n")

	depth := 1
	pad := func() { b.WriteString(strings.Repeat("  ", depth)) }

	for depth > 0 {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			depth = 0

		case css.BeginAtRuleGrammar:
			pad()
			b.WriteString(atRulePrelude(string(data), parser.Values()))
			b.WriteString(" {\n")
			depth++

		case css.BeginRulesetGrammar, css.QualifiedRuleGrammar:
			prelude := string(data) + rawText(parser.Values())
			if gt == css.QualifiedRuleGrammar {
				pad()
				b.WriteString(strings.TrimSpace(prelude) + ",\n")
				continue
			}
			pad()
			b.WriteString(strings.TrimSpace(prelude) + " {\n")
			depth++

		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
			pad()
			b.WriteString("}\n")

		case css.AtRuleGrammar:
			pad()
			b.WriteString(atRulePrelude(string(data), parser.Values()) + ";\n")

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			pad()
			b.WriteString(string(data) + ": " + rawText(parser.Values()) + ";\n")

		case css.CommentGrammar:
			pad()
			b.WriteString(string(data) + "\n")
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// atRulePrelude joins an at-rule name with its prelude tokens.
func atRulePrelude(name string, values []css.Token) string {
	if prelude := rawText(values); prelude != "" {
		return name + " " + prelude
	}
	return name
}

// rawText joins token data, collapsing whitespace runs to single spaces.
func rawText(tokens []css.Token) string {
	var parts []string
	for _, t := range tokens {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	return strings.TrimSpace(strings.Join(parts, ""))
}

// splitSelectors extracts selector strings from a ruleset prelude.
// Grouped selectors are split on commas; order is preserved.
func splitSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}
