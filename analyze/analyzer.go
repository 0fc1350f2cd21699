// Package analyze decides which rules of a stylesheet are exercised by a
// set of rendered pages and prunes the ones that are not. It is a pure
// transformation: no I/O, no state between invocations.
package analyze

import (
	"strings"

	"go.uber.org/zap"

	"csscull/css"
	"csscull/dom"
)

// Analyzer runs usage analysis of stylesheet trees against DOM snapshots.
type Analyzer struct {
	log *zap.Logger
}

// New creates an Analyzer.
func New(log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{log: log.Named("analyzer")}
}

// Used reports whether the selector matches at least one element across the
// snapshots, checking them in order and short-circuiting on the first hit.
// When the query engine rejects the selector, the normalized ancestor form
// is computed once and retried on the same snapshot. A selector whose
// normalized form still cannot be parsed is reported as used: losing a rule
// the engine cannot evaluate would corrupt the shipped stylesheet, keeping
// it only costs bytes.
func (a *Analyzer) Used(doms []*dom.Document, selector string) bool {
	normalized := ""
	for _, d := range doms {
		nodes, err := d.Query(selector)
		if err == nil {
			if len(nodes) > 0 {
				return true
			}
			continue
		}

		if normalized == "" {
			normalized = Normalize(selector)
			a.log.Debug("Query rejected selector, retrying normalized form",
				zap.String("selector", selector),
				zap.String("normalized", normalized))
		}

		nodes, err = d.Query(normalized)
		if err != nil {
			// fail open
			a.log.Debug("Normalized form rejected too, keeping selector",
				zap.String("selector", selector))
			return true
		}
		if len(nodes) > 0 {
			return true
		}
	}
	return false
}

// Prune returns a new stylesheet containing only the rules exercised by the
// snapshots or exempted by the ignore list. Node order is preserved; rules
// left with no surviving selector and @media blocks left empty are dropped;
// pass-through nodes are never touched. The input tree is not modified or
// retained.
func (a *Analyzer) Prune(sheet *css.Stylesheet, doms []*dom.Document, ignore IgnoreList) *css.Stylesheet {
	return &css.Stylesheet{Nodes: a.pruneNodes(sheet.Nodes, doms, ignore)}
}

func (a *Analyzer) pruneNodes(nodes []css.Node, doms []*dom.Document, ignore IgnoreList) []css.Node {
	out := make([]css.Node, 0, len(nodes))
	for _, node := range nodes {
		switch {
		case node.Rule != nil:
			kept := a.keepSelectors(node.Rule.Selectors, doms, ignore)
			if len(kept) == 0 {
				a.log.Debug("Dropping unused rule", zap.Strings("selectors", node.Rule.Selectors))
				continue
			}
			decls := make([]css.Declaration, len(node.Rule.Declarations))
			copy(decls, node.Rule.Declarations)
			out = append(out, css.Node{Rule: &css.Rule{Selectors: kept, Declarations: decls}})

		case node.Block != nil:
			nested := a.pruneNodes(node.Block.Nodes, doms, ignore)
			if len(nested) == 0 {
				a.log.Debug("Dropping empty conditional block", zap.String("condition", node.Block.Condition))
				continue
			}
			out = append(out, css.Node{Block: &css.ConditionalBlock{Condition: node.Block.Condition, Nodes: nested}})

		default:
			out = append(out, node)
		}
	}
	return out
}

// keepSelectors filters a rule's selector list, preserving order.
func (a *Analyzer) keepSelectors(selectors []string, doms []*dom.Document, ignore IgnoreList) []string {
	var kept []string
	for _, sel := range selectors {
		switch {
		case strings.HasPrefix(sel, "@"):
			// At-rule preludes never reach selector lists with this parser,
			// but a literal "@" selector is kept rather than queried.
			kept = append(kept, sel)
		case ignore.Matches(sel):
			kept = append(kept, sel)
		case a.Used(doms, sel):
			kept = append(kept, sel)
		}
	}
	return kept
}
