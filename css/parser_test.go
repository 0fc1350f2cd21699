package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"csscull/css"
)

func TestParser_SimpleRule(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`.epigraph { font-style: italic; margin: 1em 0; }`))

	if len(sheet.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(sheet.Nodes))
	}
	rule := sheet.Nodes[0].Rule
	if rule == nil {
		t.Fatal("expected a rule node")
	}
	if len(rule.Selectors) != 1 || rule.Selectors[0] != ".epigraph" {
		t.Errorf("unexpected selectors: %v", rule.Selectors)
	}
	if len(rule.Declarations) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(rule.Declarations))
	}
	if rule.Declarations[0].Property != "font-style" || rule.Declarations[0].Value != "italic" {
		t.Errorf("unexpected first declaration: %+v", rule.Declarations[0])
	}
	if rule.Declarations[1].Property != "margin" || rule.Declarations[1].Value != "1em 0" {
		t.Errorf("unexpected second declaration: %+v", rule.Declarations[1])
	}
}

func TestParser_GroupedSelectors(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`h1, h2, .title { color: black; }`))

	if len(sheet.Nodes) != 1 || sheet.Nodes[0].Rule == nil {
		t.Fatalf("expected a single rule node, got %+v", sheet.Nodes)
	}
	got := sheet.Nodes[0].Rule.Selectors
	want := []string{"h1", "h2", ".title"}
	if len(got) != len(want) {
		t.Fatalf("expected %d selectors, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("selector %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestParser_MediaBlock(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`@media screen and (max-width: 600px) { .a { x: 1; } .b { x: 2; } }`))

	if len(sheet.Nodes) != 1 {
		t.Fatalf("expected 1 node, got %d", len(sheet.Nodes))
	}
	block := sheet.Nodes[0].Block
	if block == nil {
		t.Fatal("expected a conditional block node")
	}
	if block.Condition != "screen and (max-width:600px)" && block.Condition != "screen and (max-width: 600px)" {
		t.Errorf("unexpected condition: %q", block.Condition)
	}
	if len(block.Nodes) != 2 {
		t.Fatalf("expected 2 nested rules, got %d", len(block.Nodes))
	}
	if block.Nodes[0].Rule == nil || block.Nodes[0].Rule.Selectors[0] != ".a" {
		t.Errorf("unexpected first nested node: %+v", block.Nodes[0])
	}
	if block.Nodes[1].Rule == nil || block.Nodes[1].Rule.Selectors[0] != ".b" {
		t.Errorf("unexpected second nested node: %+v", block.Nodes[1])
	}
}

func TestParser_NestedMedia(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`@media screen { @media (min-width: 100px) { .a { x: 1; } } }`))

	if len(sheet.Nodes) != 1 || sheet.Nodes[0].Block == nil {
		t.Fatalf("expected a conditional block, got %+v", sheet.Nodes)
	}
	outer := sheet.Nodes[0].Block
	if len(outer.Nodes) != 1 || outer.Nodes[0].Block == nil {
		t.Fatalf("expected nested conditional block, got %+v", outer.Nodes)
	}
	inner := outer.Nodes[0].Block
	if len(inner.Nodes) != 1 || inner.Nodes[0].Rule == nil {
		t.Fatalf("expected rule inside nested block, got %+v", inner.Nodes)
	}
}

func TestParser_PassThroughConstructs(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	input := `@import url("base.css");
/* section styles */
@font-face { font-family: "Custom"; src: url(custom.woff); }
@keyframes spin { from { transform: rotate(0); } to { transform: rotate(360deg); } }
.used { color: red; }`

	sheet := p.Parse([]byte(input))

	if len(sheet.Nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(sheet.Nodes))
	}

	for i, want := range []string{"@import", "section styles", "@font-face", "@keyframes"} {
		v := sheet.Nodes[i].Verbatim
		if v == nil {
			t.Fatalf("node %d: expected verbatim, got %+v", i, sheet.Nodes[i])
		}
		if !strings.Contains(v.Text, want) {
			t.Errorf("node %d: expected text containing %q, got %q", i, want, v.Text)
		}
	}
	if sheet.Nodes[4].Rule == nil {
		t.Errorf("expected final node to be a rule, got %+v", sheet.Nodes[4])
	}

	// keyframes keep their inner rules
	if kf := sheet.Nodes[3].Verbatim; !strings.Contains(kf.Text, "rotate(360deg)") {
		t.Errorf("keyframes body lost: %q", kf.Text)
	}
}

func TestParser_CustomProperty(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`:root { --accent: #ff0000; }`))

	if len(sheet.Nodes) != 1 || sheet.Nodes[0].Rule == nil {
		t.Fatalf("expected a rule node, got %+v", sheet.Nodes)
	}
	decls := sheet.Nodes[0].Rule.Declarations
	if len(decls) != 1 || decls[0].Property != "--accent" {
		t.Errorf("unexpected declarations: %+v", decls)
	}
}

func TestStylesheet_WriteTo(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`.a { color: red; } @media screen { .b { x: 1; } }`))
	out := sheet.String()

	for _, want := range []string{".a {", "color: red;", "@media screen {", ".b {"} {
		if !strings.Contains(out, want) {
			t.Errorf("serialized output missing %q:\n%s", want, out)
		}
	}

	// serialized output must parse back to the same shape
	again := p.Parse([]byte(out))
	if len(again.Nodes) != len(sheet.Nodes) {
		t.Fatalf("reparse changed node count: %d != %d", len(again.Nodes), len(sheet.Nodes))
	}
	if again.Nodes[1].Block == nil || len(again.Nodes[1].Block.Nodes) != 1 {
		t.Errorf("reparse lost media block shape: %+v", again.Nodes[1])
	}
}

func TestParser_EmptyInput(t *testing.T) {
	p := css.NewParser(nil)

	sheet := p.Parse(nil)
	if len(sheet.Nodes) != 0 {
		t.Errorf("expected empty stylesheet, got %d nodes", len(sheet.Nodes))
	}
	if out := sheet.String(); out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
}
