package visit

import (
	"strings"
	"testing"
)

func TestDump_Basic(t *testing.T) {
	res := parseFor(t, `/a(b|c)+/`)
	out, err := Dump(res.Tree)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	for _, want := range []string{"Regex(", "Sequence(", "Quantifier(", "Alternation(", "Literal("} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q, got:\n%s", want, out)
		}
	}
}

func TestDumpMermaid_Basic(t *testing.T) {
	res := parseFor(t, `/a|b/`)
	out := DumpMermaid(res.Tree)
	if !strings.HasPrefix(out, "graph TD\n") {
		t.Errorf("expected mermaid graph header, got:\n%s", out)
	}
	if !strings.Contains(out, "-->") {
		t.Errorf("expected at least one edge, got:\n%s", out)
	}
}
