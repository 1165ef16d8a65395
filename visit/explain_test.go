package visit

import (
	"strings"
	"testing"
)

func TestExplainPattern_Literal(t *testing.T) {
	res := parseFor(t, `/abc/`)
	out, err := ExplainPattern(res.Tree)
	if err != nil {
		t.Fatalf("ExplainPattern: %v", err)
	}
	if !strings.Contains(out, `"abc"`) {
		t.Errorf("expected explanation to mention the literal, got %q", out)
	}
}

func TestExplainPattern_Quantifier(t *testing.T) {
	res := parseFor(t, `/a+/`)
	out, err := ExplainPattern(res.Tree)
	if err != nil {
		t.Fatalf("ExplainPattern: %v", err)
	}
	if !strings.Contains(out, "one or more times") {
		t.Errorf("expected quantifier explanation, got %q", out)
	}
}

func TestExplainPattern_NamedGroup(t *testing.T) {
	res := parseFor(t, `/(?<word>\w+)/`)
	out, err := ExplainPattern(res.Tree)
	if err != nil {
		t.Fatalf("ExplainPattern: %v", err)
	}
	if !strings.Contains(out, `"word"`) {
		t.Errorf("expected group name in explanation, got %q", out)
	}
}

func TestExplainPattern_CaseInsensitiveFlag(t *testing.T) {
	res := parseFor(t, `/abc/i`)
	out, err := ExplainPattern(res.Tree)
	if err != nil {
		t.Fatalf("ExplainPattern: %v", err)
	}
	if !strings.Contains(out, "case-insensitively") {
		t.Errorf("expected flag mention, got %q", out)
	}
}

func TestExplainPattern_Alternation(t *testing.T) {
	res := parseFor(t, `/cat|dog/`)
	out, err := ExplainPattern(res.Tree)
	if err != nil {
		t.Fatalf("ExplainPattern: %v", err)
	}
	if !strings.Contains(out, "either") || !strings.Contains(out, "or") {
		t.Errorf("expected alternation phrasing, got %q", out)
	}
}
