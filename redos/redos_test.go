package redos

import (
	"strings"
	"testing"

	"github.com/regexray/regexray/parser"
)

func parseFor(t *testing.T, pattern string) *parser.Result {
	t.Helper()
	res, err := parser.Parse(pattern, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parser.Parse(%q): %v", pattern, err)
	}
	return res
}

func TestAnalyze_NestedUnboundedQuantifiers(t *testing.T) {
	res := parseFor(t, `/(a+)+$/`)
	rep, err := Analyze(res.Tree, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Severity != Critical {
		t.Errorf("expected Critical, got %v (score %d)", rep.Severity, rep.Score)
	}
	if rep.Score < 8 {
		t.Errorf("expected score >= 8, got %d", rep.Score)
	}
	found := false
	for _, f := range rep.Findings {
		if strings.Contains(f.Message, "nested unbounded quantifiers") {
			found = true
			if !strings.Contains(f.SuggestedRewrite, "(?>") {
				t.Errorf("expected atomic-group rewrite suggestion, got %q", f.SuggestedRewrite)
			}
		}
	}
	if !found {
		t.Errorf("expected a nested-unbounded-quantifiers finding, got %+v", rep.Findings)
	}
}

func TestAnalyze_SafePattern(t *testing.T) {
	res := parseFor(t, `/abc[a-z]+\d{2,4}/`)
	rep, err := Analyze(res.Tree, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Severity != Safe {
		t.Errorf("expected Safe, got %v: %+v", rep.Severity, rep.Findings)
	}
}

func TestAnalyze_EmptyMatchingRepetition(t *testing.T) {
	res := parseFor(t, `/(a?)*/`)
	rep, err := Analyze(res.Tree, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	found := false
	for _, f := range rep.Findings {
		if strings.Contains(f.Message, "empty-matching repetition") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an empty-matching-repetition finding, got %+v", rep.Findings)
	}
}

func TestAnalyze_AdjacentOverlappingQuantifiers(t *testing.T) {
	res := parseFor(t, `/a+a+/`)
	rep, err := Analyze(res.Tree, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	found := false
	for _, f := range rep.Findings {
		if strings.Contains(f.Message, "adjacent quantifiers") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an adjacent-quantifiers finding, got %+v", rep.Findings)
	}
}

func TestAnalyze_OverlappingAlternationUnderRepetition(t *testing.T) {
	res := parseFor(t, `/(a|ab)*c/`)
	rep, err := Analyze(res.Tree, DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	found := false
	for _, f := range rep.Findings {
		if strings.Contains(f.Message, "overlapping alternation") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an overlapping-alternation finding, got %+v", rep.Findings)
	}
}

func TestSeverity_String(t *testing.T) {
	if Critical.String() != "Critical" {
		t.Errorf("expected 'Critical', got %q", Critical.String())
	}
	if Severity(99).String() != "Unknown" {
		t.Errorf("expected 'Unknown' for out-of-range severity, got %q", Severity(99).String())
	}
}

func TestThresholds_Classify(t *testing.T) {
	th := DefaultThresholds()
	cases := []struct {
		score int
		want  Severity
	}{
		{0, Safe}, {2, Low}, {5, Medium}, {7, High}, {20, Critical},
	}
	for _, c := range cases {
		if got := th.classify(c.score); got != c.want {
			t.Errorf("classify(%d) = %v, want %v", c.score, got, c.want)
		}
	}
}
