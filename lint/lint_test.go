package lint

import (
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

func TestLint_EmptyNonCapturingGroup(t *testing.T) {
	res := parseFor(t, `/a(?:)b/`)
	issues, err := Lint(res.Tree, res.Captures, Options{File: "p.go", Line: 10})
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	found := false
	for _, iss := range issues {
		if iss.ID == "regex.lint.style.emptynoncapturing" {
			found = true
			if iss.Severity != SeverityStyle {
				t.Errorf("expected style severity, got %v", iss.Severity)
			}
		}
	}
	if !found {
		t.Errorf("expected empty-non-capturing-group issue, got %+v", issues)
	}
}

func TestLint_RepeatedDigitEscape(t *testing.T) {
	res := parseFor(t, `/\d\d\d/`)
	issues, err := Lint(res.Tree, res.Captures, Options{})
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	found := false
	for _, iss := range issues {
		if iss.ID == "regex.lint.style.repeateddigitescape" {
			found = true
			if iss.SuggestedRewrite != `\d{3}` {
				t.Errorf("expected suggested rewrite \\d{3}, got %q", iss.SuggestedRewrite)
			}
		}
	}
	if !found {
		t.Errorf("expected repeated-digit-escape issue, got %+v", issues)
	}
}

func TestLint_CleanPatternHasNoCatalogIssues(t *testing.T) {
	res := parseFor(t, `/abc[a-z]+\d{3}/`)
	issues, err := Lint(res.Tree, res.Captures, Options{})
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	for _, iss := range issues {
		if iss.Severity == SeverityStyle || iss.Severity == SeverityPerf {
			t.Errorf("unexpected catalog issue on clean pattern: %+v", iss)
		}
	}
}

func TestFilterBaseline_SuppressesMatchingTuple(t *testing.T) {
	issues := []Issue{
		{File: "p.go", Line: 5, Severity: SeverityStyle, Message: "x"},
		{File: "p.go", Line: 6, Severity: SeverityPerf, Message: "y"},
	}
	baseline := []BaselineEntry{
		{File: "p.go", Line: 5, Type: string(SeverityStyle), Message: "x"},
	}
	out := FilterBaseline(issues, baseline)
	if len(out) != 1 || out[0].Line != 6 {
		t.Errorf("expected only line 6 issue to survive, got %+v", out)
	}
}

func TestFilterIgnoreComments_SuppressesPrecedingLine(t *testing.T) {
	issues := []Issue{
		{Line: 3, Message: "bad"},
		{Line: 7, Message: "also bad"},
	}
	source := []string{
		"line1",
		"// @regex-lint-ignore",
		"line3 has the pattern",
		"line4",
		"line5",
		"line6",
		"line7 has another pattern",
	}
	out := FilterIgnoreComments(issues, source)
	if len(out) != 1 || out[0].Line != 7 {
		t.Errorf("expected only line 7 issue to survive, got %+v", out)
	}
}

func TestContainsIgnoreDirective(t *testing.T) {
	if !containsIgnoreDirective("// @regex-lint-ignore trailing text") {
		t.Error("expected directive to be found with trailing text")
	}
	if containsIgnoreDirective("// nothing here") {
		t.Error("did not expect directive to be found")
	}
}
