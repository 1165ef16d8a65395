package regexray

import (
	"errors"
	"strings"
	"testing"

	"github.com/regexray/regexray/lint"
	"github.com/regexray/regexray/redos"
	"github.com/regexray/regexray/transpile"
	"github.com/regexray/regexray/visit"
)

func TestParse_CachesByExactSource(t *testing.T) {
	e := Default()
	a, err := e.Parse(`/abc/`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := e.Parse(`/abc/`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if a != b {
		t.Errorf("expected second Parse to hit the in-process cache and return the same *parser.Result")
	}
}

func TestParse_RejectsOverLongPattern(t *testing.T) {
	e := New(Config{MaxPatternLength: 4, MaxRecursionDepth: 250, MaxNodes: 20000, CacheCapacity: 16})
	_, err := e.Parse(`/abcdef/`)
	if err == nil {
		t.Fatal("expected PatternTooLongError")
	}
	if _, ok := err.(*PatternTooLongError); !ok {
		t.Errorf("expected *PatternTooLongError, got %T: %v", err, err)
	}
}

func TestValidate_ReportsUndefinedBackref(t *testing.T) {
	issues, err := Validate(`/\1(a)/`)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(issues) == 0 {
		t.Error("expected at least one validation issue for a backreference to an undefined group")
	}
}

func TestValidateAll_BundlesIssuesIntoOneError(t *testing.T) {
	err := ValidateAll(`/\1(a)/`)
	if err == nil {
		t.Fatal("expected a non-nil ValidationError for a backreference to an undefined group")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	if len(ve.Issues) == 0 {
		t.Error("expected ValidationError.Issues to carry at least one Issue")
	}
	// Bundled via multierr.Append: each Issue unwraps as its own cause.
	for _, cause := range ve.Unwrap() {
		var ie *issueError
		if !errors.As(cause, &ie) {
			t.Errorf("expected bundled cause to be *issueError, got %T", cause)
		}
	}
}

func TestValidateAll_CleanPatternReturnsNil(t *testing.T) {
	if err := ValidateAll(`/abc/`); err != nil {
		t.Errorf("expected nil for a clean pattern, got %v", err)
	}
}

func TestAnalyze_StampsSharedAnalysisID(t *testing.T) {
	rep, err := Analyze(`/(a+)+$/`, redos.DefaultOptions())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(rep.Findings) == 0 {
		t.Fatal("expected at least one finding")
	}
	first := rep.Findings[0].AnalysisID
	for _, f := range rep.Findings {
		if f.AnalysisID != first {
			t.Errorf("expected every finding to share one AnalysisID")
		}
	}
	if first.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a non-zero AnalysisID")
	}
}

func TestLint_StampsAnalysisID(t *testing.T) {
	issues, err := Lint(`/\d\d\d/`, lint.Options{File: "p.go", Line: 10})
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	found := false
	for _, iss := range issues {
		if iss.ID == "regex.lint.style.repeateddigitescape" {
			found = true
			if iss.AnalysisID.String() == "00000000-0000-0000-0000-000000000000" {
				t.Error("expected a non-zero AnalysisID")
			}
		}
	}
	if !found {
		t.Error("expected the repeated-digit-escape catalog rule to fire")
	}
}

func TestTranspile_DispatchesByTarget(t *testing.T) {
	out, err := Transpile(`/\x{1F600}/`, transpile.JavaScript)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if !strings.Contains(out.Literal, `\u{1F600}`) {
		t.Errorf("expected codepoint escape in literal, got %q", out.Literal)
	}
	if out.AnalysisID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("expected a non-zero AnalysisID")
	}
}

func TestTranspile_UnknownTargetErrors(t *testing.T) {
	if _, err := Transpile(`/abc/`, transpile.Target("ruby")); err == nil {
		t.Error("expected an error for an unknown transpile target")
	}
}

func TestExplainAndHighlight_RoundTripThroughFacade(t *testing.T) {
	if _, err := Explain(`/a+b/`); err != nil {
		t.Fatalf("Explain: %v", err)
	}
	toks, err := Highlight(`/a+b/`)
	if err != nil {
		t.Fatalf("Highlight: %v", err)
	}
	if len(toks) == 0 {
		t.Error("expected at least one token")
	}
}

func TestGenerate_ProducesAMatchingSample(t *testing.T) {
	sample, err := Generate(`/abc/`, visit.SampleGeneratorOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(sample, "abc") {
		t.Errorf("expected generated sample to contain the literal, got %q", sample)
	}
}

func TestLiterals_ExtractsRequiredSubstring(t *testing.T) {
	set, err := Literals(`/foo(bar|baz)/`, visit.DefaultExtractorConfig())
	if err != nil {
		t.Fatalf("Literals: %v", err)
	}
	if len(set.Literals) == 0 {
		t.Error("expected some extracted literal")
	}
}

func TestCaretSnippet_MarksOffendingColumn(t *testing.T) {
	snippet := CaretSnippet("abc\ndef\nghi", 5)
	lines := strings.Split(snippet, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected at least two lines, got %q", snippet)
	}
	if !strings.Contains(snippet, "^") {
		t.Errorf("expected a caret marker, got %q", snippet)
	}
}

func TestValidateRuntime_AcceptsSupportedConstruct(t *testing.T) {
	e := Default()
	if err := e.ValidateRuntime(`/(?<=foo)bar/`); err != nil {
		t.Errorf("expected regexp2 to accept a lookbehind, got: %v", err)
	}
}

func TestOptimize_ReturnsRewrittenTree(t *testing.T) {
	tree, _, err := Optimize(`/(?:a)/`, visit.OptimizerOptions{})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if tree == nil {
		t.Error("expected a non-nil rewritten tree")
	}
}
