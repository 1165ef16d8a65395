package visit

import (
	"strings"
	"testing"

	"github.com/regexray/regexray/ast"
)

func optimize(t *testing.T, pattern string, opts OptimizerOptions) (string, []Change) {
	t.Helper()
	res := parseFor(t, pattern)
	out, changes, err := Optimize(res.Tree, opts)
	if err != nil {
		t.Fatalf("optimize %q: %v", pattern, err)
	}
	rendered, err := Compile(out)
	if err != nil {
		t.Fatalf("recompile optimized %q: %v", pattern, err)
	}
	return rendered, changes
}

func TestOptimize_ModernizeClass(t *testing.T) {
	out, changes := optimize(t, `/[0-9]+/`, DefaultOptimizerOptions())
	if !strings.Contains(out, `\d`) {
		t.Errorf("expected [0-9] rewritten to \\d, got %q", out)
	}
	if len(changes) == 0 {
		t.Error("expected a recorded change")
	}
}

func TestOptimize_ModernizeClass_SkippedUnderUnicodeFlag(t *testing.T) {
	out, _ := optimize(t, `/[0-9]+/u`, DefaultOptimizerOptions())
	if !strings.Contains(out, "[0-9]") {
		t.Errorf("expected [0-9] left alone under /u, got %q", out)
	}
}

func TestOptimize_FoldLiteralRun(t *testing.T) {
	out, changes := optimize(t, `/aaaa/`, DefaultOptimizerOptions())
	if !strings.Contains(out, "a{4}") {
		t.Errorf("expected aaaa folded to a{4}, got %q", out)
	}
	if len(changes) == 0 {
		t.Error("expected a recorded change")
	}
}

func TestOptimize_FoldLiteralRun_BelowThreshold(t *testing.T) {
	opts := DefaultOptimizerOptions()
	opts.MinQuantifierCount = 10
	out, _ := optimize(t, `/aaaa/`, opts)
	if strings.Contains(out, "{") {
		t.Errorf("expected no folding below threshold, got %q", out)
	}
}

func TestOptimize_AutoPossessify(t *testing.T) {
	out, changes := optimize(t, `/a+b/`, DefaultOptimizerOptions())
	if !strings.Contains(out, "a++b") {
		t.Errorf("expected a+ promoted to a++ before a distinct literal, got %q", out)
	}
	if len(changes) == 0 {
		t.Error("expected a recorded change")
	}
}

func TestOptimize_AutoPossessify_SkipsOverlap(t *testing.T) {
	out, _ := optimize(t, `/a+a/`, DefaultOptimizerOptions())
	if strings.Contains(out, "a++") {
		t.Errorf("expected a+ before an overlapping atom left alone, got %q", out)
	}
}

func TestOptimize_DropUnusedDotAllFlag(t *testing.T) {
	res := parseFor(t, `/abc/s`)
	out, changes, err := Optimize(res.Tree, DefaultOptimizerOptions())
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if out.Flags.Has(ast.FlagDotAll) {
		t.Error("expected /s dropped when no '.' appears")
	}
	if len(changes) == 0 {
		t.Error("expected a recorded change")
	}
}

func TestOptimize_KeepsDotAllFlagWhenDotPresent(t *testing.T) {
	res := parseFor(t, `/a.c/s`)
	out, _, err := Optimize(res.Tree, DefaultOptimizerOptions())
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if !out.Flags.Has(ast.FlagDotAll) {
		t.Error("expected /s kept when '.' appears")
	}
}

func TestOptimize_SafeguardRejectsEmptyingEdit(t *testing.T) {
	// A pathological Optimizer run shouldn't be able to produce an empty
	// pattern; exercise the safeguard directly against a hand-built
	// before/after pair.
	before := parseFor(t, `/^abc$/`).Tree
	empty := &ast.Regex{Base: before.Base, Delimiter: before.Delimiter, Flags: before.Flags, Pattern: &ast.Sequence{}}
	if safeguardOK(before, empty) {
		t.Error("expected safeguard to reject a rewrite that empties an anchored pattern")
	}
}
