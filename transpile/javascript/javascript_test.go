package javascript

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/regexray/regexray/parser"
	"github.com/regexray/regexray/transpile"
)

func parseFor(t *testing.T, pattern string) *parser.Result {
	t.Helper()
	res, err := parser.Parse(pattern, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parser.Parse(%q): %v", pattern, err)
	}
	return res
}

func TestTranspile_UnicodeCodePointEscapeAddsUFlag(t *testing.T) {
	res := parseFor(t, `/\x{1F600}/`)
	out, err := Transpile(res.Tree, `/\x{1F600}/`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if out.Literal != `/\u{1F600}/u` {
		t.Errorf("got literal %q, want /\\u{1F600}/u", out.Literal)
	}
	found := false
	for _, w := range out.Warnings {
		if strings.Contains(w, "Added /u") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an 'Added /u' warning, got %+v", out.Warnings)
	}
}

func TestTranspile_PossessiveQuantifierUnsupported(t *testing.T) {
	res := parseFor(t, `/a++/`)
	_, err := Transpile(res.Tree, `/a++/`)
	if err == nil {
		t.Fatal("expected an error for possessive quantifier")
	}
	exc, ok := err.(*transpile.Exception)
	if !ok {
		t.Fatalf("expected *transpile.Exception, got %T", err)
	}
	if !strings.Contains(exc.Message, "Possessive quantifiers not supported in JavaScript") {
		t.Errorf("unexpected message: %q", exc.Message)
	}
}

func TestTranspile_FlagMapping(t *testing.T) {
	res := parseFor(t, `/abc/im`)
	out, err := Transpile(res.Tree, `/abc/im`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	// AnalysisID is stamped by the facade, not Transpile itself; this
	// package's own output is otherwise expected to match exactly.
	out.AnalysisID = uuid.Nil
	want := &transpile.Result{
		Target:  transpile.JavaScript,
		Pattern: `/abc/im`,
		Flags:   "im",
		Literal: "/abc/im",
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Transpile result mismatch (-want +got):\n%s", diff)
	}
}

func TestTranspile_NamedGroupAndBackref(t *testing.T) {
	res := parseFor(t, `/(?<word>\w+)\s\k<word>/`)
	out, err := Transpile(res.Tree, `/(?<word>\w+)\s\k<word>/`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	out.AnalysisID = uuid.Nil
	want := &transpile.Result{
		Target:  transpile.JavaScript,
		Pattern: `/(?<word>\w+)\s\k<word>/`,
		Flags:   "",
		Literal: `/(?<word>\w+)\s\k<word>/`,
	}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("Transpile result mismatch (-want +got):\n%s", diff)
	}
}

func TestTranspile_AtomicGroupUnsupported(t *testing.T) {
	res := parseFor(t, `/(?>abc)/`)
	_, err := Transpile(res.Tree, `/(?>abc)/`)
	if err == nil {
		t.Fatal("expected an error for atomic group")
	}
}

func TestTranspile_ConditionalUnsupported(t *testing.T) {
	res := parseFor(t, `/(?(1)a|b)/`)
	_, err := Transpile(res.Tree, `/(?(1)a|b)/`)
	if err == nil {
		t.Fatal("expected an error for conditional pattern")
	}
}
