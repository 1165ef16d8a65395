package visit

import (
	"testing"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/parser"
)

// assertStructurallyEqual checks that a and b produce identical canonical
// output under Compile. Compile never reads Position and renders each
// node from its own fields (spelling fields such as NameSyntax and
// CharLiteral.Original included), so two trees compile to the same string
// exactly when they are structurally equivalent -- which is the round-trip
// contract this package's Compile promises, not byte-identical source text.
func assertStructurallyEqual(t *testing.T, original string, a, b *ast.Regex) {
	t.Helper()
	wantOut, err := Compile(a)
	if err != nil {
		t.Fatalf("recompile original tree for %q: %v", original, err)
	}
	gotOut, err := Compile(b)
	if err != nil {
		t.Fatalf("recompile re-parsed tree for %q: %v", original, err)
	}
	if wantOut != gotOut {
		t.Errorf("%q: structural mismatch after round-trip: %q vs %q", original, wantOut, gotOut)
	}
}

func roundTrip(t *testing.T, pattern string) {
	t.Helper()
	res, err := parser.Parse(pattern, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parse %q: %v", pattern, err)
	}
	out, err := Compile(res.Tree)
	if err != nil {
		t.Fatalf("compile %q: %v", pattern, err)
	}
	res2, err := parser.Parse(out, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("re-parse recompiled %q (from %q): %v", out, pattern, err)
	}
	assertStructurallyEqual(t, pattern, res.Tree, res2.Tree)
}

func TestCompile_RoundTrip(t *testing.T) {
	patterns := []string{
		`/abc/`,
		`/a|b|c/i`,
		`/a*b+c?d{2,4}/`,
		`/a{3}/`,
		`/(abc)/`,
		`/(?:abc)/`,
		`/(?<name>abc)/`,
		`/(?P<name>abc)/`,
		`/(?'name'abc)/`,
		`/(?=abc)/`,
		`/(?!abc)/`,
		`/(?<=abc)/`,
		`/(?<!abc)/`,
		`/(?>abc)/`,
		`/[a-z]/`,
		`/[^a-z0-9_]/`,
		`/[[:alpha:]]/`,
		`/\d+\s*\w-/`,
		`/^abc$/`,
		`/\Aabc\z/`,
		`/\bfoo\B/`,
		`/a.b/`,
		`/a*?b+?/`,
		`/a*+b++/`,
		`/(?(1)yes|no)/`,
		`/(a)(?(1)yes|no)/`,
		`/(?(R)yes|no)/`,
		`/(?(DEFINE)(?<x>abc))/`,
		`/(?&x)(?<x>abc)/`,
		`/(?R)/`,
		`/(*script_run:abc)/`,
		`/(*atomic_script_run:abc)/`,
		`/(*MARK:foo)/`,
		`/(*LIMIT_MATCH=100)abc/`,
		`/\p{L}\P{N}/`,
		`/\x{41}/`,
	}
	for _, p := range patterns {
		p := p
		t.Run(p, func(t *testing.T) { roundTrip(t, p) })
	}
}

func TestCompile_Literal_Escaping(t *testing.T) {
	res, err := parser.Parse(`/a\.b\*c/`, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := Compile(res.Tree)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	res2, err := parser.Parse(out, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("re-parse %q: %v", out, err)
	}
	assertStructurallyEqual(t, `/a\.b\*c/`, res.Tree, res2.Tree)
}
