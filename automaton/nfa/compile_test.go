package nfa

import (
	"errors"
	"testing"

	"github.com/regexray/regexray/charset"
	"github.com/regexray/regexray/parser"
)

func mustCompile(t *testing.T, source string) *NFA {
	t.Helper()
	res, err := parser.Parse(source, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parser.Parse(%q): %v", source, err)
	}
	n, err := Compile(res.Tree, DefaultCompilerConfig())
	if err != nil {
		t.Fatalf("Compile(%q): %v", source, err)
	}
	return n
}

// accepts runs the NFA with a plain Thompson simulation (epsilon closure +
// per-step subset walk) to check a compiled fragment's language without
// needing the determinizer.
func accepts(n *NFA, s string) bool {
	cur := closure(n, map[StateID]bool{n.Start: true})
	for _, r := range s {
		next := map[StateID]bool{}
		for id := range cur {
			st := n.States[id]
			if st.Kind == StateChar && st.Set.Contains(r) {
				next[st.Next] = true
			}
		}
		if len(next) == 0 {
			return false
		}
		cur = closure(n, next)
	}
	for id := range cur {
		if n.Accepting(id) {
			return true
		}
	}
	return false
}

func closure(n *NFA, in map[StateID]bool) map[StateID]bool {
	out := map[StateID]bool{}
	var visit func(id StateID)
	visit = func(id StateID) {
		if out[id] {
			return
		}
		out[id] = true
		st := n.States[id]
		switch st.Kind {
		case StateEpsilon:
			visit(st.Next)
		case StateSplit:
			visit(st.Left)
			visit(st.Right)
		}
	}
	for id := range in {
		visit(id)
	}
	return out
}

func TestCompile_Literal(t *testing.T) {
	n := mustCompile(t, "/abc/")
	if !accepts(n, "abc") {
		t.Error("expected to accept \"abc\"")
	}
	if accepts(n, "ab") || accepts(n, "abcd") {
		t.Error("expected exact-length match only")
	}
}

func TestCompile_Alternation(t *testing.T) {
	n := mustCompile(t, "/cat|dog/")
	for _, s := range []string{"cat", "dog"} {
		if !accepts(n, s) {
			t.Errorf("expected to accept %q", s)
		}
	}
	if accepts(n, "cow") {
		t.Error("did not expect to accept \"cow\"")
	}
}

func TestCompile_Star(t *testing.T) {
	n := mustCompile(t, "/a*/")
	for _, s := range []string{"", "a", "aaaa"} {
		if !accepts(n, s) {
			t.Errorf("expected to accept %q", s)
		}
	}
	if accepts(n, "b") {
		t.Error("did not expect to accept \"b\"")
	}
}

func TestCompile_Plus(t *testing.T) {
	n := mustCompile(t, "/a+/")
	if accepts(n, "") {
		t.Error("did not expect to accept empty string")
	}
	if !accepts(n, "a") || !accepts(n, "aaa") {
		t.Error("expected to accept one or more a's")
	}
}

func TestCompile_Quest(t *testing.T) {
	n := mustCompile(t, "/colou?r/")
	if !accepts(n, "color") || !accepts(n, "colour") {
		t.Error("expected both spellings accepted")
	}
}

func TestCompile_CountedExact(t *testing.T) {
	n := mustCompile(t, "/a{3}/")
	if !accepts(n, "aaa") {
		t.Error("expected aaa accepted")
	}
	if accepts(n, "aa") || accepts(n, "aaaa") {
		t.Error("expected exactly 3")
	}
}

func TestCompile_CountedRange(t *testing.T) {
	n := mustCompile(t, "/a{2,4}/")
	for _, s := range []string{"aa", "aaa", "aaaa"} {
		if !accepts(n, s) {
			t.Errorf("expected to accept %q", s)
		}
	}
	if accepts(n, "a") || accepts(n, "aaaaa") {
		t.Error("expected range bounds enforced")
	}
}

func TestCompile_CountedMinUnbounded(t *testing.T) {
	n := mustCompile(t, "/a{2,}/")
	if accepts(n, "a") {
		t.Error("did not expect single a accepted")
	}
	if !accepts(n, "aa") || !accepts(n, "aaaaaa") {
		t.Error("expected 2 or more accepted")
	}
}

func TestCompile_CharClass(t *testing.T) {
	n := mustCompile(t, "/[a-c]/")
	for _, s := range []string{"a", "b", "c"} {
		if !accepts(n, s) {
			t.Errorf("expected to accept %q", s)
		}
	}
	if accepts(n, "d") {
		t.Error("did not expect to accept \"d\"")
	}
}

func TestCompile_CharClassNegated(t *testing.T) {
	n := mustCompile(t, "/[^a-c]/")
	if accepts(n, "a") {
		t.Error("did not expect to accept \"a\"")
	}
	if !accepts(n, "z") {
		t.Error("expected to accept \"z\"")
	}
}

func TestCompile_Dot(t *testing.T) {
	n := mustCompile(t, "/./")
	if !accepts(n, "x") {
		t.Error("expected dot to accept any non-newline char")
	}
	if accepts(n, "\n") {
		t.Error("expected dot to reject newline without /s")
	}
}

func TestCompile_DotAll(t *testing.T) {
	n := mustCompile(t, "/./s")
	if !accepts(n, "\n") {
		t.Error("expected dot to accept newline under /s")
	}
}

func TestCompile_NonCapturingGroup(t *testing.T) {
	n := mustCompile(t, "/(?:ab)+/")
	if !accepts(n, "ab") || !accepts(n, "abab") {
		t.Error("expected group repetition to work")
	}
}

func TestCompile_Anchors(t *testing.T) {
	n := mustCompile(t, "/^abc$/")
	if !accepts(n, "abc") {
		t.Error("expected anchors to be no-ops under FULL match semantics")
	}
}

func TestCompile_Backreference_ComplexityException(t *testing.T) {
	res, err := parser.Parse(`/(a)\1/`, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Compile(res.Tree, DefaultCompilerConfig())
	var ce *ComplexityException
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplexityException, got %v", err)
	}
	if ce.Phase != "compile" {
		t.Errorf("Phase = %q, want compile", ce.Phase)
	}
}

func TestCompile_Lookahead_ComplexityException(t *testing.T) {
	res, err := parser.Parse(`/a(?=b)/`, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Compile(res.Tree, DefaultCompilerConfig())
	var ce *ComplexityException
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplexityException, got %v", err)
	}
}

func TestCompile_Subroutine_ComplexityException(t *testing.T) {
	res, err := parser.Parse(`/(a)(?1)/`, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Compile(res.Tree, DefaultCompilerConfig())
	var ce *ComplexityException
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplexityException, got %v", err)
	}
}

func TestCompile_Conditional_ComplexityException(t *testing.T) {
	res, err := parser.Parse(`/(a)?(?(1)b|c)/`, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Compile(res.Tree, DefaultCompilerConfig())
	var ce *ComplexityException
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplexityException, got %v", err)
	}
}

func TestCompile_WordBoundary_ComplexityException(t *testing.T) {
	res, err := parser.Parse(`/\bword\b/`, parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Compile(res.Tree, DefaultCompilerConfig())
	var ce *ComplexityException
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplexityException, got %v", err)
	}
}

func TestCompile_PosixClass(t *testing.T) {
	n := mustCompile(t, "/[[:digit:]]/")
	if !accepts(n, "5") {
		t.Error("expected digit accepted")
	}
	if accepts(n, "x") {
		t.Error("did not expect letter accepted")
	}
}

func TestCompile_PosixClassUnknown(t *testing.T) {
	res, err := parser.Parse("/[[:nosuch:]]/", parser.DefaultConfig())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Compile(res.Tree, DefaultCompilerConfig())
	var ce *ComplexityException
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplexityException for unknown POSIX class, got %v", err)
	}
}

func TestCompile_NewlineSeq(t *testing.T) {
	n := mustCompile(t, `/\R/`)
	if !accepts(n, "\r\n") {
		t.Error("expected \\r\\n accepted")
	}
	if !accepts(n, "\n") {
		t.Error("expected lone \\n accepted")
	}
	if accepts(n, "x") {
		t.Error("did not expect plain char accepted")
	}
}

func TestCompile_ScriptRunTransparent(t *testing.T) {
	n := mustCompile(t, `/(*script_run:abc)/`)
	if !accepts(n, "abc") {
		t.Error("expected script run content to compile through transparently")
	}
}

func TestCompile_Verbs_Epsilon(t *testing.T) {
	n := mustCompile(t, `/a(?#comment)b/`)
	if !accepts(n, "ab") {
		t.Error("expected inline comment to compile to epsilon")
	}
}

func TestCompile_RecursionDepthExceeded(t *testing.T) {
	pattern := "/" + repeatString("(?:", 400) + "a" + repeatString(")", 400) + "/"
	cfg := parser.DefaultConfig()
	cfg.MaxRecursionDepth = 1000
	res, err := parser.Parse(pattern, cfg)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	_, err = Compile(res.Tree, CompilerConfig{MaxRecursionDepth: 50})
	var ce *ComplexityException
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplexityException for recursion depth, got %v", err)
	}
	if ce.Phase != "compile" || ce.Limit != 50 {
		t.Errorf("unexpected exception shape: %+v", ce)
	}
}

func repeatString(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func TestWordSet(t *testing.T) {
	w := wordSet()
	for _, r := range []rune{'a', 'Z', '0', '_'} {
		if !w.Contains(r) {
			t.Errorf("expected wordSet to contain %q", r)
		}
	}
	if w.Contains(' ') {
		t.Error("did not expect wordSet to contain space")
	}
}

func TestResolveUnicodeProp_Unknown(t *testing.T) {
	_, err := resolveUnicodeProp("NoSuchProp", false, charset.MaxASCII)
	var ce *ComplexityException
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComplexityException for unknown property, got %v", err)
	}
}
