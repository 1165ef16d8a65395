package python

import (
	"strings"
	"testing"

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

func TestTranspile_NamedGroupUsesPSyntax(t *testing.T) {
	res := parseFor(t, `/(?<word>\w+)/`)
	out, err := Transpile(res.Tree, `/(?<word>\w+)/`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if !strings.Contains(out.Literal, "(?P<word>") {
		t.Errorf("expected (?P<word>...), got %q", out.Literal)
	}
}

func TestTranspile_NamedBackrefUsesPEqualsSyntax(t *testing.T) {
	res := parseFor(t, `/(?<word>\w+)\s\k<word>/`)
	out, err := Transpile(res.Tree, `/(?<word>\w+)\s\k<word>/`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if !strings.Contains(out.Literal, "(?P=word)") {
		t.Errorf("expected (?P=word), got %q", out.Literal)
	}
}

func TestTranspile_AtomicGroupSupported(t *testing.T) {
	res := parseFor(t, `/(?>abc)+/`)
	out, err := Transpile(res.Tree, `/(?>abc)+/`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if !strings.Contains(out.Literal, "(?>abc)") {
		t.Errorf("expected atomic group preserved, got %q", out.Literal)
	}
}

func TestTranspile_UnicodePropUnsupported(t *testing.T) {
	res := parseFor(t, `/\p{L}/`)
	_, err := Transpile(res.Tree, `/\p{L}/`)
	if err == nil {
		t.Fatal("expected an error for \\p{L}")
	}
	exc, ok := err.(*transpile.Exception)
	if !ok {
		t.Fatalf("expected *transpile.Exception, got %T", err)
	}
	if !strings.Contains(exc.Message, "third-party regex package") {
		t.Errorf("unexpected message: %q", exc.Message)
	}
}

func TestTranspile_FlagsRenderedAsInlinePrefix(t *testing.T) {
	res := parseFor(t, `/abc/ims`)
	out, err := Transpile(res.Tree, `/abc/ims`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if out.Literal != "(?ims)abc" {
		t.Errorf("got literal %q, want (?ims)abc", out.Literal)
	}
}

func TestTranspile_UngreedyFlagFlipsQuantifierMode(t *testing.T) {
	res := parseFor(t, `/a+/U`)
	out, err := Transpile(res.Tree, `/a+/U`)
	if err != nil {
		t.Fatalf("Transpile: %v", err)
	}
	if !strings.Contains(out.Literal, "a+?") {
		t.Errorf("expected greedy + to flip to lazy +?, got %q", out.Literal)
	}
}
