package visit

import (
	"testing"

	"github.com/regexray/regexray/automaton"
)

func assertMatches(t *testing.T, pattern, sample string) {
	t.Helper()
	dfa, err := automaton.Compile(pattern, automaton.DefaultSolverOptions())
	if err != nil {
		t.Fatalf("automaton.Compile(%q): %v", pattern, err)
	}
	if !dfa.Accepts(sample) {
		t.Errorf("pattern %q: generated sample %q does not match", pattern, sample)
	}
}

func TestGenerateSample_Literal(t *testing.T) {
	res := parseFor(t, `/abc/`)
	s, err := GenerateSample(res.Tree, DefaultSampleGeneratorOptions())
	if err != nil {
		t.Fatalf("GenerateSample: %v", err)
	}
	assertMatches(t, `/abc/`, s)
}

func TestGenerateSample_Quantifier(t *testing.T) {
	res := parseFor(t, `/a{2,4}/`)
	s, err := GenerateSample(res.Tree, DefaultSampleGeneratorOptions())
	if err != nil {
		t.Fatalf("GenerateSample: %v", err)
	}
	assertMatches(t, `/a{2,4}/`, s)
}

func TestGenerateSample_Alternation(t *testing.T) {
	res := parseFor(t, `/cat|dog/`)
	s, err := GenerateSample(res.Tree, DefaultSampleGeneratorOptions())
	if err != nil {
		t.Fatalf("GenerateSample: %v", err)
	}
	assertMatches(t, `/cat|dog/`, s)
}

func TestGenerateSample_CharClass(t *testing.T) {
	res := parseFor(t, `/[abc]+/`)
	s, err := GenerateSample(res.Tree, DefaultSampleGeneratorOptions())
	if err != nil {
		t.Fatalf("GenerateSample: %v", err)
	}
	assertMatches(t, `/[abc]+/`, s)
}

func TestGenerateSample_BackrefReusesCapturedText(t *testing.T) {
	res := parseFor(t, `/(?<word>[abc]+) \k<word>/`)
	s, err := GenerateSample(res.Tree, DefaultSampleGeneratorOptions())
	if err != nil {
		t.Fatalf("GenerateSample: %v", err)
	}
	var first, second string
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			first, second = s[:i], s[i+1:]
			break
		}
	}
	if first == "" || first != second {
		t.Errorf("expected matching halves around the space, got %q", s)
	}
}

func TestGenerateSample_Deterministic(t *testing.T) {
	res := parseFor(t, `/a{1,5}[xyz]/`)
	opts := DefaultSampleGeneratorOptions()
	s1, err := GenerateSample(res.Tree, opts)
	if err != nil {
		t.Fatalf("GenerateSample: %v", err)
	}
	res2 := parseFor(t, `/a{1,5}[xyz]/`)
	s2, err := GenerateSample(res2.Tree, opts)
	if err != nil {
		t.Fatalf("GenerateSample: %v", err)
	}
	if s1 != s2 {
		t.Errorf("expected same seed to produce same sample, got %q vs %q", s1, s2)
	}
}
