package visit

import "testing"

func TestScoreComplexity_FlatLiteral(t *testing.T) {
	res := parseFor(t, `/abcdef/`)
	s, err := ScoreComplexity(res.Tree)
	if err != nil {
		t.Fatalf("ScoreComplexity: %v", err)
	}
	if s.QuantifierCount != 0 || s.UnboundedCount != 0 || s.BacktrackingOps != 0 {
		t.Errorf("flat literal should have no quantifiers/backtracking ops, got %+v", s)
	}
}

func TestScoreComplexity_NestedUnboundedQuantifiers(t *testing.T) {
	res := parseFor(t, `/(a+)+/`)
	s, err := ScoreComplexity(res.Tree)
	if err != nil {
		t.Fatalf("ScoreComplexity: %v", err)
	}
	if s.QuantifierCount != 2 {
		t.Errorf("expected 2 quantifiers, got %d", s.QuantifierCount)
	}
	if s.UnboundedCount != 2 {
		t.Errorf("expected 2 unbounded quantifiers, got %d", s.UnboundedCount)
	}
}

func TestScoreComplexity_BoundedQuantifierNotUnbounded(t *testing.T) {
	res := parseFor(t, `/a{2,4}/`)
	s, err := ScoreComplexity(res.Tree)
	if err != nil {
		t.Fatalf("ScoreComplexity: %v", err)
	}
	if s.QuantifierCount != 1 {
		t.Errorf("expected 1 quantifier, got %d", s.QuantifierCount)
	}
	if s.UnboundedCount != 0 {
		t.Errorf("bounded {2,4} should not count as unbounded, got %d", s.UnboundedCount)
	}
}

func TestScoreComplexity_LookaroundAndBackrefBumpBacktrackingOps(t *testing.T) {
	res := parseFor(t, `/(?=abc)(x)\1/`)
	s, err := ScoreComplexity(res.Tree)
	if err != nil {
		t.Fatalf("ScoreComplexity: %v", err)
	}
	if s.BacktrackingOps < 2 {
		t.Errorf("expected lookahead + backref to bump BacktrackingOps to >=2, got %d", s.BacktrackingOps)
	}
}

func TestScoreComplexity_PossessiveQuantifierBumpsBacktrackingOps(t *testing.T) {
	res := parseFor(t, `/a++/`)
	s, err := ScoreComplexity(res.Tree)
	if err != nil {
		t.Fatalf("ScoreComplexity: %v", err)
	}
	if s.BacktrackingOps != 1 {
		t.Errorf("expected possessive quantifier to bump BacktrackingOps to 1, got %d", s.BacktrackingOps)
	}
}

func TestScoreComplexity_NestedPatternScoresHigherThanFlat(t *testing.T) {
	flatRes := parseFor(t, `/abc/`)
	flat, err := ScoreComplexity(flatRes.Tree)
	if err != nil {
		t.Fatalf("ScoreComplexity: %v", err)
	}
	nestedRes := parseFor(t, `/(a+)+(b+)+/`)
	nested, err := ScoreComplexity(nestedRes.Tree)
	if err != nil {
		t.Fatalf("ScoreComplexity: %v", err)
	}
	if nested.Score <= flat.Score {
		t.Errorf("expected nested pattern score %d > flat pattern score %d", nested.Score, flat.Score)
	}
}
