package visit

import "testing"

func TestHighlightPattern_Basic(t *testing.T) {
	res := parseFor(t, `/a+(b)/`)
	tokens, err := HighlightPattern(res.Tree)
	if err != nil {
		t.Fatalf("HighlightPattern: %v", err)
	}
	var sawLiteral, sawQuantifier, sawGroup bool
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenLiteral:
			sawLiteral = true
		case TokenQuantifier:
			sawQuantifier = true
		case TokenGroup:
			sawGroup = true
		}
	}
	if !sawLiteral || !sawQuantifier || !sawGroup {
		t.Errorf("expected literal, quantifier, and group tokens, got %+v", tokens)
	}
}

func TestHighlightPattern_TokenKindString(t *testing.T) {
	if TokenLiteral.String() != "literal" {
		t.Errorf("expected 'literal', got %q", TokenLiteral.String())
	}
	if TokenKind(99).String() != "unknown" {
		t.Errorf("expected 'unknown' for out-of-range kind, got %q", TokenKind(99).String())
	}
}

func TestColumnAt_ASCII(t *testing.T) {
	s := "abcdef"
	if got := ColumnAt(s, 3); got != 3 {
		t.Errorf("expected column 3, got %d", got)
	}
}

func TestColumnAt_MultiByte(t *testing.T) {
	s := "aéc" // 'a', 'é' (2 bytes), 'c'
	if got := ColumnAt(s, len(s)); got != 3 {
		t.Errorf("expected 3 grapheme columns, got %d", got)
	}
}

func TestColumnAt_ClampsOutOfRange(t *testing.T) {
	s := "abc"
	if got := ColumnAt(s, 100); got != 3 {
		t.Errorf("expected clamp to full string length (3), got %d", got)
	}
	if got := ColumnAt(s, 0); got != 0 {
		t.Errorf("expected 0 at offset 0, got %d", got)
	}
}
