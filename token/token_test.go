package token

import "testing"

func TestKind_StringKnownAndUnknown(t *testing.T) {
	if got := KindLiteral.String(); got != "Literal" {
		t.Errorf("KindLiteral.String() = %q", got)
	}
	if got := Kind(255).String(); got != "Unknown(255)" {
		t.Errorf("Kind(255).String() = %q", got)
	}
}

func TestTokenStream_PeekNextSaveRestore(t *testing.T) {
	toks := []Token{
		{Kind: KindLiteral, Lexeme: "a", Value: "a", Pos: 0},
		{Kind: KindLiteral, Lexeme: "b", Value: "b", Pos: 1},
		{Kind: KindEOF, Pos: 2},
	}
	ts := NewTokenStream(toks)

	if ts.Peek().Lexeme != "a" {
		t.Fatalf("expected first peek to be 'a', got %q", ts.Peek().Lexeme)
	}
	if ts.PeekN(1).Lexeme != "b" {
		t.Fatalf("expected PeekN(1) to be 'b', got %q", ts.PeekN(1).Lexeme)
	}

	mark := ts.Save()
	first := ts.Next()
	if first.Lexeme != "a" {
		t.Fatalf("expected Next() to return 'a', got %q", first.Lexeme)
	}
	second := ts.Next()
	if second.Lexeme != "b" {
		t.Fatalf("expected Next() to return 'b', got %q", second.Lexeme)
	}
	if !ts.AtEOF() {
		t.Fatal("expected stream to be at EOF")
	}

	ts.Restore(mark)
	if ts.AtEOF() {
		t.Fatal("expected stream to not be at EOF after restore")
	}
	if ts.Peek().Lexeme != "a" {
		t.Fatalf("expected peek after restore to be 'a', got %q", ts.Peek().Lexeme)
	}
}

func TestTokenStream_PeekPastEndReturnsEOF(t *testing.T) {
	toks := []Token{{Kind: KindEOF, Pos: 0}}
	ts := NewTokenStream(toks)
	if ts.PeekN(10).Kind != KindEOF {
		t.Fatal("expected PeekN past end to return EOF token")
	}
}
