package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/token"
)

// parseAtom dispatches on the current token's Kind to build a single atom
// node. The caller (parseAtomWithQuantifier) applies a trailing quantifier
// if one follows.
func (p *Parser) parseAtom() (ast.Node, error) {
	tok := p.toks.Peek()
	switch tok.Kind {
	case token.KindLiteral, token.KindLiteralEscaped:
		p.toks.Next()
		return &ast.Literal{Base: ast.Base{Pos: p.posOf(tok)}, Value: tok.Value}, nil
	case token.KindDot:
		p.toks.Next()
		return &ast.Dot{Base: ast.Base{Pos: p.posOf(tok)}}, nil
	case token.KindAnchor:
		p.toks.Next()
		kind := ast.AnchorCaret
		if tok.Lexeme == "$" {
			kind = ast.AnchorDollar
		}
		return &ast.Anchor{Base: ast.Base{Pos: p.posOf(tok)}, Kind: kind}, nil
	case token.KindAssertion:
		p.toks.Next()
		kind, err := assertionKind(tok.Lexeme)
		if err != nil {
			return nil, newErrf(int(tok.Pos)+p.offset, errSyntax, "%v", err)
		}
		return &ast.Assertion{Base: ast.Base{Pos: p.posOf(tok)}, Kind: kind}, nil
	case token.KindCharType:
		p.toks.Next()
		kind, err := charTypeKind(tok.Lexeme)
		if err != nil {
			return nil, newErrf(int(tok.Pos)+p.offset, errSyntax, "%v", err)
		}
		return &ast.CharType{Base: ast.Base{Pos: p.posOf(tok)}, Kind: kind}, nil
	case token.KindKeep:
		p.toks.Next()
		return &ast.Keep{Base: ast.Base{Pos: p.posOf(tok)}}, nil
	case token.KindUnicodeProp, token.KindUnicodeNamed:
		return p.parseUnicodeProp()
	case token.KindHex, token.KindHexFull, token.KindUnicodeHex, token.KindUnicodeHexFull,
		token.KindOctal, token.KindOctalBrace:
		return p.parseCharLiteral()
	case token.KindControlChar:
		p.toks.Next()
		var ch byte
		if len(tok.Value) > 0 {
			ch = tok.Value[0]
		}
		return &ast.ControlChar{Base: ast.Base{Pos: p.posOf(tok)}, Char: ch}, nil
	case token.KindBackref:
		p.toks.Next()
		return &ast.Backref{Base: ast.Base{Pos: p.posOf(tok)}, Ref: tok.Value, ByName: !isAllDigits(tok.Value)}, nil
	case token.KindGReference:
		p.toks.Next()
		relative := strings.HasPrefix(tok.Value, "-") || strings.HasPrefix(tok.Value, "+")
		ref := tok.Value
		return &ast.Backref{Base: ast.Base{Pos: p.posOf(tok)}, Ref: ref, ByName: !isAllDigits(strings.TrimLeft(ref, "+-")), Relative: relative}, nil
	case token.KindPcreVerb:
		p.toks.Next()
		return p.buildVerb(tok)
	case token.KindCallout:
		p.toks.Next()
		return &ast.Callout{Base: ast.Base{Pos: p.posOf(tok)}, ID: tok.Value, HasParen: tok.Value != ""}, nil
	case token.KindCommentOpen:
		return p.parseComment()
	case token.KindQuoteModeStart:
		return p.parseQuoted()
	case token.KindCharClassOpen:
		return p.parseCharClass()
	case token.KindGroupOpen:
		return p.parseGroup()
	case token.KindGroupModifierOpen:
		return p.parseModifiedGroup()
	case token.KindQuantifier:
		return nil, newErr(int(tok.Pos)+p.offset, "nothing to repeat", errSyntax)
	default:
		return nil, newErrf(int(tok.Pos)+p.offset, errSyntax, "unexpected %s", tok.Kind)
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigitByte(s[i]) {
			return false
		}
	}
	return true
}

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }

func assertionKind(lexeme string) (ast.AssertionKind, error) {
	switch lexeme {
	case `\A`:
		return ast.AssertStartText, nil
	case `\z`:
		return ast.AssertEndText, nil
	case `\Z`:
		return ast.AssertEndTextNL, nil
	case `\G`:
		return ast.AssertPrevMatchEnd, nil
	case `\b`:
		return ast.AssertWordBoundary, nil
	case `\B`:
		return ast.AssertNotWordBoundary, nil
	case `\b{g}`:
		return ast.AssertWordBoundaryG, nil
	case `\B{g}`:
		return ast.AssertNotWordBoundaryG, nil
	default:
		return 0, errBadAssertion(lexeme)
	}
}

func errBadAssertion(lexeme string) error {
	return fmt.Errorf("unrecognized construct %q", lexeme)
}

func charTypeKind(lexeme string) (ast.CharTypeKind, error) {
	switch lexeme {
	case `\d`:
		return ast.CTDigit, nil
	case `\D`:
		return ast.CTNotDigit, nil
	case `\s`:
		return ast.CTSpace, nil
	case `\S`:
		return ast.CTNotSpace, nil
	case `\w`:
		return ast.CTWord, nil
	case `\W`:
		return ast.CTNotWord, nil
	case `\h`:
		return ast.CTHorizSpace, nil
	case `\H`:
		return ast.CTNotHorizSpace, nil
	case `\v`:
		return ast.CTVertSpace, nil
	case `\V`:
		return ast.CTNotVertSpace, nil
	case `\R`:
		return ast.CTNewlineSeq, nil
	default:
		return 0, errBadAssertion(lexeme)
	}
}

// parseUnicodeProp builds a UnicodeProp from a KindUnicodeProp (braced) or
// KindUnicodeNamed (bare) token. Double-negation (`\P{^L}`) is already
// canonicalized by the lexer into Value's leading '^' marker.
func (p *Parser) parseUnicodeProp() (ast.Node, error) {
	tok := p.toks.Next()
	negated := strings.HasPrefix(tok.Value, "^")
	prop := strings.TrimPrefix(tok.Value, "^")
	return &ast.UnicodeProp{
		Base:      ast.Base{Pos: p.posOf(tok)},
		Prop:      prop,
		HasBraces: tok.Kind == token.KindUnicodeProp,
		Negated:   negated,
	}, nil
}

// parseCharLiteral builds a CharLiteral from a numeric-escape token,
// decoding its code point.
func (p *Parser) parseCharLiteral() (ast.Node, error) {
	tok := p.toks.Next()
	var typ ast.CharLiteralType
	var base int
	switch tok.Kind {
	case token.KindHex, token.KindHexFull:
		typ, base = ast.CharHex, 16
	case token.KindUnicodeHex, token.KindUnicodeHexFull:
		typ, base = ast.CharUnicode, 16
	case token.KindOctal:
		typ, base = ast.CharOctal, 8
	case token.KindOctalBrace:
		typ, base = ast.CharOctalLegacy, 8
	}
	cp := int64(0)
	if tok.Value != "" {
		n, err := strconv.ParseInt(tok.Value, base, 32)
		if err != nil {
			return nil, newErrf(int(tok.Pos)+p.offset, errSyntax, "invalid numeric escape %q", tok.Lexeme)
		}
		cp = n
	}
	return &ast.CharLiteral{
		Base:      ast.Base{Pos: p.posOf(tok)},
		Original:  tok.Lexeme,
		CodePoint: rune(cp),
		Type:      typ,
	}, nil
}

// parseComment consumes a `(?#...)` inline comment, which matches nothing.
func (p *Parser) parseComment() (ast.Node, error) {
	openTok := p.toks.Next() // CommentOpen
	text := ""
	if p.toks.Peek().Kind == token.KindLiteral {
		text = p.toks.Next().Value
	}
	if p.toks.Peek().Kind != token.KindCommentClose {
		return nil, newErr(int(openTok.Pos)+p.offset, "unterminated comment", errUnterminatedGroup)
	}
	closeTok := p.toks.Next()
	return &ast.Comment{Base: ast.Base{Pos: p.posRange(openTok, closeTok)}, Text: text}, nil
}

// parseQuoted consumes a `\Q...\E` quoted-literal run, producing a single
// raw Literal.
func (p *Parser) parseQuoted() (ast.Node, error) {
	startTok := p.toks.Next() // QuoteModeStart
	text := ""
	endTok := startTok
	if p.toks.Peek().Kind == token.KindLiteral {
		lit := p.toks.Next()
		text = lit.Value
		endTok = lit
	}
	if p.toks.Peek().Kind == token.KindQuoteModeEnd {
		endTok = p.toks.Next()
	}
	return &ast.Literal{Base: ast.Base{Pos: p.posRange(startTok, endTok)}, Value: text, IsRaw: true}, nil
}

// buildVerb classifies a KindPcreVerb token into either a LimitMatch node
// (`(*LIMIT_MATCH=n)`) or a generic PcreVerb node.
func (p *Parser) buildVerb(tok token.Token) (ast.Node, error) {
	name, arg, hasArg := splitVerb(tok.Value)
	if name == "LIMIT_MATCH" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, newErrf(int(tok.Pos)+p.offset, errSyntax, "invalid LIMIT_MATCH value %q", arg)
		}
		return &ast.LimitMatch{Base: ast.Base{Pos: p.posOf(tok)}, Limit: n}, nil
	}
	return &ast.PcreVerb{Base: ast.Base{Pos: p.posOf(tok)}, Verb: name, Arg: arg, HasArg: hasArg}, nil
}

func splitVerb(value string) (name, arg string, hasArg bool) {
	if i := strings.IndexAny(value, ":="); i >= 0 {
		return value[:i], value[i+1:], true
	}
	return value, "", false
}
