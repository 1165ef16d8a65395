package parser

import (
	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/token"
)

// parseCharClass builds `[...]`, including nested classes used as operands
// of `&&` / `--` set operations and POSIX/Unicode-property atoms.
func (p *Parser) parseCharClass() (ast.Node, error) {
	openTok := p.toks.Next() // CharClassOpen
	negated := false
	if p.toks.Peek().Kind == token.KindNegation {
		p.toks.Next()
		negated = true
	}
	if err := p.enter(int(openTok.Pos) + p.offset); err != nil {
		return nil, err
	}
	defer p.leave()
	expr, err := p.parseCharClassExpression()
	if err != nil {
		return nil, err
	}
	if p.toks.Peek().Kind != token.KindCharClassClose {
		return nil, newErr(int(openTok.Pos)+p.offset, `Unclosed character class "]" at end of input`, errUnterminatedGroup)
	}
	closeTok := p.toks.Next()
	return &ast.CharClass{
		Base:       ast.Base{Pos: p.posRange(openTok, closeTok)},
		IsNegated:  negated,
		Expression: expr,
	}, nil
}

// parseCharClassExpression parses a flat run of class atoms, then folds
// in a trailing `&&`/`--` set operation (which may itself chain further),
// per CharClass.expression's "node tree" contract.
func (p *Parser) parseCharClassExpression() (ast.Node, error) {
	startTok := p.toks.Peek()
	var items []ast.Node
	for {
		k := p.toks.Peek().Kind
		if k == token.KindCharClassClose || k == token.KindClassIntersection ||
			k == token.KindClassSubtraction || k == token.KindEOF {
			break
		}
		item, err := p.parseClassItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	var left ast.Node
	switch len(items) {
	case 0:
		left = &ast.Sequence{Base: ast.Base{Pos: p.posOf(startTok)}}
	case 1:
		left = items[0]
	default:
		left = &ast.Sequence{Base: p.seqSpan(items), Children_: items}
	}

	switch p.toks.Peek().Kind {
	case token.KindClassIntersection, token.KindClassSubtraction:
		opTok := p.toks.Next()
		opType := ast.ClassOpIntersection
		if opTok.Kind == token.KindClassSubtraction {
			opType = ast.ClassOpSubtraction
		}
		right, err := p.parseCharClassExpression()
		if err != nil {
			return nil, err
		}
		return &ast.ClassOperation{
			Base:  ast.Base{Pos: p.posSpan(left, right)},
			Type:  opType,
			Left:  left,
			Right: right,
		}, nil
	default:
		return left, nil
	}
}

func (p *Parser) seqSpan(items []ast.Node) ast.Base {
	return ast.Base{Pos: ast.Position{Start: items[0].Span().Start, End: items[len(items)-1].Span().End}}
}

// parseClassItem parses one character-class atom: a literal, numeric
// escape, POSIX class, Unicode property, char-type escape, or nested
// `[...]`, resolving a trailing `-` into a Range when what follows it is
// itself a valid range endpoint.
func (p *Parser) parseClassItem() (ast.Node, error) {
	tok := p.toks.Peek()
	switch tok.Kind {
	case token.KindCharClassOpen:
		return p.parseCharClass()
	case token.KindPosixClass:
		p.toks.Next()
		name := tok.Value
		negated := false
		if len(name) > 0 && name[0] == '^' {
			negated = true
			name = name[1:]
		}
		return &ast.PosixClass{Base: ast.Base{Pos: p.posOf(tok)}, Name: name, Negated: negated}, nil
	case token.KindCharType:
		p.toks.Next()
		kind, err := charTypeKind(tok.Lexeme)
		if err != nil {
			return nil, newErrf(int(tok.Pos)+p.offset, errSyntax, "%v", err)
		}
		return &ast.CharType{Base: ast.Base{Pos: p.posOf(tok)}, Kind: kind}, nil
	case token.KindUnicodeProp, token.KindUnicodeNamed:
		return p.parseUnicodeProp()
	case token.KindHex, token.KindHexFull, token.KindUnicodeHex, token.KindUnicodeHexFull,
		token.KindOctal, token.KindOctalBrace:
		left, err := p.parseCharLiteral()
		if err != nil {
			return nil, err
		}
		return p.maybeRange(left)
	case token.KindControlChar:
		p.toks.Next()
		var ch byte
		if len(tok.Value) > 0 {
			ch = tok.Value[0]
		}
		left := ast.Node(&ast.ControlChar{Base: ast.Base{Pos: p.posOf(tok)}, Char: ch})
		return p.maybeRange(left)
	case token.KindLiteral, token.KindLiteralEscaped:
		p.toks.Next()
		left := ast.Node(&ast.Literal{Base: ast.Base{Pos: p.posOf(tok)}, Value: tok.Value})
		return p.maybeRange(left)
	case token.KindRange:
		// a leading/trailing/unresolved '-': literal hyphen (maybeRange
		// only consumes KindRange when a valid endpoint follows it).
		p.toks.Next()
		return &ast.Literal{Base: ast.Base{Pos: p.posOf(tok)}, Value: "-"}, nil
	case token.KindNegation:
		// stray '^' not in the class's first position: literal caret.
		p.toks.Next()
		return &ast.Literal{Base: ast.Base{Pos: p.posOf(tok)}, Value: "^"}, nil
	default:
		return nil, newErrf(int(tok.Pos)+p.offset, errSyntax, "unexpected %s in character class", tok.Kind)
	}
}

// maybeRange checks whether left is immediately followed by a '-' that
// itself precedes a valid range endpoint; if so it consumes both and
// returns a Range, otherwise it leaves the '-' token for the next
// parseClassItem call to emit as a literal hyphen (quasilyte's
// parseMinus pattern, one level up: the lexer already isolated '-' as
// its own KindRange token, so disambiguation is exactly this one
// token of lookahead).
func (p *Parser) maybeRange(left ast.Node) (ast.Node, error) {
	if p.toks.Peek().Kind != token.KindRange {
		return left, nil
	}
	switch p.toks.PeekN(1).Kind {
	case token.KindLiteral, token.KindLiteralEscaped, token.KindHex, token.KindHexFull,
		token.KindUnicodeHex, token.KindUnicodeHexFull, token.KindOctal, token.KindOctalBrace,
		token.KindControlChar:
	default:
		return left, nil
	}
	p.toks.Next() // consume '-'
	right, err := p.parseClassItem()
	if err != nil {
		return nil, err
	}
	return &ast.Range{
		Base:  ast.Base{Pos: p.posSpan(left, right)},
		Start: left,
		End:   right,
	}, nil
}
