package parser

import (
	"strconv"
	"strings"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/token"
)

// parseGroup builds a plain capturing group: "(" alternation ")".
func (p *Parser) parseGroup() (ast.Node, error) {
	openTok := p.toks.Next() // GroupOpen
	idx := p.reg.reserve("", p.posOf(openTok))
	return p.finishGroup(openTok, ast.GroupCapturing, ast.NameSyntaxNone, "", nil, idx)
}

// parseModifiedGroup builds everything spelled `(?...)`: non-capturing,
// atomic, lookaround, named, branch-reset, conditional, DEFINE,
// subroutine/recursion call, and inline-flags groups.
func (p *Parser) parseModifiedGroup() (ast.Node, error) {
	openTok := p.toks.Next() // GroupModifierOpen
	return p.dispatchModifiedGroup(openTok)
}

func (p *Parser) dispatchModifiedGroup(openTok token.Token) (ast.Node, error) {
	if strings.HasPrefix(openTok.Lexeme, "(*") {
		return p.parseScriptRun(openTok)
	}

	peek := p.toks.Peek()
	switch peek.Kind {
	case token.KindAlternation:
		p.toks.Next()
		return p.finishGroup(openTok, ast.GroupBranchReset, ast.NameSyntaxNone, "", nil, 0)
	case token.KindGroupOpen, token.KindGroupModifierOpen:
		return p.parseConditional(openTok)
	case token.KindGroupClose:
		return nil, newErr(int(openTok.Pos)+p.offset, "empty group modifier", errSyntax)
	case token.KindLiteral:
		// handled below
	default:
		return nil, newErrf(int(peek.Pos)+p.offset, errSyntax, "invalid group modifier after %q", openTok.Lexeme)
	}

	switch peek.Lexeme {
	case ":":
		p.toks.Next()
		return p.finishGroup(openTok, ast.GroupNonCapturing, ast.NameSyntaxNone, "", nil, 0)
	case ">":
		p.toks.Next()
		return p.finishGroup(openTok, ast.GroupAtomic, ast.NameSyntaxNone, "", nil, 0)
	case "=":
		p.toks.Next()
		return p.finishGroup(openTok, ast.GroupLookaheadPositive, ast.NameSyntaxNone, "", nil, 0)
	case "!":
		p.toks.Next()
		return p.finishGroup(openTok, ast.GroupLookaheadNegative, ast.NameSyntaxNone, "", nil, 0)
	case "<=":
		p.toks.Next()
		return p.finishGroup(openTok, ast.GroupLookbehindPositive, ast.NameSyntaxNone, "", nil, 0)
	case "<!":
		p.toks.Next()
		return p.finishGroup(openTok, ast.GroupLookbehindNegative, ast.NameSyntaxNone, "", nil, 0)
	case "R":
		p.toks.Next()
		return p.finishSubroutine(openTok, "R", false, true)
	}

	switch {
	case strings.HasPrefix(peek.Lexeme, "<") && strings.HasSuffix(peek.Lexeme, ">"):
		p.toks.Next()
		idx := p.reg.reserve(peek.Value, p.posOf(openTok))
		return p.finishGroup(openTok, ast.GroupNamed, ast.NameSyntaxAngle, peek.Value, nil, idx)
	case strings.HasPrefix(peek.Lexeme, "'") && strings.HasSuffix(peek.Lexeme, "'"):
		p.toks.Next()
		idx := p.reg.reserve(peek.Value, p.posOf(openTok))
		return p.finishGroup(openTok, ast.GroupNamed, ast.NameSyntaxQuote, peek.Value, nil, idx)
	case strings.HasPrefix(peek.Lexeme, "P<"):
		p.toks.Next()
		idx := p.reg.reserve(peek.Value, p.posOf(openTok))
		return p.finishGroup(openTok, ast.GroupNamed, ast.NameSyntaxPAngle, peek.Value, nil, idx)
	case strings.HasPrefix(peek.Lexeme, "P'"):
		p.toks.Next()
		idx := p.reg.reserve(peek.Value, p.posOf(openTok))
		return p.finishGroup(openTok, ast.GroupNamed, ast.NameSyntaxQuote, peek.Value, nil, idx)
	case strings.HasPrefix(peek.Lexeme, "&"):
		p.toks.Next()
		return p.finishSubroutine(openTok, peek.Value, true, false)
	case isSignedDigits(peek.Lexeme):
		p.toks.Next()
		return p.finishSubroutine(openTok, peek.Lexeme, false, peek.Lexeme == "0")
	default:
		return p.parseInlineFlagsGroup(openTok, peek)
	}
}

func isSignedDigits(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '-' || s[0] == '+' {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if !isDigitByte(s[i]) {
			return false
		}
	}
	return true
}

// finishGroup parses the group's body (an alternation) and its closing
// ")", wrapping it into an ast.Group. idx is the capture index already
// reserved by the caller for Capturing/Named groups, 0 otherwise.
func (p *Parser) finishGroup(openTok token.Token, typ ast.GroupType, syntax ast.NameSyntax, name string, flags *ast.FlagSet, idx int) (ast.Node, error) {
	if err := p.enter(int(openTok.Pos) + p.offset); err != nil {
		return nil, err
	}
	defer p.leave()
	child, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if p.toks.Peek().Kind != token.KindGroupClose {
		return nil, newErr(int(openTok.Pos)+p.offset, "unterminated group", errUnterminatedGroup)
	}
	closeTok := p.toks.Next()
	return &ast.Group{
		Base:         ast.Base{Pos: p.posRange(openTok, closeTok)},
		Type:         typ,
		Child:        child,
		Name:         name,
		NameSyntax:   syntax,
		Flags:        flags,
		CaptureIndex: idx,
	}, nil
}

// finishSubroutine consumes the closing ")" of a standalone recursion or
// subroutine-call atom -- `(?R)`, `(?1)`, `(?-1)`, `(?&name)` wrap no body
// of their own.
func (p *Parser) finishSubroutine(openTok token.Token, target string, byName, recursive bool) (ast.Node, error) {
	if p.toks.Peek().Kind != token.KindGroupClose {
		return nil, newErr(int(openTok.Pos)+p.offset, "unterminated subroutine call", errUnterminatedGroup)
	}
	closeTok := p.toks.Next()
	return &ast.Subroutine{
		Base:      ast.Base{Pos: p.posRange(openTok, closeTok)},
		Target:    target,
		ByName:    byName,
		Recursive: recursive,
	}, nil
}

// parseInlineFlagsGroup handles `(?flags:...)` and the flag-only `(?flags)`
// modifier. The '-' separator (if present) marks flags this modifier turns
// back off; since ast.Group only records what a modifier sets, those are
// validated against the flag alphabet and then discarded.
func (p *Parser) parseInlineFlagsGroup(openTok, flagsTok token.Token) (ast.Node, error) {
	p.toks.Next() // consume the flags literal
	setPart, unsetPart, hasUnset := strings.Cut(flagsTok.Lexeme, "-")
	fs, bad, ok := ast.ParseFlags(setPart)
	if !ok {
		return nil, newErrf(int(flagsTok.Pos)+p.offset, errUnknownFlag, "unknown regex flag %q", string(bad))
	}
	if hasUnset {
		if _, bad, ok := ast.ParseFlags(unsetPart); !ok {
			return nil, newErrf(int(flagsTok.Pos)+p.offset, errUnknownFlag, "unknown regex flag %q", string(bad))
		}
	}
	if p.toks.Peek().Kind == token.KindLiteral && p.toks.Peek().Lexeme == ":" {
		p.toks.Next()
		return p.finishGroup(openTok, ast.GroupNonCapturing, ast.NameSyntaxNone, "", &fs, 0)
	}
	if p.toks.Peek().Kind != token.KindGroupClose {
		return nil, newErr(int(openTok.Pos)+p.offset, "unterminated inline flags group", errUnterminatedGroup)
	}
	closeTok := p.toks.Next()
	return &ast.Group{
		Base:  ast.Base{Pos: p.posRange(openTok, closeTok)},
		Type:  ast.GroupInlineFlags,
		Flags: &fs,
	}, nil
}

// parseScriptRun builds `(*script_run:...)` / `(*atomic_script_run:...)`.
// Unlike the other `(*VERB)` forms, these wrap a nested alternation and
// close with their own ")".
func (p *Parser) parseScriptRun(openTok token.Token) (ast.Node, error) {
	atomic := strings.Contains(openTok.Lexeme, "atomic")
	if err := p.enter(int(openTok.Pos) + p.offset); err != nil {
		return nil, err
	}
	defer p.leave()
	content, err := p.parseAlternation()
	if err != nil {
		return nil, err
	}
	if p.toks.Peek().Kind != token.KindGroupClose {
		return nil, newErr(int(openTok.Pos)+p.offset, "unterminated script run", errUnterminatedGroup)
	}
	closeTok := p.toks.Next()
	return &ast.ScriptRun{
		Base:    ast.Base{Pos: p.posRange(openTok, closeTok)},
		Content: content,
		Atomic:  atomic,
	}, nil
}

// parseConditional builds `(?(condition)yes|no)` and `(?(DEFINE)body)`.
// openTok is the outer "(?" GroupModifierOpen; the condition's own wrapper
// "(" (or, for an embedded-assertion condition, the nested "(?...)" group
// that serves as both condition and its own close) is consumed here.
func (p *Parser) parseConditional(openTok token.Token) (ast.Node, error) {
	if err := p.enter(int(openTok.Pos) + p.offset); err != nil {
		return nil, err
	}
	defer p.leave()

	parenTok := p.toks.Next()
	var (
		cond     ast.Node
		isDefine bool
		err      error
	)
	if parenTok.Kind == token.KindGroupModifierOpen {
		cond, err = p.dispatchModifiedGroup(parenTok)
	} else {
		cond, isDefine, err = p.parseConditionContent(parenTok)
	}
	if err != nil {
		return nil, err
	}

	if isDefine {
		content, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		if p.toks.Peek().Kind != token.KindGroupClose {
			return nil, newErr(int(openTok.Pos)+p.offset, "unterminated DEFINE block", errUnterminatedGroup)
		}
		closeTok := p.toks.Next()
		return &ast.Define{Base: ast.Base{Pos: p.posRange(openTok, closeTok)}, Content: content}, nil
	}

	yes, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	var no ast.Node
	if p.toks.Peek().Kind == token.KindAlternation {
		p.toks.Next()
		no, err = p.parseSequence()
		if err != nil {
			return nil, err
		}
	}
	if p.toks.Peek().Kind != token.KindGroupClose {
		return nil, newErr(int(openTok.Pos)+p.offset, "unterminated conditional", errUnterminatedGroup)
	}
	closeTok := p.toks.Next()
	return &ast.Conditional{
		Base:      ast.Base{Pos: p.posRange(openTok, closeTok)},
		Condition: cond,
		Yes:       yes,
		No:        no,
	}, nil
}

// parseConditionContent reads a conditional's flat condition text -- a
// numeric backref, named reference, recursion marker, DEFINE keyword, or
// version check -- up to its wrapper ")", which it consumes. Tokens are
// concatenated by Lexeme (with KindDot's "." restored) because `.` inside
// `VERSION>=2.0` would otherwise lex as a separate Dot token.
func (p *Parser) parseConditionContent(parenTok token.Token) (ast.Node, bool, error) {
	startTok := p.toks.Peek()
	var b strings.Builder
	for p.toks.Peek().Kind != token.KindGroupClose && p.toks.Peek().Kind != token.KindEOF {
		tok := p.toks.Next()
		if tok.Kind == token.KindDot {
			b.WriteByte('.')
		} else {
			b.WriteString(tok.Lexeme)
		}
	}
	if p.toks.Peek().Kind != token.KindGroupClose {
		return nil, false, newErr(int(parenTok.Pos)+p.offset, "unterminated conditional condition", errUnterminatedGroup)
	}
	closeTok := p.toks.Next()
	pos := p.posRange(startTok, closeTok)
	text := b.String()

	switch {
	case text == "DEFINE":
		return nil, true, nil
	case text == "R":
		return &ast.Subroutine{Base: ast.Base{Pos: pos}, Target: "R", Recursive: true}, false, nil
	case strings.HasPrefix(text, "R&"):
		return &ast.Subroutine{Base: ast.Base{Pos: pos}, Target: strings.TrimPrefix(text, "R&"), ByName: true}, false, nil
	case strings.HasPrefix(text, "R") && isSignedDigits(strings.TrimPrefix(text, "R")):
		return &ast.Subroutine{Base: ast.Base{Pos: pos}, Target: strings.TrimPrefix(text, "R")}, false, nil
	case strings.HasPrefix(text, "VERSION"):
		vc, err := parseVersionCondition(text, pos)
		return vc, false, err
	case strings.HasPrefix(text, "<") && strings.HasSuffix(text, ">"):
		return &ast.Backref{Base: ast.Base{Pos: pos}, Ref: text[1 : len(text)-1], ByName: true}, false, nil
	case strings.HasPrefix(text, "'") && strings.HasSuffix(text, "'"):
		return &ast.Backref{Base: ast.Base{Pos: pos}, Ref: text[1 : len(text)-1], ByName: true}, false, nil
	case strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}"):
		return &ast.Backref{Base: ast.Base{Pos: pos}, Ref: text[1 : len(text)-1], ByName: true}, false, nil
	case isSignedDigits(text):
		return &ast.Backref{Base: ast.Base{Pos: pos}, Ref: text, ByName: false}, false, nil
	case text != "":
		return &ast.Backref{Base: ast.Base{Pos: pos}, Ref: text, ByName: true}, false, nil
	default:
		return nil, false, newErr(int(parenTok.Pos)+p.offset, "invalid conditional condition", errBadConditional)
	}
}

func parseVersionCondition(text string, pos ast.Position) (*ast.VersionCondition, error) {
	rest := strings.TrimPrefix(text, "VERSION")
	op := ast.VersionGE
	var numPart string
	switch {
	case strings.HasPrefix(rest, ">="):
		numPart = strings.TrimPrefix(rest, ">=")
	case strings.HasPrefix(rest, "="):
		op = ast.VersionEQ
		numPart = strings.TrimPrefix(rest, "=")
	default:
		return nil, newErrf(int(pos.Start), errBadConditional, "invalid conditional condition %q", text)
	}
	parts := strings.SplitN(numPart, ".", 2)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, newErrf(int(pos.Start), errBadConditional, "invalid conditional condition %q", text)
	}
	minor := 0
	if len(parts) == 2 {
		minor, err = strconv.Atoi(parts[1])
		if err != nil {
			return nil, newErrf(int(pos.Start), errBadConditional, "invalid conditional condition %q", text)
		}
	}
	return &ast.VersionCondition{Base: ast.Base{Pos: pos}, Op: op, Major: major, Minor: minor}, nil
}
