package nfa

import (
	"fmt"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/charset"
)

func wordSet() charset.CharSet {
	return charset.New(
		charset.Range{Lo: '0', Hi: '9'},
		charset.Range{Lo: 'A', Hi: 'Z'},
		charset.Range{Lo: 'a', Hi: 'z'},
		charset.Range{Lo: '_', Hi: '_'},
	)
}

func spaceSet() charset.CharSet {
	return charset.New(
		charset.Range{Lo: '\t', Hi: '\n'},
		charset.Range{Lo: '\v', Hi: '\r'},
		charset.Range{Lo: ' ', Hi: ' '},
	)
}

func horizSpaceSet() charset.CharSet {
	return charset.New(
		charset.Range{Lo: '\t', Hi: '\t'},
		charset.Range{Lo: ' ', Hi: ' '},
	)
}

// newlineSinglesSet is the set of single code points \R also matches,
// distinct from the two-byte \r\n sequence (handled separately as a
// concatenation fragment in compileNewlineSeq).
func newlineSinglesSet() charset.CharSet {
	return charset.New(
		charset.Range{Lo: '\n', Hi: '\n'},
		charset.Range{Lo: '\v', Hi: '\v'},
		charset.Range{Lo: '\f', Hi: '\f'},
		charset.Range{Lo: '\r', Hi: '\r'},
		charset.Range{Lo: 0x85, Hi: 0x85},
		charset.Range{Lo: 0x2028, Hi: 0x2029},
	)
}

// charTypeSet maps a Perl character-type escape to its predefined CharSet.
// CTNewlineSeq (\R) is handled separately by the caller since it spans two
// code points in one of its alternatives.
func charTypeSet(k ast.CharTypeKind, maxRune rune) charset.CharSet {
	switch k {
	case ast.CTDigit:
		return charset.New(charset.Range{Lo: '0', Hi: '9'})
	case ast.CTNotDigit:
		return charset.New(charset.Range{Lo: '0', Hi: '9'}).Complement(maxRune)
	case ast.CTSpace:
		return spaceSet()
	case ast.CTNotSpace:
		return spaceSet().Complement(maxRune)
	case ast.CTWord:
		return wordSet()
	case ast.CTNotWord:
		return wordSet().Complement(maxRune)
	case ast.CTHorizSpace:
		return horizSpaceSet()
	case ast.CTNotHorizSpace:
		return horizSpaceSet().Complement(maxRune)
	case ast.CTVertSpace:
		return newlineSinglesSet()
	case ast.CTNotVertSpace:
		return newlineSinglesSet().Complement(maxRune)
	default:
		return charset.Empty()
	}
}

// posixClasses is the "opaque label -> CharSet table" spec.md §4.K allows
// for POSIX bracket-expression names.
var posixClasses = map[string]charset.CharSet{
	"alpha": charset.New(charset.Range{Lo: 'A', Hi: 'Z'}, charset.Range{Lo: 'a', Hi: 'z'}),
	"digit": charset.New(charset.Range{Lo: '0', Hi: '9'}),
	"alnum": charset.New(charset.Range{Lo: '0', Hi: '9'}, charset.Range{Lo: 'A', Hi: 'Z'}, charset.Range{Lo: 'a', Hi: 'z'}),
	"upper": charset.New(charset.Range{Lo: 'A', Hi: 'Z'}),
	"lower": charset.New(charset.Range{Lo: 'a', Hi: 'z'}),
	"space": spaceSet(),
	"blank": horizSpaceSet(),
	"punct": charset.New(
		charset.Range{Lo: '!', Hi: '/'}, charset.Range{Lo: ':', Hi: '@'},
		charset.Range{Lo: '[', Hi: '`'}, charset.Range{Lo: '{', Hi: '~'},
	),
	"cntrl":  charset.New(charset.Range{Lo: 0, Hi: 0x1f}, charset.Range{Lo: 0x7f, Hi: 0x7f}),
	"print":  charset.New(charset.Range{Lo: 0x20, Hi: 0x7e}),
	"graph":  charset.New(charset.Range{Lo: 0x21, Hi: 0x7e}),
	"xdigit": charset.New(charset.Range{Lo: '0', Hi: '9'}, charset.Range{Lo: 'A', Hi: 'F'}, charset.Range{Lo: 'a', Hi: 'f'}),
	"word":   wordSet(),
	"ascii":  charset.New(charset.Range{Lo: 0, Hi: 0x7f}),
}

func resolvePosix(name string, negated bool, maxRune rune) (charset.CharSet, error) {
	set, ok := posixClasses[name]
	if !ok {
		return charset.CharSet{}, errNonRegular(fmt.Sprintf("POSIX class [:%s:]", name))
	}
	if negated {
		return set.Complement(maxRune), nil
	}
	return set, nil
}

// unicodeProps is a coarse, deliberately partial "opaque label -> CharSet"
// table for \p{...}/\P{...} (spec.md §4.K: "resolved via an opaque
// label->CharSet table or rejected"). It approximates general categories
// with their ASCII subset rather than full Unicode tables -- see
// DESIGN.md for why a complete Unicode property database is out of scope.
var unicodeProps = map[string]charset.CharSet{
	"L":     charset.New(charset.Range{Lo: 'A', Hi: 'Z'}, charset.Range{Lo: 'a', Hi: 'z'}),
	"Lu":    charset.New(charset.Range{Lo: 'A', Hi: 'Z'}),
	"Ll":    charset.New(charset.Range{Lo: 'a', Hi: 'z'}),
	"N":     charset.New(charset.Range{Lo: '0', Hi: '9'}),
	"Nd":    charset.New(charset.Range{Lo: '0', Hi: '9'}),
	"Alpha": charset.New(charset.Range{Lo: 'A', Hi: 'Z'}, charset.Range{Lo: 'a', Hi: 'z'}),
	"Alnum": charset.New(charset.Range{Lo: '0', Hi: '9'}, charset.Range{Lo: 'A', Hi: 'Z'}, charset.Range{Lo: 'a', Hi: 'z'}),
	"Space": spaceSet(),
	"Zs":    charset.New(charset.Range{Lo: ' ', Hi: ' '}),
	"P":     charset.New(charset.Range{Lo: '!', Hi: '/'}, charset.Range{Lo: ':', Hi: '@'}),
	"Any":   charset.Full(charset.MaxUnicode),
}

func resolveUnicodeProp(prop string, negated bool, maxRune rune) (charset.CharSet, error) {
	set, ok := unicodeProps[prop]
	if !ok {
		return charset.CharSet{}, errNonRegular(fmt.Sprintf(`unicode property "%s"`, prop))
	}
	if negated {
		return set.Complement(maxRune), nil
	}
	return set, nil
}

// compileClassSet recursively resolves a character class's Expression (or,
// given a nested *ast.CharClass, the class itself) into one flat CharSet.
func (c *Compiler) compileClassSet(n ast.Node) (charset.CharSet, error) {
	switch v := n.(type) {
	case *ast.CharClass:
		set, err := c.compileClassSet(v.Expression)
		if err != nil {
			return charset.CharSet{}, err
		}
		if v.IsNegated {
			return set.Complement(c.maxRune()), nil
		}
		return set, nil

	case *ast.Sequence:
		out := charset.Empty()
		for _, child := range v.Children_ {
			set, err := c.compileClassSet(child)
			if err != nil {
				return charset.CharSet{}, err
			}
			out = out.Union(set)
		}
		return out, nil

	case *ast.Range:
		lo, err := c.classAtomRune(v.Start)
		if err != nil {
			return charset.CharSet{}, err
		}
		hi, err := c.classAtomRune(v.End)
		if err != nil {
			return charset.CharSet{}, err
		}
		return charset.New(charset.Range{Lo: lo, Hi: hi}), nil

	case *ast.ClassOperation:
		left, err := c.compileClassSet(v.Left)
		if err != nil {
			return charset.CharSet{}, err
		}
		right, err := c.compileClassSet(v.Right)
		if err != nil {
			return charset.CharSet{}, err
		}
		if v.Type == ast.ClassOpSubtraction {
			return left.Subtract(right), nil
		}
		return left.Intersect(right), nil

	case *ast.CharType:
		if v.Kind == ast.CTNewlineSeq {
			return newlineSinglesSet(), nil
		}
		return charTypeSet(v.Kind, c.maxRune()), nil

	case *ast.PosixClass:
		return resolvePosix(v.Name, v.Negated, c.maxRune())

	case *ast.UnicodeProp:
		return resolveUnicodeProp(v.Prop, v.Negated, c.maxRune())

	case *ast.Literal, *ast.CharLiteral, *ast.ControlChar:
		r, err := c.classAtomRune(v)
		if err != nil {
			return charset.CharSet{}, err
		}
		return charset.Single(r), nil

	default:
		return charset.CharSet{}, errNonRegular(fmt.Sprintf("character class atom %T", n))
	}
}

// classAtomRune extracts the single code point a class atom (Literal,
// CharLiteral, ControlChar) stands for, used as a Range endpoint.
func (c *Compiler) classAtomRune(n ast.Node) (rune, error) {
	switch v := n.(type) {
	case *ast.Literal:
		runes := []rune(v.Value)
		if len(runes) == 0 {
			return 0, errNonRegular("empty literal in character class range")
		}
		return runes[0], nil
	case *ast.CharLiteral:
		return v.CodePoint, nil
	case *ast.ControlChar:
		return rune(v.Char), nil
	default:
		return 0, errNonRegular(fmt.Sprintf("character class range endpoint %T", n))
	}
}
