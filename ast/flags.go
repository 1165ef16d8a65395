package ast

import "strings"

// Flag is a single PCRE2 pattern modifier letter.
type Flag uint16

const (
	FlagCaseless      Flag = 1 << iota // i
	FlagMultiline                      // m
	FlagDotAll                         // s
	FlagExtended                       // x
	FlagUnicode                        // u
	FlagUngreedy                       // U
	FlagDupNames                       // J
	FlagAnchored                       // A
	FlagDollarEndOnly                  // D
	FlagInfoJIT                        // S
	FlagExtraExtended                  // X
)

var flagLetters = map[byte]Flag{
	'i': FlagCaseless,
	'm': FlagMultiline,
	's': FlagDotAll,
	'x': FlagExtended,
	'u': FlagUnicode,
	'U': FlagUngreedy,
	'J': FlagDupNames,
	'A': FlagAnchored,
	'D': FlagDollarEndOnly,
	'S': FlagInfoJIT,
	'X': FlagExtraExtended,
}

// FlagSet is the parsed, validated set of pattern modifier flags.
type FlagSet struct {
	bits Flag
}

// ParseFlags parses a flags suffix (e.g. "ims") into a FlagSet. It returns
// the first byte that is not a recognized flag letter, ok=false, so the
// caller (the parser) can build its "Unknown regex flag(s)" error with the
// offending character.
func ParseFlags(s string) (FlagSet, byte, bool) {
	var fs FlagSet
	for i := 0; i < len(s); i++ {
		bit, ok := flagLetters[s[i]]
		if !ok {
			return fs, s[i], false
		}
		fs.bits |= bit
	}
	return fs, 0, true
}

// Has reports whether f is set.
func (fs FlagSet) Has(f Flag) bool { return fs.bits&f != 0 }

// With returns a copy of fs with f set.
func (fs FlagSet) With(f Flag) FlagSet { return FlagSet{bits: fs.bits | f} }

// Without returns a copy of fs with f cleared.
func (fs FlagSet) Without(f Flag) FlagSet { return FlagSet{bits: fs.bits &^ f} }

// String renders the flags in PCRE's canonical letter order.
func (fs FlagSet) String() string {
	var b strings.Builder
	for _, l := range []byte("imsxuUJADSX") {
		if fs.Has(flagLetters[l]) {
			b.WriteByte(l)
		}
	}
	return b.String()
}

// IsValidFlagByte reports whether b is one of the recognized flag letters.
func IsValidFlagByte(b byte) bool {
	_, ok := flagLetters[b]
	return ok
}
