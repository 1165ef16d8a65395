// Package regexray is the facade (component F): it orchestrates lex ->
// parse -> cache lookup -> visit behind ten public operations (Parse,
// Validate, Analyze, Optimize, Explain, Highlight, Lint, Transpile,
// Generate, Literals), the way the teacher's own regex.go orchestrates
// meta.Compile behind Compile/MustCompile/Match/Find. No component above
// this package knows about the lexer or parser directly; everything
// downstream consumes the *ast.Regex this package produces.
package regexray

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dlclark/regexp2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/cache"
	"github.com/regexray/regexray/lint"
	"github.com/regexray/regexray/parser"
	"github.com/regexray/regexray/redos"
	"github.com/regexray/regexray/transpile"
	"github.com/regexray/regexray/transpile/javascript"
	"github.com/regexray/regexray/transpile/python"
	"github.com/regexray/regexray/visit"
)

// Config bounds the facade the way meta.Config bounds the teacher
// engine's compilation: MaxPatternLength is enforced before lexing ever
// starts (spec's "max_pattern_length is enforced by the facade before
// lexing" contract); the rest pass straight through to parser.Config.
type Config struct {
	MaxPatternLength  int
	MaxRecursionDepth int
	MaxNodes          int
	CacheCapacity     int
}

// DefaultConfig returns the facade's default budget.
func DefaultConfig() Config {
	pc := parser.DefaultConfig()
	return Config{
		MaxPatternLength:  8192,
		MaxRecursionDepth: pc.MaxRecursionDepth,
		MaxNodes:          pc.MaxNodes,
		CacheCapacity:     256,
	}
}

func (c Config) parserConfig() parser.Config {
	return parser.Config{MaxRecursionDepth: c.MaxRecursionDepth, MaxNodes: c.MaxNodes}
}

// PatternTooLongError is returned when a pattern exceeds Config's
// MaxPatternLength, before the lexer ever sees it.
type PatternTooLongError struct {
	Length, Limit int
}

func (e *PatternTooLongError) Error() string {
	return fmt.Sprintf("regexray: pattern length %d exceeds limit %d", e.Length, e.Limit)
}

// Engine is the facade. It is safe for concurrent use: the key-derivation
// cache.InMemory and the parse-tree sync.Map each guard their own state,
// and every operation constructs fresh visitor instances per call (the
// visitor contract's "state is the visitor's own" rule).
//
// cache.Backend's Load/Write contract is byte-blob-in, byte-blob-out --
// the right shape for the persisted-artifact concern spec's "Persisted
// cache" external interface describes (explicitly out of scope), but the
// wrong shape for memoizing a live *parser.Result without inventing an
// AST (de)serialization format the spec never calls for. Engine instead
// uses cache.InMemory purely for its GenerateKey concern (a stable,
// collision-resistant digest of pattern+flags) and keeps the actual
// parsed trees in an in-process sync.Map keyed by that same digest.
type Engine struct {
	cfg    Config
	keyer  cache.Backend
	parsed sync.Map // digest string -> *parser.Result
}

// New returns an Engine configured by cfg.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, keyer: cache.NewInMemory(cfg.CacheCapacity)}
}

// Default returns an Engine with DefaultConfig.
func Default() *Engine {
	return New(DefaultConfig())
}

var defaultEngine = Default()

func (e *Engine) parseKey(source string) string {
	return cache.KeyFor(e.keyer, "ast", source, ast.FlagSet{})
}

// Parse lexes and parses source, memoizing the result by its exact text
// (cache lookup is an exact-match on the raw pattern source, including
// its delimiter and flags; the parser itself re-derives flags from that
// same text, so distinct sources never collide on a derived key).
func (e *Engine) Parse(source string) (*parser.Result, error) {
	if len(source) > e.cfg.MaxPatternLength {
		return nil, &PatternTooLongError{Length: len(source), Limit: e.cfg.MaxPatternLength}
	}
	key := e.parseKey(source)
	if v, ok := e.parsed.Load(key); ok {
		return v.(*parser.Result), nil
	}
	res, err := parser.Parse(source, e.cfg.parserConfig())
	if err != nil {
		return nil, err
	}
	e.parsed.Store(key, res)
	return res, nil
}

// Validate runs the structural validator over source's parsed tree.
func (e *Engine) Validate(source string) ([]visit.Issue, error) {
	res, err := e.Parse(source)
	if err != nil {
		return nil, err
	}
	return visit.Validate(res.Tree, res.Captures), nil
}

// ValidationError bundles every problem found while validating a pattern
// into a single error, built with multierr.Append/multierr.Combine
// rather than a hand-rolled slice-of-errors type: callers still get
// errors.Is/errors.As traversal into any one bundled cause (e.g. the
// ValidateRuntime rejection among several structural Issues) instead of
// only ever seeing a flattened string.
type ValidationError struct {
	Issues []visit.Issue
	err    error
}

func (e *ValidationError) Error() string { return e.err.Error() }

func (e *ValidationError) Unwrap() []error { return multierr.Errors(e.err) }

// issueError adapts a visit.Issue to the error interface so it can be
// bundled by multierr alongside ValidateRuntime's host-engine rejection.
type issueError struct{ visit.Issue }

func (e *issueError) Error() string { return e.Issue.String() }

func newValidationError(issues []visit.Issue) *ValidationError {
	if len(issues) == 0 {
		return nil
	}
	var err error
	for _, iss := range issues {
		err = multierr.Append(err, &issueError{iss})
	}
	return &ValidationError{Issues: issues, err: err}
}

// ValidateAll runs the structural validator and, if source parses as a
// delimited literal, the runtime engine check too, bundling every
// problem into a single *ValidationError. It returns nil if source is
// clean.
func (e *Engine) ValidateAll(source string) error {
	issues, err := e.Validate(source)
	if err != nil {
		return err
	}
	ve := newValidationError(issues)
	if rerr := e.ValidateRuntime(source); rerr != nil {
		if ve == nil {
			ve = &ValidationError{}
		}
		ve.err = multierr.Append(ve.err, rerr)
	}
	if ve == nil {
		return nil
	}
	return ve
}

// ValidateRuntime additionally compiles source against regexp2 (the one
// engine in the pack that supports lookaround, backreferences, and
// atomic groups, standing in for the host PCRE runtime spec.md's
// Non-goals describe as an external collaborator) and reports any
// rejection it raises that the structural validator would not catch.
func (e *Engine) ValidateRuntime(source string) error {
	_, body, flagsStr, err := splitForRuntime(source)
	if err != nil {
		return err
	}
	opts := regexp2.RE2
	if strings.ContainsRune(flagsStr, 'i') {
		opts |= regexp2.IgnoreCase
	}
	if strings.ContainsRune(flagsStr, 'm') {
		opts |= regexp2.Multiline
	}
	if strings.ContainsRune(flagsStr, 's') {
		opts |= regexp2.Singleline
	}
	if _, err := regexp2.Compile(body, opts); err != nil {
		return fmt.Errorf("regexray: host engine rejected pattern: %w", err)
	}
	return nil
}

// Analyze runs the ReDoS structural analyzer over source's parsed tree.
func (e *Engine) Analyze(source string, opts redos.Options) (*redos.Report, error) {
	res, err := e.Parse(source)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	rep, err := redos.Analyze(res.Tree, opts)
	if err != nil {
		return nil, err
	}
	for i := range rep.Findings {
		rep.Findings[i].AnalysisID = id
	}
	return rep, nil
}

// Optimize runs the rewrite visitor over source's parsed tree.
func (e *Engine) Optimize(source string, opts visit.OptimizerOptions) (*ast.Regex, []visit.Change, error) {
	res, err := e.Parse(source)
	if err != nil {
		return nil, nil, err
	}
	return visit.Optimize(res.Tree, opts)
}

// Explain renders an English description of source.
func (e *Engine) Explain(source string) (string, error) {
	res, err := e.Parse(source)
	if err != nil {
		return "", err
	}
	return visit.ExplainPattern(res.Tree)
}

// Highlight returns the token stream a syntax-highlighting caller would
// render source with.
func (e *Engine) Highlight(source string) ([]visit.Token, error) {
	res, err := e.Parse(source)
	if err != nil {
		return nil, err
	}
	return visit.HighlightPattern(res.Tree)
}

// Lint runs the validator plus the style/perf catalog over source,
// stamping every issue with a shared correlation id.
func (e *Engine) Lint(source string, opts lint.Options) ([]lint.Issue, error) {
	res, err := e.Parse(source)
	if err != nil {
		return nil, err
	}
	id := uuid.New()
	issues, err := lint.Lint(res.Tree, res.Captures, opts)
	if err != nil {
		return issues, err
	}
	for i := range issues {
		issues[i].AnalysisID = id
	}
	return issues, nil
}

// Transpile renders source for target, stamping the result with a
// correlation id.
func (e *Engine) Transpile(source string, target transpile.Target) (*transpile.Result, error) {
	res, err := e.Parse(source)
	if err != nil {
		return nil, err
	}
	var out *transpile.Result
	switch target {
	case transpile.JavaScript:
		out, err = javascript.Transpile(res.Tree, source)
	case transpile.Python:
		out, err = python.Transpile(res.Tree, source)
	default:
		return nil, fmt.Errorf("regexray: unknown transpile target %q", target)
	}
	if err != nil {
		return nil, err
	}
	out.AnalysisID = uuid.New()
	return out, nil
}

// Generate produces a sample string matching source.
func (e *Engine) Generate(source string, opts visit.SampleGeneratorOptions) (string, error) {
	res, err := e.Parse(source)
	if err != nil {
		return "", err
	}
	return visit.GenerateSample(res.Tree, opts)
}

// Literals extracts source's required literal substrings.
func (e *Engine) Literals(source string, cfg visit.ExtractorConfig) (visit.LiteralSet, error) {
	res, err := e.Parse(source)
	if err != nil {
		return visit.LiteralSet{}, err
	}
	return visit.ExtractLiterals(res.Tree, cfg)
}

// CaretSnippet renders the three source lines around byteOffset with a
// '^' marker under the offending column, per spec's "validators attach a
// caret snippet" propagation rule. Column math is grapheme-cluster aware
// (visit.ColumnAt), not byte or rune counting.
func CaretSnippet(source string, byteOffset uint32) string {
	lines := strings.Split(source, "\n")
	lineOf, colOf := 0, 0
	consumed := 0
	for i, line := range lines {
		if uint32(consumed+len(line)) >= byteOffset || i == len(lines)-1 {
			lineOf = i
			colOf = visit.ColumnAt(line, int(byteOffset)-consumed)
			break
		}
		consumed += len(line) + 1
	}
	start := lineOf - 1
	if start < 0 {
		start = 0
	}
	end := lineOf + 1
	if end >= len(lines) {
		end = len(lines) - 1
	}
	var b strings.Builder
	for i := start; i <= end; i++ {
		b.WriteString(lines[i])
		b.WriteByte('\n')
		if i == lineOf {
			if colOf > 0 {
				b.WriteString(strings.Repeat(" ", colOf))
			}
			b.WriteString("^\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// splitForRuntime extracts the delimiter-stripped body and flags suffix
// for a runtime-engine handoff, tolerating patterns the facade's own
// parser would reject outright (ValidateRuntime wants to know what the
// host engine thinks even when this engine's own parse already failed).
func splitForRuntime(source string) (delim byte, body, flags string, err error) {
	if len(source) < 2 {
		return 0, "", "", fmt.Errorf("regexray: pattern source too short")
	}
	open := source[0]
	closeCh := closingDelimiterFor(open)
	end := strings.LastIndexByte(source, closeCh)
	if end <= 0 {
		return 0, "", "", fmt.Errorf("regexray: unterminated pattern delimiter")
	}
	return open, source[1:end], source[end+1:], nil
}

func closingDelimiterFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	case '<':
		return '>'
	default:
		return open
	}
}

// Package-level convenience wrappers over a shared default Engine, the
// way the teacher package exposes Compile/MustCompile over an implicit
// default configuration.

func Parse(source string) (*parser.Result, error) { return defaultEngine.Parse(source) }

func Validate(source string) ([]visit.Issue, error) { return defaultEngine.Validate(source) }

func ValidateAll(source string) error { return defaultEngine.ValidateAll(source) }

func Analyze(source string, opts redos.Options) (*redos.Report, error) {
	return defaultEngine.Analyze(source, opts)
}

func Optimize(source string, opts visit.OptimizerOptions) (*ast.Regex, []visit.Change, error) {
	return defaultEngine.Optimize(source, opts)
}

func Explain(source string) (string, error) { return defaultEngine.Explain(source) }

func Highlight(source string) ([]visit.Token, error) { return defaultEngine.Highlight(source) }

func Lint(source string, opts lint.Options) ([]lint.Issue, error) {
	return defaultEngine.Lint(source, opts)
}

func Transpile(source string, target transpile.Target) (*transpile.Result, error) {
	return defaultEngine.Transpile(source, target)
}

func Generate(source string, opts visit.SampleGeneratorOptions) (string, error) {
	return defaultEngine.Generate(source, opts)
}

func Literals(source string, cfg visit.ExtractorConfig) (visit.LiteralSet, error) {
	return defaultEngine.Literals(source, cfg)
}
