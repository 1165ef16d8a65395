// Package lint is the rule catalog (component I): it wraps Validator's
// structural invariant violations as error-severity issues and adds its
// own style/perf catalog of known suboptimal substrings, scanned against
// the recompiled pattern text in one pass via the same multi-pattern
// automaton the teacher engine uses at runtime for literal prefiltering.
package lint

import (
	"fmt"

	"github.com/coregx/ahocorasick"
	"github.com/google/uuid"

	"github.com/regexray/regexray/ast"
	"github.com/regexray/regexray/visit"
)

// Severity classifies a lint Issue the way spec's Lint JSON does.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityStyle   Severity = "style"
	SeverityPerf    Severity = "perf"
)

// Issue is one lint finding, shaped to match the facade's Lint JSON.
//
// AnalysisID correlates this issue back to the facade call that produced
// it (stamped by the facade, left zero when Lint is called directly).
type Issue struct {
	ID               string    `json:"id"`
	Severity         Severity  `json:"severity"`
	Message          string    `json:"message"`
	Hint             string    `json:"hint,omitempty"`
	SuggestedRewrite string    `json:"suggested_rewrite,omitempty"`
	File             string    `json:"file,omitempty"`
	Line             int       `json:"line,omitempty"`
	Column           int       `json:"column,omitempty"`
	Pattern          string    `json:"pattern,omitempty"`
	AnalysisID       uuid.UUID `json:"analysis_id,omitempty"`
}

// rule is one catalog entry: a literal trigger substring scanned for in
// the recompiled pattern text, plus the issue to emit when it's found.
type rule struct {
	id               string
	severity         Severity
	trigger          string
	message          string
	hint             string
	suggestedRewrite string
}

var catalog = []rule{
	{
		id:               "regex.lint.style.emptynoncapturing",
		severity:         SeverityStyle,
		trigger:          "(?:)",
		message:          "empty non-capturing group matches nothing and can be removed",
		hint:             "delete the (?:) group",
	},
	{
		id:               "regex.lint.perf.adjacentdotstar",
		severity:         SeverityPerf,
		trigger:          ".*.*",
		message:          "adjacent .* constructs cause redundant backtracking",
		hint:             "combine into a single .* or anchor the intent more precisely",
	},
	{
		id:               "regex.lint.style.repeateddigitescape",
		severity:         SeverityStyle,
		trigger:          `\d\d\d`,
		message:          "three consecutive \\d escapes can be written as a counted quantifier",
		hint:             "rewrite as \\d{3}",
		suggestedRewrite: `\d{3}`,
	},
	{
		id:               "regex.lint.style.repeatedwordescape",
		severity:         SeverityStyle,
		trigger:          `\w\w\w`,
		message:          "three consecutive \\w escapes can be written as a counted quantifier",
		hint:             "rewrite as \\w{3}",
		suggestedRewrite: `\w{3}`,
	},
	{
		id:               "regex.lint.style.duplicateinlinecaseless",
		severity:         SeverityStyle,
		trigger:          "(?i)(?i)",
		message:          "duplicate adjacent (?i) inline flag groups",
		hint:             "keep only one (?i)",
	},
	{
		id:               "regex.lint.perf.unanchoreddotstarprefix",
		severity:         SeverityPerf,
		trigger:          "^.*",
		message:          "a leading ^.* rarely changes which match is found and costs a full scan",
		hint:             "most engines match unanchored by default; consider dropping ^.* ",
	},
}

var catalogAutomaton *ahocorasick.Automaton

func init() {
	builder := ahocorasick.NewBuilder()
	for _, r := range catalog {
		builder.AddPattern([]byte(r.trigger))
	}
	auto, err := builder.Build()
	if err != nil {
		// The catalog's own literal triggers are fixed at compile time;
		// a build failure here would mean the catalog itself is broken.
		panic(fmt.Sprintf("lint: failed to build catalog automaton: %v", err))
	}
	catalogAutomaton = auto
}

// Options configures one Lint call.
type Options struct {
	// File/Line let baseline/ignore-comment suppression and the facade's
	// Lint JSON attach a source location to each issue; an issue's Column
	// comes from the offending node's position, not from Options.
	File string
	Line int
}

// Lint runs the Validator's structural checks (as error-severity issues)
// plus the style/perf catalog scan over re's recompiled text.
func Lint(re *ast.Regex, captures []ast.CaptureInfo, opts Options) ([]Issue, error) {
	var issues []Issue

	for _, v := range visit.Validate(re, captures) {
		issues = append(issues, Issue{
			ID:       v.Code,
			Severity: SeverityError,
			Message:  v.Message,
			File:     opts.File,
			Line:     opts.Line,
			Column:   int(v.Pos.Start),
		})
	}

	pattern, err := visit.Compile(re)
	if err != nil {
		return issues, err
	}
	issues = append(issues, scanCatalog(pattern, opts)...)
	return issues, nil
}

func scanCatalog(pattern string, opts Options) []Issue {
	var out []Issue
	seen := map[string]bool{}
	haystack := []byte(pattern)
	for pos := 0; pos < len(haystack); {
		m := catalogAutomaton.Find(haystack, pos)
		if m == nil {
			break
		}
		matched := pattern[m.Start:m.End]
		for _, r := range catalog {
			if r.trigger != matched || seen[r.id] {
				continue
			}
			seen[r.id] = true
			out = append(out, Issue{
				ID:               r.id,
				Severity:         r.severity,
				Message:          r.message,
				Hint:             r.hint,
				SuggestedRewrite: r.suggestedRewrite,
				File:             opts.File,
				Line:             opts.Line,
				Column:           m.Start,
				Pattern:          matched,
			})
		}
		pos = m.Start + 1
	}
	return out
}

// BaselineEntry is one suppressed issue from a persisted baseline file:
// matching is tuple-equality on (File, Line, Type, Message).
type BaselineEntry struct {
	File    string
	Line    int
	Message string
	Type    string
	Pattern string
}

func baselineKey(file string, line int, typ, message string) string {
	return fmt.Sprintf("%s\x00%d\x00%s\x00%s", file, line, typ, message)
}

// FilterBaseline drops every issue whose (File, Line, Severity, Message)
// tuple matches an entry in baseline.
func FilterBaseline(issues []Issue, baseline []BaselineEntry) []Issue {
	if len(baseline) == 0 {
		return issues
	}
	known := make(map[string]bool, len(baseline))
	for _, b := range baseline {
		known[baselineKey(b.File, b.Line, b.Type, b.Message)] = true
	}
	out := make([]Issue, 0, len(issues))
	for _, iss := range issues {
		if known[baselineKey(iss.File, iss.Line, string(iss.Severity), iss.Message)] {
			continue
		}
		out = append(out, iss)
	}
	return out
}

// ignoreComment is the line-level suppression directive (spec §6).
const ignoreComment = "@regex-lint-ignore"

// FilterIgnoreComments drops every issue whose line in sourceLines (1-
// based, matching Issue.Line) has sourceLines[Line-2] (the immediately
// preceding source line) containing the ignore directive.
func FilterIgnoreComments(issues []Issue, sourceLines []string) []Issue {
	out := make([]Issue, 0, len(issues))
	for _, iss := range issues {
		precedingIdx := iss.Line - 2
		if precedingIdx >= 0 && precedingIdx < len(sourceLines) &&
			containsIgnoreDirective(sourceLines[precedingIdx]) {
			continue
		}
		out = append(out, iss)
	}
	return out
}

func containsIgnoreDirective(line string) bool {
	for i := 0; i+len(ignoreComment) <= len(line); i++ {
		if line[i:i+len(ignoreComment)] == ignoreComment {
			return true
		}
	}
	return false
}
