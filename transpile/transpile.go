// Package transpile holds the pieces shared by every transpile target
// (javascript, python): the result/diagnostic shapes and the mutable
// context a target's compile visitor accumulates warnings and notes
// into as it walks the AST.
package transpile

import (
	"fmt"

	"github.com/google/uuid"
)

// Target names a transpile destination dialect.
type Target string

const (
	JavaScript Target = "javascript"
	Python     Target = "python"
)

// Exception is raised when a construct has no equivalent in Target. It
// carries the source position and the original pattern so a caller can
// render a caret snippet, mirroring the parser's own error shape.
type Exception struct {
	Target  Target
	Pattern string
	Pos     uint32
	Message string
}

func (e *Exception) Error() string {
	return fmt.Sprintf("transpile to %s failed at %d in %q: %s", e.Target, e.Pos, e.Pattern, e.Message)
}

// Context accumulates non-fatal findings while a target's compile
// visitor walks the AST. Warnings note a degraded-but-successful
// conversion (e.g. a flag added to preserve semantics); Notes record
// informational asides that aren't conversion problems at all.
type Context struct {
	Warnings []string
	Notes    []string
}

func (c *Context) Warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func (c *Context) Note(format string, args ...any) {
	c.Notes = append(c.Notes, fmt.Sprintf(format, args...))
}

// Result is the external Transpile result shape: {target, pattern,
// flags, literal, warnings[], notes[]}. AnalysisID correlates this
// result back to the facade call that produced it (stamped by the
// facade, left zero when Transpile is called directly).
type Result struct {
	Target     Target    `json:"target"`
	Pattern    string    `json:"pattern"`
	Flags      string    `json:"flags"`
	Literal    string    `json:"literal"`
	Warnings   []string  `json:"warnings"`
	Notes      []string  `json:"notes"`
	AnalysisID uuid.UUID `json:"analysis_id,omitempty"`
}
