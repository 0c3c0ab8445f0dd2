// Package problem defines the single diagnostic kind shared by every
// pipeline pass, plus the collector the passes accumulate into.
package problem

import (
	"fmt"
	"strings"
)

// Level classifies the impact of a problem.
type Level string

const (
	// LevelError indicates a condition that blocks output generation.
	LevelError Level = "error"
	// LevelWarning indicates a condition that should be reviewed.
	LevelWarning Level = "warning"
	// LevelInfo indicates an informative message.
	LevelInfo Level = "info"
)

// Path locates a problem within the script: an ordered sequence of keys
// and list indexes from the script root down to the offending node.
type Path []string

// String renders the path as a slash-joined reference.
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return strings.Join(p, "/")
}

// Child returns a new path extended with one more element.
// The receiver is never aliased; a fresh slice is always allocated.
func (p Path) Child(elem string) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, p...)
	return append(out, elem)
}

// Equal reports whether two paths name the same location.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Validate checks the path against the structural requirements: at least
// one element, every element non-empty and free of "/".
func (p Path) Validate() *Problem {
	if len(p) == 0 {
		return New(LevelError, "PTH001", p, "source paths must have at least one element")
	}
	for _, elem := range p {
		if elem == "" {
			return New(LevelError, "PTH002", p, "path elements must contain text")
		}
		if strings.Contains(elem, "/") {
			return New(LevelError, "PTH003", p, "path element %q must not contain '/'", elem)
		}
	}
	return nil
}

// Problem is a structured diagnostic record attached to a script location.
type Problem struct {
	Level   Level  `json:"level"`
	Code    string `json:"code"` // stable identifier, e.g. "TYP002"
	Source  Path   `json:"source"`
	Message string `json:"message"`
}

// New builds a problem with a formatted message.
func New(level Level, code string, source Path, format string, args ...any) *Problem {
	return &Problem{
		Level:   level,
		Code:    code,
		Source:  source,
		Message: fmt.Sprintf(format, args...),
	}
}

// Validation builds an error-level problem. Most pass diagnostics are these.
func Validation(code string, source Path, format string, args ...any) *Problem {
	return New(LevelError, code, source, format, args...)
}

// IsError reports whether the problem is error-level.
func (p *Problem) IsError() bool { return p.Level == LevelError }

// String renders the problem as "[LEVEL] path - message (CODE)".
func (p *Problem) String() string {
	return fmt.Sprintf("[%s] %s - %s (%s)", strings.ToUpper(string(p.Level)), p.Source, p.Message, p.Code)
}

// Collector accumulates problems across a pass. The zero value is ready
// to use. It tracks validity: adding any error-level problem marks the
// collector (and whatever it guards) invalid.
type Collector struct {
	problems []*Problem
	invalid  bool
}

// Add appends problems, updating validity. Nil entries are skipped.
func (c *Collector) Add(problems ...*Problem) {
	for _, p := range problems {
		if p == nil {
			continue
		}
		c.problems = append(c.problems, p)
		if p.IsError() {
			c.invalid = true
		}
	}
}

// Valid reports whether no error-level problem has been collected.
func (c *Collector) Valid() bool { return !c.invalid }

// Problems returns the collected problems in insertion order.
func (c *Collector) Problems() []*Problem { return c.problems }

// HasErrors reports whether any collected problem is error-level.
func HasErrors(problems []*Problem) bool {
	for _, p := range problems {
		if p.IsError() {
			return true
		}
	}
	return false
}
