package problem_test

import (
	"testing"

	"github.com/nativeshell/nshell/internal/problem"
)

// TestPathString verifies slash-joined rendering, including the root path.
func TestPathString(t *testing.T) {
	tests := []struct {
		name string
		path problem.Path
		want string
	}{
		{"root", problem.Path{}, "/"},
		{"single", problem.Path{"main"}, "main"},
		{"nested", problem.Path{"main", "run", "0"}, "main/run/0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.String(); got != tt.want {
				t.Errorf("Path.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestPathChildDoesNotAliasParent documents that Child always allocates.
func TestPathChildDoesNotAliasParent(t *testing.T) {
	parent := problem.Path{"main"}
	a := parent.Child("a")
	b := parent.Child("b")
	if a.String() != "main/a" {
		t.Errorf("first child = %q, want %q", a.String(), "main/a")
	}
	if b.String() != "main/b" {
		t.Errorf("second child = %q, want %q", b.String(), "main/b")
	}
}

// TestPathEqual verifies element-wise comparison.
func TestPathEqual(t *testing.T) {
	if !(problem.Path{"a", "b"}).Equal(problem.Path{"a", "b"}) {
		t.Error("identical paths must be equal")
	}
	if (problem.Path{"a"}).Equal(problem.Path{"a", "b"}) {
		t.Error("paths of different length must not be equal")
	}
	if (problem.Path{"a", "b"}).Equal(problem.Path{"a", "c"}) {
		t.Error("paths with different elements must not be equal")
	}
}

// TestPathValidate verifies the structural path rules.
func TestPathValidate(t *testing.T) {
	tests := []struct {
		name     string
		path     problem.Path
		wantCode string
	}{
		{"valid", problem.Path{"main", "0"}, ""},
		{"empty", problem.Path{}, "PTH001"},
		{"empty element", problem.Path{"main", ""}, "PTH002"},
		{"slash in element", problem.Path{"a/b"}, "PTH003"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.path.Validate()
			if tt.wantCode == "" {
				if got != nil {
					t.Fatalf("Validate() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Validate() = nil, want a problem")
			}
			if got.Code != tt.wantCode {
				t.Errorf("Validate().Code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

// TestProblemString verifies the human-readable rendering.
func TestProblemString(t *testing.T) {
	p := problem.Validation("VAL002", problem.Path{"main", "text"}, "type mismatch")
	want := "[ERROR] main/text - type mismatch (VAL002)"
	if got := p.String(); got != want {
		t.Errorf("Problem.String() = %q, want %q", got, want)
	}
}

// TestCollectorValidity verifies that only error-level problems flip validity.
func TestCollectorValidity(t *testing.T) {
	var c problem.Collector
	if !c.Valid() {
		t.Error("zero collector must be valid")
	}

	c.Add(nil)
	c.Add(problem.New(problem.LevelWarning, "X001", problem.Path{"a"}, "just a warning"))
	if !c.Valid() {
		t.Error("warnings must not invalidate the collector")
	}

	c.Add(problem.Validation("X002", problem.Path{"a"}, "broken"))
	if c.Valid() {
		t.Error("error-level problems must invalidate the collector")
	}
	if got := len(c.Problems()); got != 2 {
		t.Errorf("len(Problems()) = %d, want 2 (nil entries skipped)", got)
	}
}

// TestHasErrors verifies the slice-level error check.
func TestHasErrors(t *testing.T) {
	warn := problem.New(problem.LevelWarning, "X001", problem.Path{"a"}, "w")
	if problem.HasErrors([]*problem.Problem{warn}) {
		t.Error("HasErrors must ignore warnings")
	}
	errp := problem.Validation("X002", problem.Path{"a"}, "e")
	if !problem.HasErrors([]*problem.Problem{warn, errp}) {
		t.Error("HasErrors must report error-level problems")
	}
}
