package pipeline_test

import (
	"strings"
	"testing"

	"github.com/nativeshell/nshell/internal/astgen"
	"github.com/nativeshell/nshell/internal/corelib"
	"github.com/nativeshell/nshell/internal/pipeline"
)

const helloScript = `
name: hello
version: "1.0"
main:
  as: core.echo
  with:
    text:
      as-list: string
      items:
        - "Hello, world!"
    stdout:
      as: boolean
      value: true
`

// TestRunHelloWorld verifies the full pipeline on a minimal script.
func TestRunHelloWorld(t *testing.T) {
	result, err := pipeline.Run("hello.yaml", []byte(helloScript), pipeline.Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Valid() {
		t.Fatalf("problems = %v, want none", result.Problems)
	}
	if result.Output == nil {
		t.Fatal("Output = nil, want generated files")
	}
	if result.Name != "hello" || result.Version != "1.0" {
		t.Errorf("identity = %s v%s, want hello v1.0", result.Name, result.Version)
	}
	if result.Rounds != 0 {
		t.Errorf("Rounds = %d, want 0 for a macro-free script", result.Rounds)
	}

	main := result.Output.MainGo
	for _, want := range []string{
		"package main",
		"\t\"fmt\"",
		"\t\"os\"",
		`var v_main_text = []string{"Hello, world!"}`,
		"var v_main_err error",
		"var v_main_fileno *os.File",
		"for _, line := range v_main_text {",
		"_, v_main_err = fmt.Println(line)",
		"func main() {",
	} {
		if !strings.Contains(main, want) {
			t.Errorf("main.go is missing %q:\n%s", want, main)
		}
	}
	if strings.Contains(main, "<no-template") || strings.Contains(main, "<cycle") {
		t.Errorf("main.go contains unresolved placeholders:\n%s", main)
	}
}

// TestRunIsDeterministic verifies byte-identical output across runs.
func TestRunIsDeterministic(t *testing.T) {
	first, err := pipeline.Run("hello.yaml", []byte(helloScript), pipeline.Options{})
	if err != nil {
		t.Fatalf("first Run() error = %v", err)
	}
	second, err := pipeline.Run("hello.yaml", []byte(helloScript), pipeline.Options{})
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if first.Output == nil || second.Output == nil {
		t.Fatal("both runs must produce output")
	}
	if first.Output.MainGo != second.Output.MainGo {
		t.Error("main.go must be byte-identical across runs")
	}
	if first.Output.GoMod != second.Output.GoMod {
		t.Error("go.mod must be byte-identical across runs")
	}
}

const repeatScript = `
name: repeater
main:
  as: core.repeat
  with:
    count:
      as: integer
      value: 3
    of:
      as: core.echo
      with:
        text:
          as-list: string
          items: ["again"]
        stdout:
          as: boolean
          value: true
`

// TestRunRepeatMacro verifies macro expansion end to end: the repeat node
// becomes a run whose three clones each echo once.
func TestRunRepeatMacro(t *testing.T) {
	result, err := pipeline.Run("repeater.yaml", []byte(repeatScript), pipeline.Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Valid() {
		t.Fatalf("problems = %v, want none", result.Problems)
	}
	if result.Rounds != 1 {
		t.Errorf("Rounds = %d, want 1", result.Rounds)
	}
	main := result.Output.MainGo
	for i := 0; i < 3; i++ {
		want := "v_main_run_" + string(rune('0'+i)) + "_text"
		if !strings.Contains(main, want) {
			t.Errorf("main.go is missing the clone constant %q:\n%s", want, main)
		}
	}
}

// TestRunNestedRepeat verifies that a repeat of a repeat settles: the
// post-order sweep expands inner macros before their enclosing use, so
// nesting costs no extra rounds.
func TestRunNestedRepeat(t *testing.T) {
	src := `
main:
  as: core.repeat
  with:
    count:
      as: integer
      value: 2
    of:
      as: core.repeat
      with:
        count:
          as: integer
          value: 2
        of:
          as: core.echo
          with:
            text:
              as-list: string
              items: ["deep"]
            stdout:
              as: boolean
              value: true
`
	result, err := pipeline.Run("nested.yaml", []byte(src), pipeline.Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.Valid() {
		t.Fatalf("problems = %v, want none", result.Problems)
	}
	if result.Rounds != 1 {
		t.Errorf("Rounds = %d, want 1", result.Rounds)
	}
	// Two outer clones of two inner clones: four echo constants.
	main := result.Output.MainGo
	for _, want := range []string{
		"v_main_run_0_run_0_text",
		"v_main_run_0_run_1_text",
		"v_main_run_1_run_0_text",
		"v_main_run_1_run_1_text",
	} {
		if !strings.Contains(main, want) {
			t.Errorf("main.go is missing the clone constant %q:\n%s", want, main)
		}
	}
}

// TestRunProblemsSuppressOutput verifies script mistakes come back as
// problems with no generated files.
func TestRunProblemsSuppressOutput(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantCode string
	}{
		{
			"missing main",
			"other:\n  as: core.run\n  with:\n    run:\n      as-list: core.echo\n      items: []\n",
			astgen.CodeMainMissing,
		},
		{
			"unknown type",
			"main:\n  as: core.nonsense\n  with: {}\n",
			astgen.CodeUnknownType,
		},
		{
			"unknown add-in",
			"requires: [sorcery]\nmain:\n  as: core.echo\n  with:\n    text:\n      as-list: string\n      items: [hi]\n    stdout:\n      as: boolean\n      value: true\n",
			pipeline.CodeUnknownAddIn,
		},
		{
			"type mismatch",
			"main:\n  as: core.echo\n  with:\n    text:\n      as-list: string\n      items: [hi]\n    stdout:\n      as: string\n      value: yes\n",
			astgen.CodeTypeMismatch,
		},
		{
			"empty text list",
			"main:\n  as: core.echo\n  with:\n    text:\n      as-list: string\n      items: []\n    stdout:\n      as: boolean\n      value: true\n",
			astgen.CodeListTooShort,
		},
		{
			"two destinations",
			"main:\n  as: core.echo\n  with:\n    text:\n      as-list: string\n      items: [hi]\n    stdout:\n      as: boolean\n      value: true\n    stderr:\n      as: boolean\n      value: true\n",
			corelib.CodeEchoSink,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := pipeline.Run("t.yaml", []byte(tt.src), pipeline.Options{})
			if err != nil {
				t.Fatalf("Run() error = %v, want problems instead", err)
			}
			if result.Output != nil {
				t.Error("Output must be nil when problems were found")
			}
			found := false
			for _, p := range result.Problems {
				if p.Code == tt.wantCode {
					found = true
				}
			}
			if !found {
				t.Errorf("problems = %v, want one with code %q", result.Problems, tt.wantCode)
			}
		})
	}
}
