// Package assemble renders the final output files from the resolved code
// map: the generated program source, its module file, and a Makefile.
// Identical input produces byte-identical output.
package assemble

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/codegen"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/syntax"
)

// Meta carries the script identity stamped into the output.
type Meta struct {
	Name    string
	Version string
}

// Output is the set of generated files, keyed by file name in Files.
type Output struct {
	MainGo   string
	GoMod    string
	Makefile string
}

// Files returns the outputs by file name, for writing to disk.
func (o *Output) Files() map[string]string {
	return map[string]string{
		"main.go":  o.MainGo,
		"go.mod":   o.GoMod,
		"Makefile": o.Makefile,
	}
}

// Assemble renders the output files. Problems from template resolution are
// returned; callers decide whether to still write the (placeholder-bearing)
// text.
func Assemble(meta Meta, root *syntax.Node, refs *codegen.RefMap) (*Output, []*problem.Problem) {
	var problems problem.Collector

	resolve := func(source problem.Path, tmpl *addin.Template) string {
		text, probs := refs.Resolve(source, tmpl)
		problems.Add(probs...)
		return text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by nshell from %s v%s. DO NOT EDIT.\n\n", meta.Name, meta.Version)
	b.WriteString("package main\n")

	if imports := globalLines(refs, addin.PurposeDeclareImport); len(imports) > 0 {
		b.WriteString("\nimport (\n")
		for _, line := range imports {
			b.WriteString("\t" + line + "\n")
		}
		b.WriteString(")\n")
	}

	for _, purpose := range []addin.Purpose{addin.PurposeCreateParameterConst, addin.PurposeDefineField} {
		section := staticSection(refs, purpose, resolve)
		if section != "" {
			b.WriteString("\n" + section)
		}
	}

	b.WriteString("\nfunc main() {\n")
	for _, code := range refs.AllForPurpose(addin.PurposeInitializeField) {
		b.WriteString(resolve(code.Ref, code.Template))
	}
	execute, probs := refs.ResolveAt(root.Ref(), addin.PurposeExecute)
	problems.Add(probs...)
	b.WriteString(execute)
	for _, code := range refs.AllForPurpose(addin.PurposeFinalize) {
		b.WriteString(resolve(code.Ref, code.Template))
	}
	b.WriteString("}\n")

	out := &Output{
		MainGo:   b.String(),
		GoMod:    goMod(meta),
		Makefile: makefile(meta, globalLines(refs, addin.PurposeDeclareDependency)),
	}
	return out, problems.Problems()
}

// staticSection resolves every fragment of a package-level purpose in
// collection order.
func staticSection(refs *codegen.RefMap, purpose addin.Purpose, resolve func(problem.Path, *addin.Template) string) string {
	var b strings.Builder
	for _, code := range refs.AllForPurpose(purpose) {
		b.WriteString(resolve(code.Ref, code.Template))
	}
	return b.String()
}

// globalLines renders a globally-collected purpose: literal text only,
// de-duplicated by exact text and sorted. A forward reference inside a
// global template is a handler bug and panics.
func globalLines(refs *codegen.RefMap, purpose addin.Purpose) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, code := range refs.AllForPurpose(purpose) {
		var b strings.Builder
		for _, part := range code.Template.Parts {
			if part.Ref != nil {
				panic(fmt.Sprintf("assemble: %q template at %s holds a reference to %s", purpose, code.Ref, part.Ref))
			}
			b.WriteString(part.Text)
		}
		text := b.String()
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	sort.Strings(out)
	return out
}

func goMod(meta Meta) string {
	return fmt.Sprintf("module %s\n\ngo 1.25\n", modulePath(meta.Name))
}

func makefile(meta Meta, deps []string) string {
	var b strings.Builder
	bin := binaryName(meta.Name)
	b.WriteString(".PHONY: build deps\n\n")
	fmt.Fprintf(&b, "build: deps\n\tgo build -o %s .\n\n", bin)
	b.WriteString("deps:\n")
	if len(deps) == 0 {
		b.WriteString("\t@true\n")
		return b.String()
	}
	for _, dep := range deps {
		b.WriteString("\tgo get " + dep + "\n")
	}
	return b.String()
}

// modulePath derives a usable module path from the script name.
func modulePath(name string) string {
	return "nativeshell.localhost/" + binaryName(name)
}

// binaryName lowercases the script name and squeezes everything outside
// [a-z0-9] into single dashes.
func binaryName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "script"
	}
	return out
}
