// Package corelib is the built-in add-in: the error and os-file field
// types, the string-list and command-list collections, the echo and run
// commands, and the repeat macro.
package corelib

import (
	"strings"

	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/syntax"
)

// Registered type ids.
const (
	ErrorTypeID      = "core.error"
	OSFileTypeID     = "core.os-file"
	StringListTypeID = "core.string-list"
	RunListTypeID    = "core.run-list"
	EchoTypeID       = "core.echo"
	RunTypeID        = "core.run"
	RepeatMetaID     = "core.repeat"
)

// Problem codes raised by the core handlers.
const (
	CodeEchoSink    = "COR001"
	CodeRepeatCount = "COR002"
	CodeRepeatShape = "COR003"
)

// IncludeName is what a script's requires list uses to pull this add-in in.
const IncludeName = "core"

// The package-wide type singletons. Slot matching is pointer identity, so
// every handler and parameter must share these exact descriptors.
var (
	errorType = &nodetype.ConstructType{
		ID:   ErrorTypeID,
		Name: "error value",
		Doc:  "Holds the error outcome of a command.",
	}
	osFileType = &nodetype.ConstructType{
		ID:   OSFileTypeID,
		Name: "open file",
		Doc:  "Holds an operating-system file handle.",
	}
	stringListType = &nodetype.ListType{
		ID:    StringListTypeID,
		Name:  "list of strings",
		Items: &nodetype.Parameter{Key: "item", Title: "text line", Type: nodetype.StringType, Required: true},
		Min:   1,
	}
	runListType = &nodetype.ListType{
		ID:    RunListTypeID,
		Name:  "list of commands",
		Items: &nodetype.Parameter{Key: "command", Title: "command", Required: true, AnyConstruct: true},
		Min:   1,
	}
	echoType = newEchoType()
	runType  = newRunType()
)

// New builds the core add-in bundle.
func New() *addin.AddIn {
	return &addin.AddIn{
		Name:        "NativeShell core library",
		Doc:         "Field types and commands every script can rely on.",
		IncludeName: IncludeName,
		Types: []addin.TypeHandler{
			&errorHandler{},
			&osFileHandler{},
			&stringListHandler{},
			&runListHandler{},
			&echoHandler{},
			&runHandler{},
		},
		Metas: []addin.MetaHandler{
			&repeatHandler{},
		},
	}
}

// varName derives the generated-code identifier for a node reference.
// Reference paths are unique per tree, so the derived names are too.
func varName(ref problem.Path) string {
	var b strings.Builder
	b.WriteString("v")
	for _, elem := range ref {
		b.WriteByte('_')
		for _, r := range elem {
			if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				b.WriteRune(r)
			} else {
				b.WriteByte('_')
			}
		}
	}
	return b.String()
}

// literalBool reads a boolean literal value, defaulting to false when the
// entry is absent or not a boolean.
func literalBool(v syntax.Value) bool {
	lit, ok := v.(syntax.Literal)
	if !ok {
		return false
	}
	b, ok := lit.Val.(bool)
	return ok && b
}

// literalString reads a string literal value.
func literalString(v syntax.Value) (string, bool) {
	lit, ok := v.(syntax.Literal)
	if !ok {
		return "", false
	}
	s, ok := lit.Val.(string)
	return s, ok
}

// hasErrField reports whether a node's construct type declares an "err"
// field, which is what the run command chains error propagation through.
func hasErrField(n *syntax.Node) bool {
	ct, ok := n.Type().(*nodetype.ConstructType)
	if !ok {
		return false
	}
	for _, f := range ct.Fields {
		if f.Key == "err" {
			return true
		}
	}
	return false
}
