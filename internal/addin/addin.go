// Package addin defines the contract between the pipeline core and
// pluggable type bundles: type handlers, macro handlers, and the code
// fragments they contribute.
package addin

import (
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/parsetree"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/syntax"
)

// Purpose tags a code fragment's role in the assembled output.
type Purpose string

const (
	// PurposeGetFieldValue reads the value in a field or a static value.
	PurposeGetFieldValue Purpose = "get-field-value"
	// PurposeDefineField declares the storage for a field or static value.
	PurposeDefineField Purpose = "define-field"
	// PurposeInitializeField sets the initial value of a field.
	PurposeInitializeField Purpose = "initialize-field"
	// PurposeCreateParameterConst creates a constant holding a parameter value.
	PurposeCreateParameterConst Purpose = "create-parameter-const"
	// PurposeDeclareImport contributes an import line. Collected globally
	// and de-duplicated by exact text; templates must be reference-free.
	PurposeDeclareImport Purpose = "declare-import"
	// PurposeDeclareDependency contributes a module dependency line.
	// Collected globally and de-duplicated by exact text; templates must
	// be reference-free.
	PurposeDeclareDependency Purpose = "declare-dependency"
	// PurposeExecute is the code block that runs the node.
	PurposeExecute Purpose = "execute"
	// PurposeFinalize closes out values opened by the execute block.
	PurposeFinalize Purpose = "finalize"
)

// Purposes is the closed enumeration, in assembly order.
var Purposes = []Purpose{
	PurposeGetFieldValue,
	PurposeDefineField,
	PurposeInitializeField,
	PurposeCreateParameterConst,
	PurposeDeclareImport,
	PurposeDeclareDependency,
	PurposeExecute,
	PurposeFinalize,
}

// Global reports whether fragments with this purpose are collected across
// the whole program rather than scoped to one node.
func (p Purpose) Global() bool {
	return p == PurposeDeclareImport || p == PurposeDeclareDependency
}

// CodeRef is a forward reference inside a template: the target node
// reference plus the purpose to expand there.
type CodeRef struct {
	Target  problem.Path
	Purpose Purpose
}

// String renders the reference as "path/purpose" for diagnostics.
func (r CodeRef) String() string {
	return r.Target.String() + "/" + string(r.Purpose)
}

// Part is one template segment: literal text, or a forward reference when
// Ref is non-nil.
type Part struct {
	Text string
	Ref  *CodeRef
}

// Text creates a literal template part.
func Text(s string) Part { return Part{Text: s} }

// Reference creates a forward-reference template part.
func Reference(target problem.Path, purpose Purpose) Part {
	return Part{Ref: &CodeRef{Target: target, Purpose: purpose}}
}

// Template is ordered literal text interleaved with forward references.
type Template struct {
	Parts []Part
}

// NewTemplate builds a template from ordered parts.
func NewTemplate(parts ...Part) *Template { return &Template{Parts: parts} }

// GeneratedCode is one purpose-tagged fragment keyed by a node reference.
type GeneratedCode struct {
	Ref      problem.Path
	Purpose  Purpose
	Template *Template
}

// TypeHandler supplies a concrete type plus its code-generation rules.
type TypeHandler interface {
	// Type is the descriptor this handler registers.
	Type() nodetype.Type
	// SharedCode is the fixed fragment set contributed once per program
	// when this type survives pruning, keyed by the handler's type path.
	SharedCode() []*GeneratedCode
	// InstanceCode builds the fragments one occurring node needs.
	// Returned problems are attached to the pipeline's diagnostics;
	// error-level problems suppress the fragments.
	InstanceCode(node *syntax.Node) ([]*GeneratedCode, []*problem.Problem)
}

// MetaHandler supplies a macro type and its rewrite rule.
type MetaHandler interface {
	// Meta is the descriptor this handler registers.
	Meta() *nodetype.MetaType
	// Translate rewrites a macro node into a replacement subtree. The
	// returned subtree must be parentless. Error-level problems mark the
	// node failed; it is not retried within the same expansion round.
	Translate(node parsetree.Node) (parsetree.Node, []*problem.Problem)
}

// AddIn is a pluggable bundle registering concrete and macro types.
type AddIn struct {
	// Name is the add-in's formal name, used in duplicate-id errors.
	Name string
	// Doc is a human-readable description.
	Doc string
	// IncludeName is the name a script's requires list uses.
	IncludeName string

	Types []TypeHandler
	Metas []MetaHandler
}
