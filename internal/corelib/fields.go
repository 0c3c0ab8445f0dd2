package corelib

import (
	"strconv"
	"strings"

	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/syntax"
)

// errorHandler generates the storage and read accessor for error fields.
type errorHandler struct{}

func (h *errorHandler) Type() nodetype.Type { return errorType }

func (h *errorHandler) SharedCode() []*addin.GeneratedCode { return nil }

func (h *errorHandler) InstanceCode(node *syntax.Node) ([]*addin.GeneratedCode, []*problem.Problem) {
	name := varName(node.Ref())
	return []*addin.GeneratedCode{
		{
			Ref:      node.Ref(),
			Purpose:  addin.PurposeDefineField,
			Template: addin.NewTemplate(addin.Text("var " + name + " error\n")),
		},
		{
			Ref:      node.Ref(),
			Purpose:  addin.PurposeGetFieldValue,
			Template: addin.NewTemplate(addin.Text(name)),
		},
	}, nil
}

// osFileHandler generates the storage and read accessor for file-handle
// fields. The storage type needs the os package, contributed once per
// program as shared code.
type osFileHandler struct{}

func (h *osFileHandler) Type() nodetype.Type { return osFileType }

func (h *osFileHandler) SharedCode() []*addin.GeneratedCode {
	return []*addin.GeneratedCode{
		{
			Ref:      problem.Path{OSFileTypeID},
			Purpose:  addin.PurposeDeclareImport,
			Template: addin.NewTemplate(addin.Text(`"os"`)),
		},
	}
}

func (h *osFileHandler) InstanceCode(node *syntax.Node) ([]*addin.GeneratedCode, []*problem.Problem) {
	name := varName(node.Ref())
	return []*addin.GeneratedCode{
		{
			Ref:      node.Ref(),
			Purpose:  addin.PurposeDefineField,
			Template: addin.NewTemplate(addin.Text("var " + name + " *os.File\n")),
		},
		{
			Ref:      node.Ref(),
			Purpose:  addin.PurposeGetFieldValue,
			Template: addin.NewTemplate(addin.Text(name)),
		},
	}, nil
}

// stringListHandler materializes a string list as a package-level slice
// constant so command fragments can range over it by reference.
type stringListHandler struct{}

func (h *stringListHandler) Type() nodetype.Type { return stringListType }

func (h *stringListHandler) SharedCode() []*addin.GeneratedCode { return nil }

func (h *stringListHandler) InstanceCode(node *syntax.Node) ([]*addin.GeneratedCode, []*problem.Problem) {
	name := varName(node.Ref())

	var b strings.Builder
	b.WriteString("var " + name + " = []string{")
	for i, item := range node.OrderedItems() {
		if i > 0 {
			b.WriteString(", ")
		}
		if s, ok := literalString(item); ok {
			b.WriteString(strconv.Quote(s))
		}
	}
	b.WriteString("}\n")

	return []*addin.GeneratedCode{
		{
			Ref:      node.Ref(),
			Purpose:  addin.PurposeCreateParameterConst,
			Template: addin.NewTemplate(addin.Text(b.String())),
		},
		{
			Ref:      node.Ref(),
			Purpose:  addin.PurposeGetFieldValue,
			Template: addin.NewTemplate(addin.Text(name)),
		},
	}, nil
}

// runListHandler contributes no code of its own; the owning run command
// references its items' execute fragments directly.
type runListHandler struct{}

func (h *runListHandler) Type() nodetype.Type { return runListType }

func (h *runListHandler) SharedCode() []*addin.GeneratedCode { return nil }

func (h *runListHandler) InstanceCode(node *syntax.Node) ([]*addin.GeneratedCode, []*problem.Problem) {
	return nil, nil
}
