package corelib

import (
	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/syntax"
)

func newRunType() *nodetype.ConstructType {
	return &nodetype.ConstructType{
		ID:   RunTypeID,
		Name: "run",
		Doc:  "Runs a list of commands in order, with optional error handling.",
		Parameters: []*nodetype.Parameter{
			{Key: "run", Title: "commands to run", Type: runListType, Required: true},
			{Key: "require all success", Title: "skip remaining commands after a failure", Type: nodetype.BooleanType},
			{Key: "on error", Title: "command run when any command failed", AnyConstruct: true},
		},
		Fields: []*nodetype.Field{
			{Key: "err", Title: "first command error", Type: errorType},
		},
	}
}

// runHandler chains the execute fragments of the commands in its run list,
// propagating the first child error into the run's own err field.
type runHandler struct{}

func (h *runHandler) Type() nodetype.Type { return runType }

func (h *runHandler) SharedCode() []*addin.GeneratedCode { return nil }

func (h *runHandler) InstanceCode(node *syntax.Node) ([]*addin.GeneratedCode, []*problem.Problem) {
	selfErr := addin.Reference(node.Ref().Child("err"), addin.PurposeGetFieldValue)
	requireAll := literalBool(node.Value("require all success"))

	list, _ := node.Value("run").(*syntax.Node)
	var parts []addin.Part
	if list != nil {
		for i, item := range list.OrderedItems() {
			cmd, ok := item.(*syntax.Node)
			if !ok {
				continue
			}
			exec := addin.Reference(cmd.Ref(), addin.PurposeExecute)
			if requireAll && i > 0 {
				parts = append(parts,
					addin.Text("\tif "), selfErr, addin.Text(" == nil {\n"),
					exec,
					addin.Text("\t}\n"),
				)
			} else {
				parts = append(parts, exec)
			}
			if hasErrField(cmd) {
				cmdErr := addin.Reference(cmd.Ref().Child("err"), addin.PurposeGetFieldValue)
				parts = append(parts,
					addin.Text("\tif "), cmdErr, addin.Text(" != nil && "), selfErr, addin.Text(" == nil {\n"),
					addin.Text("\t\t"), selfErr, addin.Text(" = "), cmdErr, addin.Text("\n"),
					addin.Text("\t}\n"),
				)
			}
		}
	}

	if onError, ok := node.Value("on error").(*syntax.Node); ok {
		parts = append(parts,
			addin.Text("\tif "), selfErr, addin.Text(" != nil {\n"),
			addin.Reference(onError.Ref(), addin.PurposeExecute),
			addin.Text("\t}\n"),
		)
	}

	return []*addin.GeneratedCode{
		{
			Ref:      node.Ref(),
			Purpose:  addin.PurposeExecute,
			Template: addin.NewTemplate(parts...),
		},
	}, nil
}
