package corelib

import (
	"strconv"

	"github.com/nativeshell/nshell/internal/addin"
	"github.com/nativeshell/nshell/internal/nodetype"
	"github.com/nativeshell/nshell/internal/problem"
	"github.com/nativeshell/nshell/internal/syntax"
)

func newEchoType() *nodetype.ConstructType {
	return &nodetype.ConstructType{
		ID:   EchoTypeID,
		Name: "echo",
		Doc:  "Writes text lines to the standard streams or to a file.",
		Parameters: []*nodetype.Parameter{
			{Key: "text", Title: "text lines", Type: stringListType, Required: true},
			{Key: "stdout", Title: "write to standard output", Type: nodetype.BooleanType},
			{Key: "stderr", Title: "write to standard error", Type: nodetype.BooleanType},
			{Key: "write to", Title: "overwrite file at path", Type: nodetype.StringType},
			{Key: "append to", Title: "append to file at path", Type: nodetype.StringType},
		},
		Fields: []*nodetype.Field{
			{Key: "fileno", Title: "open output file", Type: osFileType},
			{Key: "err", Title: "write error", Type: errorType, UsableBeforeRun: false},
		},
	}
}

// echoHandler generates the write loop for one echo command. The four
// output destinations are mutually exclusive and exactly one is required.
type echoHandler struct{}

func (h *echoHandler) Type() nodetype.Type { return echoType }

func (h *echoHandler) SharedCode() []*addin.GeneratedCode {
	return []*addin.GeneratedCode{
		{
			Ref:      problem.Path{EchoTypeID},
			Purpose:  addin.PurposeDeclareImport,
			Template: addin.NewTemplate(addin.Text(`"fmt"`)),
		},
	}
}

func (h *echoHandler) InstanceCode(node *syntax.Node) ([]*addin.GeneratedCode, []*problem.Problem) {
	textRef := addin.Reference(node.Ref().Child("text"), addin.PurposeGetFieldValue)
	errRef := addin.Reference(node.Ref().Child("err"), addin.PurposeGetFieldValue)
	fileRef := addin.Reference(node.Ref().Child("fileno"), addin.PurposeGetFieldValue)

	toStdout := literalBool(node.Value("stdout"))
	toStderr := literalBool(node.Value("stderr"))
	writePath, hasWrite := literalString(node.Value("write to"))
	appendPath, hasAppend := literalString(node.Value("append to"))

	chosen := 0
	for _, on := range []bool{toStdout, toStderr, hasWrite, hasAppend} {
		if on {
			chosen++
		}
	}
	if chosen != 1 {
		return nil, []*problem.Problem{problem.Validation(
			CodeEchoSink, node.Source(),
			"exactly one output destination must be chosen, got %d", chosen,
		)}
	}

	codes := []*addin.GeneratedCode{
		{
			Ref:      node.Ref(),
			Purpose:  addin.PurposeDeclareImport,
			Template: addin.NewTemplate(addin.Text(`"fmt"`)),
		},
	}

	var parts []addin.Part
	switch {
	case toStdout:
		parts = []addin.Part{
			addin.Text("\tfor _, line := range "), textRef, addin.Text(" {\n"),
			addin.Text("\t\t_, "), errRef, addin.Text(" = fmt.Println(line)\n"),
			addin.Text("\t}\n"),
		}
	case toStderr:
		codes = append(codes, importOS(node.Ref()))
		parts = []addin.Part{
			addin.Text("\tfor _, line := range "), textRef, addin.Text(" {\n"),
			addin.Text("\t\t_, "), errRef, addin.Text(" = fmt.Fprintln(os.Stderr, line)\n"),
			addin.Text("\t}\n"),
		}
	default:
		open := "os.Create(" + strconv.Quote(writePath) + ")"
		if hasAppend {
			open = "os.OpenFile(" + strconv.Quote(appendPath) + ", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)"
		}
		codes = append(codes, importOS(node.Ref()))
		parts = []addin.Part{
			addin.Text("\t"), fileRef, addin.Text(", "), errRef, addin.Text(" = " + open + "\n"),
			addin.Text("\tif "), errRef, addin.Text(" == nil {\n"),
			addin.Text("\t\tfor _, line := range "), textRef, addin.Text(" {\n"),
			addin.Text("\t\t\t_, "), errRef, addin.Text(" = fmt.Fprintln("), fileRef, addin.Text(", line)\n"),
			addin.Text("\t\t}\n"),
			addin.Text("\t}\n"),
		}
		codes = append(codes, &addin.GeneratedCode{
			Ref:     node.Ref(),
			Purpose: addin.PurposeFinalize,
			Template: addin.NewTemplate(
				addin.Text("\tif "), fileRef, addin.Text(" != nil {\n"),
				addin.Text("\t\t"), fileRef, addin.Text(".Close()\n"),
				addin.Text("\t}\n"),
			),
		})
	}

	codes = append(codes, &addin.GeneratedCode{
		Ref:      node.Ref(),
		Purpose:  addin.PurposeExecute,
		Template: addin.NewTemplate(parts...),
	})
	return codes, nil
}

func importOS(ref problem.Path) *addin.GeneratedCode {
	return &addin.GeneratedCode{
		Ref:      ref,
		Purpose:  addin.PurposeDeclareImport,
		Template: addin.NewTemplate(addin.Text(`"os"`)),
	}
}
