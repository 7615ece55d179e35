package config

import (
	"io/ioutil"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/hcl2/gohcl"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hcl/hclsyntax"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

func ParseFile(filename string, vars map[string]string) (profile *Profile, err error) {
	content, err := ioutil.ReadFile(filename)
	if err != nil {
		err = errors.Wrapf(err, "failed reading profile %s", filename)
		return
	}

	return Parse(content, filename, vars)
}

// Parse parses the contents of a profile read from `filename`,
// interpolating variables (`vars`), performing not only syntax, but
// also semantic checks.
//
func Parse(content []byte, filename string, vars map[string]string) (profile *Profile, err error) {
	f, diags := hclsyntax.ParseConfig(content, filename, hcl.Pos{})
	if diags.HasErrors() {
		err = errors.Wrapf(diags, "failed to parse")
		return
	}

	profile = new(Profile)

	diags = gohcl.DecodeBody(f.Body, createEvalContext(vars), profile)
	if diags.HasErrors() {
		err = errors.Wrapf(diags, "failed to decode")
		return
	}

	err = profile.Validate()
	if err != nil {
		err = errors.Wrapf(err, "invalid profile")
		return
	}

	return
}

func PrettyDiagnosticFile(filename string, diag *hcl.Diagnostic) string {
	content, err := ioutil.ReadFile(filename)
	if err != nil {
		return diag.Error()
	}

	return PrettyDiagnostic(string(content), diag)
}

// PrettyDiagnostic renders content with the diagnostic's subject
// underlined so a profile mistake points at the offending expression.
//
func PrettyDiagnostic(content string, diag *hcl.Diagnostic) string {
	if diag.Subject == nil {
		return diag.Error()
	}

	width := diag.Subject.End.Column - diag.Subject.Start.Column
	if width < 1 {
		width = 1
	}

	var (
		red    = color.New(color.FgRed, color.Bold).SprintFunc()
		marker = strings.Repeat(" ", diag.Subject.Start.Column-1) + strings.Repeat("^", width)

		lines = strings.Split(content, "\n")
		out   = make([]string, 0, len(lines)+1)
	)

	for i, line := range lines {
		out = append(out, line)
		if i == diag.Subject.Start.Line-1 {
			out = append(out, red(marker))
		}
	}

	return strings.Join(out, "\n")
}

func createEvalContext(vars map[string]string) *hcl.EvalContext {
	var variables = map[string]cty.Value{}

	for key, value := range vars {
		variables[key] = cty.StringVal(value)
	}

	return &hcl.EvalContext{Variables: variables}
}
