// Package delegate builds and runs invocations of the external service tool.
// It knows the tool's command line, nothing about what the tool does.
package delegate

import (
	"strconv"
	"strings"

	"github.com/gimbalcal/gimbalcal/pkg/calibration"
)

// Placeholders substituted by Template.Build.
const (
	PortPlaceholder  = "{port}"
	ModelPlaceholder = "{model}"
)

// Template is a command line with placeholders for endpoint and model.
type Template struct {
	Stage   calibration.Stage
	Program string
	Args    []string
}

// Templates returns the two calibration templates in execution order:
// coarse joint calibration, then linear hall calibration.
func Templates(python, serviceTool string) []Template {
	stage := func(s calibration.Stage) Template {
		return Template{
			Stage:   s,
			Program: python,
			Args:    []string{serviceTool, "--port", PortPlaceholder, ModelPlaceholder, "GimbalCalib", string(s)},
		}
	}
	return []Template{
		stage(calibration.StageJointCoarse),
		stage(calibration.StageLinearHall),
	}
}

// Build substitutes port and model. It has no side effects.
func (t Template) Build(port, model string) Command {
	r := strings.NewReplacer(PortPlaceholder, port, ModelPlaceholder, model)

	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = r.Replace(a)
	}
	return Command{
		Stage:   t.Stage,
		Program: r.Replace(t.Program),
		Args:    args,
	}
}

// Command is a fully substituted delegate invocation.
type Command struct {
	Stage   calibration.Stage
	Program string
	Args    []string
}

// String renders the command the way a user would type it.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	for _, s := range append([]string{c.Program}, c.Args...) {
		if s == "" || strings.ContainsAny(s, " \t\"'") {
			s = strconv.Quote(s)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " ")
}
