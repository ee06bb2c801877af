// Package composer drives the interactive calibration flow:
//
//	SelectEndpoint -> SelectModel -> RunStageOne -> ConfirmStageTwo
//	    -> RunStageTwo | SkipStageTwo -> Done
//
// Any failed validation moves the flow to Aborted. A delegate command is only
// built once both selections are valid, and stage two only runs after stage
// one has finished and the user said yes.
package composer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gimbalcal/gimbalcal/pkg/calibration"
	"github.com/gimbalcal/gimbalcal/pkg/catalog"
	"github.com/gimbalcal/gimbalcal/pkg/delegate"
	"github.com/gimbalcal/gimbalcal/pkg/endpoint"
	"github.com/gimbalcal/gimbalcal/pkg/events"
)

// ErrAborted is matched by every error that ends a run in StateAborted.
var ErrAborted = errors.New("calibration aborted")

// AbortError carries the reason a run was aborted and the state it was in.
type AbortError struct {
	State  calibration.State
	Reason error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("calibration aborted in %s: %v", e.State, e.Reason)
}

func (e *AbortError) Unwrap() []error {
	return []error{ErrAborted, e.Reason}
}

// Prompter asks the user for choices. See prompt.Prompter.
type Prompter interface {
	// Select returns the zero-based index of the chosen label.
	Select(title, question string, labels []string) (int, error)
	Confirm(question string) (bool, error)
}

// Options wires a Composer to its collaborators.
type Options struct {
	Discoverer endpoint.Discoverer
	// Prober is optional. When set, the selected endpoint is opened once
	// before any command runs.
	Prober   endpoint.Prober
	Prompter Prompter
	Runner   delegate.Runner
	Catalog  *catalog.Catalog
	// Templates must hold the stage one and stage two templates, in order.
	Templates []delegate.Template
	// Events receives a calibration.state event on every transition.
	Events *events.EventHub
	// Out receives the flow's own messages. Delegate output is written by
	// the Runner.
	Out io.Writer
	// DryRun prints the commands instead of running them.
	DryRun bool
}

// Composer runs the flow once per call to Run. It keeps no state between
// runs.
type Composer struct {
	opts Options
}

func New(opts Options) (*Composer, error) {
	switch {
	case opts.Discoverer == nil:
		return nil, pkgerrors.New("discoverer is nil")
	case opts.Prompter == nil:
		return nil, pkgerrors.New("prompter is nil")
	case opts.Runner == nil && !opts.DryRun:
		return nil, pkgerrors.New("runner is nil")
	case opts.Catalog == nil:
		return nil, pkgerrors.New("catalog is nil")
	case len(opts.Templates) != 2:
		return nil, pkgerrors.Errorf("expected 2 command templates, got %d", len(opts.Templates))
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Composer{opts: opts}, nil
}

// run is the state of a single flow execution.
type run struct {
	*Composer
	state     calibration.State
	abortedIn calibration.State
	result    calibration.Result
	logger    *logrus.Entry
}

// Run executes the flow. The returned Result is valid even when err is not
// nil and lists every stage that was executed.
func (c *Composer) Run(ctx context.Context) (calibration.Result, error) {
	r := &run{
		Composer: c,
		state:    calibration.StateSelectEndpoint,
		logger:   logrus.WithField("component", "composer"),
	}
	r.result.State = r.state
	c.opts.Events.Publish(events.StateChanged, events.StateChangedEvent{
		To: string(r.state),
		Ts: time.Now().Unix(),
	})

	err := r.execute(ctx)
	if err != nil {
		r.transition(calibration.StateAborted, err.Error())
		r.result.Reason = err.Error()
		return r.result, &AbortError{State: r.abortedIn, Reason: err}
	}
	return r.result, nil
}

func (r *run) execute(ctx context.Context) error {
	endpoints, err := r.opts.Discoverer.Discover(ctx)
	if err != nil {
		return err
	}
	labels := make([]string, len(endpoints))
	for i, e := range endpoints {
		labels[i] = e.Label()
	}
	idx, err := r.opts.Prompter.Select("Available serial ports:", "Select the serial port (enter the corresponding number)", labels)
	if err != nil {
		return err
	}
	ep := endpoints[idx]
	r.result.Endpoint = ep.Name
	r.logger = r.logger.WithField("endpoint", ep.Name)

	r.transition(calibration.StateSelectModel, ep.Name)
	idx, err = r.opts.Prompter.Select("Available models:", "Select the model (enter the corresponding number)", r.opts.Catalog.Models())
	if err != nil {
		return err
	}
	model := r.opts.Catalog.At(idx)
	r.result.Model = model
	r.logger = r.logger.WithField("model", model)

	if r.opts.Prober != nil {
		if err := r.opts.Prober.Probe(ctx, ep); err != nil {
			return err
		}
	}

	r.transition(calibration.StateRunStageOne, "")
	if err := r.runStage(ctx, 1, r.opts.Templates[0], ep.Name, model); err != nil {
		return err
	}

	r.transition(calibration.StateConfirmStageTwo, "")
	yes, err := r.opts.Prompter.Confirm(fmt.Sprintf(
		"Wait until the gimbal has stopped moving. Do you want to run stage 2 (%s)?", r.opts.Templates[1].Stage))
	if err != nil {
		return err
	}

	if yes {
		r.transition(calibration.StateRunStageTwo, "")
		if err := r.runStage(ctx, 2, r.opts.Templates[1], ep.Name, model); err != nil {
			return err
		}
	} else {
		r.transition(calibration.StateSkipStageTwo, "")
		fmt.Fprintln(r.opts.Out, "Stage 2 skipped.")
	}

	r.transition(calibration.StateDone, "")
	return nil
}

// runStage builds and executes one template. A delegate that exits nonzero
// does not stop the flow: its output has been shown and the user decides at
// the next prompt. Failing to run the delegate at all does.
func (r *run) runStage(ctx context.Context, n int, tpl delegate.Template, port, model string) error {
	cmd := tpl.Build(port, model)
	logger := r.logger.WithField("stage", cmd.Stage)

	if r.opts.DryRun {
		fmt.Fprintf(r.opts.Out, "Stage %d (%s), dry run: %s\n", n, cmd.Stage, cmd)
		r.result.Stages = append(r.result.Stages, calibration.StageResult{
			Stage:   cmd.Stage,
			Command: cmd.String(),
			DryRun:  true,
		})
		return nil
	}

	color.New(color.Bold).Fprintf(r.opts.Out, "Running stage %d (%s): %s\n", n, cmd.Stage, cmd)
	logger.Debug("running delegate")

	res, err := r.opts.Runner.Run(ctx, cmd)

	var exitErr *delegate.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		if res.ExitCode != 0 || len(res.Output) > 0 {
			r.record(cmd, res)
		}
		return err
	}
	r.record(cmd, res)

	if exitErr != nil {
		logger.WithField("exitCode", exitErr.Code).Warn("delegate reported failure")
		color.New(color.FgRed).Fprintf(r.opts.Out, "Stage %d (%s) failed with exit code %d.\n", n, cmd.Stage, exitErr.Code)
		return nil
	}

	logger.Debug("delegate finished")
	return nil
}

func (r *run) record(cmd delegate.Command, res delegate.Result) {
	r.result.Stages = append(r.result.Stages, calibration.StageResult{
		Stage:    cmd.Stage,
		Command:  cmd.String(),
		ExitCode: res.ExitCode,
		Output:   res.Output,
	})
}

func (r *run) transition(to calibration.State, msg string) {
	if r.state.Terminal() {
		return
	}
	from := r.state
	if to == calibration.StateAborted {
		r.abortedIn = from
	}
	r.state = to
	r.result.State = to

	r.opts.Events.Publish(events.StateChanged, events.StateChangedEvent{
		From:    string(from),
		To:      string(to),
		Message: msg,
		Ts:      time.Now().Unix(),
	})
}
