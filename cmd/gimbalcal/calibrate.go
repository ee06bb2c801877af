package main

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gimbalcal/gimbalcal/pkg/calibration"
	"github.com/gimbalcal/gimbalcal/pkg/catalog"
	"github.com/gimbalcal/gimbalcal/pkg/composer"
	"github.com/gimbalcal/gimbalcal/pkg/config"
	"github.com/gimbalcal/gimbalcal/pkg/delegate"
	"github.com/gimbalcal/gimbalcal/pkg/endpoint"
	"github.com/gimbalcal/gimbalcal/pkg/events"
	"github.com/gimbalcal/gimbalcal/pkg/prompt"
)

// NewCalibrateCommand runs the same flow as the bare root command.
func NewCalibrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calibrate",
		Aliases: []string{"calibration", "cali"},
		Short:   "Interactively run the gimbal calibration (default command)",
		Long: `Interactively run the gimbal calibration.

Stage 1 runs "GimbalCalib JointCoarse". When it has finished and the gimbal has
stopped moving you are asked whether to run stage 2, "GimbalCalib LinearHall".`,
		Args:    cobra.NoArgs,
		GroupID: gCalibration,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalibration(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the service tool commands instead of running them")

	return cmd
}

func loadConfig() (*config.File, *catalog.Catalog, error) {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	logrus.WithFields(conf.LogrusFields()).WithField("path", configPath).Debug("config loaded")

	cat := catalog.Default()
	if models := conf.Models(); len(models) > 0 {
		cat, err = catalog.New(models)
		if err != nil {
			return nil, nil, err
		}
	}
	return conf, cat, nil
}

func newLineReader() (prompt.LineReader, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return prompt.NewTerminalReader(os.Stdin, os.Stdout)
	}
	return prompt.NewBufferedReader(os.Stdin, os.Stdout), nil
}

func runCalibration(ctx context.Context) error {
	conf, cat, err := loadConfig()
	if err != nil {
		return err
	}

	reader, err := newLineReader()
	if err != nil {
		return err
	}
	defer reader.Close()
	// Unblock a pending prompt when a signal arrives.
	stop := context.AfterFunc(ctx, func() { _ = reader.Close() })
	defer stop()

	hub := events.NewEventHub()
	sub := hub.Subscribe()
	logged := make(chan struct{})
	go func() {
		defer close(logged)
		for ev := range sub {
			p, err := events.DecodeAs[events.StateChangedEvent](ev)
			if err != nil {
				continue
			}
			logrus.WithFields(logrus.Fields{
				"from":    p.From,
				"to":      p.To,
				"message": p.Message,
			}).Debug("calibration state changed")
		}
	}()
	defer func() {
		hub.Close()
		<-logged
	}()

	opts := composer.Options{
		Discoverer: endpoint.NewSerialDiscoverer(),
		Prompter:   prompt.New(reader, os.Stdout, conf.SelectionAttempts()),
		Runner:     delegate.NewExecRunner(os.Stdout, os.Stderr),
		Catalog:    cat,
		Templates:  delegate.Templates(conf.Python(), conf.ServiceTool()),
		Events:     hub,
		Out:        os.Stdout,
		DryRun:     dryRun,
	}
	if conf.VerifyEndpoint() {
		opts.Prober = endpoint.NewSerialProber(conf.BaudRate())
	}

	c, err := composer.New(opts)
	if err != nil {
		return err
	}

	res, err := c.Run(ctx)
	// A prompt closed by the signal handler or a killed delegate is reported
	// as the interrupt itself.
	return exitStatus(res, err, ctx.Err() != nil)
}

// ExitStatus is returned by the calibration commands to choose the process
// exit code.
type ExitStatus struct {
	Code int
	Err  error
}

func (e *ExitStatus) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit status " + strconv.Itoa(e.Code)
}

func (e *ExitStatus) Unwrap() error {
	return e.Err
}

const (
	exitAborted     = 2
	exitInterrupted = 130
)

// exitStatus maps a finished run to the process exit code: the code of the
// last delegate that ran, or exitAborted when the run stopped before any
// delegate was started.
func exitStatus(res calibration.Result, err error, interrupted bool) error {
	code, ran := res.LastExitCode()

	switch {
	case err == nil && code == 0:
		return nil
	case err == nil:
		return &ExitStatus{Code: code}
	case interrupted || errors.Is(err, context.Canceled) || errors.Is(err, prompt.ErrInterrupted):
		return &ExitStatus{Code: exitInterrupted, Err: err}
	case ran:
		return &ExitStatus{Code: code, Err: err}
	default:
		return &ExitStatus{Code: exitAborted, Err: err}
	}
}
