package delegate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

// ErrExecutionFailed is matched by every *ExitError.
var ErrExecutionFailed = errors.New("delegate execution failed")

// ExitError reports a delegate that exited with a nonzero code.
type ExitError struct {
	Command Command
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command.Stage, e.Code)
}

func (e *ExitError) Unwrap() error {
	return ErrExecutionFailed
}

// Result is what a finished delegate left behind.
type Result struct {
	ExitCode int
	// Output holds the standard output lines, in order.
	Output []string
}

// Runner executes a command to completion.
type Runner interface {
	Run(ctx context.Context, c Command) (Result, error)
}

const defaultGracePeriod = 5 * time.Second

// maxLineLength bounds a single line of delegate output.
const maxLineLength = 1024 * 1024

var _ Runner = &ExecRunner{}

// ExecRunner runs commands as subprocesses, copying their output line by
// line to Stdout and Stderr while they run.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
	// Dir is the working directory of the delegate. Empty means ours.
	Dir string
	// GracePeriod is how long an interrupted delegate gets to exit before
	// it is killed.
	GracePeriod time.Duration
}

func NewExecRunner(stdout, stderr io.Writer) *ExecRunner {
	return &ExecRunner{
		Stdout:      stdout,
		Stderr:      stderr,
		GracePeriod: defaultGracePeriod,
	}
}

// Run starts c and blocks until it exits. Cancelling ctx interrupts the
// delegate, then kills it after the grace period; the subprocess never
// outlives Run.
func (r *ExecRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Program, c.Args...)
	cmd.Dir = r.Dir
	cmd.Cancel = func() error { return interrupt(cmd.Process) }
	cmd.WaitDelay = r.GracePeriod

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, pkgerrors.Wrap(err, "failed to create stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{}, pkgerrors.Wrap(err, "failed to create stderr pipe")
	}

	logger := logrus.WithFields(logrus.Fields{
		"stage":   c.Stage,
		"command": c.String(),
	})
	logger.Debug("starting delegate")

	if err := cmd.Start(); err != nil {
		return Result{}, pkgerrors.Wrapf(err, "failed to start %s", c.Program)
	}

	var (
		mu    sync.Mutex
		lines []string
		wg    conc.WaitGroup
	)
	wg.Go(func() {
		copyLines(stdout, func(line string) {
			mu.Lock()
			defer mu.Unlock()
			lines = append(lines, line)
			if r.Stdout != nil {
				fmt.Fprintln(r.Stdout, line)
			}
		})
	})
	wg.Go(func() {
		copyLines(stderr, func(line string) {
			mu.Lock()
			defer mu.Unlock()
			if r.Stderr != nil {
				fmt.Fprintln(r.Stderr, line)
			}
		})
	})
	wg.Wait()

	err = cmd.Wait()
	res := Result{
		ExitCode: cmd.ProcessState.ExitCode(),
		Output:   lines,
	}
	logger.WithField("exitCode", res.ExitCode).Debug("delegate finished")

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, pkgerrors.Wrapf(ctxErr, "%s interrupted", c.Stage)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		return res, &ExitError{Command: c, Code: res.ExitCode}
	default:
		return res, pkgerrors.Wrapf(err, "failed to wait for %s", c.Program)
	}
}

func copyLines(rd io.Reader, emit func(string)) {
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	for scanner.Scan() {
		emit(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		logrus.WithError(err).Warn("stopped reading delegate output")
		// Keep draining so the delegate does not block on a full pipe.
		_, _ = io.Copy(io.Discard, rd)
	}
}
