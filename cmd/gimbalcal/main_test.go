package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gimbalcal/gimbalcal/pkg/calibration"
	"github.com/gimbalcal/gimbalcal/pkg/composer"
	"github.com/gimbalcal/gimbalcal/pkg/endpoint"
	"github.com/gimbalcal/gimbalcal/pkg/prompt"
)

func abort(state calibration.State, reason error) error {
	return &composer.AbortError{State: state, Reason: reason}
}

func TestExitStatus(t *testing.T) {
	ranOK := calibration.Result{State: calibration.StateDone, Stages: []calibration.StageResult{{Stage: calibration.StageJointCoarse}}}
	ranFailed := calibration.Result{State: calibration.StateDone, Stages: []calibration.StageResult{
		{Stage: calibration.StageJointCoarse, ExitCode: 0},
		{Stage: calibration.StageLinearHall, ExitCode: 5},
	}}
	stageOneFailed := calibration.Result{State: calibration.StateAborted, Stages: []calibration.StageResult{
		{Stage: calibration.StageJointCoarse, ExitCode: 3},
	}}

	tests := []struct {
		name        string
		res         calibration.Result
		err         error
		interrupted bool
		wantNil     bool
		wantCode    int
	}{
		{name: "success", res: ranOK, wantNil: true},
		{name: "last delegate failed", res: ranFailed, wantCode: 5},
		{name: "no endpoints", res: calibration.Result{State: calibration.StateAborted}, err: abort(calibration.StateSelectEndpoint, endpoint.ErrNoEndpoints), wantCode: exitAborted},
		{name: "invalid model", res: calibration.Result{State: calibration.StateAborted}, err: abort(calibration.StateSelectModel, prompt.ErrInvalidSelection), wantCode: exitAborted},
		{name: "invalid confirmation after stage one", res: stageOneFailed, err: abort(calibration.StateConfirmStageTwo, prompt.ErrInvalidSelection), wantCode: 3},
		{name: "ctrl-c at prompt", res: calibration.Result{State: calibration.StateAborted}, err: abort(calibration.StateSelectModel, prompt.ErrInterrupted), wantCode: exitInterrupted},
		{name: "signal", res: stageOneFailed, err: abort(calibration.StateRunStageOne, errors.New("closed")), interrupted: true, wantCode: exitInterrupted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitStatus(tt.res, tt.err, tt.interrupted)
			if tt.wantNil {
				if err != nil {
					t.Fatalf("expected nil, got %v", err)
				}
				return
			}
			var st *ExitStatus
			if !errors.As(err, &st) {
				t.Fatalf("expected *ExitStatus, got %v", err)
			}
			if st.Code != tt.wantCode {
				t.Fatalf("Code = %d, want %d", st.Code, tt.wantCode)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Fatalf("expected the run error to be preserved, got %v", err)
			}
		})
	}
}

func TestHandleCmdError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantText string
	}{
		{
			name:     "no endpoints",
			err:      &ExitStatus{Code: exitAborted, Err: abort(calibration.StateSelectEndpoint, endpoint.ErrNoEndpoints)},
			wantCode: exitAborted,
			wantText: "Connect the drone",
		},
		{
			name:     "invalid selection",
			err:      &ExitStatus{Code: exitAborted, Err: abort(calibration.StateSelectModel, prompt.ErrInvalidSelection)},
			wantCode: exitAborted,
			wantText: "Invalid selection.",
		},
		{
			name:     "delegate failure only",
			err:      &ExitStatus{Code: 4},
			wantCode: 4,
		},
		{
			name:     "interrupted",
			err:      &ExitStatus{Code: exitInterrupted, Err: context.Canceled},
			wantCode: exitInterrupted,
			wantText: "Interrupted.",
		},
		{
			name:     "other",
			err:      errors.New("failed to open file /etc/gimbalcal.json"),
			wantCode: 1,
			wantText: "Error: failed to open file",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			if code := handleCmdError(buf, tt.err); code != tt.wantCode {
				t.Fatalf("code = %d, want %d", code, tt.wantCode)
			}
			if tt.wantText == "" {
				if buf.Len() != 0 {
					t.Fatalf("expected no output, got %q", buf.String())
				}
				return
			}
			if !strings.Contains(buf.String(), tt.wantText) {
				t.Fatalf("output %q does not contain %q", buf.String(), tt.wantText)
			}
		})
	}
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()

	for _, name := range []string{"calibrate", "ports", "models", "version"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub == cmd {
			t.Fatalf("subcommand %q not registered", name)
		}
	}
	if cmd.Flags().Lookup("dry-run") == nil {
		t.Fatalf("root command must accept --dry-run")
	}
	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Fatalf("root command must accept --config")
	}
}

func TestModelsCommandRejectsBadConfig(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(p, []byte(`{"models": ["P3X", "P3X"]}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cmd := NewCommand()
	cmd.SetArgs([]string{"models", "--config", p})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected duplicate models to be rejected")
	}
}
