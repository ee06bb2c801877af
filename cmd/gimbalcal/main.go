package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	logLevel   = "info"
	configPath = defaultConfigPath()
	dryRun     = false
	noColor    = false
)

var (
	gCalibration  = "Calibration:"
	gInfo         = "Information:"
	commandGroups = []string{
		gCalibration,
		gInfo,
	}
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gimbalcal", "config.json")
}

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func main() {
	signals := []os.Signal{
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), signals...)
	defer cancel()
	// Restore default signal handling after the first signal, so a second
	// Ctrl-C ends a process stuck reading piped input.
	context.AfterFunc(ctx, cancel)

	cmd := NewCommand()
	err := cmd.ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(handleCmdError(os.Stderr, err))
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gimbalcal",
		Short: "gimbalcal calibrates a DJI drone gimbal through comm_og_service_tool.py",
		Long: `gimbalcal calibrates a DJI drone gimbal.

It lists the serial ports of this computer, asks which port the drone is on
and which model it is, then runs the coarse joint calibration of the service
tool. Once the gimbal has settled you may run the linear hall calibration too.

The actual communication with the drone is done by comm_og_service_tool.py from
dji-firmware-tools, which must be installed separately.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if noColor {
				color.NoColor = true
			}
			return setupLogger()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalibration(cmd.Context())
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.BoolVar(&noColor, "no-color", false, "disable colored output")

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the service tool commands instead of running them")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewCalibrateCommand(),
		NewPortsCommand(),
		NewModelsCommand(),
		NewVersionCommand(),
	)

	return cmd
}
