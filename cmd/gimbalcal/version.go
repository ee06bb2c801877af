package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gimbalcal/gimbalcal/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version",
		Args:    cobra.NoArgs,
		GroupID: gInfo,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("gimbalcal %s (%s) %s/%s\n", version.Version, version.GitCommit, runtime.GOOS, runtime.GOARCH)
		},
	}
}
