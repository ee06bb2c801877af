package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gimbalcal/gimbalcal/pkg/endpoint"
)

func NewPortsCommand() *cobra.Command {
	asJSON := false

	cmd := &cobra.Command{
		Use:     "ports",
		Short:   "List the serial ports gimbalcal can see",
		Args:    cobra.NoArgs,
		GroupID: gInfo,
		RunE: func(cmd *cobra.Command, _ []string) error {
			endpoints, err := endpoint.NewSerialDiscoverer().Discover(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(endpoints)
			}

			bold := color.New(color.Bold).SprintFunc()
			for i, e := range endpoints {
				fmt.Printf("%2d. %s\n", i+1, bold(e.Name))
				if !e.IsUSB {
					continue
				}
				fmt.Printf("    USB ID: %s:%s\n", e.VID, e.PID)
				if e.Product != "" {
					fmt.Printf("    Product: %s\n", e.Product)
				}
				if e.SerialNumber != "" {
					fmt.Printf("    Serial Number: %s\n", e.SerialNumber)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
