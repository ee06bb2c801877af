package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type modelEntry struct {
	Number int    `json:"number"`
	Model  string `json:"model"`
}

func NewModelsCommand() *cobra.Command {
	asJSON := false

	cmd := &cobra.Command{
		Use:   "models",
		Short: "Print the model lookup table",
		Long: `Print the model lookup table.

The number in front of each model is what you enter at the model prompt. The
list can be replaced with the "models" key of the config file.`,
		Args:    cobra.NoArgs,
		GroupID: gInfo,
		RunE: func(_ *cobra.Command, _ []string) error {
			_, cat, err := loadConfig()
			if err != nil {
				return err
			}

			entries := make([]modelEntry, cat.Len())
			for i := range entries {
				entries[i] = modelEntry{Number: i + 1, Model: cat.At(i)}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			for _, e := range entries {
				fmt.Printf("%2d. %s\n", e.Number, e.Model)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
