package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codebuildervaibhav/dreamwhisper/internal/config"
)

func newEnvCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Check that API keys load from the environment",
		Long: `Reports the working directory, whether the .env file exists and which keys
it defines, and whether each API key is visible after loading it. Only the
first characters of a key are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			report := config.InspectEnv(root.envFile)

			fmt.Fprintf(w, "Current working directory: %s\n", report.WorkingDir)
			fmt.Fprintf(w, "%s file exists: %t\n", report.EnvFile, report.EnvFileSeen)
			if report.ParseError != nil {
				fmt.Fprintf(w, "Error reading %s: %v\n", report.EnvFile, report.ParseError)
			}
			if len(report.FileKeys) > 0 {
				fmt.Fprintf(w, "Keys defined in %s: %v\n", report.EnvFile, report.FileKeys)
			}

			for _, key := range report.Keys {
				loaded := "No"
				if key.Loaded {
					loaded = "Yes"
				}
				fmt.Fprintf(w, "%s loaded: %s\n", key.Name, loaded)
				if key.Loaded {
					fmt.Fprintf(w, "First few characters of loaded key: %s\n", key.Prefix)
				}
			}
			return nil
		},
	}
}
