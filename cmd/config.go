package cmd

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Interact with the configuration",
	Long:  `Utilities for validating the provider configuration and its catalog`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
