package cmd

import (
	"github.com/spf13/cobra"
)

// auditCmd represents the audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log of a running provider",
	Long: `Every state changing request to the provider is written to the audit log,
keyed by its correlation id. Requires --server.`,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}
