package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/vertrag/pkg/client"
)

// auditLogCmd represents the audit log command
var auditLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Retrieve and display audit log entries",
	Example: `  vertrag audit log -n 50
  vertrag audit log --participant consumer-tierone-supplier
  vertrag audit log --negotiation neg-c1d2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, err := cmd.Flags().GetInt("limit")
		if err != nil {
			return err
		}
		if limit < 0 {
			return fmt.Errorf("limit must not be negative")
		}
		opts := client.ListAuditsOpts{Limit: uint(limit)}
		opts.Participant, _ = cmd.Flags().GetString("participant")
		opts.NegotiationID, _ = cmd.Flags().GetString("negotiation")
		opts.TransferID, _ = cmd.Flags().GetString("transfer")

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msg("Fetching audit log...")
		audits, err := cli.ListAudits(cmd.Context(), opts)
		if err != nil {
			return logError(err, "failed to fetch audit log")
		}

		log.Info().Msgf("Retrieved %d audit entries", len(audits))

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{
			"Time", "Correlation ID", "Action", "Participant", "State", "Allowed", "Error",
		})

		for _, e := range audits {
			allowed := ""
			if e.Allowed != nil {
				allowed = "YES"
				if !*e.Allowed {
					allowed = "NO"
				}
			}

			participant := "(unknown)"
			if e.Participant != "" {
				participant = truncate(e.Participant, 30)
			}

			t.AppendRow(table.Row{
				e.Time.Format(time.RFC3339),
				e.ID,
				e.Action,
				participant,
				e.State,
				allowed,
				truncate(e.Error, 40),
			})
		}

		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditLogCmd)

	auditLogCmd.Flags().IntP("limit", "n", 25, "Number of audit entries to retrieve")
	auditLogCmd.Flags().String("participant", "", "Only show entries of this participant")
	auditLogCmd.Flags().String("negotiation", "", "Only show entries touching this negotiation")
	auditLogCmd.Flags().String("transfer", "", "Only show entries touching this transfer")
}
