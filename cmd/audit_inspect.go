package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/vertrag/pkg/client"
)

var auditInspectCmd = &cobra.Command{
	Use:     "inspect CORRELATION-ID",
	Short:   "Show full details of a specific audit log entry",
	Example: `  vertrag audit inspect d4jc1r8nnrkc73b0l1ig`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		correlationID := args[0]
		if correlationID == "" {
			return fmt.Errorf("correlation ID cannot be empty")
		}

		cli, err := f.GetClient()
		if err != nil {
			return err
		}

		log.Debug().Msgf("Retrieving entry with correlation ID '%s'...", correlationID)
		audits, err := cli.ListAudits(cmd.Context(), client.ListAuditsOpts{
			Limit:         1,
			CorrelationID: correlationID,
		})
		if err != nil {
			return logError(err, "failed to retrieve audit log entry")
		}
		if len(audits) == 0 {
			log.Warn().Str("correlation_id", correlationID).Msg("no audit log entries found")
			return nil
		}

		entry := audits[0]

		printKV := func(key string, val any) {
			fmt.Printf("  %-26s %v\n", faint(key)+":", val)
		}
		orNone := func(s string) any {
			if s == "" {
				return faint("(none)")
			}
			return s
		}

		fmt.Println(bold("\n── Audit Entry ──"))
		printKV("Correlation ID", correlationID)
		printKV("Time", entry.Time.Local().Format(time.RFC1123))
		printKV("Action", entry.Action)
		printKV("Participant", orNone(entry.Participant))
		if entry.State != "" {
			printKV("State", stateColor(entry.State))
		}

		fmt.Println(bold("\n── Entities ──"))
		printKV("Asset", orNone(entry.AssetID))
		printKV("Negotiation", orNone(entry.NegotiationID))
		printKV("Agreement", orNone(entry.AgreementID))
		printKV("Transfer", orNone(entry.TransferID))

		fmt.Println(bold("\n── Decision ──"))
		if entry.Allowed != nil {
			status := green("allowed")
			if !*entry.Allowed {
				status = red("denied")
			}
			printKV("Policy", bold(entry.PolicyID))
			printKV("Decision", status)
			printKV("Reason", orNone(entry.Reason))
		} else {
			fmt.Printf("  %s\n", faint("(no policy evaluated)"))
		}
		if entry.Error != "" {
			printKV("Error Message", red(entry.Error))
		}

		fmt.Println(bold("\n── Metadata ──"))
		if len(entry.Metadata) == 0 {
			fmt.Printf("       %s\n", faint("(none)"))
		}
		for _, k := range sortedKeys(entry.Metadata) {
			fmt.Printf("       %-16s %v\n", faint(k)+":", entry.Metadata[k])
		}
		fmt.Println()

		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditInspectCmd)
}
