package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/vertrag/internal/consumer"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/store"
)

var negotiateCmd = &cobra.Command{
	Use:   "negotiate ASSET-ID",
	Short: "Negotiate a contract for an asset as consumer",
	Long: `Runs a full contract negotiation for the given asset: request, offer, agree,
verify and finalize. The provider evaluates the asset's policy against the
consumer attributes when the offer is requested and terminates the negotiation
if the policy does not permit USE.

With --transfer the data of the asset is retrieved right after the agreement
has been finalized.`,
	Example: `  vertrag negotiate quality-metrics-q4
  vertrag negotiate quality-metrics-q4 -a partner_type=tier3_supplier
  vertrag negotiate traceability-batch-001 --transfer --output batch.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withTransfer, _ := cmd.Flags().GetBool("transfer")
		output, _ := cmd.Flags().GetString("output")

		identity, err := f.Identity()
		if err != nil {
			return err
		}
		provider, err := f.GetProvider()
		if err != nil {
			return err
		}
		agent := consumer.New(provider, identity, store.NewInMemoryRegistry())

		log.Info().
			Str("consumer", identity.ID).
			Msgf("Negotiating contract for asset '%s'...", args[0])

		n, err := agent.Negotiate(cmd.Context(), args[0])
		if n != nil {
			printNegotiation(n)
		}
		if err != nil {
			return logError(err, "negotiation failed")
		}
		if n.State != core.NegotiationFinalized {
			return fmt.Errorf("no agreement reached: %s", n.TerminationReason)
		}

		if !withTransfer {
			return nil
		}

		log.Info().Msgf("Requesting transfer under agreement '%s'...", n.Agreement.ID)
		t, err := agent.Transfer(cmd.Context(), n.Agreement.ID)
		if t != nil {
			printTransfer(t)
		}
		if err != nil {
			return logError(err, "transfer failed")
		}

		data, err := agent.ReceivedData(cmd.Context(), t.ID)
		if err != nil {
			return err
		}
		return writeData(data, output)
	},
}

func printNegotiation(n *core.Negotiation) {
	printKV := func(key string, val any) {
		fmt.Printf("  %-22s %v\n", faint(key)+":", val)
	}

	fmt.Println(bold("\n── Negotiation ──"))
	printKV("ID", n.ID)
	printKV("Asset", n.AssetID)
	printKV("Consumer", n.ConsumerID)
	printKV("Provider", n.ProviderID)
	printKV("Policy", n.Policy.ID)
	printKV("Attributes", fmtAttributes(n.Attributes))
	printKV("State", bold(stateColor(n.State.String())))
	if n.TerminationReason != "" {
		printKV("Reason", red(n.TerminationReason))
	}
	if n.Decision != nil {
		verdict := green("allowed")
		if !n.Decision.Allowed {
			verdict = red("denied")
		}
		printKV("Decision", fmt.Sprintf("%s (%s)", verdict, n.Decision.Reason))
		for _, res := range n.Decision.ConstraintsChecked {
			icon := red("✖")
			if res.Satisfied {
				icon = green("✔")
			}
			fmt.Printf("       %s %s\n", icon, res.Expression)
		}
	}
	if n.Agreement != nil {
		printKV("Agreement", bold(n.Agreement.ID))
		printKV("Signed", n.Agreement.SignedAt.Local().Format(time.RFC1123))
	}
	printHistory(n.History)
}

func printTransfer(t *core.Transfer) {
	printKV := func(key string, val any) {
		fmt.Printf("  %-22s %v\n", faint(key)+":", val)
	}

	fmt.Println(bold("\n── Transfer ──"))
	printKV("ID", t.ID)
	printKV("Agreement", t.AgreementID)
	printKV("Asset", t.AssetID)
	printKV("State", bold(stateColor(t.State.String())))
	if t.PayloadDigest != "" {
		printKV("Digest", t.PayloadDigest)
	}
	if t.TerminationReason != "" {
		printKV("Reason", red(t.TerminationReason))
	}
	printHistory(t.History)
}

func printHistory(history []core.StateChange) {
	fmt.Println(bold("\n── History ──"))
	for _, change := range history {
		from := change.From
		if from == "" {
			from = "∅"
		}
		fmt.Printf("  %s  %-14s %s → %s",
			faint(change.Time.Local().Format(time.TimeOnly)),
			change.Action,
			faint(from),
			stateColor(change.To))
		if change.Reason != "" {
			fmt.Printf("  %s", faint(change.Reason))
		}
		fmt.Println()
	}
	fmt.Println()
}

// writeData prints data to stdout, or writes it to path if set.
func writeData(data []byte, path string) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing data: %w", err)
	}
	log.Info().Int("size", len(data)).Msgf("Data written to %s", path)
	return nil
}

func init() {
	rootCmd.AddCommand(negotiateCmd)

	negotiateCmd.Flags().Bool("transfer", false, "Transfer the data once the agreement is finalized")
	negotiateCmd.Flags().StringP("output", "o", "", "Write transferred data to this file instead of stdout")
	f.bindAttributeFlag(negotiateCmd.Flags())
	f.bindConfigFlags(negotiateCmd.Flags())
}
