package cmd

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var negotiationsCmd = &cobra.Command{
	Use:     "negotiations",
	Aliases: []string{"negs"},
	Short:   "List the negotiations known to the provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		consumerID, _ := cmd.Flags().GetString("consumer")
		output, _ := cmd.Flags().GetString("output")

		provider, err := f.GetProvider()
		if err != nil {
			return err
		}
		negotiations, err := provider.ListNegotiations(cmd.Context(), consumerID)
		if err != nil {
			return logError(err, "failed to list negotiations")
		}
		if output == "json" {
			return printJSON(negotiations)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Asset", "Consumer", "State", "Agreement", "Updated"})
		for _, n := range negotiations {
			agreement := ""
			if n.Agreement != nil {
				agreement = n.Agreement.ID
			}
			t.AppendRow(table.Row{
				n.ID,
				n.AssetID,
				truncate(n.ConsumerID, 30),
				stateColor(n.State.String()),
				agreement,
				n.UpdatedAt.Local().Format(time.RFC3339),
			})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

var agreementsCmd = &cobra.Command{
	Use:   "agreements",
	Short: "List the agreements signed by the provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		provider, err := f.GetProvider()
		if err != nil {
			return err
		}
		agreements, err := provider.ListAgreements(cmd.Context())
		if err != nil {
			return logError(err, "failed to list agreements")
		}
		if output == "json" {
			return printJSON(agreements)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Asset", "Consumer", "Policy", "Signed"})
		for _, a := range agreements {
			t.AppendRow(table.Row{
				a.ID,
				a.AssetID,
				truncate(a.ConsumerID, 30),
				a.Policy.ID,
				a.SignedAt.Local().Format(time.RFC3339),
			})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

var transfersCmd = &cobra.Command{
	Use:   "transfers",
	Short: "List the transfers known to the provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		agreementID, _ := cmd.Flags().GetString("agreement")
		output, _ := cmd.Flags().GetString("output")

		provider, err := f.GetProvider()
		if err != nil {
			return err
		}
		transfers, err := provider.ListTransfers(cmd.Context(), agreementID)
		if err != nil {
			return logError(err, "failed to list transfers")
		}
		if output == "json" {
			return printJSON(transfers)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Agreement", "Asset", "State", "Digest", "Updated"})
		for _, tr := range transfers {
			t.AppendRow(table.Row{
				tr.ID,
				tr.AgreementID,
				tr.AssetID,
				stateColor(tr.State.String()),
				truncate(tr.PayloadDigest, 20),
				tr.UpdatedAt.Local().Format(time.RFC3339),
			})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(negotiationsCmd, agreementsCmd, transfersCmd)

	negotiationsCmd.Flags().String("consumer", "", "Only list negotiations of this consumer")
	transfersCmd.Flags().String("agreement", "", "Only list transfers under this agreement")
	for _, c := range []*cobra.Command{negotiationsCmd, agreementsCmd, transfersCmd} {
		c.Flags().StringP("output", "o", "table", "Output format (table, json)")
	}
}
