package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/vertrag/internal/audit"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/service"
)

var transferCmd = &cobra.Command{
	Use:   "transfer AGREEMENT-ID",
	Short: "Transfer the data covered by an agreement",
	Long: `Requests, starts and completes a transfer under an existing agreement and
fetches the data. The agreement must have been negotiated with the provider
before, so this command is only useful together with --server.`,
	Example: `  vertrag transfer --server http://localhost:8080 agr-c1d2 -o data.json`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		ctx := cmd.Context()

		provider, err := f.GetProvider()
		if err != nil {
			return err
		}

		t, err := provider.CreateTransfer(ctx, service.CreateTransferRequest{AgreementID: args[0]})
		if err != nil {
			return logError(err, "failed to request transfer")
		}
		log.Info().Str("transfer_id", t.ID).Msg("Transfer requested")

		for _, action := range []core.TransferAction{core.ActionStart, core.ActionComplete} {
			next, err := provider.AdvanceTransfer(ctx, t.ID, action, "")
			if err != nil {
				if _, termErr := provider.AdvanceTransfer(ctx, t.ID, core.ActionTerminateTransfer, "aborted by consumer"); termErr != nil {
					log.Warn().Err(termErr).Msg("failed to terminate transfer")
				}
				return logError(err, fmt.Sprintf("failed to %s transfer", action))
			}
			t = next
		}
		printTransfer(t)

		data, err := provider.FetchData(ctx, t.ID)
		if err != nil {
			return logError(err, "failed to fetch data")
		}
		if digest := audit.Digest(data); t.PayloadDigest != "" && digest != t.PayloadDigest {
			return fmt.Errorf("received data does not match digest %s", t.PayloadDigest)
		}
		return writeData(data, output)
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)

	transferCmd.Flags().StringP("output", "o", "", "Write the data to this file instead of stdout")
}
