package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Operate a running provider",
	Long:  `Administrative commands. They require --server to point at a running provider.`,
}

var adminResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget all negotiations, agreements and transfers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		res, err := cli.Reset(cmd.Context())
		if err != nil {
			return logError(err, "failed to reset provider")
		}
		log.Info().
			Int("negotiations", res.Negotiations).
			Int("transfers", res.Transfers).
			Msg("Provider state cleared")
		return nil
	},
}

var adminReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the catalog of the provider",
	Long: `Re-reads the catalog file of the provider. Running negotiations keep the
policy snapshot they were created with.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cli, err := f.GetClient()
		if err != nil {
			return err
		}
		res, err := cli.ReloadCatalog(cmd.Context())
		if err != nil {
			return logError(err, "failed to reload catalog")
		}
		log.Info().
			Int("assets", res.Assets).
			Int("policies", res.Policies).
			Msg("Catalog reloaded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminResetCmd, adminReloadCmd)
}
