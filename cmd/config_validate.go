package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// configValidateCmd represents the config validate command
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file and its catalog",
	Long: `Loads the provider configuration and the catalog it points to, validating every
policy and checking that every asset references a known policy and has a payload.`,
	Example: `  vertrag config validate -c provider.yaml
  vertrag config validate --catalog catalog.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := f.LoadConfig()
		if err != nil {
			log.Error().Err(err).Msg("Configuration is invalid.")
			return err
		}
		manager, err := f.LoadCatalog(cfg)
		if err != nil {
			log.Error().Err(err).Msg("Catalog is invalid.")
			return err
		}
		current := manager.Current()
		assets, _ := current.Assets(context.Background())
		log.Info().
			Str("participant", cfg.Participant.ID).
			Int("assets", len(assets)).
			Int("policies", len(current.Policies())).
			Msg("Configuration is valid.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	f.bindConfigFlags(configValidateCmd.Flags())
}
