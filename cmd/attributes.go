package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var attributesCmd = &cobra.Command{
	Use:   "attributes",
	Short: "Prints the consumer identity and its attributes",
	Long: `Shows the consumer identity the negotiate and evaluate commands would present:
the built-in defaults, overridden by the identity section of the user config
and finally by --attr flags.`,
	Example: `  vertrag attributes
  vertrag attributes -a region=APAC --dump`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dump, _ := cmd.Flags().GetBool("dump")

		identity, err := f.Identity()
		if err != nil {
			return err
		}

		if dump {
			log.Info().Msg("Consumer identity:")
			log.Info().Msg(spew.Sdump(identity))
			return nil
		}

		fmt.Println(bold("\n── Consumer Identity ──"))
		fmt.Printf("  %-22s %s\n", faint("ID")+":", identity.ID)
		fmt.Printf("  %-22s %s\n", faint("Company")+":", identity.CompanyName)
		fmt.Println(bold("\n── Attributes ──"))
		if len(identity.Attributes) == 0 {
			fmt.Printf("  %s\n", faint("(none)"))
		}
		for _, key := range identity.Attributes.Keys() {
			val := identity.Attributes[key]
			fmt.Printf("  %-22s %s %s\n", faint(key)+":", val, faint("("+val.Kind().String()+")"))
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(attributesCmd)

	attributesCmd.Flags().Bool("dump", false, "Dump the raw identity structure")
	f.bindAttributeFlag(attributesCmd.Flags())
}
