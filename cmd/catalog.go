package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [ASSET-ID]",
	Short: "List the assets offered by the provider",
	Long: `Lists the catalog of the provider including the policy every asset is offered under.
With an asset id the single asset is shown, --preview also prints its data preview.`,
	Example: `  vertrag catalog
  vertrag catalog quality-metrics-q4 --preview
  vertrag catalog --server http://localhost:8080 -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		preview, _ := cmd.Flags().GetBool("preview")

		provider, err := f.GetProvider()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			entry, err := provider.GetAsset(cmd.Context(), args[0])
			if err != nil {
				return logError(err, "failed to get asset")
			}
			if output == "json" {
				return printJSON(entry)
			}

			printKV := func(key string, val any) {
				fmt.Printf("  %-22s %v\n", faint(key)+":", val)
			}
			fmt.Println(bold("\n── Asset ──"))
			printKV("ID", entry.ID)
			printKV("Name", entry.Name)
			printKV("Description", entry.Description)
			printKV("Content Type", entry.ContentType)
			printKV("Policy", bold(entry.Policy.ID))
			printKV("Terms", entry.Summary)
			for _, key := range sortedKeys(entry.Properties) {
				printKV(key, entry.Properties[key])
			}

			if preview {
				data, err := provider.PreviewAsset(cmd.Context(), entry.ID)
				if err != nil {
					return logError(err, "failed to get preview")
				}
				fmt.Println(bold("\n── Preview ──"))
				if err := printJSON(data); err != nil {
					return err
				}
			}
			fmt.Println()
			return nil
		}

		entries, err := provider.ListAssets(cmd.Context())
		if err != nil {
			return logError(err, "failed to list catalog")
		}
		log.Debug().Msgf("Retrieved %d assets", len(entries))

		if output == "json" {
			return printJSON(entries)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"ID", "Name", "Type", "Policy", "Terms"})
		for _, e := range entries {
			t.AppendRow(table.Row{
				e.ID,
				e.Name,
				e.ContentType,
				e.Policy.ID,
				truncate(e.Summary, 60),
			})
		}
		t.SetStyle(table.StyleLight)
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringP("output", "o", "table", "Output format (table, json)")
	catalogCmd.Flags().Bool("preview", false, "Show the data preview of the asset")
	f.bindConfigFlags(catalogCmd.Flags())
}
