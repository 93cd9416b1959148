package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/service"
)

var (
	evalAssetID    string
	evalPolicyFile string
	evalAction     string
)

var evaluateCmd = &cobra.Command{
	Use:     "evaluate",
	Aliases: []string{"why", "explain"},
	Short:   "Explain whether a consumer would be granted an asset",
	Long: `Evaluates a usage policy against a set of consumer attributes and prints the
decision together with every constraint that was checked.

The policy is either the one attached to a catalog asset (--asset) or read from
a YAML file (--policy-file). Attributes come from the configured consumer
identity and can be overridden with --attr.`,
	Example: `  # Would the default consumer be allowed to use the quality reports?
  vertrag evaluate --asset quality-metrics-q4

  # What if it was not certified?
  vertrag evaluate --asset quality-metrics-q4 -a certification=ISO9001

  # Evaluate a draft policy before publishing it
  vertrag evaluate --policy-file draft.yaml -a region=EU`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if evalAssetID == "" && evalPolicyFile == "" {
			return fmt.Errorf("either --asset or --policy-file is required")
		}

		identity, err := f.Identity()
		if err != nil {
			return err
		}

		req := service.ExplainRequest{
			AssetID:    evalAssetID,
			Action:     core.Action(evalAction),
			Attributes: identity.Attributes,
		}
		if evalPolicyFile != "" {
			policy, err := readPolicyFile(evalPolicyFile)
			if err != nil {
				return err
			}
			req.Policy = &policy
		}

		provider, err := f.GetProvider()
		if err != nil {
			return err
		}

		log.Debug().Str("asset", evalAssetID).Msg("Evaluating policy...")
		resp, err := provider.Explain(cmd.Context(), req)
		if err != nil {
			return logError(err, "failed to evaluate policy")
		}

		printDecision(resp, identity.Attributes)
		return nil
	},
}

func readPolicyFile(path string) (core.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Policy{}, fmt.Errorf("reading policy file: %w", err)
	}
	var policy core.Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return core.Policy{}, fmt.Errorf("parsing policy file: %w", err)
	}
	return policy, nil
}

func printDecision(resp *service.ExplainResponse, attrs core.AttributeSet) {
	decision := resp.Decision

	fmt.Printf("\n%s for Policy: %s (Action: %s)\n",
		bold("Evaluation Trace"),
		bold(resp.Policy.ID),
		decision.Action)
	if resp.AssetID != "" {
		fmt.Printf("  %s %s\n", faint("Asset:"), resp.AssetID)
	}
	fmt.Printf("  %s %s\n", faint("Attributes:"), fmtAttributes(attrs))
	fmt.Printf("  %s %s\n", faint("Policy:"), resp.Summary)

	fmt.Println(faint("---------------------------------------------------"))

	for _, res := range decision.ConstraintsChecked {
		icon := red("✖")
		if res.Satisfied {
			icon = green("✔")
		}

		expression := res.Expression
		if res.Constraint == nil {
			expression = cyan(expression)
		}
		fmt.Printf("  %s %s\n", icon, expression)

		if res.Observed != nil {
			fmt.Printf("      %s %s\n", faint("observed:"), res.Observed)
		}
		if res.Reason != "" {
			reason := res.Reason
			if res.Satisfied {
				reason = faint(reason)
			} else {
				reason = yellow(reason)
			}
			fmt.Printf("      ↳ %s\n", reason)
		}
	}
	if len(decision.ConstraintsChecked) == 0 {
		fmt.Printf("  %s\n", faint("(no constraints checked)"))
	}

	for _, o := range decision.Obligations {
		fmt.Printf("  %s %s %s\n", cyan("!"), bold(o.Action), faint(o.Description))
	}

	fmt.Println(faint("---------------------------------------------------"))
	if decision.Allowed {
		fmt.Printf("Decision: %s (%s)\n", bold(green("allowed")), decision.Reason)
	} else {
		fmt.Printf("Decision: %s (%s)\n", bold(red("denied")), decision.Reason)
	}
	fmt.Println()
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVar(&evalAssetID, "asset", "", "Evaluate the policy of this catalog asset")
	evaluateCmd.Flags().StringVar(&evalPolicyFile, "policy-file", "", "Evaluate the policy in this YAML file instead")
	evaluateCmd.Flags().StringVar(&evalAction, "action", string(core.ActionUse), "Usage action to evaluate")
	f.bindAttributeFlag(evaluateCmd.Flags())
	f.bindConfigFlags(evaluateCmd.Flags())
}
