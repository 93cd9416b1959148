package validation

import (
	"fmt"

	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/engine"
)

// ValidatePolicies checks that policy ids are unique and that every policy would evaluate,
// i.e. operators are known, operands have the right shape and expressions compile.
func ValidatePolicies(policies []core.Policy) error {
	seenIDs := make(map[string]struct{})
	eng := engine.New()

	for i, policy := range policies {
		if policy.ID == "" {
			return fmt.Errorf("policy #%d missing id", i)
		}
		if _, exists := seenIDs[policy.ID]; exists {
			return fmt.Errorf("policy id '%s' is not unique", policy.ID)
		}
		seenIDs[policy.ID] = struct{}{}

		if err := eng.Compile(policy); err != nil {
			return fmt.Errorf("validating policy '%s': %w", policy.ID, err)
		}
	}

	return nil
}

// ValidateAttributes rejects attribute sets with empty names or unset values.
func ValidateAttributes(attrs core.AttributeSet) error {
	for name, v := range attrs {
		if name == "" {
			return fmt.Errorf("attribute with empty name")
		}
		if !v.IsValid() {
			return fmt.Errorf("attribute '%s' has no value", name)
		}
	}
	return nil
}
