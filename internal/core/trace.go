package core

// ConstraintResult captures why a single constraint was or was not satisfied.
type ConstraintResult struct {
	// Expression is the human-readable constraint, e.g. "region in [EU, EEA]".
	Expression string `yaml:"expression" json:"expression"`

	// Constraint is nil for a permission's free-form expression.
	Constraint *Constraint `yaml:"constraint,omitempty" json:"constraint,omitempty"`

	Satisfied bool `yaml:"satisfied" json:"satisfied"`

	// Observed is the requester's attribute value, nil if the attribute was missing.
	Observed *Value `yaml:"observed,omitempty" json:"observed,omitempty"`

	Reason string `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Decision is the outcome of evaluating a policy for one action.
// A denial is a regular decision, not an error.
type Decision struct {
	Allowed bool   `yaml:"allowed" json:"allowed"`
	Reason  string `yaml:"reason" json:"reason"`

	// PolicyID and Action identify what was evaluated.
	PolicyID string `yaml:"policy_id,omitempty" json:"policy_id,omitempty"`
	Action   Action `yaml:"action" json:"action"`

	// ConstraintsChecked holds the detail of the granting permission, or of the first
	// permission for the action when nothing matched. Empty for prohibited actions.
	ConstraintsChecked []ConstraintResult `yaml:"constraints_checked" json:"constraints_checked"`

	// Obligations are the advisory duties attached to the policy.
	Obligations []Obligation `yaml:"obligations,omitempty" json:"obligations,omitempty"`
}

const (
	ReasonProhibited   = "prohibited action"
	ReasonNoPermission = "no matching permission"
)
