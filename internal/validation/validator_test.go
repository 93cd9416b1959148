package validation

import (
	"errors"
	"testing"

	"github.com/darmiel/vertrag/internal/core"
)

func TestValidatePolicies(t *testing.T) {
	valid := core.Policy{ID: "open-access", Permissions: []core.Permission{{Action: core.ActionUse}}}

	tests := []struct {
		name      string
		policies  []core.Policy
		wantErr   bool
		wantIsErr error
	}{
		{name: "Valid", policies: []core.Policy{valid}},
		{name: "Missing ID", policies: []core.Policy{{}}, wantErr: true},
		{name: "Duplicate ID", policies: []core.Policy{valid, valid}, wantErr: true},
		{
			name: "Bad Operand Shape",
			policies: []core.Policy{{ID: "bad", Permissions: []core.Permission{{
				Action:      core.ActionUse,
				Constraints: []core.Constraint{{LeftOperand: "certification", Operator: core.OpHasAny, RightOperand: core.StringValue("TISAX")}},
			}}}},
			wantErr:   true,
			wantIsErr: core.ErrInvalidPolicy,
		},
		{
			name:      "Broken Expression",
			policies:  []core.Policy{{ID: "bad-expr", Permissions: []core.Permission{{Action: core.ActionUse, Expr: "attributes.("}}}},
			wantErr:   true,
			wantIsErr: core.ErrInvalidPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePolicies(tt.policies)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePolicies() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantIsErr != nil && !errors.Is(err, tt.wantIsErr) {
				t.Errorf("ValidatePolicies() error = %v, want %v", err, tt.wantIsErr)
			}
		})
	}
}

func TestValidateAttributes(t *testing.T) {
	if err := ValidateAttributes(core.AttributeSet{"region": core.StringValue("EU")}); err != nil {
		t.Errorf("ValidateAttributes() unexpected error: %v", err)
	}
	if err := ValidateAttributes(core.AttributeSet{"region": {}}); err == nil {
		t.Error("ValidateAttributes() accepted an unset value")
	}
}
