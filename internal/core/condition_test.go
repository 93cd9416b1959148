package core

import (
	"errors"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestConstraint_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Constraint
	}{
		{
			name: "String Operand",
			input: `leftOperand: partner_type
operator: eq
rightOperand: tier1_supplier`,
			want: Constraint{LeftOperand: "partner_type", Operator: OpEq, RightOperand: StringValue("tier1_supplier")},
		},
		{
			name:  "List Operand",
			input: `{ leftOperand: region, operator: in, rightOperand: [EU, EEA] }`,
			want:  Constraint{LeftOperand: "region", Operator: OpIn, RightOperand: ListValue("EU", "EEA")},
		},
		{
			name:  "Number Operand",
			input: `{ leftOperand: tier, operator: lte, rightOperand: 2 }`,
			want:  Constraint{LeftOperand: "tier", Operator: OpLte, RightOperand: NumberValue(2)},
		},
		{
			name:  "Bool Operand",
			input: `{ leftOperand: audited, operator: eq, rightOperand: true }`,
			want:  Constraint{LeftOperand: "audited", Operator: OpEq, RightOperand: BoolValue(true)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Constraint
			if err := yaml.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("UnmarshalYAML() error = %v", err)
			}
			if got.LeftOperand != tt.want.LeftOperand || got.Operator != tt.want.Operator ||
				!got.RightOperand.Equal(tt.want.RightOperand) {
				t.Errorf("Unmarshal mismatch.\nGot:  %v\nWant: %v", got, tt.want)
			}
		})
	}
}

func TestConstraint_Validate(t *testing.T) {
	tests := []struct {
		name    string
		c       Constraint
		wantErr bool
	}{
		{"eq with string", Constraint{"a", OpEq, StringValue("x")}, false},
		{"eq with list", Constraint{"a", OpEq, ListValue("x")}, true},
		{"in with list", Constraint{"a", OpIn, ListValue("x", "y")}, false},
		{"in with scalar", Constraint{"a", OpIn, StringValue("x")}, true},
		{"has_any with scalar", Constraint{"a", OpHasAny, StringValue("x")}, true},
		{"gt with number", Constraint{"a", OpGt, NumberValue(3)}, false},
		{"lt with string", Constraint{"a", OpLt, StringValue("2024-01-01")}, false},
		{"gte with bool", Constraint{"a", OpGte, BoolValue(true)}, true},
		{"contains with scalar", Constraint{"a", OpContains, StringValue("x")}, false},
		{"unknown operator", Constraint{"a", Operator("matches"), StringValue("x")}, true},
		{"missing operand", Constraint{"a", OpEq, Value{}}, true},
		{"missing left operand", Constraint{"", OpEq, StringValue("x")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPolicy) {
				t.Errorf("Validate() error = %v, want ErrInvalidPolicy", err)
			}
		})
	}
}

func TestPolicy_Describe(t *testing.T) {
	p := Policy{
		ID: "quality-data",
		Permissions: []Permission{{
			Action: ActionUse,
			Constraints: []Constraint{
				{LeftOperand: "partner_type", Operator: OpIn, RightOperand: ListValue("tier1_supplier", "tier2_supplier")},
				{LeftOperand: "purpose", Operator: OpEq, RightOperand: StringValue("quality_analysis")},
			},
		}},
		Prohibitions: []Prohibition{{Action: ActionDistribute}, {Action: ActionArchive}},
	}

	want := "Allows USE when: partner_type in [tier1_supplier, tier2_supplier] AND purpose eq quality_analysis; " +
		"Prohibits DISTRIBUTE; Prohibits ARCHIVE"
	if got := p.Describe(); got != want {
		t.Errorf("Describe() =\n%s\nwant\n%s", got, want)
	}

	if got := (Policy{}).Describe(); got != "No restrictions" {
		t.Errorf("Describe() of empty policy = %q", got)
	}
}

func TestPolicy_Clone(t *testing.T) {
	p := Policy{
		ID: "eu-region",
		Permissions: []Permission{{
			Action:      ActionUse,
			Constraints: []Constraint{{LeftOperand: "region", Operator: OpIn, RightOperand: ListValue("EU", "EEA")}},
		}},
	}

	cp := p.Clone()
	cp.Permissions[0].Constraints[0].LeftOperand = "country"
	cp.Permissions[0].Action = ActionModify

	if p.Permissions[0].Constraints[0].LeftOperand != "region" || p.Permissions[0].Action != ActionUse {
		t.Errorf("Clone() shares state with the original: %+v", p)
	}
}
