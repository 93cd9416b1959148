package core

import "fmt"

// Operator defines how an attribute is compared against a constraint's right operand.
type Operator string

const (
	OpEq  Operator = "eq"
	OpNeq Operator = "neq"
	// OpIn means the attribute value is one of the listed values.
	// e.g., region in [EU, EEA]
	OpIn  Operator = "in"
	OpGt  Operator = "gt"
	OpLt  Operator = "lt"
	OpGte Operator = "gte"
	OpLte Operator = "lte"
	// OpContains means the attribute contains the right operand.
	// for lists: [TISAX, IATF16949] contains IATF16949
	// for strings: "quality_analysis" contains "quality"
	OpContains Operator = "contains"
	// OpHasAny means the attribute list shares at least one item with the right operand.
	OpHasAny Operator = "has_any"
)

func (op Operator) IsValid() bool {
	switch op {
	case OpEq, OpNeq, OpIn, OpGt, OpLt, OpGte, OpLte, OpContains, OpHasAny:
		return true
	default:
		return false
	}
}

// accepts reports whether the operator can work with a right operand of the given kind.
func (op Operator) accepts(k ValueKind) bool {
	switch op {
	case OpIn, OpHasAny:
		return k == KindList
	case OpGt, OpLt, OpGte, OpLte:
		return k == KindNumber || k == KindString
	case OpEq, OpNeq, OpContains:
		return k == KindString || k == KindNumber || k == KindBool
	default:
		return false
	}
}

// Constraint is a single (leftOperand, operator, rightOperand) condition on one requester attribute.
type Constraint struct {
	// LeftOperand is the name of the requester attribute.
	LeftOperand string `yaml:"leftOperand" json:"leftOperand"`

	Operator Operator `yaml:"operator" json:"operator"`

	// RightOperand is the literal the attribute is compared against.
	RightOperand Value `yaml:"rightOperand" json:"rightOperand"`
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s %s %s", c.LeftOperand, c.Operator, c.RightOperand)
}

// Validate checks the operator and the shape of the right operand.
// Every error wraps ErrInvalidPolicy.
func (c Constraint) Validate() error {
	if c.LeftOperand == "" {
		return fmt.Errorf("%w: constraint is missing its left operand", ErrInvalidPolicy)
	}
	if !c.Operator.IsValid() {
		return fmt.Errorf("%w: unknown operator '%s' for '%s'", ErrInvalidPolicy, c.Operator, c.LeftOperand)
	}
	if !c.Operator.accepts(c.RightOperand.Kind()) {
		return fmt.Errorf("%w: operator '%s' on '%s' cannot take a %s operand",
			ErrInvalidPolicy, c.Operator, c.LeftOperand, c.RightOperand.Kind())
	}
	return nil
}
