package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/darmiel/vertrag/internal/core"
)

// checkConstraint evaluates a single validated constraint.
// A missing attribute or a value of an incomparable kind is unsatisfied, never an error.
func checkConstraint(c core.Constraint, attrs core.AttributeSet) core.ConstraintResult {
	constraint := c
	result := core.ConstraintResult{
		Expression: c.String(),
		Constraint: &constraint,
	}

	val, exists := attrs.Get(c.LeftOperand)
	if !exists {
		result.Reason = fmt.Sprintf("attribute '%s' missing", c.LeftOperand)
		return result
	}
	observed := val
	result.Observed = &observed

	satisfied, reason := compare(c.Operator, val, c.RightOperand)
	result.Satisfied = satisfied
	result.Reason = reason
	return result
}

func compare(op core.Operator, val, right core.Value) (bool, string) {
	switch op {
	case core.OpEq:
		coerced, ok := coerce(val, right.Kind())
		if !ok {
			return false, fmt.Sprintf("cannot compare %s '%v' to %s", val.Kind(), val, right.Kind())
		}
		if !coerced.Equal(right) {
			return false, fmt.Sprintf("expected '%v' to equal '%v'", val, right)
		}
		return true, ""

	case core.OpNeq:
		coerced, ok := coerce(val, right.Kind())
		if ok && coerced.Equal(right) {
			return false, fmt.Sprintf("expected '%v' to not equal '%v'", val, right)
		}
		return true, ""

	case core.OpIn:
		// check if {right} contains {val}
		// e.g. "region in [EU, EEA]"
		if !val.IsScalar() {
			return false, fmt.Sprintf("%s value '%v' cannot be a member of a list", val.Kind(), val)
		}
		if !right.Contains(val.Scalar()) {
			return false, fmt.Sprintf("value '%v' not in list '%v'", val, right)
		}
		return true, fmt.Sprintf("value '%v' found in list '%v'", val, right)

	case core.OpGt, core.OpLt, core.OpGte, core.OpLte:
		cmp, ok := order(val, right)
		if !ok {
			return false, fmt.Sprintf("cannot order %s '%v' against %s '%v'", val.Kind(), val, right.Kind(), right)
		}
		if !orderSatisfies(op, cmp) {
			return false, fmt.Sprintf("expected '%v' %s '%v'", val, op, right)
		}
		return true, ""

	case core.OpContains:
		// check if {val} contains {right}
		// e.g. "certification contains IATF16949"
		needle := right.Scalar()
		if val.Kind() == core.KindList {
			if !val.Contains(needle) {
				return false, fmt.Sprintf("list '%v' does not contain '%s'", val, needle)
			}
			return true, fmt.Sprintf("list '%v' contains '%s'", val, needle)
		}
		if !strings.Contains(val.Scalar(), needle) {
			return false, fmt.Sprintf("value '%v' does not contain '%s'", val, needle)
		}
		return true, fmt.Sprintf("value '%v' contains '%s'", val, needle)

	case core.OpHasAny:
		items, ok := val.AsList()
		if !ok {
			return false, fmt.Sprintf("has_any requires a list attribute, got %s '%v'", val.Kind(), val)
		}
		for _, item := range items {
			if right.Contains(item) {
				return true, fmt.Sprintf("'%s' found in '%v'", item, right)
			}
		}
		return false, fmt.Sprintf("no item of '%v' found in '%v'", val, right)
	}

	return false, fmt.Sprintf("unknown operator '%s' in constraint", op)
}

// coerce converts val to the given kind where that is lossless.
func coerce(val core.Value, kind core.ValueKind) (core.Value, bool) {
	if val.Kind() == kind {
		return val, true
	}
	switch kind {
	case core.KindString:
		if val.IsScalar() {
			return core.StringValue(val.Scalar()), true
		}
	case core.KindNumber:
		if s, ok := val.AsString(); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return core.NumberValue(f), true
			}
		}
	case core.KindBool:
		if s, ok := val.AsString(); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
				return core.BoolValue(b), true
			}
		}
	}
	return core.Value{}, false
}

// order compares val to right, returning -1, 0 or 1.
// Numbers (and numeric strings) compare numerically, strings lexically.
func order(val, right core.Value) (int, bool) {
	if r, ok := right.AsNumber(); ok {
		coerced, ok := coerce(val, core.KindNumber)
		if !ok {
			return 0, false
		}
		l, _ := coerced.AsNumber()
		switch {
		case l < r:
			return -1, true
		case l > r:
			return 1, true
		default:
			return 0, true
		}
	}
	if r, ok := right.AsString(); ok {
		l, ok := val.AsString()
		if !ok {
			return 0, false
		}
		return strings.Compare(l, r), true
	}
	return 0, false
}

func orderSatisfies(op core.Operator, cmp int) bool {
	switch op {
	case core.OpGt:
		return cmp > 0
	case core.OpLt:
		return cmp < 0
	case core.OpGte:
		return cmp >= 0
	case core.OpLte:
		return cmp <= 0
	default:
		return false
	}
}
