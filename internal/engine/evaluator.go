package engine

import (
	"fmt"

	"github.com/expr-lang/expr"

	"github.com/darmiel/vertrag/internal/core"
)

// Evaluate decides whether the requester described by attrs may perform action under policy.
//
// Prohibitions are checked first and deny unconditionally. Otherwise the first permission
// for the action whose constraints all hold grants access. Anything else is denied.
// A denial is returned as a Decision; only a malformed policy yields an error.
func (e *Engine) Evaluate(policy core.Policy, action core.Action, attrs core.AttributeSet) (core.Decision, error) {
	if action == "" {
		return core.Decision{}, ErrEmptyAction
	}
	if err := e.Compile(policy); err != nil {
		return core.Decision{}, err
	}

	decision := core.Decision{
		PolicyID:           policy.ID,
		Action:             action,
		ConstraintsChecked: []core.ConstraintResult{},
		Obligations:        append([]core.Obligation(nil), policy.Obligations...),
	}

	for _, prohibition := range policy.Prohibitions {
		if prohibition.Action.Matches(action) {
			decision.Reason = core.ReasonProhibited
			return decision, nil
		}
	}

	var firstDetail []core.ConstraintResult
	seen := false

	for _, perm := range policy.Permissions {
		if !perm.Action.Matches(action) {
			continue
		}

		matched, results := e.checkPermission(perm, attrs)
		if matched {
			decision.Allowed = true
			decision.Reason = perm.Description
			if decision.Reason == "" {
				decision.Reason = perm.Describe()
			}
			decision.ConstraintsChecked = results
			return decision, nil
		}

		// only the first candidate's detail is reported on denial
		if !seen {
			firstDetail = results
			seen = true
		}
	}

	decision.Reason = core.ReasonNoPermission
	if seen {
		decision.ConstraintsChecked = firstDetail
	}
	return decision, nil
}

// checkPermission evaluates every constraint of the permission, even after a failure,
// so the full detail can be reported.
func (e *Engine) checkPermission(perm core.Permission, attrs core.AttributeSet) (bool, []core.ConstraintResult) {
	matched := true
	results := make([]core.ConstraintResult, 0, len(perm.Constraints)+1)

	for _, c := range perm.Constraints {
		cr := checkConstraint(c, attrs)
		if !cr.Satisfied {
			matched = false
		}
		results = append(results, cr)
	}

	if perm.Expr != "" {
		cr := e.checkExpr(perm.Expr, attrs)
		if !cr.Satisfied {
			matched = false
		}
		results = append(results, cr)
	}

	return matched, results
}

func (e *Engine) checkExpr(code string, attrs core.AttributeSet) core.ConstraintResult {
	result := core.ConstraintResult{Expression: code}

	prog, err := e.program(code)
	if err != nil {
		// Compile already rejected broken expressions, so this is unreachable in practice
		result.Reason = fmt.Sprintf("error compiling expression: %v", err)
		return result
	}

	out, err := expr.Run(prog, exprEnv(attrs))
	if err != nil {
		result.Reason = fmt.Sprintf("error evaluating expression: %v", err)
		return result
	}
	if b, ok := out.(bool); !ok || !b {
		result.Reason = "expression evaluated to false"
		return result
	}

	result.Satisfied = true
	return result
}
