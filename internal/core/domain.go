package core

import (
	"fmt"
	"strings"
)

// Action is a usage action a policy rule applies to, such as USE or DISTRIBUTE.
// Actions compare case-insensitively.
type Action string

const (
	ActionUse        Action = "USE"
	ActionDistribute Action = "DISTRIBUTE"
	ActionModify     Action = "MODIFY"
	ActionArchive    Action = "ARCHIVE"
)

func (a Action) Matches(other Action) bool {
	return strings.EqualFold(string(a), string(other))
}

// Permission allows an action when all of its constraints hold.
type Permission struct {
	Action Action `yaml:"action" json:"action"`

	// Description is reported as the decision reason when this permission grants access.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Constraints are combined with AND. An empty list permits unconditionally.
	Constraints []Constraint `yaml:"constraints,omitempty" json:"constraints,omitempty"`

	// Expr is an optional boolean expression over `attributes` that must also hold.
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`
}

// Describe renders the permission like "Allows USE when: region in [EU, EEA]".
func (p Permission) Describe() string {
	desc := "Allows " + string(p.Action)
	var parts []string
	for _, c := range p.Constraints {
		parts = append(parts, c.String())
	}
	if p.Expr != "" {
		parts = append(parts, p.Expr)
	}
	if len(parts) > 0 {
		desc += " when: " + strings.Join(parts, " AND ")
	}
	return desc
}

// Prohibition denies an action unconditionally.
type Prohibition struct {
	Action Action `yaml:"action" json:"action"`
}

// Obligation is an advisory duty attached to a policy. It is recorded, not enforced.
type Obligation struct {
	Action      Action `yaml:"action" json:"action"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Policy is the closed-world rule set attached to an asset:
// anything not explicitly permitted is denied.
type Policy struct {
	ID          string `yaml:"id" json:"id"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Permissions are checked in order, the first match wins.
	Permissions  []Permission  `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	Prohibitions []Prohibition `yaml:"prohibitions,omitempty" json:"prohibitions,omitempty"`
	Obligations  []Obligation  `yaml:"obligations,omitempty" json:"obligations,omitempty"`
}

// Validate checks every constraint of every permission.
func (p Policy) Validate() error {
	for i, perm := range p.Permissions {
		if perm.Action == "" {
			return fmt.Errorf("%w: policy '%s': permission %d has no action", ErrInvalidPolicy, p.ID, i)
		}
		for _, c := range perm.Constraints {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("policy '%s': permission %d: %w", p.ID, i, err)
			}
		}
	}
	for i, prohib := range p.Prohibitions {
		if prohib.Action == "" {
			return fmt.Errorf("%w: policy '%s': prohibition %d has no action", ErrInvalidPolicy, p.ID, i)
		}
	}
	return nil
}

// Describe summarizes the policy, e.g. "Allows USE when: region in [EU, EEA]; Prohibits DISTRIBUTE".
func (p Policy) Describe() string {
	var parts []string
	for _, perm := range p.Permissions {
		parts = append(parts, perm.Describe())
	}
	for _, prohib := range p.Prohibitions {
		parts = append(parts, "Prohibits "+string(prohib.Action))
	}
	if len(parts) == 0 {
		return "No restrictions"
	}
	return strings.Join(parts, "; ")
}

// Clone returns a deep copy so a snapshot cannot be changed through the catalog.
func (p Policy) Clone() Policy {
	cp := p
	if p.Permissions != nil {
		cp.Permissions = make([]Permission, len(p.Permissions))
		for i, perm := range p.Permissions {
			if perm.Constraints != nil {
				cs := make([]Constraint, len(perm.Constraints))
				for j, c := range perm.Constraints {
					if c.RightOperand.Kind() == KindList {
						l, _ := c.RightOperand.AsList()
						c.RightOperand = ListValue(l...)
					}
					cs[j] = c
				}
				perm.Constraints = cs
			}
			cp.Permissions[i] = perm
		}
	}
	if p.Prohibitions != nil {
		cp.Prohibitions = append([]Prohibition(nil), p.Prohibitions...)
	}
	if p.Obligations != nil {
		cp.Obligations = append([]Obligation(nil), p.Obligations...)
	}
	return cp
}
