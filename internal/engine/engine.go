package engine

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	lru "github.com/hashicorp/golang-lru"

	"github.com/darmiel/vertrag/internal/core"
)

var ErrEmptyAction = errors.New("requested action must not be empty")

var _ core.Evaluator = (*Engine)(nil)

// MaxCachedPrograms bounds the number of compiled expressions kept per Engine.
// Inline policies from explain requests share the cache with catalog policies.
const MaxCachedPrograms = 512

// Engine evaluates usage policies against requester attributes.
// It has no side effects besides caching compiled permission expressions
// and is safe for concurrent use.
type Engine struct {
	programs *lru.Cache
}

// New creates a new Engine.
func New() *Engine {
	programs, err := lru.New(MaxCachedPrograms)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &Engine{programs: programs}
}

// Compile validates the policy and pre-compiles its permission expressions.
// Every returned error wraps core.ErrInvalidPolicy.
func (e *Engine) Compile(policy core.Policy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	for i, perm := range policy.Permissions {
		if perm.Expr == "" {
			continue
		}
		if _, err := e.program(perm.Expr); err != nil {
			return fmt.Errorf("%w: policy '%s': permission %d: compiling expression: %v",
				core.ErrInvalidPolicy, policy.ID, i, err)
		}
	}
	return nil
}

func (e *Engine) program(code string) (*vm.Program, error) {
	if cached, ok := e.programs.Get(code); ok {
		return cached.(*vm.Program), nil
	}

	prog, err := expr.Compile(code, expr.Env(exprEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, err
	}

	e.programs.Add(code, prog)
	return prog, nil
}

func exprEnv(attrs core.AttributeSet) map[string]any {
	if attrs == nil {
		return map[string]any{"attributes": map[string]any{}}
	}
	return map[string]any{"attributes": attrs.Map()}
}
