package eval

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Compiled is a validated condition bound to the type of its environment.
type Compiled struct {
	Source  string
	program *vm.Program
}

// Compile checks cond against the fact type of env. Unknown names and
// non-boolean results fail here rather than at evaluation time. An empty
// condition always holds.
func Compile(cond string, env any) (*Compiled, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		cond = "true"
	}

	if err := Validate(cond); err != nil {
		return nil, err
	}

	program, err := expr.Compile(cond, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", cond, err)
	}

	return &Compiled{Source: cond, program: program}, nil
}

func (c *Compiled) Eval(env any) (bool, error) {
	if c == nil || c.program == nil {
		return false, fmt.Errorf("condition is not compiled")
	}

	out, err := expr.Run(c.program, env)
	if err != nil {
		return false, err
	}

	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("cond must evaluate to bool (got %T)", out)
	}
	return b, nil
}
