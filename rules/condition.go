package rules

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Condition is a free-form predicate written in expr for requirements the
// structured kinds can't express. It must be compiled before evaluation;
// the registry compiles every condition it is given.
type Condition struct {
	Src     string      // expr source (preserved for serialization)
	program *vm.Program // compiled bytecode
}

// NewCondition compiles src against StateEnv.
func NewCondition(src string) (*Condition, error) {
	c := &Condition{Src: src}
	if err := c.Compile(); err != nil {
		return nil, err
	}
	return c, nil
}

// Compile type-checks the source against StateEnv and caches the program.
func (c *Condition) Compile() error {
	prog, err := expr.Compile(c.Src, expr.Env(StateEnv{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("compile condition %q: %w", c.Src, err)
	}
	c.program = prog
	return nil
}

// Holds runs the compiled program. Uncompiled conditions and runtime errors
// count as unmet; evaluation never fails the caller.
func (c *Condition) Holds(s StateView) bool {
	if c.program == nil {
		slog.Warn("condition not compiled", "src", c.Src)
		return false
	}
	result, err := vm.Run(c.program, StateEnv{State: s})
	if err != nil {
		slog.Warn("condition error", "src", c.Src, "error", err)
		return false
	}
	match, ok := result.(bool)
	return ok && match
}

func (c *Condition) String() string { return "when " + c.Src }
