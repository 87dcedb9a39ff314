package evaluator

// EvalContext maintains the state of a single evaluation.
type EvalContext struct {
	// values holds the variables of the evaluation
	values map[string]any

	// depth tracks nesting to prevent stack overflow
	depth int
}

// NewContext creates a new evaluation context.
func NewContext(values map[string]any) *EvalContext {
	return &EvalContext{
		values: values,
	}
}

// Values returns the variables of the evaluation.
func (c *EvalContext) Values() map[string]any {
	return c.values
}

// Lookup returns the value of a variable.
func (c *EvalContext) Lookup(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Depth returns the current nesting depth.
func (c *EvalContext) Depth() int {
	return c.depth
}

func (c *EvalContext) enter() {
	c.depth++
}

func (c *EvalContext) leave() {
	c.depth--
}
