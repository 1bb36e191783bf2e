package trace

import (
	"fmt"

	"github.com/ajalab/concolic/expr"
)

// Branch represents a branching decision taken along a path with some additional information.
// This includes arithmetic decisions (e.g., a division by a possibly zero divisor) as well as
// ordinary two-way and n-way branching.
type Branch struct {
	// ID identifies the program point of the decision.
	ID string
	// Index is the outcome taken at the decision.
	Index int
	// Constraint is the symbolic condition of the taken outcome.
	Constraint expr.Expr
}

func (b Branch) String() string {
	return fmt.Sprintf("%s#%d: %v", b.ID, b.Index, b.Constraint)
}
