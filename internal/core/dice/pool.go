package dice

import "errors"

var (
	// ErrMissingDice is returned when a pool has no specs.
	ErrMissingDice = errors.New("at least one die spec is required")
	// ErrInvalidDiceSpec is returned for a spec with non-positive sides or count.
	ErrInvalidDiceSpec = errors.New("dice spec sides and count must be positive")
)

// Spec is one homogeneous group of dice, e.g. 2D6.
type Spec struct {
	Sides int
	Count int
}

// Result is the outcome of rolling a pool of specs.
type Result struct {
	Rolls []Roll
	Total int
}

// Pool rolls every spec in order.
//
// Rolls appear in the same order as specs. Result.Total is the sum of every die
// rolled across the pool. A pool is validated before any die is drawn, so a bad
// spec never consumes entropy.
func (r *Roller) Pool(specs ...Spec) (Result, error) {
	if len(specs) == 0 {
		return Result{}, ErrMissingDice
	}
	for _, spec := range specs {
		if spec.Sides <= 0 || spec.Count <= 0 {
			return Result{}, ErrInvalidDiceSpec
		}
	}

	rolls := make([]Roll, 0, len(specs))
	total := 0
	for _, spec := range specs {
		roll := r.RollDice(spec.Count, spec.Sides)
		rolls = append(rolls, roll)
		total += roll.Total
	}
	return Result{Rolls: rolls, Total: total}, nil
}

// Faces flattens every die face of the pool in roll order.
func (r Result) Faces() []int {
	var faces []int
	for _, roll := range r.Rolls {
		faces = append(faces, roll.Results...)
	}
	return faces
}
