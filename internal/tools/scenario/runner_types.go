package scenario

import diceservice "github.com/louisbranch/tableroll/internal/services/dice"

// Scenario is a named list of steps loaded from a Lua script.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scenario action and its arguments.
type Step struct {
	Kind string
	Args map[string]any
}

type scenarioState struct {
	// system and seed apply to steps that leave them out.
	system string
	seed   *int64
	// rolls keeps outcomes of steps given a name, for replay comparisons.
	rolls map[string]diceservice.Outcome
}
