// Package builtin registers the game systems shipped with tableroll.
package builtin

import (
	"github.com/louisbranch/tableroll/internal/systems"
	"github.com/louisbranch/tableroll/internal/systems/colossalhunter"
	"github.com/louisbranch/tableroll/internal/systems/gorilla"
	"github.com/louisbranch/tableroll/internal/systems/kamigakari"
	"github.com/louisbranch/tableroll/internal/systems/orgarain"
)

// Systems returns every built-in game system.
func Systems() []systems.GameSystem {
	return []systems.GameSystem{
		colossalhunter.New(),
		kamigakari.New(),
		gorilla.New(),
		orgarain.New(),
	}
}

// NewRegistry returns a registry holding every built-in game system.
func NewRegistry() (*systems.Registry, error) {
	registry := systems.NewRegistry()
	for _, system := range Systems() {
		if err := registry.Register(system); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
