package systems

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/louisbranch/tableroll/internal/core/table"
)

// GameSystem is one tabletop game's set of commands.
type GameSystem interface {
	// ID is the stable system identifier, e.g. "ColossalHunter".
	ID() string
	// Name is the display name in the system's own language.
	Name() string
	// Locale selects result labels, e.g. "ja-JP".
	Locale() string
	// Prefixes are anchored, case-insensitive patterns a command must start
	// with before Eval is attempted.
	Prefixes() []string
	// Help describes the commands.
	Help() string
	// Tables lists the table ids the system rolls on.
	Tables() []string
	// Eval resolves command. ok is false when the command is not this
	// system's; err is reserved for defects such as broken table data.
	Eval(ctx context.Context, env Env, command string) (result Result, ok bool, err error)
}

var (
	// ErrSystemRequired indicates a nil system was provided for registration.
	ErrSystemRequired = errors.New("game system is required")
	// ErrSystemIDRequired indicates a system with a blank id.
	ErrSystemIDRequired = errors.New("game system id is required")
	// ErrSystemAlreadyRegistered indicates a duplicate system id.
	ErrSystemAlreadyRegistered = errors.New("game system already registered")
	// ErrUnknownSystem indicates dispatch to an unregistered system.
	ErrUnknownSystem = errors.New("unknown game system")
)

type entry struct {
	system GameSystem
	prefix *regexp.Regexp
}

// Registry manages registered game systems.
type Registry struct {
	mu      sync.RWMutex
	systems map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{systems: make(map[string]entry)}
}

// Register adds a game system. IDs are matched case-insensitively.
func (r *Registry) Register(system GameSystem) error {
	if system == nil {
		return ErrSystemRequired
	}
	id := strings.TrimSpace(system.ID())
	if id == "" {
		return ErrSystemIDRequired
	}

	patterns := system.Prefixes()
	if len(patterns) == 0 {
		return fmt.Errorf("game system %s: at least one prefix is required", id)
	}
	prefix, err := regexp.Compile(`(?i)^(?:` + strings.Join(patterns, "|") + `)`)
	if err != nil {
		return fmt.Errorf("game system %s: compile prefixes: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(id)
	if _, exists := r.systems[key]; exists {
		return fmt.Errorf("%w: %s", ErrSystemAlreadyRegistered, id)
	}
	r.systems[key] = entry{system: system, prefix: prefix}
	return nil
}

// MustRegister is Register for startup wiring.
func (r *Registry) MustRegister(systems ...GameSystem) *Registry {
	for _, system := range systems {
		if err := r.Register(system); err != nil {
			panic(err)
		}
	}
	return r
}

// Get returns the system with id.
func (r *Registry) Get(id string) (GameSystem, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.systems[strings.ToLower(strings.TrimSpace(id))]
	return e.system, ok
}

// List returns all registered systems sorted by id.
func (r *Registry) List() []GameSystem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]GameSystem, 0, len(r.systems))
	for _, e := range r.systems {
		out = append(out, e.system)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Validate checks every system's tables exist in catalog.
func (r *Registry) Validate(catalog *table.Catalog) error {
	var errs []error
	for _, system := range r.List() {
		for _, id := range system.Tables() {
			if _, ok := catalog.Table(id); !ok {
				errs = append(errs, fmt.Errorf("game system %s: %w: %s", system.ID(), table.ErrUnknownTable, id))
			}
		}
	}
	return errors.Join(errs...)
}

// Dispatch offers command to the system with id.
//
// The first whitespace-separated token of command is used, upper-cased. A
// command that matches none of the system's prefixes is not handled.
func (r *Registry) Dispatch(ctx context.Context, env Env, id string, command string) (Result, bool, error) {
	r.mu.RLock()
	e, ok := r.systems[strings.ToLower(strings.TrimSpace(id))]
	r.mu.RUnlock()
	if !ok {
		return Result{}, false, fmt.Errorf("%w: %s", ErrUnknownSystem, id)
	}

	normalized := NormalizeCommand(command)
	if normalized == "" || !e.prefix.MatchString(normalized) {
		return Result{}, false, nil
	}
	return e.system.Eval(ctx, env, normalized)
}

// NormalizeCommand keeps the first whitespace-separated token, upper-cased.
func NormalizeCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
