// Package dice evaluates dice commands against the registered game systems.
//
// Every evaluation draws from its own roller seeded per request, so a returned
// seed replays the exact same result.
package dice

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/tableroll/internal/core/check"
	coredice "github.com/louisbranch/tableroll/internal/core/dice"
	"github.com/louisbranch/tableroll/internal/core/random"
	"github.com/louisbranch/tableroll/internal/core/table"
	apperrors "github.com/louisbranch/tableroll/internal/platform/errors"
	i18n "github.com/louisbranch/tableroll/internal/platform/i18n/catalog"
	"github.com/louisbranch/tableroll/internal/platform/requestctx"
	"github.com/louisbranch/tableroll/internal/systems"
)

// MaxCommandLength caps the characters accepted in one command.
const MaxCommandLength = 256

const tracerName = "github.com/louisbranch/tableroll/internal/services/dice"

// Request asks for one command to be evaluated.
type Request struct {
	System  string
	Command string
	// Seed replays an earlier roll. Nil draws a fresh seed.
	Seed *int64
}

// Outcome is the result of one evaluation. Handled is false when the command
// matched none of the system's grammars; that is not an error.
type Outcome struct {
	System  string
	Command string
	Handled bool
	Text    string
	Audit   table.Audit
	Outcome check.Outcome
	Seed    int64
}

// SystemInfo describes a registered game system.
type SystemInfo struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Locale string   `json:"locale"`
	Help   string   `json:"help"`
	Tables []string `json:"tables"`
}

// Service evaluates commands for every system in a registry.
type Service struct {
	registry  *systems.Registry
	tables    *table.Catalog
	labels    *i18n.Bundle
	seedFunc  func() (int64, error) // Generates per-request random seeds.
	newRoller func(seed int64) *coredice.Roller
	tracer    trace.Tracer
}

// Option customizes a Service.
type Option func(*Service)

// WithSeedFunc replaces the crypto seed source.
func WithSeedFunc(seedFunc func() (int64, error)) Option {
	return func(s *Service) {
		s.seedFunc = seedFunc
	}
}

// WithRollerFunc replaces how a seed becomes a roller.
func WithRollerFunc(newRoller func(seed int64) *coredice.Roller) Option {
	return func(s *Service) {
		s.newRoller = newRoller
	}
}

// WithLabels sets the label bundle used for verdicts.
func WithLabels(labels *i18n.Bundle) Option {
	return func(s *Service) {
		s.labels = labels
	}
}

// NewService checks that every system's tables exist in tables.
func NewService(registry *systems.Registry, tables *table.Catalog, opts ...Option) (*Service, error) {
	if registry == nil {
		return nil, errors.New("game system registry is required")
	}
	if tables == nil {
		return nil, errors.New("table catalog is required")
	}
	if err := registry.Validate(tables); err != nil {
		return nil, fmt.Errorf("validate game systems: %w", err)
	}

	s := &Service{
		registry:  registry,
		tables:    tables,
		labels:    i18n.Default(),
		seedFunc:  random.NewSeed,
		newRoller: coredice.NewSeededRoller,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Evaluate resolves command for systemID with a fresh seed.
func (s *Service) Evaluate(ctx context.Context, systemID, command string) (Outcome, error) {
	return s.Roll(ctx, Request{System: systemID, Command: command})
}

// Roll resolves one command. Errors are *apperrors.Error values.
func (s *Service) Roll(ctx context.Context, req Request) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "dice.Roll", trace.WithAttributes(
		attribute.String("tableroll.system", req.System),
	))
	defer span.End()

	outcome, err := s.roll(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		log.Printf("roll failed request_id=%s system=%s code=%s: %v",
			requestctx.RequestIDFromContext(ctx), req.System, apperrors.GetCode(err), err)
		return Outcome{}, err
	}

	span.SetAttributes(
		attribute.String("tableroll.command", outcome.Command),
		attribute.Bool("tableroll.handled", outcome.Handled),
		attribute.String("tableroll.outcome", outcome.Outcome.String()),
		attribute.Int("tableroll.draws", len(outcome.Audit)),
	)
	log.Printf("roll request_id=%s system=%s command=%s handled=%t outcome=%s seed=%d",
		requestctx.RequestIDFromContext(ctx), outcome.System, outcome.Command, outcome.Handled, outcome.Outcome, outcome.Seed)
	return outcome, nil
}

func (s *Service) roll(ctx context.Context, req Request) (Outcome, error) {
	systemID := strings.TrimSpace(req.System)
	if systemID == "" {
		return Outcome{}, apperrors.New(apperrors.CodeSystemRequired, "game system is required")
	}
	command := strings.TrimSpace(req.Command)
	if command == "" {
		return Outcome{}, apperrors.New(apperrors.CodeCommandEmpty, "command is required")
	}
	if utf8.RuneCountInString(command) > MaxCommandLength {
		return Outcome{}, apperrors.WithMetadata(apperrors.CodeCommandTooLong,
			fmt.Sprintf("command exceeds %d characters", MaxCommandLength),
			map[string]string{"max": strconv.Itoa(MaxCommandLength)})
	}
	system, ok := s.registry.Get(systemID)
	if !ok {
		return Outcome{}, apperrors.WrapWithMetadata(apperrors.CodeSystemUnknown,
			fmt.Sprintf("unknown game system %s", systemID),
			map[string]string{"system": systemID}, systems.ErrUnknownSystem)
	}

	var seed int64
	if req.Seed != nil {
		seed = *req.Seed
	} else {
		if s.seedFunc == nil {
			return Outcome{}, apperrors.New(apperrors.CodeSeedUnavailable, "seed generator is not configured")
		}
		generated, err := s.seedFunc()
		if err != nil {
			return Outcome{}, apperrors.Wrap(apperrors.CodeSeedUnavailable, "generate seed", err)
		}
		seed = generated
	}

	env := systems.NewEnv(s.tables, s.newRoller(seed), s.labels)
	result, handled, err := s.registry.Dispatch(ctx, env, system.ID(), command)
	if err != nil {
		return Outcome{}, domainError(system.ID(), err)
	}
	return Outcome{
		System:  system.ID(),
		Command: systems.NormalizeCommand(command),
		Handled: handled,
		Text:    result.Text,
		Audit:   result.Audit,
		Outcome: result.Outcome,
		Seed:    seed,
	}, nil
}

func domainError(systemID string, err error) error {
	switch {
	case errors.Is(err, table.ErrUnknownTable):
		return apperrors.Wrap(apperrors.CodeTableUnknown, fmt.Sprintf("%s: %v", systemID, err), err)
	case errors.Is(err, table.ErrIntegrity):
		return apperrors.Wrap(apperrors.CodeTableIntegrity, fmt.Sprintf("%s: %v", systemID, err), err)
	default:
		return apperrors.Wrap(apperrors.CodeUnknown, fmt.Sprintf("%s: %v", systemID, err), err)
	}
}

// ListSystems describes every registered system sorted by id.
func (s *Service) ListSystems(ctx context.Context) ([]SystemInfo, error) {
	_, span := s.tracer.Start(ctx, "dice.ListSystems")
	defer span.End()

	registered := s.registry.List()
	out := make([]SystemInfo, 0, len(registered))
	for _, system := range registered {
		out = append(out, SystemInfo{
			ID:     system.ID(),
			Name:   system.Name(),
			Locale: system.Locale(),
			Help:   system.Help(),
			Tables: system.Tables(),
		})
	}
	return out, nil
}
