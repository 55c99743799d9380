package scenario

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/louisbranch/tableroll/internal/platform/errors"
	diceservice "github.com/louisbranch/tableroll/internal/services/dice"
)

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case "use_system":
		return r.runUseSystemStep(state, step)
	case "use_seed":
		return r.runUseSeedStep(state, step)
	case "roll":
		return r.runRollStep(ctx, state, step)
	case "replay":
		return r.runReplayStep(ctx, state, step)
	case "expect_error":
		return r.runExpectErrorStep(ctx, state, step)
	case "systems":
		return r.runSystemsStep(ctx, step)
	default:
		return r.failf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runUseSystemStep(state *scenarioState, step Step) error {
	system := optionalString(step.Args, "system", "")
	if system == "" {
		return r.failf("system is required")
	}
	state.system = system
	return nil
}

func (r *Runner) runUseSeedStep(state *scenarioState, step Step) error {
	seed, ok, err := optionalSeed(step.Args, "seed")
	if err != nil {
		return r.failf("%v", err)
	}
	if !ok {
		state.seed = nil
		return nil
	}
	state.seed = &seed
	return nil
}

func (r *Runner) runRollStep(ctx context.Context, state *scenarioState, step Step) error {
	req, err := r.rollRequest(state, step.Args)
	if err != nil {
		return err
	}
	outcome, err := r.dice.Roll(ctx, req)
	if err != nil {
		return r.failf("roll %s %q: %w", req.System, req.Command, err)
	}
	r.logf("%s %s: %s (seed %d)", outcome.System, outcome.Command, outcome.Text, outcome.Seed)

	if name := optionalString(step.Args, "name", ""); name != "" {
		state.rolls[name] = outcome
	}
	if sameAs := optionalString(step.Args, "same_as", ""); sameAs != "" {
		previous, ok := state.rolls[sameAs]
		if !ok {
			return r.failf("no roll named %q", sameAs)
		}
		if previous.Text != outcome.Text {
			if err := r.assertf("roll %q text = %q, want %q", sameAs, outcome.Text, previous.Text); err != nil {
				return err
			}
		}
	}

	expect, ok := step.Args["expect"].(map[string]any)
	if !ok {
		return nil
	}
	return r.checkOutcome(outcome, expect)
}

// runReplayStep rolls the same command repeatedly and requires identical
// outcomes. Without a seed the first roll's seed is reused.
func (r *Runner) runReplayStep(ctx context.Context, state *scenarioState, step Step) error {
	req, err := r.rollRequest(state, step.Args)
	if err != nil {
		return err
	}
	times := optionalInt(step.Args, "times", 2)
	if times < 2 {
		return r.failf("replay needs at least 2 rolls, got %d", times)
	}

	first, err := r.dice.Roll(ctx, req)
	if err != nil {
		return r.failf("roll %s %q: %w", req.System, req.Command, err)
	}
	seed := first.Seed
	req.Seed = &seed
	for i := 1; i < times; i++ {
		again, err := r.dice.Roll(ctx, req)
		if err != nil {
			return r.failf("replay %s %q: %w", req.System, req.Command, err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			if err := r.assertf("replay %d of %q with seed %d differs (-first +replay):\n%s", i, req.Command, seed, diff); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) runExpectErrorStep(ctx context.Context, state *scenarioState, step Step) error {
	req := diceservice.Request{
		System:  optionalString(step.Args, "system", state.system),
		Command: optionalString(step.Args, "command", ""),
	}
	want := apperrors.Code(strings.ToUpper(optionalString(step.Args, "code", "")))
	if want == "" {
		return r.failf("expect_error requires a code")
	}

	outcome, err := r.dice.Roll(ctx, req)
	if err == nil {
		return r.assertf("roll %s %q = %q, want error %s", req.System, req.Command, outcome.Text, want)
	}
	if got := apperrors.GetCode(err); got != want {
		return r.assertf("roll %s %q error code = %s, want %s (%v)", req.System, req.Command, got, want, err)
	}
	return nil
}

func (r *Runner) runSystemsStep(ctx context.Context, step Step) error {
	list, err := r.dice.ListSystems(ctx)
	if err != nil {
		return r.failf("list systems: %w", err)
	}
	ids := make(map[string]bool, len(list))
	for _, info := range list {
		ids[info.ID] = true
	}
	for _, want := range stringList(step.Args["contains"]) {
		if !ids[want] {
			if err := r.assertf("system %q is not registered", want); err != nil {
				return err
			}
		}
	}
	if count, ok := step.Args["count"]; ok {
		if want, ok := toInt(count); ok && want != len(list) {
			return r.assertf("systems = %d, want %d", len(list), want)
		}
	}
	return nil
}

func (r *Runner) rollRequest(state *scenarioState, args map[string]any) (diceservice.Request, error) {
	req := diceservice.Request{
		System:  optionalString(args, "system", state.system),
		Command: optionalString(args, "command", ""),
		Seed:    state.seed,
	}
	if req.System == "" {
		return diceservice.Request{}, r.failf("no system; call scene:system or pass system")
	}
	if req.Command == "" {
		return diceservice.Request{}, r.failf("command is required")
	}
	seed, ok, err := optionalSeed(args, "seed")
	if err != nil {
		return diceservice.Request{}, r.failf("%v", err)
	}
	if ok {
		req.Seed = &seed
	}
	return req, nil
}

// checkOutcome compares outcome with the expect table of a roll step.
func (r *Runner) checkOutcome(outcome diceservice.Outcome, expect map[string]any) error {
	label := fmt.Sprintf("%s %q", outcome.System, outcome.Command)
	if value, ok := expect["handled"].(bool); ok && value != outcome.Handled {
		if err := r.assertf("%s handled = %v, want %v", label, outcome.Handled, value); err != nil {
			return err
		}
	}
	if value, ok := expect["text"].(string); ok && value != outcome.Text {
		if err := r.assertf("%s text = %q, want %q", label, outcome.Text, value); err != nil {
			return err
		}
	}
	if value, ok := expect["contains"].(string); ok && !strings.Contains(outcome.Text, value) {
		if err := r.assertf("%s text = %q, want it to contain %q", label, outcome.Text, value); err != nil {
			return err
		}
	}
	if value, ok := expect["prefix"].(string); ok && !strings.HasPrefix(outcome.Text, value) {
		if err := r.assertf("%s text = %q, want prefix %q", label, outcome.Text, value); err != nil {
			return err
		}
	}
	if value, ok := expect["outcome"].(string); ok && !strings.EqualFold(value, outcome.Outcome.String()) {
		if err := r.assertf("%s outcome = %s, want %s", label, outcome.Outcome, value); err != nil {
			return err
		}
	}
	if value, ok := toInt(expect["audit"]); ok && value != len(outcome.Audit) {
		if err := r.assertf("%s audit entries = %d, want %d", label, len(outcome.Audit), value); err != nil {
			return err
		}
	}
	if value, ok := toInt(expect["min_audit"]); ok && len(outcome.Audit) < value {
		if err := r.assertf("%s audit entries = %d, want at least %d", label, len(outcome.Audit), value); err != nil {
			return err
		}
	}
	if sources := stringList(expect["sources"]); len(sources) > 0 {
		got := make([]string, 0, len(outcome.Audit))
		for _, draw := range outcome.Audit {
			got = append(got, draw.Source)
		}
		if diff := cmp.Diff(sources, got); diff != "" {
			if err := r.assertf("%s audit sources mismatch (-want +got):\n%s", label, diff); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

func optionalString(args map[string]any, key, fallback string) string {
	value, ok := args[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func optionalInt(args map[string]any, key string, fallback int) int {
	if value, ok := toInt(args[key]); ok {
		return value
	}
	return fallback
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// optionalSeed reads a seed given as a Lua integer or, for values past 2^53,
// a decimal string.
func optionalSeed(args map[string]any, key string) (int64, bool, error) {
	switch v := args[key].(type) {
	case nil:
		return 0, false, nil
	case int64:
		return v, true, nil
	case string:
		seed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false, fmt.Errorf("seed %q is not a decimal integer", v)
		}
		return seed, true, nil
	default:
		return 0, false, fmt.Errorf("seed must be an integer, got %v", v)
	}
}

func stringList(value any) []string {
	switch v := value.(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if text, ok := item.(string); ok {
				out = append(out, text)
			}
		}
		return out
	default:
		return nil
	}
}
