package systems

import (
	"context"
	"fmt"
	"strconv"

	"github.com/louisbranch/tableroll/internal/core/check"
	"github.com/louisbranch/tableroll/internal/core/command"
	"github.com/louisbranch/tableroll/internal/core/dice"
	"github.com/louisbranch/tableroll/internal/core/format"
	"github.com/louisbranch/tableroll/internal/core/table"
	i18n "github.com/louisbranch/tableroll/internal/platform/i18n/catalog"
)

// Env carries what a system needs to evaluate one command. Resolver must draw
// from Roller so the audit follows a single entropy stream.
type Env struct {
	Roller   table.Roller
	Resolver *table.Resolver
	Labels   *i18n.Bundle
}

// NewEnv wires a resolver over tables that shares roller.
func NewEnv(tables *table.Catalog, roller *dice.Roller, labels *i18n.Bundle) Env {
	if labels == nil {
		labels = i18n.Default()
	}
	return Env{Roller: roller, Resolver: table.NewResolver(tables, roller), Labels: labels}
}

// Label returns the localized message for key.
func (e Env) Label(locale, key string, args ...any) string {
	labels := e.Labels
	if labels == nil {
		labels = i18n.Default()
	}
	return labels.Label(locale, key, args...)
}

// Result is a resolved command.
type Result struct {
	Text    string
	Audit   table.Audit
	Outcome check.Outcome
}

// OutcomeKey is the catalog key for an outcome label.
func OutcomeKey(outcome check.Outcome) string {
	return "dice.outcome." + outcome.String()
}

// CheckSpec configures a check roll.
type CheckSpec struct {
	Locale string
	Sides  int
	Rules  check.Rules
	// LabelKeys overrides the catalog key for specific outcomes.
	LabelKeys map[check.Outcome]string
	// JudgeWithTargetOnly skips every automatic outcome unless the command
	// carries a concrete target.
	JudgeWithTargetOnly bool
}

// Check rolls req's dice, classifies the total and renders the check line.
// The audit holds one entry per die.
func Check(env Env, req command.Request, spec CheckSpec) Result {
	roll := env.Roller.RollDice(req.Count, spec.Sides)
	total := roll.Total + req.Modifier

	outcome := check.NoJudgment
	if !spec.JudgeWithTargetOnly || req.Judged() {
		outcome = spec.Rules.Classify(check.Roll{Natural: roll.Total, Total: total, Faces: roll.Results}, req)
	}

	verdict := ""
	if outcome != check.NoJudgment {
		key, ok := spec.LabelKeys[outcome]
		if !ok {
			key = OutcomeKey(outcome)
		}
		verdict = env.Label(spec.Locale, key)
	}

	return Result{
		Text: format.Check(format.CheckLine{
			Echo:     req.String(),
			Faces:    roll.Results,
			Natural:  roll.Total,
			Modifier: req.Modifier,
			Total:    total,
			Verdict:  verdict,
		}),
		Audit:   DiceAudit(spec.Sides, roll.Results),
		Outcome: outcome,
	}
}

// DiceAudit records each face as its own draw.
func DiceAudit(sides int, faces []int) table.Audit {
	source := "D" + strconv.Itoa(sides)
	audit := make(table.Audit, 0, len(faces))
	for _, face := range faces {
		audit = append(audit, table.Draw{Source: source, Index: face, Dice: []int{face}, Kind: table.KindDice})
	}
	return audit
}

// RollTable resolves table id and renders it with the table's display name.
func RollTable(ctx context.Context, env Env, id string, style format.TableStyle, opts table.Options) (Result, error) {
	res, err := env.Resolver.Resolve(ctx, id, opts)
	if err != nil {
		return Result{}, fmt.Errorf("roll table %s: %w", id, err)
	}
	t, _ := env.Resolver.Catalog().Table(id)
	return Result{
		Text:  format.Table(style, t.Name, res.Audit.Indices(), res.Text),
		Audit: res.Audit,
	}, nil
}

// D66 rolls a bare D66 command: "(D66) ＞ 15".
func D66(env Env, policy dice.SortPolicy) Result {
	value := env.Roller.RollD66(policy)
	return Result{
		Text:  "(D66)" + format.Arrow + strconv.Itoa(value),
		Audit: table.Audit{{Source: "D66", Index: value, Kind: table.KindDice}},
	}
}
