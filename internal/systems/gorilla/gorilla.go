// Package gorilla implements Gorilla TRPG (ゴリラTRPG): "G" is a 2D6 check
// where a double five is an automatic success.
package gorilla

import (
	"context"

	"github.com/louisbranch/tableroll/internal/core/check"
	"github.com/louisbranch/tableroll/internal/core/command"
	"github.com/louisbranch/tableroll/internal/systems"
)

const (
	// ID is the registry id.
	ID = "Gorilla"
	// Locale of the result labels.
	Locale = "ja-JP"
)

const help = `2D6ロール時のゴリティカル自動判定を行います。

G = 2D6のショートカット

例) G>=7 : 2D6して7以上なら成功`

var checkParser = command.MustCompile(command.Grammar{
	Token:         "G",
	EchoToken:     "2D6",
	DefaultCount:  2,
	Operators:     []command.Operator{command.OpGreaterEqual},
	AllowWildcard: true,
})

// Rules: rolling [5,5] is a gorillacal.
var Rules = check.Rules{CriticalFaces: []int{5, 5}}

var spec = systems.CheckSpec{
	Locale:              Locale,
	Sides:               6,
	Rules:               Rules,
	LabelKeys:           map[check.Outcome]string{check.Critical: "gorilla.outcome.critical"},
	JudgeWithTargetOnly: true,
}

// System is the Gorilla TRPG game system.
type System struct{}

// New returns the system.
func New() System { return System{} }

func (System) ID() string         { return ID }
func (System) Name() string       { return "ゴリラTRPG" }
func (System) Locale() string     { return Locale }
func (System) Help() string       { return help }
func (System) Prefixes() []string { return []string{`G`} }
func (System) Tables() []string   { return nil }

func (System) Eval(_ context.Context, env systems.Env, cmd string) (systems.Result, bool, error) {
	req, ok := checkParser.Parse(cmd)
	if !ok {
		return systems.Result{}, false, nil
	}
	return systems.Check(env, req, spec), true, nil
}
