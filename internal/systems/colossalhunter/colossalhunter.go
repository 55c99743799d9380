// Package colossalhunter implements Colossal Hunter (コロッサルハンター): 3D6
// checks with automatic critical and fumble, and the game's d66 tables.
package colossalhunter

import (
	"context"
	"strings"

	"github.com/louisbranch/tableroll/internal/core/check"
	"github.com/louisbranch/tableroll/internal/core/command"
	"github.com/louisbranch/tableroll/internal/core/dice"
	"github.com/louisbranch/tableroll/internal/core/format"
	"github.com/louisbranch/tableroll/internal/core/table"
	"github.com/louisbranch/tableroll/internal/systems"
)

const (
	// ID is the registry id.
	ID = "ColossalHunter"
	// Locale of the result labels.
	Locale = "ja-JP"
)

const help = `・判定（CH±x>=y)
　3D6の判定。クリティカル、ファンブルの自動判定を行います。
　x：修正値。省略可能。y：目標値。省略可能。
　例） CH　CH+1　CH+2>=10
・BIG-6表(B6T)
・覚醒表(AWT)
・現状表(CST)
・ハンターマーク表(HMT)
・特徴表(SPT)
・プレシャス表(PRT)
・専門能力表(EXT)
・コロッサル行動表(CAT)
・NPC作成表(CNP)
・D66ダイスあり`

var checkParser = command.MustCompile(command.Grammar{
	Token:        "CH",
	DefaultCount: 3,
	CountPrefix:  true,
	Operators:    []command.Operator{command.OpGreaterEqual},
})

// Rules: a natural 5 or less fumbles, a total of 16 or more is critical.
var Rules = check.Rules{
	FumbleAtOrBelow:   check.Threshold(5),
	CriticalAtOrAbove: check.Threshold(16),
}

// tables maps commands to table ids.
var tables = map[string]string{
	"AWT": "colossalhunter.awt",
	"CST": "colossalhunter.cst",
	"HMT": "colossalhunter.hmt",
	"SPT": "colossalhunter.spt",
	"PRT": "colossalhunter.prt",
	"EXT": "colossalhunter.ext",
	"CAT": "colossalhunter.cat",
	"B6T": "colossalhunter.b6t",
	"CNP": "colossalhunter.cnp",
}

// System is the Colossal Hunter game system.
type System struct{}

// New returns the system.
func New() System { return System{} }

func (System) ID() string     { return ID }
func (System) Name() string   { return "コロッサルハンター" }
func (System) Locale() string { return Locale }
func (System) Help() string   { return help }

func (System) Prefixes() []string {
	return []string{`\d*CH`, `AWT`, `CST`, `HMT`, `SPT`, `PRT`, `EXT`, `CAT`, `B6T`, `CNP`, `D66`}
}

func (System) Tables() []string {
	ids := make([]string, 0, len(tables))
	for _, id := range tables {
		ids = append(ids, id)
	}
	return ids
}

func (System) Eval(ctx context.Context, env systems.Env, cmd string) (systems.Result, bool, error) {
	cmd = strings.ToUpper(strings.TrimSpace(cmd))
	if req, ok := checkParser.Parse(cmd); ok {
		return systems.Check(env, req, systems.CheckSpec{Locale: Locale, Sides: 6, Rules: Rules}), true, nil
	}
	if cmd == "D66" {
		return systems.D66(env, dice.NoSort), true, nil
	}
	id, ok := tables[cmd]
	if !ok {
		return systems.Result{}, false, nil
	}
	res, err := systems.RollTable(ctx, env, id, format.ArrowStyle, table.Options{})
	if err != nil {
		return systems.Result{}, false, err
	}
	return res, true, nil
}
