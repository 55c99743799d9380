// Package kamigakari implements the Korean edition of Kamigakari (카미가카리):
// the game's tables and the material chart with its derived price.
package kamigakari

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/louisbranch/tableroll/internal/core/dice"
	"github.com/louisbranch/tableroll/internal/core/format"
	"github.com/louisbranch/tableroll/internal/core/table"
	"github.com/louisbranch/tableroll/internal/systems"
)

const (
	// ID is the registry id.
	ID = "Kamigakari:Korean"
	// Locale of the result labels.
	Locale = "ko-KR"

	materialTable = "kamigakari.mt"
	priceTable    = "kamigakari.mt.price"
)

const help = `・각종표
 ・감정표(ET)
 ・영문소비의 댓가표(RT)
 ・전기 성씨・이름 결정표(NT)
 ・마경임계표(KT)
 ・획득 소재 차트(MTx x는［법칙장해］의［강도］.생략할 때는１)
　　예） MT　MT3　MT9
・D66주사위 가능`

var tables = map[string]string{
	"RT": "kamigakari.rt",
	"ET": "kamigakari.et",
	"NT": "kamigakari.nt",
	"KT": "kamigakari.kt",
}

var (
	materialPattern = regexp.MustCompile(`^MT(\d*)$`)
	powerPattern    = regexp.MustCompile(`\+(\d+)`)
)

// System is the Kamigakari (Korean) game system.
type System struct{}

// New returns the system.
func New() System { return System{} }

func (System) ID() string     { return ID }
func (System) Name() string   { return "카미가카리" }
func (System) Locale() string { return Locale }
func (System) Help() string   { return help }

func (System) Prefixes() []string {
	return []string{`RT`, `MT\d*`, `ET`, `NT`, `KT`, `D66`}
}

func (System) Tables() []string {
	ids := []string{materialTable, priceTable}
	for _, id := range tables {
		ids = append(ids, id)
	}
	return ids
}

func (System) Eval(ctx context.Context, env systems.Env, cmd string) (systems.Result, bool, error) {
	cmd = strings.ToUpper(strings.TrimSpace(cmd))
	if cmd == "D66" {
		return systems.D66(env, dice.NoSort), true, nil
	}
	if m := materialPattern.FindStringSubmatch(cmd); m != nil {
		rank := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				return systems.Result{}, false, nil
			}
			rank = n
		}
		res, err := Material(ctx, env, rank)
		if err != nil {
			return systems.Result{}, false, err
		}
		return res, true, nil
	}
	id, ok := tables[cmd]
	if !ok {
		return systems.Result{}, false, nil
	}
	res, err := systems.RollTable(ctx, env, id, format.ColonStyle, table.Options{})
	if err != nil {
		return systems.Result{}, false, err
	}
	return res, true, nil
}

// Material rolls the material chart for a law obstacle of the given rank
// and appends the material's price.
func Material(ctx context.Context, env systems.Env, rank int) (systems.Result, error) {
	res, err := env.Resolver.Resolve(ctx, materialTable, table.Options{Rank: rank})
	if err != nil {
		return systems.Result{}, fmt.Errorf("roll material chart: %w", err)
	}
	text := res.Text
	if power := Power(res.Text); power > 0 {
		row, err := env.Resolver.Lookup(priceTable, power)
		if err != nil {
			return systems.Result{}, fmt.Errorf("price for power %d: %w", power, err)
		}
		text += "：" + row.Cells[0]
	}
	t, _ := env.Resolver.Catalog().Table(materialTable)
	return systems.Result{
		Text:  format.Table(format.ColonStyle, t.Name, res.Audit.Indices(), text),
		Audit: res.Audit,
	}, nil
}

// Power is the effect value a material's price is based on: the "+k" bonus,
// 3 for an attribute grant, 4 for a resistance, otherwise 0.
func Power(effect string) int {
	switch {
	case powerPattern.MatchString(effect):
		n, _ := strconv.Atoi(powerPattern.FindStringSubmatch(effect)[1])
		return n
	case strings.Contains(effect, "부여"):
		return 3
	case strings.Contains(effect, "반감"):
		return 4
	default:
		return 0
	}
}
