// Package orgarain implements Arite Amaneku OrgaRain (在りて遍くオルガレイン):
// a pool of d10 is matched against up to six fate numbers.
package orgarain

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/louisbranch/tableroll/internal/core/command"
	"github.com/louisbranch/tableroll/internal/core/format"
	"github.com/louisbranch/tableroll/internal/systems"
)

const (
	// ID is the registry id.
	ID = "OrgaRain"
	// Locale of the result labels.
	Locale = "ja-JP"
)

const help = `判定：[n]OR(count)

[]内のコマンドは省略可能。
「n」でダイス数を指定。省略時は「1」。
(count)で命数を指定。「3111」のように記述。最大6つ。順不同可。

【書式例】
・5OR6042 → 5dで命数「0,2,4,6」の判定
・6OR33333 → 6dで命数「3,3,3,3,3」の判定。`

var pattern = regexp.MustCompile(`^(\d+)?OR(\d{0,6})$`)

// Request is a parsed fate roll.
type Request struct {
	Count int
	Fate  []int
}

// Parse reads "[n]OR<digits>". Fate numbers come back sorted.
func Parse(cmd string) (Request, bool) {
	m := pattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(cmd)))
	if m == nil {
		return Request{}, false
	}
	req := Request{Count: 1}
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > command.DefaultMaxCount {
			return Request{}, false
		}
		req.Count = n
	}
	for _, r := range m[2] {
		req.Fate = append(req.Fate, int(r-'0'))
	}
	sort.Ints(req.Fate)
	return req, true
}

// Match scores sorted faces against fate. A 10 matches fate number 0; each
// die scores once per fate number equal to it.
func Match(faces, fate []int) (marks []string, successes int) {
	marks = make([]string, len(faces))
	for i, face := range faces {
		value := face % 10
		n := 0
		for _, f := range fate {
			if f == value {
				n++
			}
		}
		if n == 0 {
			marks[i] = "×"
			continue
		}
		marks[i] = strconv.Itoa(value) + "(x" + strconv.Itoa(n) + ")"
		successes += n
	}
	return marks, successes
}

// System is the OrgaRain game system.
type System struct{}

// New returns the system.
func New() System { return System{} }

func (System) ID() string         { return ID }
func (System) Name() string       { return "在りて遍くオルガレイン" }
func (System) Locale() string     { return Locale }
func (System) Help() string       { return help }
func (System) Prefixes() []string { return []string{`\d*OR`} }
func (System) Tables() []string   { return nil }

func (System) Eval(_ context.Context, env systems.Env, cmd string) (systems.Result, bool, error) {
	req, ok := Parse(cmd)
	if !ok {
		return systems.Result{}, false, nil
	}
	roll := env.Roller.RollDice(req.Count, 10)
	faces := append([]int(nil), roll.Results...)
	sort.Ints(faces)
	marks, successes := Match(faces, req.Fate)

	text := strconv.Itoa(req.Count) + "D10(" + env.Label(Locale, "orgarain.fate") + "：" + format.Indices(req.Fate, ",") + ")" +
		format.Arrow + format.Indices(faces, ",") +
		format.Arrow + strings.Join(marks, ",") +
		format.Arrow + env.Label(Locale, "orgarain.successes") + "：" + strconv.Itoa(successes)
	return systems.Result{Text: text, Audit: systems.DiceAudit(10, roll.Results)}, true, nil
}
