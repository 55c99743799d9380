package colossalhunter

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/louisbranch/tableroll/internal/content"
	"github.com/louisbranch/tableroll/internal/core/check"
	"github.com/louisbranch/tableroll/internal/core/dice"
	"github.com/louisbranch/tableroll/internal/core/table"
	"github.com/louisbranch/tableroll/internal/systems"
)

func scriptedEnv(faces ...int) systems.Env {
	return systems.NewEnv(content.MustLoad(), dice.NewRoller(dice.NewScripted(faces...)), nil)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		command string
		faces   []int
		want    string
		outcome check.Outcome
	}{
		{
			name:    "success with modifier",
			command: "CH+2>=10",
			faces:   []int{3, 4, 2},
			want:    "(3CH+2>=10) ＞ 9[3,4,2]+2 ＞ 11 ＞ 成功",
			outcome: check.Success,
		},
		{
			name:    "failure",
			command: "CH>=10",
			faces:   []int{3, 4, 2},
			want:    "(3CH>=10) ＞ 9[3,4,2] ＞ 9 ＞ 失敗",
			outcome: check.Failure,
		},
		{
			name:    "no target no verdict",
			command: "CH",
			faces:   []int{6, 4, 2},
			want:    "(3CH) ＞ 12[6,4,2] ＞ 12",
			outcome: check.NoJudgment,
		},
		{
			name:    "fumble without target",
			command: "CH+10",
			faces:   []int{1, 2, 2},
			want:    "(3CH+10) ＞ 5[1,2,2]+10 ＞ 15 ＞ ファンブル",
			outcome: check.Fumble,
		},
		{
			name:    "critical beats target",
			command: "4CH>=20",
			faces:   []int{4, 4, 4, 4},
			want:    "(4CH>=20) ＞ 16[4,4,4,4] ＞ 16 ＞ クリティカル",
			outcome: check.Critical,
		},
		{
			name:    "modifiers are summed",
			command: "ch+1+2-1",
			faces:   []int{3, 3, 3},
			want:    "(3CH+2) ＞ 9[3,3,3]+2 ＞ 11",
			outcome: check.NoJudgment,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok, err := New().Eval(context.Background(), scriptedEnv(tt.faces...), tt.command)
			if err != nil || !ok {
				t.Fatalf("Eval(%q) = ok %v, err %v", tt.command, ok, err)
			}
			if res.Text != tt.want {
				t.Fatalf("text = %q, want %q", res.Text, tt.want)
			}
			if res.Outcome != tt.outcome {
				t.Fatalf("outcome = %v, want %v", res.Outcome, tt.outcome)
			}
			if len(res.Audit) != len(tt.faces) {
				t.Fatalf("audit has %d draws, want %d", len(res.Audit), len(tt.faces))
			}
		})
	}
}

func TestCheckAuditHasEachDie(t *testing.T) {
	res, _, err := New().Eval(context.Background(), scriptedEnv(3, 4, 2), "CH+2>=10")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	want := table.Audit{
		{Source: "D6", Index: 3, Dice: []int{3}, Kind: table.KindDice},
		{Source: "D6", Index: 4, Dice: []int{4}, Kind: table.KindDice},
		{Source: "D6", Index: 2, Dice: []int{2}, Kind: table.KindDice},
	}
	if diff := cmp.Diff(want, res.Audit); diff != "" {
		t.Fatalf("audit mismatch (-want +got):\n%s", diff)
	}
}

func TestUnhandled(t *testing.T) {
	for _, cmd := range []string{"CH<=10", "CH>10", "XYZ", "B6TX", "CH>=?", ""} {
		_, ok, err := New().Eval(context.Background(), scriptedEnv(1), cmd)
		if err != nil {
			t.Fatalf("Eval(%q): %v", cmd, err)
		}
		if ok {
			t.Fatalf("Eval(%q) handled, want not handled", cmd)
		}
	}
}

func TestTables(t *testing.T) {
	tests := []struct {
		name    string
		command string
		faces   []int
		want    string
	}{
		{
			name:    "awakening",
			command: "AWT",
			faces:   []int{1, 1},
			want:    "覚醒表(11) ＞ 実験体：",
		},
		{
			name:    "colossal action d6",
			command: "CAT",
			faces:   []int{3},
			want:    "コロッサル行動表(3) ＞ 何もしない。",
		},
		{
			name:    "big six arithmetic age",
			command: "B6T",
			faces:   []int{1, 2, 4, 5},
			want:    "BIG-6表(12) ＞ 悪の時代：",
		},
		{
			name:    "npc maker draws per column",
			command: "CNP",
			faces:   []int{1, 1, 1, 2, 6, 6},
			want:    "NPC作成表(11, 12, 66) ＞ 性質：ハンター嫌いの／タイプ：罪人／心の秘密：あなたへの執着",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok, err := New().Eval(context.Background(), scriptedEnv(tt.faces...), tt.command)
			if err != nil || !ok {
				t.Fatalf("Eval(%q) = ok %v, err %v", tt.command, ok, err)
			}
			if !strings.HasPrefix(res.Text, tt.want) {
				t.Fatalf("text = %q, want prefix %q", res.Text, tt.want)
			}
		})
	}
}

func TestBigSixAge(t *testing.T) {
	res, _, err := New().Eval(context.Background(), scriptedEnv(1, 2, 4, 5), "B6T")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !strings.HasSuffix(res.Text, " ＞ 年齢：18+2D6 ＞ (18+9) ＞ 年齢：27歳") {
		t.Fatalf("text = %q", res.Text)
	}
	if diff := cmp.Diff([]int{12}, res.Audit.Indices()); diff != "" {
		t.Fatalf("indices mismatch (-want +got):\n%s", diff)
	}
	if len(res.Audit) != 2 || res.Audit[1].Kind != table.KindDice {
		t.Fatalf("audit = %+v, want table draw then dice draw", res.Audit)
	}

	res, _, err = New().Eval(context.Background(), scriptedEnv(1, 6), "B6T")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if !strings.HasSuffix(res.Text, " ＞ 年齢：任意（最低20）歳") {
		t.Fatalf("prose age text = %q", res.Text)
	}
}

func TestD66KeepsRollOrder(t *testing.T) {
	res, ok, err := New().Eval(context.Background(), scriptedEnv(5, 1), "D66")
	if err != nil || !ok {
		t.Fatalf("Eval = ok %v, err %v", ok, err)
	}
	if res.Text != "(D66) ＞ 51" {
		t.Fatalf("text = %q", res.Text)
	}
}

func TestTablesExist(t *testing.T) {
	registry := systems.NewRegistry().MustRegister(New())
	if err := registry.Validate(content.MustLoad()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
