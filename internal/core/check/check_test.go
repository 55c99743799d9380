package check

import (
	"testing"

	"github.com/louisbranch/tableroll/internal/core/command"
)

func TestMeetsDifficulty(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		difficulty int
		want       bool
	}{
		{"exact match", 10, 10, true},
		{"above difficulty", 15, 10, true},
		{"below difficulty", 5, 10, false},
		{"negative total", -5, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MeetsDifficulty(tt.total, tt.difficulty)
			if got != tt.want {
				t.Errorf("MeetsDifficulty(%d, %d) = %v, want %v", tt.total, tt.difficulty, got, tt.want)
			}
		})
	}
}

func TestClassify_ThreeDiceRules(t *testing.T) {
	rules := Rules{FumbleAtOrBelow: Threshold(5), CriticalAtOrAbove: Threshold(16)}
	parser := command.MustCompile(command.Grammar{
		Token:        "CH",
		DefaultCount: 3,
		CountPrefix:  true,
		Operators:    []command.Operator{command.OpGreaterEqual},
	})
	withTarget, _ := parser.Parse("CH>=10")
	noTarget, _ := parser.Parse("CH")

	tests := []struct {
		name string
		roll Roll
		req  command.Request
		want Outcome
	}{
		{"fumble at threshold", Roll{Natural: 5, Total: 5}, withTarget, Fumble},
		{"fumble ignores modifier", Roll{Natural: 4, Total: 12}, withTarget, Fumble},
		{"critical at threshold", Roll{Natural: 16, Total: 16}, withTarget, Critical},
		{"critical from modifier", Roll{Natural: 14, Total: 17}, noTarget, Critical},
		{"success on equal", Roll{Natural: 10, Total: 10}, withTarget, Success},
		{"failure below", Roll{Natural: 9, Total: 9}, withTarget, Failure},
		{"no target", Roll{Natural: 12, Total: 12}, noTarget, NoJudgment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.Classify(tt.roll, tt.req); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassify_CriticalFaces(t *testing.T) {
	rules := Rules{CriticalFaces: []int{5, 5}}
	parser := command.MustCompile(command.Grammar{
		Token:         "G",
		EchoToken:     "D6",
		DefaultCount:  2,
		Operators:     []command.Operator{command.OpGreaterEqual},
		AllowWildcard: true,
	})
	high, _ := parser.Parse("G>=12")
	wildcard, _ := parser.Parse("G>=?")

	if got := rules.Classify(Roll{Natural: 10, Total: 10, Faces: []int{5, 5}}, high); got != Critical {
		t.Fatalf("double five = %s, want critical", got)
	}
	if got := rules.Classify(Roll{Natural: 10, Total: 10, Faces: []int{4, 6}}, high); got != Failure {
		t.Fatalf("four-six vs 12 = %s, want failure", got)
	}
	if got := rules.Classify(Roll{Natural: 7, Total: 7, Faces: []int{3, 4}}, wildcard); got != NoJudgment {
		t.Fatalf("wildcard = %s, want none", got)
	}
}

func TestOutcomeString(t *testing.T) {
	for outcome, want := range map[Outcome]string{
		Fumble:     "fumble",
		Critical:   "critical",
		Success:    "success",
		Failure:    "failure",
		NoJudgment: "none",
	} {
		if got := outcome.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
