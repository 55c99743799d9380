// Package check classifies a check roll as fumble, critical, success, failure,
// or no judgment.
package check

import "github.com/louisbranch/tableroll/internal/core/command"

// Outcome is the verdict for one check roll.
type Outcome int

const (
	NoJudgment Outcome = iota
	Fumble
	Critical
	Success
	Failure
)

func (o Outcome) String() string {
	switch o {
	case Fumble:
		return "fumble"
	case Critical:
		return "critical"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "none"
	}
}

// Rules holds a game's automatic outcome thresholds.
//
// FumbleAtOrBelow compares against the natural dice sum; CriticalAtOrAbove
// compares against the modified total. CriticalFaces matches the exact faces
// rolled, in order (Gorilla's double five).
type Rules struct {
	FumbleAtOrBelow   *int
	CriticalAtOrAbove *int
	CriticalFaces     []int
}

// Roll is the numeric input to Classify.
type Roll struct {
	Natural int
	Total   int
	Faces   []int
}

// MeetsDifficulty returns true if total >= difficulty.
func MeetsDifficulty(total, difficulty int) bool {
	return total >= difficulty
}

// Classify applies rules in order: fumble, critical, no target, then target
// comparison. The first match wins.
func (r Rules) Classify(roll Roll, req command.Request) Outcome {
	if r.FumbleAtOrBelow != nil && roll.Natural <= *r.FumbleAtOrBelow {
		return Fumble
	}
	if r.CriticalAtOrAbove != nil && roll.Total >= *r.CriticalAtOrAbove {
		return Critical
	}
	if len(r.CriticalFaces) > 0 && sameFaces(r.CriticalFaces, roll.Faces) {
		return Critical
	}
	if !req.Judged() {
		return NoJudgment
	}
	if MeetsDifficulty(roll.Total, req.Target) {
		return Success
	}
	return Failure
}

// Threshold is a helper for building Rules literals.
func Threshold(value int) *int {
	return &value
}

func sameFaces(want, got []int) bool {
	if len(want) != len(got) {
		return false
	}
	for i := range want {
		if want[i] != got[i] {
			return false
		}
	}
	return true
}
