package dice

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRollDice_CountAndRange(t *testing.T) {
	tests := []struct {
		name  string
		count int
		sides int
	}{
		{name: "3d6", count: 3, sides: 6},
		{name: "1d10", count: 1, sides: 10},
		{name: "10d6", count: 10, sides: 6},
		{name: "zero dice", count: 0, sides: 6},
	}

	roller := NewSeededRoller(42)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roll := roller.RollDice(tt.count, tt.sides)
			if len(roll.Results) != tt.count {
				t.Fatalf("got %d results, want %d", len(roll.Results), tt.count)
			}
			sum := 0
			for i, value := range roll.Results {
				if value < 1 || value > tt.sides {
					t.Errorf("Results[%d] = %d, out of range [1, %d]", i, value, tt.sides)
				}
				sum += value
			}
			if roll.Total != sum {
				t.Errorf("Total = %d, want %d", roll.Total, sum)
			}
		})
	}
}

func TestRollDice_Determinism(t *testing.T) {
	first := NewSeededRoller(12345).RollDice(4, 6)
	second := NewSeededRoller(12345).RollDice(4, 6)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("seeded rolls differ (-first +second):\n%s", diff)
	}
}

func TestRollDice_InvalidSides(t *testing.T) {
	roll := NewSeededRoller(1).RollDice(2, 0)
	if len(roll.Results) != 0 || roll.Total != 0 {
		t.Fatalf("expected empty roll, got %+v", roll)
	}
	if got := NewSeededRoller(1).RollOnce(0); got != 0 {
		t.Fatalf("RollOnce(0) = %d, want 0", got)
	}
}

func TestRollD66_NoSortKeepsRollOrder(t *testing.T) {
	roller := NewRoller(NewScripted(1, 5, 6, 2))
	if got := roller.RollD66(NoSort); got != 15 {
		t.Fatalf("first D66 = %d, want 15", got)
	}
	if got := roller.RollD66(NoSort); got != 62 {
		t.Fatalf("second D66 = %d, want 62", got)
	}
}

func TestRollD66_SortPolicies(t *testing.T) {
	roller := NewRoller(rand.New(rand.NewSource(7)))
	for i := 0; i < 500; i++ {
		asc := roller.RollD66(Ascending)
		if asc/10 > asc%10 {
			t.Fatalf("ascending D66 %d has tens > ones", asc)
		}
		desc := roller.RollD66(Descending)
		if desc/10 < desc%10 {
			t.Fatalf("descending D66 %d has tens < ones", desc)
		}
	}
}

func TestCombineD66(t *testing.T) {
	tests := []struct {
		tens, ones int
		policy     SortPolicy
		want       int
	}{
		{tens: 5, ones: 2, policy: NoSort, want: 52},
		{tens: 5, ones: 2, policy: Ascending, want: 25},
		{tens: 2, ones: 5, policy: Descending, want: 52},
		{tens: 3, ones: 3, policy: Ascending, want: 33},
	}
	for _, tt := range tests {
		if got := CombineD66(tt.tens, tt.ones, tt.policy); got != tt.want {
			t.Errorf("CombineD66(%d, %d, %s) = %d, want %d", tt.tens, tt.ones, tt.policy, got, tt.want)
		}
	}
}

func TestD66Keys(t *testing.T) {
	if got := len(D66Keys(NoSort)); got != 36 {
		t.Fatalf("NoSort keys = %d, want 36", got)
	}
	asc := D66Keys(Ascending)
	if len(asc) != 21 {
		t.Fatalf("Ascending keys = %d, want 21", len(asc))
	}
	if asc[0] != 11 || asc[6] != 22 || asc[len(asc)-1] != 66 {
		t.Fatalf("unexpected ascending keys: %v", asc)
	}
	desc := D66Keys(Descending)
	if len(desc) != 21 || desc[1] != 21 {
		t.Fatalf("unexpected descending keys: %v", desc)
	}
}

func TestRollDigits(t *testing.T) {
	roller := NewRoller(NewScripted(3, 4, 1, 2, 6))
	if got := roller.RollDigits(2); got != 34 {
		t.Fatalf("RollDigits(2) = %d, want 34", got)
	}
	if got := roller.RollDigits(3); got != 126 {
		t.Fatalf("RollDigits(3) = %d, want 126", got)
	}
}

func TestScriptedCycles(t *testing.T) {
	source := NewScripted(2)
	roller := NewRoller(source)
	roll := roller.RollDice(3, 6)
	if diff := cmp.Diff([]int{2, 2, 2}, roll.Results); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
	if source.Consumed() != 3 {
		t.Fatalf("consumed = %d, want 3", source.Consumed())
	}
}

func TestRoller_ConcurrentDraws(t *testing.T) {
	roller := NewSeededRoller(99)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				roll := roller.RollDice(3, 6)
				if len(roll.Results) != 3 {
					t.Errorf("got %d results", len(roll.Results))
					return
				}
			}
		}()
	}
	wg.Wait()
}
