// Package dice implements the randomizer shared by every game system.
package dice

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/louisbranch/tableroll/internal/core/random"
)

// Source produces uniformly distributed integers in [0, n).
//
// *rand.Rand satisfies Source. Tests substitute Scripted to replay known faces.
type Source interface {
	Intn(n int) int
}

// SortPolicy controls how the two digits of a D66 roll are ordered.
type SortPolicy int

const (
	// NoSort keeps the digits in roll order: first die is tens.
	NoSort SortPolicy = iota
	// Ascending puts the smaller die in the tens place.
	Ascending
	// Descending puts the larger die in the tens place.
	Descending
)

func (p SortPolicy) String() string {
	switch p {
	case NoSort:
		return "none"
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "unknown"
	}
}

// MarshalText encodes the policy as none, asc or desc.
func (p SortPolicy) MarshalText() ([]byte, error) {
	if p < NoSort || p > Descending {
		return nil, fmt.Errorf("unknown sort policy %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText. Empty means NoSort.
func (p *SortPolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "none":
		*p = NoSort
	case "asc":
		*p = Ascending
	case "desc":
		*p = Descending
	default:
		return fmt.Errorf("unknown sort policy %q", text)
	}
	return nil
}

// Roll captures the faces of one physical roll.
type Roll struct {
	Sides   int
	Results []int
	Total   int
}

// Roller draws dice from a Source.
//
// A Roller is safe for concurrent use; each draw locks the source so independent
// commands can share one entropy stream.
type Roller struct {
	mu  sync.Mutex
	src Source
}

// NewRoller wraps src. A nil src falls back to a time-independent seed of 1.
func NewRoller(src Source) *Roller {
	if src == nil {
		src = rand.New(rand.NewSource(1))
	}
	return &Roller{src: src}
}

// NewSeededRoller returns a deterministic roller for the given seed.
func NewSeededRoller(seed int64) *Roller {
	return NewRoller(rand.New(rand.NewSource(seed)))
}

// NewLiveRoller returns a roller seeded from crypto/rand.
func NewLiveRoller() (*Roller, error) {
	seed, err := random.NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSeededRoller(seed), nil
}

// RollOnce rolls a single die. Sides below 1 yield 0.
func (r *Roller) RollOnce(sides int) int {
	if sides < 1 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Intn(sides) + 1
}

// RollDice rolls count independent dice of the given sides in order.
//
// A count of zero (or an invalid die) returns an empty Roll.
func (r *Roller) RollDice(count, sides int) Roll {
	roll := Roll{Sides: sides, Results: []int{}}
	if count <= 0 || sides < 1 {
		return roll
	}

	roll.Results = make([]int, count)
	r.mu.Lock()
	for i := 0; i < count; i++ {
		roll.Results[i] = r.src.Intn(sides) + 1
	}
	r.mu.Unlock()

	for _, value := range roll.Results {
		roll.Total += value
	}
	return roll
}

// RollD66 draws two sequential d6 and combines them into a two-digit value.
func (r *Roller) RollD66(policy SortPolicy) int {
	r.mu.Lock()
	tens := r.src.Intn(6) + 1
	ones := r.src.Intn(6) + 1
	r.mu.Unlock()
	return CombineD66(tens, ones, policy)
}

// RollDigits rolls digits d6 and concatenates them, so 2 digits behaves as D66 and
// 3 digits as D666.
func (r *Roller) RollDigits(digits int) int {
	value := 0
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := 0; i < digits; i++ {
		value = value*10 + r.src.Intn(6) + 1
	}
	return value
}

// CombineD66 orders two d6 faces per policy and joins them as tens and ones.
func CombineD66(tens, ones int, policy SortPolicy) int {
	switch policy {
	case Ascending:
		if tens > ones {
			tens, ones = ones, tens
		}
	case Descending:
		if tens < ones {
			tens, ones = ones, tens
		}
	}
	return tens*10 + ones
}

// D66Keys lists the distinct values reachable by RollD66 under policy, in order.
func D66Keys(policy SortPolicy) []int {
	keys := make([]int, 0, 36)
	for tens := 1; tens <= 6; tens++ {
		for ones := 1; ones <= 6; ones++ {
			switch {
			case policy == Ascending && tens > ones:
				continue
			case policy == Descending && tens < ones:
				continue
			}
			keys = append(keys, tens*10+ones)
		}
	}
	return keys
}
