// Package table models random lookup tables and resolves their entries.
//
// Tables are static content addressed by id. An entry may contain placeholders
// that trigger further draws: dice expressions ("2D6"), scaling markers that
// consult a ranked magnitude table, and nested-table markers that splice in
// another table's text. Every draw is appended to an Audit in roll order.
package table

import (
	"sort"

	"github.com/louisbranch/tableroll/internal/core/dice"
)

// Space is the index space a table is rolled on.
type Space string

const (
	// Linear tables roll uniformly over 1..len(rows).
	Linear Space = "linear"
	// D6 tables roll one six-sided die.
	D6 Space = "d6"
	// TwoD6 tables roll the sum of two six-sided dice.
	TwoD6 Space = "2d6"
	// D66 tables roll two d6 as tens and ones.
	D66 Space = "d66"
)

// Lookup selects how a rolled index maps to a row.
type Lookup string

const (
	// Exact requires a row keyed with the rolled index.
	Exact Lookup = "exact"
	// Ceiling picks the first row whose key is at least the rolled index.
	Ceiling Lookup = "ceiling"
)

// Marker is a placeholder token in a cell or layout.
//
// Exactly one of Table or Scale is set. Table splices in the text of another
// table; Scale resolves a ranked table at the caller's rank. Prefix is written
// in front of the spliced text, so "+n" with Prefix "+" becomes "+2".
type Marker struct {
	Table  string `yaml:"table,omitempty" json:"table,omitempty"`
	Scale  string `yaml:"scale,omitempty" json:"scale,omitempty"`
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
}

// Target returns the referenced table id.
func (m Marker) Target() string {
	if m.Scale != "" {
		return m.Scale
	}
	return m.Table
}

// Row is one entry. Key zero means "assign from the key space in order".
type Row struct {
	Key   int      `yaml:"key,omitempty" json:"key,omitempty"`
	Cells []string `yaml:"cells" json:"cells"`
}

// Band maps ranks up to UpTo onto a magnitude table.
type Band struct {
	UpTo  int    `yaml:"up_to" json:"up_to"`
	Table string `yaml:"table" json:"table"`
}

// Table is a static lookup table.
type Table struct {
	ID     string          `yaml:"id" json:"id"`
	Name   string          `yaml:"name" json:"name"`
	Space  Space           `yaml:"space" json:"space"`
	Sort   dice.SortPolicy `yaml:"sort,omitempty" json:"sort,omitempty"`
	Lookup Lookup          `yaml:"lookup,omitempty" json:"lookup,omitempty"`
	// Layout combines cells with {0}, {1}, ... and may contain markers.
	Layout string `yaml:"layout,omitempty" json:"layout,omitempty"`
	// Arithmetic renders cells that evaluate as arithmetic, using {template},
	// {expr} and {value}. Empty means DefaultArithmetic.
	Arithmetic string `yaml:"arithmetic,omitempty" json:"arithmetic,omitempty"`
	// Independent draws one index per column instead of one per row.
	Independent bool              `yaml:"independent,omitempty" json:"independent,omitempty"`
	Markers     map[string]Marker `yaml:"markers,omitempty" json:"markers,omitempty"`
	Rows        []Row             `yaml:"rows,omitempty" json:"rows,omitempty"`
	// Bands make this a ranked table; ranked tables have no rows.
	Bands []Band `yaml:"bands,omitempty" json:"bands,omitempty"`

	tokens []string
}

// Ranked reports whether the table is a ranked magnitude table.
func (t *Table) Ranked() bool {
	return len(t.Bands) > 0
}

// MaxRank is the highest rank a ranked table supports.
func (t *Table) MaxRank() int {
	if len(t.Bands) == 0 {
		return 0
	}
	return t.Bands[len(t.Bands)-1].UpTo
}

// Band returns the band for rank, clamping rank to MaxRank.
func (t *Table) Band(rank int) (Band, bool) {
	if rank > t.MaxRank() {
		rank = t.MaxRank()
	}
	for _, band := range t.Bands {
		if rank <= band.UpTo {
			return band, true
		}
	}
	return Band{}, false
}

// Width is the number of cells per row.
func (t *Table) Width() int {
	if len(t.Rows) == 0 {
		return 0
	}
	return len(t.Rows[0].Cells)
}

// Keys lists every index reachable by rolling this table, in roll order.
func (t *Table) Keys() []int {
	switch t.Space {
	case Linear:
		return sequence(1, len(t.Rows))
	case D6:
		return sequence(1, 6)
	case TwoD6:
		return sequence(2, 12)
	case D66:
		return dice.D66Keys(t.Sort)
	default:
		return nil
	}
}

// Row returns the row for a rolled index.
func (t *Table) Row(index int) (Row, bool) {
	if t.Lookup == Ceiling {
		for _, row := range t.Rows {
			if index <= row.Key {
				return row, true
			}
		}
		return Row{}, false
	}
	for _, row := range t.Rows {
		if row.Key == index {
			return row, true
		}
	}
	return Row{}, false
}

// References lists the table ids this table points at, sorted.
func (t *Table) References() []string {
	seen := map[string]struct{}{}
	for _, marker := range t.Markers {
		seen[marker.Target()] = struct{}{}
	}
	for _, band := range t.Bands {
		seen[band.Table] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func sequence(from, to int) []int {
	if to < from {
		return nil
	}
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}
