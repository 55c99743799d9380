package table

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/louisbranch/tableroll/internal/core/dice"
)

var cellRefPattern = regexp.MustCompile(`\{(\d+)\}`)

// Catalog is a validated, read-only set of tables keyed by id.
//
// Tables reference each other by id only. NewCatalog checks that every
// reference resolves and that the reference graph is acyclic, so resolution
// never needs to guard against loops.
type Catalog struct {
	tables map[string]*Table
	ids    []string
}

// NewCatalog normalizes and validates tables. All violations are reported
// together; each one matches ErrIntegrity.
func NewCatalog(tables ...Table) (*Catalog, error) {
	c := &Catalog{tables: make(map[string]*Table, len(tables))}
	var errs []error
	for i := range tables {
		t, err := normalize(tables[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := c.tables[t.ID]; dup {
			errs = append(errs, integrity(t.ID, 0, "duplicate table id"))
			continue
		}
		c.tables[t.ID] = t
		c.ids = append(c.ids, t.ID)
	}
	sort.Strings(c.ids)

	for _, id := range c.ids {
		errs = append(errs, c.checkReferences(c.tables[id])...)
	}
	if len(errs) == 0 {
		if err := c.checkAcyclic(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return c, nil
}

// MustCatalog is NewCatalog for package-level fixtures.
func MustCatalog(tables ...Table) *Catalog {
	c, err := NewCatalog(tables...)
	if err != nil {
		panic(err)
	}
	return c
}

// Table returns the table with id.
func (c *Catalog) Table(id string) (*Table, bool) {
	t, ok := c.tables[id]
	return t, ok
}

// IDs lists every table id, sorted.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Len is the number of tables.
func (c *Catalog) Len() int {
	return len(c.ids)
}

// Lookup reads the row for key without drawing anything.
func (c *Catalog) Lookup(id string, key int) (Row, error) {
	t, ok := c.tables[id]
	if !ok {
		return Row{}, fmt.Errorf("%w: %s", ErrUnknownTable, id)
	}
	row, ok := t.Row(key)
	if !ok {
		return Row{}, integrity(id, key, "no row for key")
	}
	return row, nil
}

func normalize(in Table) (*Table, error) {
	t := in
	if strings.TrimSpace(t.ID) == "" {
		return nil, integrity("", 0, "table %q has no id", t.Name)
	}
	if t.Lookup == "" {
		t.Lookup = Exact
	}
	if t.Lookup != Exact && t.Lookup != Ceiling {
		return nil, integrity(t.ID, 0, "unknown lookup %q", t.Lookup)
	}

	t.Markers = make(map[string]Marker, len(in.Markers))
	for token, marker := range in.Markers {
		if token == "" {
			return nil, integrity(t.ID, 0, "empty marker token")
		}
		if (marker.Table == "") == (marker.Scale == "") {
			return nil, integrity(t.ID, 0, "marker %q must name exactly one of table or scale", token)
		}
		t.Markers[token] = marker
		t.tokens = append(t.tokens, token)
	}
	// Longest token first so "**" wins over "*".
	sort.Slice(t.tokens, func(i, j int) bool {
		if len(t.tokens[i]) != len(t.tokens[j]) {
			return len(t.tokens[i]) > len(t.tokens[j])
		}
		return t.tokens[i] < t.tokens[j]
	})

	if len(in.Bands) > 0 {
		return normalizeRanked(t)
	}

	switch t.Space {
	case Linear, D6, TwoD6, D66:
	case "":
		return nil, integrity(t.ID, 0, "missing key space")
	default:
		return nil, integrity(t.ID, 0, "unknown key space %q", t.Space)
	}
	if len(in.Rows) == 0 {
		return nil, integrity(t.ID, 0, "no rows")
	}

	t.Rows = make([]Row, len(in.Rows))
	keyed := 0
	for i, row := range in.Rows {
		cells := make([]string, len(row.Cells))
		copy(cells, row.Cells)
		t.Rows[i] = Row{Key: row.Key, Cells: cells}
		if row.Key != 0 {
			keyed++
		}
	}
	switch keyed {
	case 0:
		if err := assignKeys(&t); err != nil {
			return nil, err
		}
	case len(t.Rows):
	default:
		return nil, integrity(t.ID, 0, "%d of %d rows have keys; key all rows or none", keyed, len(t.Rows))
	}

	if err := checkRows(&t); err != nil {
		return nil, err
	}
	for _, index := range t.Keys() {
		if _, ok := t.Row(index); !ok {
			return nil, integrity(t.ID, index, "reachable index has no row")
		}
	}
	return &t, nil
}

func normalizeRanked(t Table) (*Table, error) {
	if len(t.Rows) > 0 {
		return nil, integrity(t.ID, 0, "ranked table cannot have rows")
	}
	t.Bands = append([]Band(nil), t.Bands...)
	last := 0
	for _, band := range t.Bands {
		if band.UpTo <= last {
			return nil, integrity(t.ID, 0, "band ranks must ascend from 1, got %d after %d", band.UpTo, last)
		}
		if band.Table == "" {
			return nil, integrity(t.ID, 0, "band up to %d has no table", band.UpTo)
		}
		last = band.UpTo
	}
	return &t, nil
}

func assignKeys(t *Table) error {
	if t.Space == D66 {
		switch {
		case len(t.Rows) == 21 && t.Sort == dice.NoSort:
			return integrity(t.ID, 0, "21 d66 rows require a sorted policy")
		case len(t.Rows) == 36 && t.Sort != dice.NoSort:
			return integrity(t.ID, 0, "36 d66 rows require the unsorted policy")
		case len(t.Rows) != 21 && len(t.Rows) != 36:
			return integrity(t.ID, 0, "d66 tables need 21 or 36 rows, got %d", len(t.Rows))
		}
	}
	keys := t.Keys()
	if len(keys) != len(t.Rows) {
		return integrity(t.ID, 0, "%d rows for a key space of %d", len(t.Rows), len(keys))
	}
	for i := range t.Rows {
		t.Rows[i].Key = keys[i]
	}
	return nil
}

func checkRows(t *Table) error {
	width := len(t.Rows[0].Cells)
	if width == 0 {
		return integrity(t.ID, t.Rows[0].Key, "row has no cells")
	}
	seen := make(map[int]struct{}, len(t.Rows))
	last := 0
	for i, row := range t.Rows {
		if len(row.Cells) != width {
			return integrity(t.ID, row.Key, "row has %d cells, want %d", len(row.Cells), width)
		}
		if _, dup := seen[row.Key]; dup {
			return integrity(t.ID, row.Key, "duplicate key")
		}
		seen[row.Key] = struct{}{}
		if t.Lookup == Ceiling && i > 0 && row.Key <= last {
			return integrity(t.ID, row.Key, "ceiling keys must ascend")
		}
		last = row.Key
	}

	if t.Layout == "" {
		if width > 1 {
			return integrity(t.ID, 0, "%d cells per row need a layout", width)
		}
		if t.Independent {
			return integrity(t.ID, 0, "independent columns need a layout")
		}
		return nil
	}
	for _, m := range cellRefPattern.FindAllStringSubmatch(t.Layout, -1) {
		ref, err := strconv.Atoi(m[1])
		if err != nil || ref >= width {
			return integrity(t.ID, 0, "layout references cell %s of %d", m[1], width)
		}
	}
	return nil
}

func (c *Catalog) checkReferences(t *Table) []error {
	var errs []error
	for _, token := range t.tokens {
		marker := t.Markers[token]
		target, ok := c.tables[marker.Target()]
		switch {
		case !ok:
			errs = append(errs, integrity(t.ID, 0, "marker %q references unknown table %s", token, marker.Target()))
		case marker.Scale != "" && !target.Ranked():
			errs = append(errs, integrity(t.ID, 0, "marker %q scales by unranked table %s", token, target.ID))
		case marker.Table != "" && target.Ranked():
			errs = append(errs, integrity(t.ID, 0, "marker %q splices ranked table %s; use scale", token, target.ID))
		}
	}
	for _, band := range t.Bands {
		target, ok := c.tables[band.Table]
		switch {
		case !ok:
			errs = append(errs, integrity(t.ID, 0, "band up to %d references unknown table %s", band.UpTo, band.Table))
		case target.Ranked():
			errs = append(errs, integrity(t.ID, 0, "band up to %d references ranked table %s", band.UpTo, band.Table))
		}
	}
	return errs
}

// checkAcyclic walks the reference graph depth first, reporting the first
// cycle found as a path.
func (c *Catalog) checkAcyclic() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(c.ids))
	var path []string
	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visiting:
			start := 0
			for i, step := range path {
				if step == id {
					start = i
					break
				}
			}
			cycle := append(append([]string(nil), path[start:]...), id)
			return integrity(id, 0, "reference cycle %s", strings.Join(cycle, " -> "))
		case done:
			return nil
		}
		state[id] = visiting
		path = append(path, id)
		for _, next := range c.tables[id].References() {
			if err := visit(next); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[id] = done
		return nil
	}
	for _, id := range c.ids {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
