package table

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/louisbranch/tableroll/internal/core/arith"
	"github.com/louisbranch/tableroll/internal/core/dice"
)

// DefaultArithmetic renders a cell that evaluated as arithmetic.
const DefaultArithmetic = "({template}) ＞ ({expr}) ＞ {value}"

var (
	dicePattern      = regexp.MustCompile(`^(\d+)D(\d+)`)
	cellRefAnchor    = regexp.MustCompile(`^\{(\d+)\}`)
	digitDicePattern = regexp.MustCompile(`^66+$`)
)

// Roller is the randomizer a Resolver draws from. *dice.Roller satisfies it.
type Roller interface {
	RollOnce(sides int) int
	RollDice(count, sides int) dice.Roll
	RollD66(policy dice.SortPolicy) int
	RollDigits(digits int) int
	Pool(specs ...dice.Spec) (dice.Result, error)
}

// Kind distinguishes audit entries.
type Kind string

const (
	// KindTable records a table index draw.
	KindTable Kind = "table"
	// KindDice records a dice placeholder inside a cell.
	KindDice Kind = "dice"
)

// Draw is one audited random draw.
type Draw struct {
	// Source is the table id, or the dice expression for KindDice.
	Source string `json:"source"`
	// Index is the rolled table index, or the dice total.
	Index int   `json:"index"`
	Dice  []int `json:"dice,omitempty"`
	Kind  Kind  `json:"kind"`
}

// Audit is the ordered record of every draw behind one resolution.
type Audit []Draw

// Indices lists the table indices in draw order.
func (a Audit) Indices() []int {
	var out []int
	for _, draw := range a {
		if draw.Kind == KindTable {
			out = append(out, draw.Index)
		}
	}
	return out
}

// Resolution is the expanded text of one table draw with its audit.
type Resolution struct {
	Text  string `json:"text"`
	Audit Audit  `json:"audit"`
}

// Options parameterize a resolution.
type Options struct {
	// Rank selects the band of ranked tables reached through scale markers.
	// Ranks above a table's MaxRank clamp to it; ranks below 1 use 1.
	Rank int
}

// Resolver expands tables from a Catalog using a Roller.
type Resolver struct {
	catalog *Catalog
	roller  Roller
}

// NewResolver builds a Resolver.
func NewResolver(catalog *Catalog, roller Roller) *Resolver {
	return &Resolver{catalog: catalog, roller: roller}
}

// Catalog returns the tables the resolver reads.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Resolve draws an index on the table and expands the row.
func (r *Resolver) Resolve(ctx context.Context, id string, opts Options) (Resolution, error) {
	t, ok := r.catalog.Table(id)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %s", ErrUnknownTable, id)
	}
	s := &resolution{ctx: ctx, resolver: r, opts: opts}
	text, err := s.table(t)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Text: text, Audit: s.audit}, nil
}

// ResolveAt expands the row at index as if it had been rolled. Nested
// placeholders still draw. Independent tables use index for every column.
func (r *Resolver) ResolveAt(ctx context.Context, id string, index int, opts Options) (Resolution, error) {
	t, ok := r.catalog.Table(id)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %s", ErrUnknownTable, id)
	}
	if t.Ranked() {
		return Resolution{}, integrity(id, index, "ranked tables have no rows")
	}
	s := &resolution{ctx: ctx, resolver: r, opts: opts}
	text, err := s.rows(t, func() int { return index })
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{Text: text, Audit: s.audit}, nil
}

// Lookup reads a row without randomness.
func (r *Resolver) Lookup(id string, key int) (Row, error) {
	return r.catalog.Lookup(id, key)
}

type resolution struct {
	ctx      context.Context
	resolver *Resolver
	opts     Options
	audit    Audit
}

func (s *resolution) table(t *Table) (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if t.Ranked() {
		rank := s.opts.Rank
		if rank < 1 {
			rank = 1
		}
		band, ok := t.Band(rank)
		if !ok {
			return "", integrity(t.ID, rank, "no band for rank")
		}
		return s.table(s.resolver.catalog.tables[band.Table])
	}
	return s.rows(t, func() int { return s.draw(t) })
}

// rows picks the row (or one row per column for independent tables) and
// expands cells left to right, then the layout.
func (s *resolution) rows(t *Table, next func() int) (string, error) {
	width := t.Width()
	cells := make([]string, width)
	var row Row
	for col := 0; col < width; col++ {
		if col == 0 || t.Independent {
			index := next()
			s.audit = append(s.audit, Draw{Source: t.ID, Index: index, Kind: KindTable})
			var ok bool
			row, ok = t.Row(index)
			if !ok {
				return "", integrity(t.ID, index, "no row for rolled index")
			}
		}
		text, err := s.cell(t, row.Cells[col])
		if err != nil {
			return "", err
		}
		cells[col] = text
	}
	if t.Layout == "" {
		return cells[0], nil
	}
	return s.expand(t, t.Layout, cells)
}

func (s *resolution) draw(t *Table) int {
	roller := s.resolver.roller
	switch t.Space {
	case D6:
		return roller.RollOnce(6)
	case TwoD6:
		return roller.RollDice(2, 6).Total
	case D66:
		return roller.RollD66(t.Sort)
	default:
		return roller.RollOnce(len(t.Rows))
	}
}

func (s *resolution) cell(t *Table, template string) (string, error) {
	before := len(s.audit)
	text, err := s.expand(t, template, nil)
	if err != nil {
		return "", err
	}
	rolledDice := false
	for _, draw := range s.audit[before:] {
		if draw.Kind == KindDice {
			rolledDice = true
			break
		}
	}
	if !rolledDice || !arith.IsExpression(text) {
		return text, nil
	}
	value, err := arith.Eval(text)
	if err != nil {
		// Not evaluable; shown as written.
		return text, nil
	}
	layout := t.Arithmetic
	if layout == "" {
		layout = DefaultArithmetic
	}
	return strings.NewReplacer(
		"{template}", template,
		"{expr}", text,
		"{value}", strconv.Itoa(value),
	).Replace(layout), nil
}

// expand scans template once, left to right, replacing cell references,
// markers and dice placeholders. Replacement text is never rescanned.
func (s *resolution) expand(t *Table, template string, cells []string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(template); {
		rest := template[i:]

		if cells != nil {
			if m := cellRefAnchor.FindStringSubmatch(rest); m != nil {
				ref, _ := strconv.Atoi(m[1])
				if ref < len(cells) {
					b.WriteString(cells[ref])
					i += len(m[0])
					continue
				}
			}
		}

		if token, ok := t.markerAt(rest); ok {
			text, err := s.marker(t.Markers[token])
			if err != nil {
				return "", err
			}
			b.WriteString(text)
			i += len(token)
			continue
		}

		if m := dicePattern.FindStringSubmatch(rest); m != nil {
			total, err := s.dice(m[0], m[1], m[2])
			if err != nil {
				return "", fmt.Errorf("table %s: %w", t.ID, err)
			}
			b.WriteString(strconv.Itoa(total))
			i += len(m[0])
			continue
		}

		_, size := utf8.DecodeRuneInString(rest)
		b.WriteString(rest[:size])
		i += size
	}
	return b.String(), nil
}

func (t *Table) markerAt(text string) (string, bool) {
	for _, token := range t.tokens {
		if strings.HasPrefix(text, token) {
			return token, true
		}
	}
	return "", false
}

func (s *resolution) marker(m Marker) (string, error) {
	target := s.resolver.catalog.tables[m.Target()]
	text, err := s.table(target)
	if err != nil {
		return "", err
	}
	return m.Prefix + text, nil
}

// dice rolls a placeholder. Sides written as repeated sixes ("66", "666")
// concatenate d6 digits per die instead of rolling a single large die.
func (s *resolution) dice(expr, countText, sidesText string) (int, error) {
	count, err := strconv.Atoi(countText)
	if err != nil {
		return 0, fmt.Errorf("dice %q: %w", expr, err)
	}
	roller := s.resolver.roller
	var faces []int
	if digitDicePattern.MatchString(sidesText) {
		for i := 0; i < count; i++ {
			faces = append(faces, roller.RollDigits(len(sidesText)))
		}
	} else {
		sides, err := strconv.Atoi(sidesText)
		if err != nil {
			return 0, fmt.Errorf("dice %q: %w", expr, err)
		}
		result, err := roller.Pool(dice.Spec{Sides: sides, Count: count})
		if err != nil {
			return 0, fmt.Errorf("dice %q: %w", expr, err)
		}
		faces = result.Faces()
	}
	total := 0
	for _, face := range faces {
		total += face
	}
	s.audit = append(s.audit, Draw{Source: expr, Index: total, Dice: faces, Kind: KindDice})
	return total, nil
}
