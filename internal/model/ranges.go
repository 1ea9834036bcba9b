package model

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const tilingTolerance = 1e-9

// DefaultRanges returns a fresh copy of the 8-tier margin table.
func DefaultRanges() []MarginRange {
	return []MarginRange{
		{Name: "Critico", Min: 0.00, Max: 0.10, Color: "#dc2626"},
		{Name: "Muy Bajo", Min: 0.10, Max: 0.15, Color: "#ea580c"},
		{Name: "Bajo", Min: 0.15, Max: 0.20, Color: "#f59e0b"},
		{Name: "Aceptable", Min: 0.20, Max: 0.27, Color: "#eab308"},
		{Name: "Bueno", Min: 0.27, Max: 0.32, Color: "#84cc16"},
		{Name: "Muy Bueno", Min: 0.32, Max: 0.38, Color: "#22c55e"},
		{Name: "Sobresaliente", Min: 0.38, Max: 0.45, Color: "#10b981"},
		{Name: "Excelente", Min: 0.45, Max: 1.00, Color: "#059669"},
	}
}

// DefaultRangeTable returns the default table, already validated.
func DefaultRangeTable() *RangeTable {
	t, err := NewRangeTable(DefaultRanges())
	if err != nil {
		panic(err) // the built-in table always tiles
	}
	return t
}

// RangeTable is an immutable margin table sorted ascending by Min.
// Safe for concurrent use.
type RangeTable struct {
	ranges []MarginRange
	byName map[string]int
}

// NewRangeTable sorts a copy of ranges by Min and checks that it tiles [0, 1]
// without gaps or overlaps.
func NewRangeTable(ranges []MarginRange) (*RangeTable, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("%w: table is empty", ErrInvalidRanges)
	}

	sorted := make([]MarginRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	byName := make(map[string]int, len(sorted))
	for i, r := range sorted {
		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("%w: range %d has no name", ErrInvalidRanges, i)
		}
		if isBad(float64(r.Min)) || isBad(float64(r.Max)) {
			return nil, fmt.Errorf("%w: %q has a non-finite bound", ErrInvalidRanges, r.Name)
		}
		if r.Min >= r.Max {
			return nil, fmt.Errorf("%w: %q has min %.4f >= max %.4f", ErrInvalidRanges, r.Name, r.Min, r.Max)
		}
		key := normalizeName(r.Name)
		if _, dup := byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidRanges, r.Name)
		}
		byName[key] = i

		if i == 0 {
			if math.Abs(float64(r.Min)) > tilingTolerance {
				return nil, fmt.Errorf("%w: first range %q must start at 0", ErrInvalidRanges, r.Name)
			}
			continue
		}
		prev := sorted[i-1]
		if math.Abs(float64(r.Min-prev.Max)) > tilingTolerance {
			return nil, fmt.Errorf("%w: %q ends at %.4f but %q starts at %.4f",
				ErrInvalidRanges, prev.Name, prev.Max, r.Name, r.Min)
		}
	}
	if last := sorted[len(sorted)-1]; math.Abs(float64(last.Max)-1) > tilingTolerance {
		return nil, fmt.Errorf("%w: last range %q must end at 1", ErrInvalidRanges, last.Name)
	}

	return &RangeTable{ranges: sorted, byName: byName}, nil
}

// Ranges returns a copy of the sorted ranges.
func (t *RangeTable) Ranges() []MarginRange {
	out := make([]MarginRange, len(t.ranges))
	copy(out, t.ranges)
	return out
}

func (t *RangeTable) Len() int { return len(t.ranges) }

func (t *RangeTable) At(i int) MarginRange { return t.ranges[i] }

func (t *RangeTable) First() MarginRange { return t.ranges[0] }

func (t *RangeTable) Last() MarginRange { return t.ranges[len(t.ranges)-1] }

// ByName looks a range up case-insensitively.
func (t *RangeTable) ByName(name string) (MarginRange, bool) {
	i, ok := t.byName[normalizeName(name)]
	if !ok {
		return MarginRange{}, false
	}
	return t.ranges[i], true
}

// Index returns the position of the range with Min <= m < Max, treating the
// top range as closed at Max. It returns -1 when m is outside the table.
func (t *RangeTable) Index(m Fraction) int {
	last := len(t.ranges) - 1
	for i, r := range t.ranges {
		if m >= r.Min && (m < r.Max || (i == last && m == r.Max)) {
			return i
		}
	}
	return -1
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func isBad(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
