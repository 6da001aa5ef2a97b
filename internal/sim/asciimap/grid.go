// Package asciimap parses ASCII level maps and resolves their characters
// through a legend into per-cell prefab placements.
package asciimap

import (
	"fmt"
	"sort"
	"strings"

	"substrates.ai/internal/sim/naming"
)

// Grid is a rectangular character map. Row 0 is the top of the level.
type Grid struct {
	rows [][]rune
}

// Parse reads a raw map. A single leading and trailing newline are dropped
// so maps can be written as raw string literals. Spaces are significant.
func Parse(raw string) (Grid, error) {
	s := strings.TrimPrefix(raw, "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return Grid{}, fmt.Errorf("asciimap: empty map")
	}
	lines := strings.Split(s, "\n")
	g := Grid{rows: make([][]rune, len(lines))}
	for i, line := range lines {
		g.rows[i] = []rune(line)
		if len(g.rows[i]) != len(g.rows[0]) {
			return Grid{}, fmt.Errorf("asciimap: row %d has width %d, want %d", i, len(g.rows[i]), len(g.rows[0]))
		}
	}
	if len(g.rows[0]) == 0 {
		return Grid{}, fmt.Errorf("asciimap: zero-width map")
	}
	return g, nil
}

// MustParse is Parse for package-level constants.
func MustParse(raw string) Grid {
	g, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return g
}

func (g Grid) Height() int { return len(g.rows) }

func (g Grid) Width() int {
	if len(g.rows) == 0 {
		return 0
	}
	return len(g.rows[0])
}

// At returns the character at (row, col).
func (g Grid) At(row, col int) rune { return g.rows[row][col] }

// Count returns how many cells hold ch.
func (g Grid) Count(ch rune) int {
	n := 0
	for _, row := range g.rows {
		for _, r := range row {
			if r == ch {
				n++
			}
		}
	}
	return n
}

// Chars returns the distinct characters in the map, sorted.
func (g Grid) Chars() []rune {
	seen := map[rune]bool{}
	for _, row := range g.rows {
		for _, r := range row {
			seen[r] = true
		}
	}
	out := make([]rune, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (g Grid) String() string {
	var b strings.Builder
	for _, row := range g.rows {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// CheckLegend reports map characters that have no legend entry.
func CheckLegend(g Grid, l Legend) error {
	var missing []string
	for _, r := range g.Chars() {
		if _, ok := l[r]; !ok {
			missing = append(missing, fmt.Sprintf("%q", r))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("legend: no entry for map characters %s", strings.Join(missing, ", "))
	}
	return nil
}

// CheckPrefabs reports legend entries naming prefabs outside known.
func CheckPrefabs(l Legend, known []string) error {
	set := make(map[string]bool, len(known))
	for _, k := range known {
		set[k] = true
	}
	for _, name := range l.Names() {
		if !set[name] {
			return fmt.Errorf("legend: unknown prefab %q%s", name, naming.Hint(name, known))
		}
	}
	return nil
}

// Placement is one resolved map cell.
type Placement struct {
	Row     int
	Col     int
	Char    rune
	Prefabs []string
}

// Compile resolves every cell through the legend, row by row.
func Compile(g Grid, l Legend) ([]Placement, error) {
	if err := CheckLegend(g, l); err != nil {
		return nil, err
	}
	out := make([]Placement, 0, g.Height()*g.Width())
	for r, row := range g.rows {
		for c, ch := range row {
			out = append(out, Placement{Row: r, Col: c, Char: ch, Prefabs: l[ch].Prefabs()})
		}
	}
	return out, nil
}

// CountPrefab returns how many times name is placed across all placements.
func CountPrefab(ps []Placement, name string) int {
	n := 0
	for _, p := range ps {
		for _, pf := range p.Prefabs {
			if pf == name {
				n++
			}
		}
	}
	return n
}
