package crossword

// Blocked marks a cell no word passes through.
const Blocked = "#"

// Grid is a rectangular crossword grid. Cells hold either a single letter
// or Blocked.
type Grid [][]string

// BuildGrid derives the solution grid from the word list. Dimensions are
// the maximum extent reached by any word; every cell not covered by a word
// stays blocked. Overlapping words are assumed to agree on shared letters;
// if they do not, the last word written wins.
func BuildGrid(words []Word) Grid {
	maxRow, maxCol := 0, 0
	for _, w := range words {
		cells := w.Cells()
		if len(cells) == 0 {
			continue
		}
		last := cells[len(cells)-1]
		if last.Row > maxRow {
			maxRow = last.Row
		}
		if last.Col > maxCol {
			maxCol = last.Col
		}
	}

	g := make(Grid, maxRow+1)
	for r := range g {
		g[r] = make([]string, maxCol+1)
		for c := range g[r] {
			g[r][c] = Blocked
		}
	}

	for _, w := range words {
		letters := []rune(w.Answer)
		for i, cell := range w.Cells() {
			g[cell.Row][cell.Col] = string(letters[i])
		}
	}

	return g
}

// Rows returns the number of rows.
func (g Grid) Rows() int {
	return len(g)
}

// Cols returns the number of columns.
func (g Grid) Cols() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// InBounds reports whether the cell exists.
func (g Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Rows() && col >= 0 && col < g.Cols()
}

// At returns the cell content, or Blocked when out of bounds.
func (g Grid) At(row, col int) string {
	if !g.InBounds(row, col) {
		return Blocked
	}
	return g[row][col]
}

// IsBlocked reports whether the cell is blocked or out of bounds.
func (g Grid) IsBlocked(row, col int) bool {
	return g.At(row, col) == Blocked
}

// EmptyUserGrid returns a parallel grid for user entry: blocked cells are
// mirrored, letter cells start empty.
func (g Grid) EmptyUserGrid() Grid {
	user := make(Grid, g.Rows())
	for r := range user {
		user[r] = make([]string, g.Cols())
		for c := range user[r] {
			if g[r][c] == Blocked {
				user[r][c] = Blocked
			}
		}
	}
	return user
}
