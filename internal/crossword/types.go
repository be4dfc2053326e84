// Package crossword implements the crossword game engine: building the
// solution grid from placed words, clue numbering, the per-word helper
// letter bank, and the fill/check session state machine.
package crossword

// Direction is the axis a word extends along.
type Direction string

const (
	Across Direction = "across"
	Down   Direction = "down"
)

// Position identifies a cell on the grid, 0-indexed from the top-left.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Word is a single placed word with its clue.
type Word struct {
	Number    int       `json:"number"`
	Direction Direction `json:"direction"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Position  Position  `json:"position"`
}

// Len returns the number of cells the word occupies.
func (w Word) Len() int {
	return len([]rune(w.Answer))
}

// Cells returns the positions the word occupies, in fill order.
func (w Word) Cells() []Position {
	cells := make([]Position, w.Len())
	for i := range cells {
		cells[i] = w.Position
		if w.Direction == Down {
			cells[i].Row += i
		} else {
			cells[i].Col += i
		}
	}
	return cells
}

// Covers reports whether the word occupies the given cell.
func (w Word) Covers(row, col int) bool {
	if w.Direction == Down {
		return col == w.Position.Col && row >= w.Position.Row && row < w.Position.Row+w.Len()
	}
	return row == w.Position.Row && col >= w.Position.Col && col < w.Position.Col+w.Len()
}
