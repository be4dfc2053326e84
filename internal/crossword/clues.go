package crossword

// CellNumbers returns the across and down word numbers starting at the
// given cell. Only start cells carry numbers; a cell may start one word in
// each direction. Zero means no word starts there in that direction.
func CellNumbers(words []Word, row, col int) (across, down int) {
	for _, w := range words {
		if w.Position.Row != row || w.Position.Col != col {
			continue
		}
		if w.Direction == Down {
			down = w.Number
		} else {
			across = w.Number
		}
	}
	return across, down
}

// WordAt returns the first word covering the given cell, or nil.
// Word-list order decides which word is preferred when an across and a
// down word share the cell.
func WordAt(words []Word, row, col int) *Word {
	for i := range words {
		if words[i].Covers(row, col) {
			return &words[i]
		}
	}
	return nil
}

// WordByNumber returns the word with the given number, or nil.
func WordByNumber(words []Word, number int) *Word {
	for i := range words {
		if words[i].Number == number {
			return &words[i]
		}
	}
	return nil
}
