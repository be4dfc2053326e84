package crossword

import "errors"

var (
	// ErrNoWords indicates a session was created with an empty word list.
	ErrNoWords = errors.New("crossword: word list is empty")
	// ErrCompleted indicates the session is already solved and terminal.
	ErrCompleted = errors.New("crossword: session already completed")
	// ErrBlockedCell indicates the cell is blocked or out of bounds.
	ErrBlockedCell = errors.New("crossword: cell is blocked")
	// ErrNoSelection indicates a letter tap without a selected cell.
	ErrNoSelection = errors.New("crossword: no cell selected")
	// ErrWrongWord indicates the selected cell does not belong to the tapped word.
	ErrWrongWord = errors.New("crossword: selected cell is not part of that word")
	// ErrEmptyCell indicates a clear on a cell that holds no letter.
	ErrEmptyCell = errors.New("crossword: cell is already empty")
)
