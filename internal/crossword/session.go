package crossword

import (
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

// Session is the state machine for one crossword play-through. It owns the
// solution grid, the user grid, the helper-letter bank, and the current
// cell selection. It is not safe for concurrent use; callers serialize
// access (one event loop per game).
type Session struct {
	words []Word
	grid  Grid
	user  Grid
	bank  *Bank

	selected     *Position
	selectedWord *Word
	completed    bool
	startedAt    time.Time
}

// NewSession builds a session from the word list. The random source drives
// helper-letter generation only.
func NewSession(words []Word, rng *rand.Rand) (*Session, error) {
	if len(words) == 0 {
		return nil, ErrNoWords
	}

	grid := BuildGrid(words)

	return &Session{
		words:     words,
		grid:      grid,
		user:      grid.EmptyUserGrid(),
		bank:      NewBank(words, rng),
		startedAt: time.Now(),
	}, nil
}

// Words returns the word list.
func (s *Session) Words() []Word { return s.words }

// Grid returns the solution grid.
func (s *Session) Grid() Grid { return s.grid }

// UserGrid returns the user's current entries.
func (s *Session) UserGrid() Grid { return s.user }

// Bank returns the helper-letter bank.
func (s *Session) Bank() *Bank { return s.bank }

// Completed reports whether the puzzle has been solved.
func (s *Session) Completed() bool { return s.completed }

// Elapsed returns the time since the session started.
func (s *Session) Elapsed() time.Duration { return time.Since(s.startedAt) }

// Selected returns the selected cell and the number of the word the
// selection belongs to, or nil and 0 when nothing is selected.
func (s *Session) Selected() (*Position, int) {
	if s.selected == nil {
		return nil, 0
	}
	pos := *s.selected
	number := 0
	if s.selectedWord != nil {
		number = s.selectedWord.Number
	}
	return &pos, number
}

// SelectCell selects a letter cell. Re-clicking a selected cell that
// already holds a letter clears it instead of reselecting.
func (s *Session) SelectCell(row, col int) error {
	if s.completed {
		return ErrCompleted
	}
	if s.grid.IsBlocked(row, col) {
		return ErrBlockedCell
	}

	if s.selected != nil && s.selected.Row == row && s.selected.Col == col && s.user[row][col] != "" {
		return s.ClearCell(row, col)
	}

	s.selected = &Position{Row: row, Col: col}
	s.selectedWord = WordAt(s.words, row, col)
	return nil
}

// TapLetter writes a helper letter from wordNumber's pool into the selected
// cell, then advances the selection to the next empty cell of the currently
// selected word. The letter is not checked for positional correctness;
// only CheckAnswers judges the fill.
func (s *Session) TapLetter(letter string, wordNumber int) error {
	if s.completed {
		return ErrCompleted
	}
	if s.selected == nil {
		return ErrNoSelection
	}

	word := WordByNumber(s.words, wordNumber)
	if word == nil || !word.Covers(s.selected.Row, s.selected.Col) {
		return ErrWrongWord
	}

	// Pools hold upper-case letters only.
	letter = strings.ToUpper(letter)

	if prev := s.user[s.selected.Row][s.selected.Col]; prev != "" {
		s.bank.ret(wordNumber, prev)
	}

	s.user[s.selected.Row][s.selected.Col] = letter
	s.bank.use(wordNumber, letter)
	s.advance()

	return nil
}

// advance moves the selection to the next empty cell of the selected word,
// in its direction. The selection never crosses into a different word.
func (s *Session) advance() {
	if s.selectedWord == nil || s.selected == nil {
		return
	}
	for _, cell := range s.selectedWord.Cells() {
		if s.selectedWord.Direction == Down && cell.Row <= s.selected.Row {
			continue
		}
		if s.selectedWord.Direction == Across && cell.Col <= s.selected.Col {
			continue
		}
		if s.user[cell.Row][cell.Col] == "" {
			s.selected = &Position{Row: cell.Row, Col: cell.Col}
			return
		}
	}
}

// ClearCell blanks a filled cell and returns its letter to the unused pool
// of the word owning the cell.
func (s *Session) ClearCell(row, col int) error {
	if s.completed {
		return ErrCompleted
	}
	if s.grid.IsBlocked(row, col) {
		return ErrBlockedCell
	}
	if s.user[row][col] == "" {
		return ErrEmptyCell
	}

	if word := WordAt(s.words, row, col); word != nil {
		s.bank.ret(word.Number, s.user[row][col])
	}
	s.user[row][col] = ""

	return nil
}

// CheckAnswers compares the user grid against the solution over all letter
// cells, case-insensitively. It returns the rounded percentage of correct
// cells; 100 marks the session completed.
func (s *Session) CheckAnswers() (percentage int, completed bool) {
	total, correct := 0, 0
	for r := range s.grid {
		for c := range s.grid[r] {
			if s.grid[r][c] == Blocked {
				continue
			}
			total++
			if strings.EqualFold(s.user[r][c], s.grid[r][c]) {
				correct++
			}
		}
	}
	if total == 0 {
		return 0, false
	}

	percentage = int(math.Round(float64(correct) / float64(total) * 100))
	if correct == total {
		s.completed = true
	} else if percentage == 100 {
		// Rounding must never report a solved grid that is not.
		percentage = 99
	}

	return percentage, s.completed
}

// Reset clears the user grid, consumed letters, and selection. The solution
// grid and the helper pools are kept.
func (s *Session) Reset() {
	s.user = s.grid.EmptyUserGrid()
	s.bank.reset()
	s.selected = nil
	s.selectedWord = nil
}
