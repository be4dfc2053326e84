package puzzle

import (
	"math/rand/v2"
	"time"
)

// Placement records one piece occupying one slot. Slots index the target
// grid linearly, row*cols+col.
type Placement struct {
	PieceID int `json:"pieceId"`
	Slot    int `json:"slotId"`
}

// Session is the state machine for one puzzle play-through. At most one
// piece occupies a slot and each piece is placed at most once. Not safe
// for concurrent use; callers serialize access.
type Session struct {
	pieces []Piece
	cols   int
	rows   int
	rng    *rand.Rand

	order     []int // display order of piece IDs, cosmetic only
	placed    []Placement
	selected  int // piece ID, -1 when none
	moves     int
	completed bool
	startedAt time.Time
}

// NewSession builds a session over sliced pieces. The random source drives
// the cosmetic display shuffle only; correctness mapping never changes.
func NewSession(pieces []Piece, rng *rand.Rand) (*Session, error) {
	if len(pieces) == 0 {
		return nil, ErrNoPieces
	}

	cols, rows := Layout(len(pieces))

	s := &Session{
		pieces:    pieces,
		cols:      cols,
		rows:      rows,
		rng:       rng,
		selected:  -1,
		startedAt: time.Now(),
	}
	s.shuffleOrder()

	return s, nil
}

func (s *Session) shuffleOrder() {
	s.order = make([]int, len(s.pieces))
	for i := range s.order {
		s.order[i] = s.pieces[i].ID
	}
	s.rng.Shuffle(len(s.order), func(i, j int) {
		s.order[i], s.order[j] = s.order[j], s.order[i]
	})
}

// Pieces returns the sliced pieces.
func (s *Session) Pieces() []Piece { return s.pieces }

// Cols returns the number of columns in the target grid.
func (s *Session) Cols() int { return s.cols }

// Rows returns the number of rows in the target grid.
func (s *Session) Rows() int { return s.rows }

// DisplayOrder returns piece IDs in their shuffled display order.
func (s *Session) DisplayOrder() []int { return s.order }

// Placed returns the current placements.
func (s *Session) Placed() []Placement { return s.placed }

// Selected returns the selected piece ID, or -1.
func (s *Session) Selected() int { return s.selected }

// Moves returns the number of placements made.
func (s *Session) Moves() int { return s.moves }

// Completed reports whether the puzzle has been solved.
func (s *Session) Completed() bool { return s.completed }

// Elapsed returns the time since the session started.
func (s *Session) Elapsed() time.Duration { return time.Since(s.startedAt) }

// IsPlaced reports whether the piece currently occupies a slot.
func (s *Session) IsPlaced(pieceID int) bool {
	for _, p := range s.placed {
		if p.PieceID == pieceID {
			return true
		}
	}
	return false
}

// pieceAt returns the placement index for a slot, or -1.
func (s *Session) pieceAt(slot int) int {
	for i, p := range s.placed {
		if p.Slot == slot {
			return i
		}
	}
	return -1
}

// SelectPiece toggles selection of an unplaced piece. Selecting a placed
// piece is ignored; re-selecting the current piece deselects it.
func (s *Session) SelectPiece(pieceID int) error {
	if s.completed {
		return ErrCompleted
	}
	if pieceID < 0 || pieceID >= len(s.pieces) {
		return ErrUnknownPiece
	}
	if s.IsPlaced(pieceID) {
		return nil
	}

	if s.selected == pieceID {
		s.selected = -1
	} else {
		s.selected = pieceID
	}

	return nil
}

// PlaceAt puts the selected piece into a slot, clears the selection, and
// counts the move.
func (s *Session) PlaceAt(slot int) error {
	if s.completed {
		return ErrCompleted
	}
	if s.selected < 0 {
		return ErrNoSelection
	}
	if slot < 0 || slot >= s.cols*s.rows {
		return ErrInvalidSlot
	}
	if s.pieceAt(slot) >= 0 {
		return ErrSlotOccupied
	}

	s.placed = append(s.placed, Placement{PieceID: s.selected, Slot: slot})
	s.selected = -1
	s.moves++

	return nil
}

// Undo removes the piece placed at a slot. The move counter never drops
// below zero.
func (s *Session) Undo(slot int) error {
	if s.completed {
		return ErrCompleted
	}

	i := s.pieceAt(slot)
	if i < 0 {
		return ErrInvalidSlot
	}

	s.placed = append(s.placed[:i], s.placed[i+1:]...)
	if s.moves > 0 {
		s.moves--
	}

	return nil
}

// CheckSolution validates the board. Every piece must be placed and every
// placement must satisfy slot == CorrectY*cols+CorrectX. An incomplete
// board returns ErrNotFilled; a full but wrong board returns false without
// revealing which pieces are misplaced. A full match marks the session
// completed.
func (s *Session) CheckSolution() (bool, error) {
	if s.completed {
		return true, nil
	}
	if len(s.placed) != len(s.pieces) {
		return false, ErrNotFilled
	}

	for _, p := range s.placed {
		piece := s.pieces[p.PieceID]
		if p.Slot != piece.CorrectY*s.cols+piece.CorrectX {
			return false, nil
		}
	}

	s.completed = true
	return true, nil
}

// Reset clears placements, selection, and moves, and reshuffles the
// display order.
func (s *Session) Reset() {
	s.placed = nil
	s.selected = -1
	s.moves = 0
	s.shuffleOrder()
}
