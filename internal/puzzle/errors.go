package puzzle

import "errors"

var (
	// ErrNoPieces indicates a session or slice request with a piece count < 1.
	ErrNoPieces = errors.New("puzzle: piece count must be at least 1")
	// ErrNilImage indicates Slice was called without a source image.
	ErrNilImage = errors.New("puzzle: source image is nil")
	// ErrCompleted indicates the session is already solved and terminal.
	ErrCompleted = errors.New("puzzle: session already completed")
	// ErrNoSelection indicates a placement without a selected piece.
	ErrNoSelection = errors.New("puzzle: no piece selected")
	// ErrSlotOccupied indicates the target slot already holds a piece.
	ErrSlotOccupied = errors.New("puzzle: slot is already occupied")
	// ErrInvalidSlot indicates a slot index outside the target grid.
	ErrInvalidSlot = errors.New("puzzle: slot index out of range")
	// ErrUnknownPiece indicates a piece ID that does not exist.
	ErrUnknownPiece = errors.New("puzzle: unknown piece")
	// ErrNotFilled indicates a solution check before every piece is placed.
	ErrNotFilled = errors.New("puzzle: not all pieces are placed")
)
