// Package puzzle implements the sliding-image puzzle engine: slicing a
// source image into a grid of tiles and the select/place/check session
// state machine.
package puzzle

import (
	"image"
	"image/draw"
	"math"
)

// Piece is one tile cut from the source image. CorrectX/CorrectY are the
// column and row the piece belongs to in the solved layout.
type Piece struct {
	ID       int         `json:"id"`
	CorrectX int         `json:"correctX"`
	CorrectY int         `json:"correctY"`
	Image    image.Image `json:"-"`
}

// Layout returns the tile grid dimensions for a piece count:
// cols = ceil(sqrt(pieces)), rows = ceil(pieces/cols). The last row may
// hold fewer than cols pieces.
func Layout(pieces int) (cols, rows int) {
	if pieces < 1 {
		return 0, 0
	}
	cols = int(math.Ceil(math.Sqrt(float64(pieces))))
	rows = (pieces + cols - 1) / cols
	return cols, rows
}

// Slice cuts the source image into pieces tiles, row-major, each of the
// floored per-tile dimensions. Iteration stops once pieces tiles are
// produced even when cols*rows exceeds the count.
func Slice(img image.Image, pieces int) ([]Piece, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	if pieces < 1 {
		return nil, ErrNoPieces
	}

	cols, rows := Layout(pieces)
	bounds := img.Bounds()
	pieceW := bounds.Dx() / cols
	pieceH := bounds.Dy() / rows

	out := make([]Piece, 0, pieces)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if len(out) == pieces {
				return out, nil
			}

			tile := image.NewRGBA(image.Rect(0, 0, pieceW, pieceH))
			src := image.Pt(bounds.Min.X+col*pieceW, bounds.Min.Y+row*pieceH)
			draw.Draw(tile, tile.Bounds(), img, src, draw.Src)

			out = append(out, Piece{
				ID:       len(out),
				CorrectX: col,
				CorrectY: row,
				Image:    tile,
			})
		}
	}

	return out, nil
}
