package puzzle_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicbox/civicbox/internal/puzzle"
)

func TestLayout(t *testing.T) {
	cases := []struct {
		pieces int
		cols   int
		rows   int
	}{
		{1, 1, 1},
		{4, 2, 2},
		{6, 3, 2},
		{9, 3, 3},
		{10, 4, 3},
		{12, 4, 3},
		{16, 4, 4},
	}

	for _, tc := range cases {
		cols, rows := puzzle.Layout(tc.pieces)
		assert.Equal(t, tc.cols, cols, "pieces=%d", tc.pieces)
		assert.Equal(t, tc.rows, rows, "pieces=%d", tc.pieces)
	}
}

// testImage paints each quadrant of a 2x2 layout in a distinct color so
// tiles can be told apart after slicing.
func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	colors := []color.RGBA{
		{R: 255, A: 255},
		{G: 255, A: 255},
		{B: 255, A: 255},
		{R: 255, G: 255, A: 255},
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			q := 0
			if x >= w/2 {
				q++
			}
			if y >= h/2 {
				q += 2
			}
			img.Set(x, y, colors[q])
		}
	}
	return img
}

func TestSlice(t *testing.T) {
	img := testImage(64, 48)

	pieces, err := puzzle.Slice(img, 4)
	require.NoError(t, err)
	require.Len(t, pieces, 4)

	for i, p := range pieces {
		assert.Equal(t, i, p.ID)
		assert.Equal(t, i%2, p.CorrectX)
		assert.Equal(t, i/2, p.CorrectY)
		require.NotNil(t, p.Image)
		assert.Equal(t, 32, p.Image.Bounds().Dx())
		assert.Equal(t, 24, p.Image.Bounds().Dy())
	}

	// Each tile carries its quadrant's color.
	for i, p := range pieces {
		r, g, b, _ := p.Image.At(5, 5).RGBA()
		want := [4][3]uint32{
			{0xffff, 0, 0},
			{0, 0xffff, 0},
			{0, 0, 0xffff},
			{0xffff, 0xffff, 0},
		}[i]
		assert.Equal(t, want, [3]uint32{r, g, b}, "piece %d", i)
	}
}

func TestSliceStopsAtPieceCount(t *testing.T) {
	// 6 pieces on a 3x2 layout fills the grid; 5 leaves the last cell
	// uncut.
	img := testImage(60, 40)

	pieces, err := puzzle.Slice(img, 5)
	require.NoError(t, err)
	require.Len(t, pieces, 5)

	last := pieces[4]
	assert.Equal(t, 1, last.CorrectX)
	assert.Equal(t, 1, last.CorrectY)
}

func TestSliceFloorsPieceDimensions(t *testing.T) {
	img := testImage(65, 49)

	pieces, err := puzzle.Slice(img, 4)
	require.NoError(t, err)
	assert.Equal(t, 32, pieces[0].Image.Bounds().Dx())
	assert.Equal(t, 24, pieces[0].Image.Bounds().Dy())
}

func TestSliceErrors(t *testing.T) {
	_, err := puzzle.Slice(nil, 4)
	assert.ErrorIs(t, err, puzzle.ErrNilImage)

	_, err = puzzle.Slice(testImage(8, 8), 0)
	assert.ErrorIs(t, err, puzzle.ErrNoPieces)
}
