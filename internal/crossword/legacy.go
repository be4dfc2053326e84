package crossword

// FromGridClues reconstructs a word list from the legacy payload shape: a
// letter grid plus flat across/down clue arrays. Words are found by
// scanning the grid row-major for contiguous runs of at least two letters;
// runs pair with clues in clue-array order and receive sequential numbers.
// A down run whose start cell an across run already claimed is skipped.
//
// The heuristic cannot verify the reconstructed answers against the clue
// text, so a malformed legacy payload silently yields whatever the scan
// finds.
func FromGridClues(grid [][]string, across, down []string) []Word {
	acrossRuns := scanRuns(grid, Across)
	downRuns := scanRuns(grid, Down)

	claimed := make(map[Position]bool, len(acrossRuns))
	for _, r := range acrossRuns {
		claimed[r.Position] = true
	}

	var words []Word
	number := 1

	for i, clue := range across {
		if i >= len(acrossRuns) {
			break
		}
		w := acrossRuns[i]
		w.Number = number
		w.Question = clue
		words = append(words, w)
		number++
	}

	di := 0
	for _, clue := range down {
		for di < len(downRuns) && claimed[downRuns[di].Position] {
			di++
		}
		if di >= len(downRuns) {
			break
		}
		w := downRuns[di]
		w.Number = number
		w.Question = clue
		words = append(words, w)
		number++
		di++
	}

	return words
}

// scanRuns collects contiguous letter runs of length >= 2 along one axis,
// in row-major order of their start cells.
func scanRuns(grid [][]string, dir Direction) []Word {
	letter := func(row, col int) bool {
		if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
			return false
		}
		c := grid[row][col]
		return c != "" && c != Blocked
	}

	var runs []Word
	for r := range grid {
		for c := range grid[r] {
			if !letter(r, c) {
				continue
			}

			var answer string
			switch dir {
			case Down:
				if letter(r-1, c) {
					continue
				}
				for i := r; letter(i, c); i++ {
					answer += grid[i][c]
				}
			default:
				if letter(r, c-1) {
					continue
				}
				for i := c; letter(r, i); i++ {
					answer += grid[r][i]
				}
			}

			if len([]rune(answer)) < 2 {
				continue
			}
			runs = append(runs, Word{
				Direction: dir,
				Answer:    answer,
				Position:  Position{Row: r, Col: c},
			})
		}
	}
	return runs
}
