// Package content decodes raw game content delivered by the platform API.
// Content arrives as a JSON object, a JSON-encoded string, or a doubly
// string-encoded object, depending on how it was authored; Unwrap
// normalizes all three before the game-specific parsers run.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/civicbox/civicbox/internal/crossword"
)

// maxEncodingLayers bounds how many levels of string-encoding Unwrap will
// peel before giving up.
const maxEncodingLayers = 2

var (
	// ErrNotObject indicates the content never decoded to a JSON object.
	ErrNotObject = errors.New("content: content is not a JSON object")
	// ErrNoWords indicates crossword content with neither words nor a
	// reconstructable legacy grid.
	ErrNoWords = errors.New("content: crossword content has no words")
	// ErrBadPuzzle indicates puzzle content missing pieces or image URL.
	ErrBadPuzzle = errors.New("content: puzzle content is missing pieces or image url")
)

// Unwrap peels up to maxEncodingLayers levels of string-encoding from raw
// and returns the underlying JSON object. It fails if the result is still
// not an object.
func Unwrap(raw json.RawMessage) (json.RawMessage, error) {
	for i := 0; i <= maxEncodingLayers; i++ {
		trimmed := strings.TrimSpace(string(raw))
		if strings.HasPrefix(trimmed, "{") {
			return raw, nil
		}

		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, ErrNotObject
		}
		raw = json.RawMessage(inner)
	}

	return nil, ErrNotObject
}

// CrosswordData is canonical crossword content: a word list.
type CrosswordData struct {
	Words []crossword.Word `json:"words"`
}

// legacyCrossword is the historical grid+clues payload shape.
type legacyCrossword struct {
	Grid  [][]string `json:"grid"`
	Clues struct {
		Across []string `json:"across"`
		Down   []string `json:"down"`
	} `json:"clues"`
}

// ParseCrossword decodes crossword content in either accepted shape,
// normalizing legacy grid+clues payloads into a word list.
func ParseCrossword(raw json.RawMessage) (*CrosswordData, error) {
	obj, err := Unwrap(raw)
	if err != nil {
		return nil, err
	}

	var data CrosswordData
	if err := json.Unmarshal(obj, &data); err != nil {
		return nil, fmt.Errorf("content: decoding crossword: %w", err)
	}
	if len(data.Words) > 0 {
		return &data, nil
	}

	var legacy legacyCrossword
	if err := json.Unmarshal(obj, &legacy); err != nil {
		return nil, fmt.Errorf("content: decoding legacy crossword: %w", err)
	}
	if len(legacy.Grid) > 0 {
		data.Words = crossword.FromGridClues(legacy.Grid, legacy.Clues.Across, legacy.Clues.Down)
	}
	if len(data.Words) == 0 {
		return nil, ErrNoWords
	}

	return &data, nil
}

// PuzzleData is puzzle content: source image and target piece count.
type PuzzleData struct {
	Pieces      int    `json:"pieces"`
	ImageURL    string `json:"imageUrl"`
	Difficulty  string `json:"difficulty"`
	Description string `json:"description,omitempty"`
}

// ParsePuzzle decodes puzzle content. A relative image URL is resolved
// against the API base.
func ParsePuzzle(raw json.RawMessage, apiBase string) (*PuzzleData, error) {
	obj, err := Unwrap(raw)
	if err != nil {
		return nil, err
	}

	var data PuzzleData
	if err := json.Unmarshal(obj, &data); err != nil {
		return nil, fmt.Errorf("content: decoding puzzle: %w", err)
	}
	if data.Pieces < 1 || data.ImageURL == "" {
		return nil, ErrBadPuzzle
	}

	resolved, err := resolveURL(apiBase, data.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("content: resolving image url: %w", err)
	}
	data.ImageURL = resolved

	return &data, nil
}

func resolveURL(base, ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if u.IsAbs() || base == "" {
		return ref, nil
	}

	b, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	return b.ResolveReference(u).String(), nil
}
