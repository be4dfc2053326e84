// Civicbox crossword game.
//
// Game content comes from the platform API (preferred {words} shape or the
// legacy grid+clues payload, possibly string-encoded), the engine lives in
// internal/crossword, and browsers drive it over the per-game websocket:
//
//   - "select_cell" {row, col}
//   - "tap_letter"  {letter, word}
//   - "clear_cell"  {row, col}
//   - "check"
//   - "reset"
//
// Every accepted action is answered with a full "state" broadcast; invalid
// actions get a "notice" sent only to the offending client. A 100% check
// submits the completion to the platform for crediting and is terminal.

package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/civicbox/civicbox/internal/api"
	"github.com/civicbox/civicbox/internal/content"
	"github.com/civicbox/civicbox/internal/crossword"
)

// crosswordAction is any message coming from a crossword client.
type crosswordAction struct {
	Type   string `json:"type"`             // "select_cell", "tap_letter", "clear_cell", "check", "reset"
	Row    int    `json:"row"`              // select_cell / clear_cell
	Col    int    `json:"col"`              // select_cell / clear_cell
	Letter string `json:"letter,omitempty"` // tap_letter
	Word   int    `json:"word,omitempty"`   // tap_letter
}

// crosswordCell is one cell of the state view. Letter holds the user's
// entry; solution letters never leave the server.
type crosswordCell struct {
	Blocked bool   `json:"blocked"`
	Letter  string `json:"letter,omitempty"`
	Across  int    `json:"across,omitempty"` // word number starting across here
	Down    int    `json:"down,omitempty"`   // word number starting down here
}

// crosswordClue is one clue of the state view.
type crosswordClue struct {
	Number    int    `json:"number"`
	Direction string `json:"direction"`
	Question  string `json:"question"`
	Length    int    `json:"length"`
}

// helperLetter is one entry of a word's tappable letter palette.
type helperLetter struct {
	Letter string `json:"letter"`
	Used   bool   `json:"used"`
}

// crosswordState is the full game view broadcast after every change.
type crosswordState struct {
	Type         string                 `json:"type"` // "state"
	Title        string                 `json:"title"`
	Rows         int                    `json:"rows"`
	Cols         int                    `json:"cols"`
	Cells        [][]crosswordCell      `json:"cells"`
	Clues        []crosswordClue        `json:"clues"`
	Letters      map[int][]helperLetter `json:"letters"`
	Selected     *crossword.Position    `json:"selected,omitempty"`
	SelectedWord int                    `json:"selectedWord,omitempty"`
	Completed    bool                   `json:"completed"`
}

// noticeMessage reports a recoverable user error to one client.
type noticeMessage struct {
	Type    string `json:"type"` // "notice"
	Message string `json:"message"`
}

// fatalMessage reports an unrecoverable load failure; the game stays
// unplayable until reload.
type fatalMessage struct {
	Type    string `json:"type"` // "fatal"
	Message string `json:"message"`
}

// checkedMessage reports a non-winning answer check.
type checkedMessage struct {
	Type       string `json:"type"` // "checked"
	Percentage int    `json:"percentage"`
}

// completedMessage reports a solved game and the crediting outcome.
type completedMessage struct {
	Type           string `json:"type"` // "completed"
	Message        string `json:"message,omitempty"`
	Points         int    `json:"points"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
}

type crosswordHub struct {
	c      *hubCore
	cfg    *Config
	client *api.Client

	game  *api.Game
	sess  *crossword.Session
	fatal string
	done  *completedMessage
}

func newCrosswordHub(cfg *Config, client *api.Client) func(gameID int) *crosswordHub {
	return func(gameID int) *crosswordHub {
		h := &crosswordHub{
			c:      newHubCore(gameID),
			cfg:    cfg,
			client: client,
		}
		h.c.onConnect = h.handleConnect
		h.c.onEvent = h.handleEvent
		return h
	}
}

func (h *crosswordHub) core() *hubCore { return h.c }

// load fetches and parses the game definition. Runs once, on the hub's
// event loop, when the first client connects.
func (h *crosswordHub) load() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	game, err := h.client.Game(ctx, h.c.id)
	if err != nil {
		logf(h.cfg, "ERROR: Loading crossword %d: %v", h.c.id, err)
		h.fatal = "Unable to load the game. Please try again later."
		return
	}
	if game.Type != "crossword" {
		h.fatal = "This game is not a crossword."
		return
	}

	data, err := content.ParseCrossword(game.Content)
	if err != nil {
		logf(h.cfg, "ERROR: Parsing crossword %d content: %v", h.c.id, err)
		h.fatal = "This game's content is malformed."
		return
	}

	sess, err := crossword.NewSession(data.Words, newSessionRand())
	if err != nil {
		h.fatal = "This game's content is malformed."
		return
	}

	h.game = game
	h.sess = sess
	logf(h.cfg, "GAMES: Loaded crossword %d (%d words)", h.c.id, len(data.Words))
}

func (h *crosswordHub) handleConnect(c *wsClient) {
	if h.sess == nil && h.fatal == "" {
		h.load()
	}

	if h.fatal != "" {
		h.c.sendTo(c, fatalMessage{Type: "fatal", Message: h.fatal})
		return
	}
	if h.done != nil {
		h.c.sendTo(c, h.state())
		h.c.sendTo(c, *h.done)
		return
	}
	h.c.sendTo(c, h.state())
}

func (h *crosswordHub) handleEvent(c *wsClient, raw []byte) {
	if h.sess == nil {
		return
	}

	var action crosswordAction
	if err := json.Unmarshal(raw, &action); err != nil {
		return
	}

	switch action.Type {
	case "select_cell":
		if err := h.sess.SelectCell(action.Row, action.Col); err != nil {
			h.notice(c, err)
			return
		}
		h.c.broadcast(h.state())

	case "tap_letter":
		if err := h.sess.TapLetter(action.Letter, action.Word); err != nil {
			h.notice(c, err)
			return
		}
		h.c.broadcast(h.state())

	case "clear_cell":
		if err := h.sess.ClearCell(action.Row, action.Col); err != nil {
			h.notice(c, err)
			return
		}
		h.c.broadcast(h.state())

	case "check":
		percentage, completed := h.sess.CheckAnswers()
		if !completed {
			h.c.broadcast(checkedMessage{Type: "checked", Percentage: percentage})
			return
		}
		h.complete()

	case "reset":
		if h.sess.Completed() {
			h.c.sendTo(c, noticeMessage{Type: "notice", Message: "The game is already completed."})
			return
		}
		h.sess.Reset()
		h.c.broadcast(h.state())

	default:
		// ignore unknown types
	}
}

// notice maps engine errors to user-facing text for one client.
func (h *crosswordHub) notice(c *wsClient, err error) {
	var msg string
	switch {
	case errors.Is(err, crossword.ErrWrongWord):
		msg = "The selected cell is not part of that word."
	case errors.Is(err, crossword.ErrNoSelection):
		msg = "Select a cell first."
	case errors.Is(err, crossword.ErrCompleted):
		msg = "The game is already completed."
	case errors.Is(err, crossword.ErrBlockedCell), errors.Is(err, crossword.ErrEmptyCell):
		return // silently ignored taps
	default:
		msg = "That move is not allowed."
	}
	h.c.sendTo(c, noticeMessage{Type: "notice", Message: msg})
}

// complete submits the solved game for crediting. Local state stays
// completed even when crediting fails; the failure is only reported.
func (h *crosswordHub) complete() {
	if h.done != nil {
		h.c.broadcast(*h.done)
		return
	}

	elapsed := int(h.sess.Elapsed().Seconds())
	msg := completedMessage{
		Type:           "completed",
		Message:        h.game.EducationalMessage,
		ElapsedSeconds: elapsed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := h.client.CompleteGame(ctx, h.c.id, 100, h.sess.Elapsed())
	if err != nil {
		logf(h.cfg, "ERROR: Crediting crossword %d: %v", h.c.id, err)
		h.c.broadcast(noticeMessage{Type: "notice", Message: "Your completion could not be credited."})
	} else {
		msg.Points = result.Points
	}

	h.done = &msg
	h.c.broadcast(h.state())
	h.c.broadcast(msg)
	logf(h.cfg, "GAMES: Crossword %d completed in %ds", h.c.id, elapsed)
}

// state builds the full client view. Solution letters stay server-side.
func (h *crosswordHub) state() crosswordState {
	words := h.sess.Words()
	grid := h.sess.Grid()
	user := h.sess.UserGrid()
	bank := h.sess.Bank()

	cells := make([][]crosswordCell, grid.Rows())
	for r := range cells {
		cells[r] = make([]crosswordCell, grid.Cols())
		for c := range cells[r] {
			if grid.IsBlocked(r, c) {
				cells[r][c] = crosswordCell{Blocked: true}
				continue
			}
			across, down := crossword.CellNumbers(words, r, c)
			cells[r][c] = crosswordCell{
				Letter: user.At(r, c),
				Across: across,
				Down:   down,
			}
		}
	}

	clues := make([]crosswordClue, 0, len(words))
	letters := make(map[int][]helperLetter, len(words))
	for _, w := range words {
		clues = append(clues, crosswordClue{
			Number:    w.Number,
			Direction: string(w.Direction),
			Question:  w.Question,
			Length:    w.Len(),
		})

		pool := bank.Letters(w.Number)
		palette := make([]helperLetter, len(pool))
		for i, l := range pool {
			palette[i] = helperLetter{Letter: l, Used: bank.IsUsed(w.Number, i)}
		}
		letters[w.Number] = palette
	}

	selected, selectedWord := h.sess.Selected()

	return crosswordState{
		Type:         "state",
		Title:        h.game.Title,
		Rows:         grid.Rows(),
		Cols:         grid.Cols(),
		Cells:        cells,
		Clues:        clues,
		Letters:      letters,
		Selected:     selected,
		SelectedWord: selectedWord,
		Completed:    h.sess.Completed(),
	}
}

// ---- Static file paths ----

//go:embed crossword/index.html
var crosswordHTML []byte

//go:embed crossword/app.js
var crosswordJS []byte

//go:embed crossword/app.css
var crosswordCSS []byte

// registerCrosswordGame sets up routes so that:
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerCrosswordGame(cfg *Config, client *api.Client, path string, mux *httprouter.Router) {
	gm := newGameManager(cfg.sessionTimeout, newCrosswordHub(cfg, client))

	// Per-game client view (HTML)
	mux.GET(cfg.prefix+path+"/:gameid", serveGamePage(cfg, crosswordHTML))

	// Shared assets (no gameid in route)
	mux.GET(cfg.prefix+"/assets/crossword/app.js", serveEmbedded(cfg, "text/javascript; charset=utf-8", crosswordJS))
	mux.GET(cfg.prefix+"/assets/crossword/app.css", serveEmbedded(cfg, "text/css; charset=utf-8", crosswordCSS))

	// Per-game websocket
	mux.GET(cfg.prefix+path+"/:gameid/ws", serveGameWS(cfg, gm))

	// Per-game QR code
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)
}
