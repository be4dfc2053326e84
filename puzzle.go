// Civicbox sliding-image puzzle.
//
// The platform API supplies a source image URL and a target piece count;
// the server fetches the image, slices it in internal/puzzle, and serves
// each tile as a PNG at /puzzle/:gameid/tile/:piece. Browsers drive the
// session over the per-game websocket:
//
//   - "select_piece" {piece}
//   - "place"        {slot}
//   - "undo"         {slot}
//   - "check"
//   - "reset"
//
// Placing every piece correctly submits the completion to the platform
// for crediting and is terminal.

package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/civicbox/civicbox/internal/api"
	"github.com/civicbox/civicbox/internal/content"
	"github.com/civicbox/civicbox/internal/puzzle"
)

// puzzleAction is any message coming from a puzzle client.
type puzzleAction struct {
	Type  string `json:"type"` // "select_piece", "place", "undo", "check", "reset"
	Piece int    `json:"piece"`
	Slot  int    `json:"slot"`
}

// puzzleState is the full game view broadcast after every change.
type puzzleState struct {
	Type      string             `json:"type"` // "state"
	Title     string             `json:"title"`
	Cols      int                `json:"cols"`
	Rows      int                `json:"rows"`
	Pieces    int                `json:"pieces"`
	Order     []int              `json:"order"` // shuffled display order of piece IDs
	Placed    []puzzle.Placement `json:"placed"`
	Selected  int                `json:"selected"` // -1 when none
	Moves     int                `json:"moves"`
	Completed bool               `json:"completed"`
}

type puzzleHub struct {
	c      *hubCore
	cfg    *Config
	client *api.Client

	game  *api.Game
	sess  *puzzle.Session
	fatal string
	done  *completedMessage
}

func newPuzzleHub(cfg *Config, client *api.Client) func(gameID int) *puzzleHub {
	return func(gameID int) *puzzleHub {
		h := &puzzleHub{
			c:      newHubCore(gameID),
			cfg:    cfg,
			client: client,
		}
		h.c.onConnect = h.handleConnect
		h.c.onEvent = h.handleEvent
		return h
	}
}

func (h *puzzleHub) core() *hubCore { return h.c }

// load fetches the game definition, downloads the source image, and
// slices it. Runs once, on the hub's event loop, when the first client
// connects. An image that cannot be fetched or decoded is fatal for this
// game; the user must reload.
func (h *puzzleHub) load() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	game, err := h.client.Game(ctx, h.c.id)
	if err != nil {
		logf(h.cfg, "ERROR: Loading puzzle %d: %v", h.c.id, err)
		h.fatal = "Unable to load the game. Please try again later."
		return
	}
	if game.Type != "puzzle" {
		h.fatal = "This game is not a puzzle."
		return
	}

	data, err := content.ParsePuzzle(game.Content, h.client.BaseURL())
	if err != nil {
		logf(h.cfg, "ERROR: Parsing puzzle %d content: %v", h.c.id, err)
		h.fatal = "This game's content is malformed."
		return
	}

	img, err := h.client.FetchImage(ctx, data.ImageURL)
	if err != nil {
		logf(h.cfg, "ERROR: Fetching puzzle %d image: %v", h.c.id, err)
		h.fatal = "The puzzle image could not be loaded. Please reload."
		return
	}

	pieces, err := puzzle.Slice(img, data.Pieces)
	if err != nil {
		logf(h.cfg, "ERROR: Slicing puzzle %d image: %v", h.c.id, err)
		h.fatal = "The puzzle image could not be prepared. Please reload."
		return
	}

	sess, err := puzzle.NewSession(pieces, newSessionRand())
	if err != nil {
		h.fatal = "This game's content is malformed."
		return
	}

	h.game = game
	h.sess = sess
	logf(h.cfg, "GAMES: Loaded puzzle %d (%d pieces, %dx%d)", h.c.id, len(pieces), sess.Cols(), sess.Rows())
}

func (h *puzzleHub) handleConnect(c *wsClient) {
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

func (h *puzzleHub) handleEvent(c *wsClient, raw []byte) {
	if h.sess == nil {
		return
	}

	var action puzzleAction
	if err := json.Unmarshal(raw, &action); err != nil {
		return
	}

	switch action.Type {
	case "select_piece":
		if err := h.sess.SelectPiece(action.Piece); err != nil {
			h.notice(c, err)
			return
		}
		h.c.broadcast(h.state())

	case "place":
		if err := h.sess.PlaceAt(action.Slot); err != nil {
			h.notice(c, err)
			return
		}
		h.c.broadcast(h.state())

	case "undo":
		if err := h.sess.Undo(action.Slot); err != nil {
			h.notice(c, err)
			return
		}
		h.c.broadcast(h.state())

	case "check":
		ok, err := h.sess.CheckSolution()
		if err != nil {
			h.notice(c, err)
			return
		}
		if !ok {
			h.c.broadcast(noticeMessage{Type: "notice", Message: "Not quite right. Some pieces are misplaced."})
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

func (h *puzzleHub) notice(c *wsClient, err error) {
	var msg string
	switch {
	case errors.Is(err, puzzle.ErrNoSelection):
		msg = "Select a piece first."
	case errors.Is(err, puzzle.ErrSlotOccupied):
		msg = "That slot is already taken."
	case errors.Is(err, puzzle.ErrNotFilled):
		msg = "Place all the pieces before checking."
	case errors.Is(err, puzzle.ErrCompleted):
		msg = "The game is already completed."
	case errors.Is(err, puzzle.ErrInvalidSlot), errors.Is(err, puzzle.ErrUnknownPiece):
		return // silently ignored taps
	default:
		msg = "That move is not allowed."
	}
	h.c.sendTo(c, noticeMessage{Type: "notice", Message: msg})
}

// complete submits the solved game for crediting. Local state stays
// completed even when crediting fails; the failure is only reported.
func (h *puzzleHub) complete() {
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
		logf(h.cfg, "ERROR: Crediting puzzle %d: %v", h.c.id, err)
		h.c.broadcast(noticeMessage{Type: "notice", Message: "Your completion could not be credited."})
	} else {
		msg.Points = result.Points
	}

	h.done = &msg
	h.c.broadcast(h.state())
	h.c.broadcast(msg)
	logf(h.cfg, "GAMES: Puzzle %d completed in %d moves, %ds", h.c.id, h.sess.Moves(), elapsed)
}

func (h *puzzleHub) state() puzzleState {
	return puzzleState{
		Type:      "state",
		Title:     h.game.Title,
		Cols:      h.sess.Cols(),
		Rows:      h.sess.Rows(),
		Pieces:    len(h.sess.Pieces()),
		Order:     h.sess.DisplayOrder(),
		Placed:    h.sess.Placed(),
		Selected:  h.sess.Selected(),
		Moves:     h.sess.Moves(),
		Completed: h.sess.Completed(),
	}
}

// serveTile encodes one sliced tile as PNG. Tiles exist only after the hub
// has loaded, which the page's websocket connection triggers.
func serveTile(cfg *Config, gm *gameManager[*puzzleHub]) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID, ok := gameIDParam(ps)
		if !ok {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		pieceID, err := strconv.Atoi(ps.ByName("piece"))
		if err != nil {
			http.Error(w, "invalid piece id", http.StatusBadRequest)
			return
		}

		hub, ok := gm.lookup(gameID)
		if !ok || hub.sess == nil {
			http.Error(w, "game not loaded", http.StatusNotFound)
			return
		}

		pieces := hub.sess.Pieces()
		if pieceID < 0 || pieceID >= len(pieces) {
			http.Error(w, "invalid piece id", http.StatusBadRequest)
			return
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, pieces[pieceID].Image); err != nil {
			http.Error(w, "tile encoding failed", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		securityHeaders(cfg, w)

		if _, err := w.Write(buf.Bytes()); err != nil {
			return
		}

		logf(cfg, "SERVE: Puzzle %d tile %d (%s) to %s",
			gameID, pieceID, humanReadableSize(int64(buf.Len())), realIP(r))
	}
}

// ---- Static file paths ----

//go:embed puzzle/index.html
var puzzleHTML []byte

//go:embed puzzle/app.js
var puzzleJS []byte

//go:embed puzzle/app.css
var puzzleCSS []byte

// registerPuzzleGame sets up routes so that:
//   - $path/:gameid              → HTML client
//   - $path/:gameid/ws           → WebSocket for that game
//   - $path/:gameid/tile/:piece  → PNG tile
//   - $path/:gameid/qr           → PNG QR code for that game URL
func registerPuzzleGame(cfg *Config, client *api.Client, path string, mux *httprouter.Router) {
	gm := newGameManager(cfg.sessionTimeout, newPuzzleHub(cfg, client))

	// Per-game client view (HTML)
	mux.GET(cfg.prefix+path+"/:gameid", serveGamePage(cfg, puzzleHTML))

	// Shared assets (no gameid in route)
	mux.GET(cfg.prefix+"/assets/puzzle/app.js", serveEmbedded(cfg, "text/javascript; charset=utf-8", puzzleJS))
	mux.GET(cfg.prefix+"/assets/puzzle/app.css", serveEmbedded(cfg, "text/css; charset=utf-8", puzzleCSS))

	// Per-game websocket
	mux.GET(cfg.prefix+path+"/:gameid/ws", serveGameWS(cfg, gm))

	// Per-game tiles
	mux.GET(cfg.prefix+path+"/:gameid/tile/:piece", serveTile(cfg, gm))

	// Per-game QR code
	mux.GET(cfg.prefix+path+"/:gameid/qr", qrHandler)
}
