// Shared per-game websocket plumbing.
//
// Each game ID gets its own hub: a single event loop that owns the engine
// session, so every mutation is applied in event-arrival order without
// locking. Clients connect at /$game/:gameid/ws, send JSON actions, and
// receive JSON state broadcasts. Hubs are reaped after a configurable idle
// timeout, and each game URL can be shared via an in-page QR code backed
// by go-qrcode.

package main

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log"
	mrand "math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

type wsClient struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type wsEvent struct {
	client *wsClient
	raw    []byte
}

// hubCore is the event loop shared by both game types. onConnect and
// onEvent run on the loop goroutine; they may touch the engine session and
// the clients map freely.
type hubCore struct {
	id      int
	clients map[*wsClient]bool

	register chan *wsClient
	unreg    chan *wsClient
	events   chan wsEvent
	quit     chan struct{}

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time

	onConnect func(c *wsClient)
	onEvent   func(c *wsClient, raw []byte)
}

func newHubCore(gameID int) *hubCore {
	now := time.Now()
	return &hubCore{
		id:         gameID,
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unreg:      make(chan *wsClient),
		events:     make(chan wsEvent),
		quit:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
	}
}

func (h *hubCore) run() {
	for {
		select {
		case c := <-h.register:
			h.touch()
			h.clients[c] = true
			if h.onConnect != nil {
				h.onConnect(c)
			}

		case c := <-h.unreg:
			h.touch()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case ev := <-h.events:
			h.touch()
			if h.onEvent != nil {
				h.onEvent(ev.client, ev.raw)
			}

		case <-h.quit:
			for c := range h.clients {
				close(c.send)
				_ = c.conn.Close()
				delete(h.clients, c)
			}
			return
		}
	}
}

func (h *hubCore) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

func (h *hubCore) idle() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastActive
}

// close stops the event loop and disconnects all clients. Used by the
// reaper; safe to call from any goroutine exactly once.
func (h *hubCore) close() {
	close(h.quit)
}

// sendTo queues a message for one client, dropping the client if its send
// buffer is full.
func (h *hubCore) sendTo(c *wsClient, msg any) {
	select {
	case c.send <- msg:
	default:
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast queues a message for every connected client.
func (h *hubCore) broadcast(msg any) {
	for c := range h.clients {
		h.sendTo(c, msg)
	}
}

func (c *wsClient) readPump(h *hubCore) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.quit:
		}
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		select {
		case h.events <- wsEvent{client: c, raw: raw}:
		case <-h.quit:
			return
		}
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const playerCookieName = "civicbox_id"

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		log.Println("rand.Read error:", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// newSessionRand returns a session-scoped random source seeded from
// crypto/rand. Engines take the source explicitly so tests can replay a
// session with a fixed seed.
func newSessionRand() *mrand.Rand {
	var seed [16]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return mrand.New(mrand.NewPCG(
		binary.LittleEndian.Uint64(seed[:8]),
		binary.LittleEndian.Uint64(seed[8:]),
	))
}

type hubber interface {
	core() *hubCore
}

// gameManager holds a set of hubs keyed by platform game ID, so each
// $game/:gameid is its own isolated session.
type gameManager[H hubber] struct {
	mu          sync.Mutex
	hubs        map[int]H
	idleTimeout time.Duration
	create      func(gameID int) H
}

func newGameManager[H hubber](idleTimeout time.Duration, create func(gameID int) H) *gameManager[H] {
	gm := &gameManager[H]{
		hubs:        make(map[int]H),
		idleTimeout: idleTimeout,
		create:      create,
	}
	if idleTimeout > 0 {
		go gm.reaperLoop()
	}
	return gm
}

func (gm *gameManager[H]) get(gameID int) H {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if hub, ok := gm.hubs[gameID]; ok {
		return hub
	}

	hub := gm.create(gameID)
	gm.hubs[gameID] = hub
	go hub.core().run()
	return hub
}

func (gm *gameManager[H]) lookup(gameID int) (H, bool) {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	hub, ok := gm.hubs[gameID]
	return hub, ok
}

// reaperLoop periodically removes hubs that have been idle longer than
// idleTimeout.
func (gm *gameManager[H]) reaperLoop() {
	ticker := time.NewTicker(gm.idleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-gm.idleTimeout)

		gm.mu.Lock()
		for id, hub := range gm.hubs {
			if hub.core().idle().Before(cutoff) {
				delete(gm.hubs, id)
				hub.core().close()
			}
		}
		gm.mu.Unlock()
	}
}

// gameIDParam parses the :gameid route parameter.
func gameIDParam(ps httprouter.Params) (int, bool) {
	id, err := strconv.Atoi(ps.ByName("gameid"))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// serveGameWS upgrades the connection and attaches the client to the hub
// for :gameid.
func serveGameWS[H hubber](cfg *Config, gm *gameManager[H]) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID, ok := gameIDParam(ps)
		if !ok {
			http.Error(w, "invalid game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)
		if playerID == "" {
			http.Error(w, "unable to assign player id", http.StatusInternalServerError)
			return
		}

		hub := gm.get(gameID).core()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &wsClient{
			conn:     conn,
			send:     make(chan any, 8),
			playerID: playerID,
		}

		select {
		case hub.register <- client:
		case <-hub.quit:
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump(hub)
	}
}

// qrHandler generates a PNG QR code for the current game URL using
// go-qrcode, so a session can be handed to another device.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := gameIDParam(ps); !ok {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
