package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicbox/civicbox/internal/api"
)

// fakePlatform stands in for the external platform API.
func fakePlatform(t *testing.T) *httptest.Server {
	t.Helper()

	imgBuf := new(bytes.Buffer)
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(4 * x), G: uint8(4 * y), A: 255})
		}
	}
	require.NoError(t, png.Encode(imgBuf, img))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /games", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"id":3,"type":"crossword","title":"Recycling Basics","pointsReward":50},
			{"id":4,"type":"puzzle","title":"Clean River","pointsReward":30,"isCompleted":true}
		]}`))
	})
	mux.HandleFunc("GET /games/3", func(w http.ResponseWriter, r *http.Request) {
		// Content is string-encoded once, as the platform often delivers it.
		content := `{"words":[{"number":1,"direction":"across","question":"Feline","answer":"CAT","position":{"row":0,"col":0}}]}`
		encoded, _ := json.Marshal(content)
		w.Write([]byte(`{"success":true,"data":{"id":3,"type":"crossword","title":"Recycling Basics",` +
			`"content":` + string(encoded) + `,"educationalMessage":"Recycle more!","pointsReward":50}}`))
	})
	mux.HandleFunc("GET /games/4", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"id":4,"type":"puzzle","title":"Clean River",` +
			`"content":{"pieces":4,"imageUrl":"/river.png","difficulty":"easy"},` +
			`"educationalMessage":"Keep rivers clean!","pointsReward":30}}`))
	})
	mux.HandleFunc("POST /games/{id}/complete", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"points":50}}`))
	})
	mux.HandleFunc("GET /river.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(imgBuf.Bytes())
	})
	mux.HandleFunc("GET /leaderboard", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"rank":1,"name":"Aysel","points":420}]}`))
	})
	mux.HandleFunc("POST /articles/{id}/quiz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"passed":true,"points":20,"percentage":100,"correctAnswers":2,"totalQuestions":2}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	platform := fakePlatform(t)
	cfg := &Config{
		apiURL:         platform.URL,
		bind:           "127.0.0.1",
		port:           8080,
		sessionTimeout: time.Hour,
	}

	errs := make(chan error, 64)
	mux := newMux(cfg, api.New(cfg.apiURL, ""), errs)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/version")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthCheckRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHomePageListsGames(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "Recycling Basics")
	assert.Contains(t, buf.String(), "/crossword/3")
	assert.Contains(t, buf.String(), "/puzzle/4")
}

func TestGamePageRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/crossword/3")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	buf := new(bytes.Buffer)
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Crossword")
}

func TestLeaderboardProxy(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/leaderboard")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []api.LeaderboardEntry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Aysel", entries[0].Name)
}

func TestQuizSubmitProxy(t *testing.T) {
	srv := newTestServer(t)

	body := `{"answers":[{"questionId":1,"optionId":2},{"questionId":2,"optionId":4}]}`
	resp, err := http.Post(srv.URL+"/api/articles/7/quiz", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result api.QuizResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Percentage)
}

func TestQuizSubmitRequiresAnswers(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/articles/7/quiz", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// dialGame connects to a game websocket and returns the connection.
func dialGame(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

// readUntil reads messages until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]any {
	t.Helper()

	for {
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		if msg["type"] == msgType {
			return msg
		}
	}
}

func sendAction(t *testing.T, conn *websocket.Conn, action map[string]any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(action))
}

func TestCrosswordGameFlow(t *testing.T) {
	srv := newTestServer(t)
	conn := dialGame(t, srv, "/crossword/3/ws")

	state := readUntil(t, conn, "state")
	assert.Equal(t, "Recycling Basics", state["title"])
	assert.Equal(t, float64(1), state["rows"])
	assert.Equal(t, float64(3), state["cols"])

	sendAction(t, conn, map[string]any{"type": "select_cell", "row": 0, "col": 0})
	readUntil(t, conn, "state")

	// Letter taps are validated against word membership only; the session
	// auto-advances, so three taps fill the word.
	for _, letter := range []string{"c", "a", "t"} {
		sendAction(t, conn, map[string]any{"type": "tap_letter", "letter": letter, "word": 1})
		readUntil(t, conn, "state")
	}

	sendAction(t, conn, map[string]any{"type": "check"})
	done := readUntil(t, conn, "completed")

	assert.Equal(t, float64(50), done["points"])
	assert.Equal(t, "Recycle more!", done["message"])
}

func TestCrosswordWrongWordTap(t *testing.T) {
	srv := newTestServer(t)
	conn := dialGame(t, srv, "/crossword/3/ws")

	readUntil(t, conn, "state")

	sendAction(t, conn, map[string]any{"type": "tap_letter", "letter": "C", "word": 1})
	notice := readUntil(t, conn, "notice")
	assert.Contains(t, notice["message"], "Select a cell")
}

func TestPuzzleGameFlow(t *testing.T) {
	srv := newTestServer(t)
	conn := dialGame(t, srv, "/puzzle/4/ws")

	state := readUntil(t, conn, "state")
	assert.Equal(t, "Clean River", state["title"])
	assert.Equal(t, float64(2), state["cols"])
	assert.Equal(t, float64(2), state["rows"])
	assert.Equal(t, float64(4), state["pieces"])

	// Slot ids equal piece ids when every piece is placed correctly.
	for id := 0; id < 4; id++ {
		sendAction(t, conn, map[string]any{"type": "select_piece", "piece": id})
		readUntil(t, conn, "state")
		sendAction(t, conn, map[string]any{"type": "place", "slot": id})
		readUntil(t, conn, "state")
	}

	sendAction(t, conn, map[string]any{"type": "check"})
	done := readUntil(t, conn, "completed")
	assert.Equal(t, float64(50), done["points"])

	// Tiles are served once the hub has loaded.
	resp, err := http.Get(srv.URL + "/puzzle/4/tile/0")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}

func TestPuzzleOccupiedSlot(t *testing.T) {
	srv := newTestServer(t)
	conn := dialGame(t, srv, "/puzzle/4/ws")

	readUntil(t, conn, "state")

	sendAction(t, conn, map[string]any{"type": "select_piece", "piece": 0})
	readUntil(t, conn, "state")
	sendAction(t, conn, map[string]any{"type": "place", "slot": 3})
	readUntil(t, conn, "state")

	sendAction(t, conn, map[string]any{"type": "select_piece", "piece": 1})
	readUntil(t, conn, "state")
	sendAction(t, conn, map[string]any{"type": "place", "slot": 3})
	notice := readUntil(t, conn, "notice")
	assert.Contains(t, notice["message"], "already taken")
}

func TestTileBeforeLoadIs404(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/puzzle/4/tile/0")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestQRCodeRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/crossword/3/qr")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}
