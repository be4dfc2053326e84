package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicbox/civicbox/internal/api"
)

func respond(t *testing.T, w http.ResponseWriter, status int, body string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write([]byte(body))
	require.NoError(t, err)
}

func TestGame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/3", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		respond(t, w, http.StatusOK, `{
			"success": true,
			"data": {
				"id": 3,
				"type": "crossword",
				"title": "Recycling",
				"content": "{\"words\":[]}",
				"educationalMessage": "Well done!",
				"pointsReward": 50
			}
		}`)
	}))
	defer srv.Close()

	client := api.New(srv.URL, "tok")
	game, err := client.Game(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 3, game.ID)
	assert.Equal(t, "crossword", game.Type)
	assert.Equal(t, 50, game.PointsReward)
	assert.JSONEq(t, `"{\"words\":[]}"`, string(game.Content))
}

func TestCompleteGame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/games/3/complete", r.URL.Path)

		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 100, body["score"])
		assert.Equal(t, 95, body["completionTime"])

		respond(t, w, http.StatusOK, `{"success": true, "data": {"points": 50}}`)
	}))
	defer srv.Close()

	client := api.New(srv.URL, "tok")
	result, err := client.CompleteGame(context.Background(), 3, 100, 95*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 50, result.Points)
}

func TestRequestFailed(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{"SuccessFalse", http.StatusOK, `{"success": false, "message": "game not found"}`},
		{"ServerError", http.StatusInternalServerError, `{"success": false}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				respond(t, w, tc.status, tc.body)
			}))
			defer srv.Close()

			client := api.New(srv.URL, "")
			_, err := client.Game(context.Background(), 1)
			assert.ErrorIs(t, err, api.ErrRequestFailed)
		})
	}
}

func TestSubmitQuiz(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/articles/7/quiz", r.URL.Path)

		var body struct {
			Answers []api.QuizAnswer `json:"answers"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Answers, 2)
		assert.Equal(t, 11, body.Answers[0].QuestionID)

		respond(t, w, http.StatusOK, `{
			"success": true,
			"data": {"passed": true, "points": 20, "percentage": 100, "correctAnswers": 2, "totalQuestions": 2}
		}`)
	}))
	defer srv.Close()

	client := api.New(srv.URL, "tok")
	result, err := client.SubmitQuiz(context.Background(), 7, []api.QuizAnswer{
		{QuestionID: 11, OptionID: 2},
		{QuestionID: 12, OptionID: 5},
	})
	require.NoError(t, err)
	assert.True(t, result.Passed)
	assert.Equal(t, 100, result.Percentage)
}

func TestVerifyOTPInstallsToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/otp/verify":
			respond(t, w, http.StatusOK, `{"success": true, "data": {"token": "fresh"}}`)
		case "/leaderboard":
			gotAuth = r.Header.Get("Authorization")
			respond(t, w, http.StatusOK, `{"success": true, "data": []}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	client := api.New(srv.URL, "")
	token, err := client.VerifyOTP(context.Background(), "+15550100", "123456")
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)

	_, err = client.Leaderboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer fresh", gotAuth)
}

func TestFetchImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	client := api.New(srv.URL, "")
	img, err := client.FetchImage(context.Background(), srv.URL+"/p.png")
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestFetchImageNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := api.New(srv.URL, "")
	_, err := client.FetchImage(context.Background(), srv.URL+"/missing.png")
	assert.ErrorIs(t, err, api.ErrRequestFailed)
}
