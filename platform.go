// JSON routes fronting the platform API for the browser: the game catalog,
// articles with their comprehension quizzes, polls, and the leaderboard.
// These are thin proxies: scoring, persistence, and the 70% quiz pass
// threshold all live behind the API.

package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/civicbox/civicbox/internal/api"
)

func writeJSON(cfg *Config, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	securityHeaders(cfg, w)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeAPIError(cfg *Config, w http.ResponseWriter, r *http.Request, what string, err error) {
	logf(cfg, "ERROR: %s for %s: %v", what, realIP(r), err)
	writeJSON(cfg, w, http.StatusBadGateway, map[string]string{
		"error": "The platform is unavailable. Please try again.",
	})
}

func idParam(ps httprouter.Params, name string) (int, bool) {
	id, err := strconv.Atoi(ps.ByName(name))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func serveGameCatalog(cfg *Config, client *api.Client) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		games, err := client.Games(r.Context())
		if err != nil {
			writeAPIError(cfg, w, r, "Fetching game catalog", err)
			return
		}

		writeJSON(cfg, w, http.StatusOK, games)

		logf(cfg, "SERVE: Game catalog (%d games) to %s in %s",
			len(games), realIP(r), time.Since(startTime).Round(time.Microsecond))
	}
}

func serveArticles(cfg *Config, client *api.Client) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		articles, err := client.Articles(r.Context())
		if err != nil {
			writeAPIError(cfg, w, r, "Fetching articles", err)
			return
		}
		writeJSON(cfg, w, http.StatusOK, articles)
	}
}

func serveArticle(cfg *Config, client *api.Client) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, ok := idParam(ps, "id")
		if !ok {
			writeJSON(cfg, w, http.StatusBadRequest, map[string]string{"error": "invalid article id"})
			return
		}

		article, err := client.Article(r.Context(), id)
		if err != nil {
			writeAPIError(cfg, w, r, "Fetching article", err)
			return
		}
		writeJSON(cfg, w, http.StatusOK, article)
	}
}

func serveQuizSubmit(cfg *Config, client *api.Client) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, ok := idParam(ps, "id")
		if !ok {
			writeJSON(cfg, w, http.StatusBadRequest, map[string]string{"error": "invalid article id"})
			return
		}

		var body struct {
			Answers []api.QuizAnswer `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Answers) == 0 {
			writeJSON(cfg, w, http.StatusBadRequest, map[string]string{"error": "answers are required"})
			return
		}

		result, err := client.SubmitQuiz(r.Context(), id, body.Answers)
		if err != nil {
			writeAPIError(cfg, w, r, "Submitting quiz", err)
			return
		}

		writeJSON(cfg, w, http.StatusOK, result)

		logf(cfg, "GAMES: Quiz for article %d: %d%% (passed=%t) by %s",
			id, result.Percentage, result.Passed, realIP(r))
	}
}

func servePolls(cfg *Config, client *api.Client) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		polls, err := client.Polls(r.Context())
		if err != nil {
			writeAPIError(cfg, w, r, "Fetching polls", err)
			return
		}
		writeJSON(cfg, w, http.StatusOK, polls)
	}
}

func servePollVote(cfg *Config, client *api.Client) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id, ok := idParam(ps, "id")
		if !ok {
			writeJSON(cfg, w, http.StatusBadRequest, map[string]string{"error": "invalid poll id"})
			return
		}

		var body struct {
			OptionID int `json:"optionId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.OptionID < 1 {
			writeJSON(cfg, w, http.StatusBadRequest, map[string]string{"error": "optionId is required"})
			return
		}

		poll, err := client.Vote(r.Context(), id, body.OptionID)
		if err != nil {
			writeAPIError(cfg, w, r, "Casting vote", err)
			return
		}
		writeJSON(cfg, w, http.StatusOK, poll)
	}
}

func serveLeaderboard(cfg *Config, client *api.Client) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		entries, err := client.Leaderboard(r.Context())
		if err != nil {
			writeAPIError(cfg, w, r, "Fetching leaderboard", err)
			return
		}
		writeJSON(cfg, w, http.StatusOK, entries)
	}
}

// registerPlatformRoutes wires the JSON proxy endpoints.
func registerPlatformRoutes(cfg *Config, client *api.Client, mux *httprouter.Router) {
	mux.GET(cfg.prefix+"/api/games", serveGameCatalog(cfg, client))
	mux.GET(cfg.prefix+"/api/articles", serveArticles(cfg, client))
	mux.GET(cfg.prefix+"/api/articles/:id", serveArticle(cfg, client))
	mux.POST(cfg.prefix+"/api/articles/:id/quiz", serveQuizSubmit(cfg, client))
	mux.GET(cfg.prefix+"/api/polls", servePolls(cfg, client))
	mux.POST(cfg.prefix+"/api/polls/:id/vote", servePollVote(cfg, client))
	mux.GET(cfg.prefix+"/api/leaderboard", serveLeaderboard(cfg, client))
}
