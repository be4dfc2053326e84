/*
Copyright © 2026 Civicbox <dev@civicbox.cc>
*/

package main

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/civicbox/civicbox/internal/api"
)

func serveHomePage(cfg *Config, client *api.Client) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)

		games, err := client.Games(r.Context())
		if err != nil {
			logf(cfg, "ERROR: Fetching game catalog: %v", err)
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(newPage("civicbox", "The platform is unavailable. Please try again.")))
			return
		}

		var body strings.Builder
		body.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
		body.WriteString(getFavicon())
		body.WriteString(`<title>civicbox</title>`)
		body.WriteString(`<style>body{font-family:sans-serif;max-width:40rem;margin:2rem auto;padding:0 1rem;}li{margin:.5rem 0;}</style>`)
		body.WriteString(`</head><body><h1>civicbox</h1><h2>Games</h2><ul>`)
		for _, g := range games {
			if g.Type != "crossword" && g.Type != "puzzle" {
				continue
			}
			done := ""
			if g.IsCompleted {
				done = " ✓"
			}
			body.WriteString(fmt.Sprintf(`<li><a href="%s/%s/%d">%s%s</a> (+%d pts)</li>`,
				cfg.prefix, g.Type, g.ID, html.EscapeString(g.Title), done, g.PointsReward))
		}
		body.WriteString(`</ul><h2>Community</h2><ul>`)
		body.WriteString(fmt.Sprintf(`<li><a href="%s/api/articles">Articles</a></li>`, cfg.prefix))
		body.WriteString(fmt.Sprintf(`<li><a href="%s/api/polls">Polls</a></li>`, cfg.prefix))
		body.WriteString(fmt.Sprintf(`<li><a href="%s/api/leaderboard">Leaderboard</a></li>`, cfg.prefix))
		body.WriteString(`</ul></body></html>`)

		_, _ = w.Write([]byte(body.String()))
	}
}

// serveGamePage serves an embedded per-game HTML client and makes sure the
// visitor has a player cookie before the websocket connects.
func serveGamePage(cfg *Config, data []byte) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		_, _ = w.Write(data)
	}
}

// serveEmbedded serves an embedded static asset.
func serveEmbedded(cfg *Config, contentType string, data []byte) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, _ = w.Write(data)
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		data := `User-agent: Amazonbot
Disallow: /

User-agent: Applebot-Extended
Disallow: /

User-agent: Bytespider
Disallow: /

User-agent: CCBot
Disallow: /

User-agent: ClaudeBot
Disallow: /

User-agent: Google-Extended
Disallow: /

User-agent: GPTBot
Disallow: /

User-agent: meta-externalagent
Disallow: /`

		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		_, err := w.Write([]byte(data))
		if err != nil {
			errs <- err

			return
		}
	}
}
