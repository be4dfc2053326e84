// Package api is the client for the external community-platform REST API.
// All business logic (scoring, persistence, authentication, content) lives
// behind this API; the client only moves data and unwraps the common
// {success, data, message} envelope.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"time"
)

// ErrRequestFailed indicates the API answered with success=false or a
// non-2xx status.
var ErrRequestFailed = errors.New("api: request failed")

// Client talks to the platform API. The zero value is not usable; use New.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the given API base URL. An empty token leaves
// requests unauthenticated; completion submission and quiz/poll posts
// require one.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL returns the configured API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken replaces the auth token, typically after VerifyOTP.
func (c *Client) SetToken(token string) { c.token = token }

// envelope is the response wrapper every endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// do performs a request and decodes the envelope into out (may be nil when
// the caller only cares about success).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("api: encoding request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("api: building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("api: decoding %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		msg := env.Message
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("%w: %s %s: %s", ErrRequestFailed, method, path, msg)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("api: decoding %s %s data: %w", method, path, err)
		}
	}

	return nil
}

// Game is a game definition from the catalog. Content is left raw for the
// content package to normalize.
type Game struct {
	ID                 int             `json:"id"`
	Type               string          `json:"type"`
	Title              string          `json:"title"`
	Content            json.RawMessage `json:"content"`
	EducationalMessage string          `json:"educationalMessage"`
	PointsReward       int             `json:"pointsReward"`
	IsCompleted        bool            `json:"isCompleted"`
}

// Games lists the game catalog.
func (c *Client) Games(ctx context.Context) ([]Game, error) {
	var games []Game
	if err := c.do(ctx, http.MethodGet, "/games", nil, &games); err != nil {
		return nil, err
	}
	return games, nil
}

// Game fetches one game definition.
func (c *Client) Game(ctx context.Context, id int) (*Game, error) {
	var game Game
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/games/%d", id), nil, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// CompletionResult acknowledges a completion submission.
type CompletionResult struct {
	Points int `json:"points"`
}

// CompleteGame reports a solved game for score crediting. completionTime
// is the elapsed play time.
func (c *Client) CompleteGame(ctx context.Context, id, score int, completionTime time.Duration) (*CompletionResult, error) {
	body := map[string]any{
		"score":          score,
		"completionTime": int(completionTime.Seconds()),
	}

	var result CompletionResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/games/%d/complete", id), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchImage downloads and decodes a puzzle source image (PNG or JPEG).
func (c *Client) FetchImage(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("api: building image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: fetching image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s: %s", ErrRequestFailed, url, resp.Status)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: decoding image: %w", err)
	}
	return img, nil
}
