package api

import (
	"context"
	"fmt"
	"net/http"
)

// Article is a community-awareness article with an optional comprehension
// quiz.
type Article struct {
	ID        int            `json:"id"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	ImageURL  string         `json:"imageUrl,omitempty"`
	Questions []QuizQuestion `json:"questions,omitempty"`
}

// QuizQuestion is one comprehension question with its options.
type QuizQuestion struct {
	ID      int          `json:"id"`
	Text    string       `json:"text"`
	Options []QuizOption `json:"options"`
}

// QuizOption is one selectable answer.
type QuizOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// QuizAnswer pairs a question with the chosen option.
type QuizAnswer struct {
	QuestionID int `json:"questionId"`
	OptionID   int `json:"optionId"`
}

// QuizResult is the server's grading of a quiz submission. The passing
// threshold (70%) is applied server-side.
type QuizResult struct {
	Passed         bool `json:"passed"`
	Points         int  `json:"points"`
	Percentage     int  `json:"percentage"`
	CorrectAnswers int  `json:"correctAnswers"`
	TotalQuestions int  `json:"totalQuestions"`
}

// Articles lists available articles.
func (c *Client) Articles(ctx context.Context) ([]Article, error) {
	var articles []Article
	if err := c.do(ctx, http.MethodGet, "/articles", nil, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// Article fetches one article with its quiz questions.
func (c *Client) Article(ctx context.Context, id int) (*Article, error) {
	var article Article
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/articles/%d", id), nil, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// SubmitQuiz posts quiz answers and returns the server's grading.
func (c *Client) SubmitQuiz(ctx context.Context, articleID int, answers []QuizAnswer) (*QuizResult, error) {
	body := map[string]any{"answers": answers}

	var result QuizResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/articles/%d/quiz", articleID), body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Poll is a community poll with its options.
type Poll struct {
	ID       int          `json:"id"`
	Question string       `json:"question"`
	Options  []PollOption `json:"options"`
	HasVoted bool         `json:"hasVoted"`
}

// PollOption is one poll choice with its current tally.
type PollOption struct {
	ID    int    `json:"id"`
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// Polls lists open polls.
func (c *Client) Polls(ctx context.Context) ([]Poll, error) {
	var polls []Poll
	if err := c.do(ctx, http.MethodGet, "/polls", nil, &polls); err != nil {
		return nil, err
	}
	return polls, nil
}

// Vote casts a vote and returns the updated poll.
func (c *Client) Vote(ctx context.Context, pollID, optionID int) (*Poll, error) {
	body := map[string]any{"optionId": optionID}

	var poll Poll
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/polls/%d/vote", pollID), body, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Leaderboard returns the current ranking.
func (c *Client) Leaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	if err := c.do(ctx, http.MethodGet, "/leaderboard", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// RequestOTP asks the platform to send a one-time code to a phone number.
func (c *Client) RequestOTP(ctx context.Context, phone string) error {
	body := map[string]any{"phone": phone}
	return c.do(ctx, http.MethodPost, "/auth/otp/request", body, nil)
}

// VerifyOTP exchanges a one-time code for an auth token and installs it on
// the client.
func (c *Client) VerifyOTP(ctx context.Context, phone, code string) (string, error) {
	body := map[string]any{"phone": phone, "code": code}

	var data struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/otp/verify", body, &data); err != nil {
		return "", err
	}

	c.token = data.Token
	return data.Token, nil
}
