package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"brainup-client/internal/domain"
)

// Client issues command requests against the quiz server. Commands are
// request/response: the caller learns success or failure and nothing more.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type changeQuestionRequest struct {
	QuestionNumber int `json:"questionNumber"`
}

type exitRequest struct {
	PlayerID string `json:"playerId"`
}

// ChangeQuestion asks the server to push question n to every participant.
func (c *Client) ChangeQuestion(ctx context.Context, n int) error {
	return c.post(ctx, "/api/change-question", changeQuestionRequest{QuestionNumber: n})
}

// SubmitAnswer reports the participant's answer for the active question.
func (c *Client) SubmitAnswer(ctx context.Context, sub domain.AnswerSubmission) error {
	return c.post(ctx, "/api/submit-answer", sub)
}

// Exit tells the server the participant left the session.
func (c *Client) Exit(ctx context.Context, playerID string) error {
	return c.post(ctx, "/api/exit", exitRequest{PlayerID: playerID})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s returned %d", domain.ErrCommandRejected, path, resp.StatusCode)
	}
	return nil
}
