package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"growth_assessment/internal/model"
	"growth_assessment/internal/util"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Backend is what the terminal UI needs from the assessment server.
type Backend interface {
	Answers(ctx context.Context, userID string) (map[string]model.Answer, error)
	SaveAnswer(ctx context.Context, userID, questionID string, a model.Answer) error
	Submit(ctx context.Context, userID string) (json.RawMessage, error)
}

// Client talks to the assessment server's HTTP API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 2 * time.Minute},
	}
}

// APIError is a non-2xx answer of the server.
type APIError struct {
	Status  int
	Message string
	Details string
}

func (e *APIError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Message, e.Details)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func (c *Client) userPath(userID, suffix string) string {
	return c.BaseURL + "/api/users/" + url.PathEscape(userID) + suffix
}

func (c *Client) do(ctx context.Context, method, target string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp.StatusCode, data)
	}
	return data, nil
}

// decodeAPIError understands both the envelope and the gateway error body.
func decodeAPIError(status int, data []byte) error {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}

	var gw util.ErrorPayload
	if json.Unmarshal(data, &gw) == nil && gw.Error != "" {
		apiErr.Message = gw.Error
		apiErr.Details = gw.Details
		return apiErr
	}
	var env util.Response
	if json.Unmarshal(data, &env) == nil && env.Message != "" {
		apiErr.Message = env.Message
	}
	return apiErr
}

func (c *Client) Answers(ctx context.Context, userID string) (map[string]model.Answer, error) {
	data, err := c.do(ctx, http.MethodGet, c.userPath(userID, "/answers"), nil)
	if err != nil {
		return nil, err
	}

	var env struct {
		Data map[string]model.Answer `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = map[string]model.Answer{}
	}
	return env.Data, nil
}

// SaveAnswer writes both fields of a.
func (c *Client) SaveAnswer(ctx context.Context, userID, questionID string, a model.Answer) error {
	patch := model.AnswerPatch{
		SelectedOption: &a.SelectedOption,
		AdditionalText: &a.AdditionalText,
	}
	_, err := c.do(ctx, http.MethodPut, c.userPath(userID, "/answers/"+url.PathEscape(questionID)), patch)
	return err
}

// Submit returns the backend advice unchanged.
func (c *Client) Submit(ctx context.Context, userID string) (json.RawMessage, error) {
	data, err := c.do(ctx, http.MethodPost, c.userPath(userID, "/submit"), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}
