package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var ErrRateLimited = errors.New("ai service rate limited")
var ErrEmptyResponse = errors.New("ai service returned an empty response")

type Client struct {
	APIKey  string
	Model   string
	Timeout time.Duration

	// BaseURL overrides the API endpoint (tests).
	BaseURL string

	HTTPClient *http.Client
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", errors.New("gemini api key is not configured")
	}

	base := c.BaseURL
	if base == "" {
		base = "https://generativelanguage.googleapis.com/v1beta"
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", base, c.Model)

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.APIKey)

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("ai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == http.StatusTooManyRequests {
			return "", ErrRateLimited
		}
		return "", fmt.Errorf("ai request failed: status=%d body=%s", resp.StatusCode, errBody)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ai response decode failed: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	text := out.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
