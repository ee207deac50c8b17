package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// ErrAllModelsFailed is returned when every configured model was tried
// and none produced a response.
var ErrAllModelsFailed = errors.New("all AI models failed")

// TextGenerator produces free-form text for a prompt. Implemented by the
// Gemini client; mocked in tests.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Client calls the Gemini generateContent REST endpoint, walking a
// fallback list of models when one is over quota or unavailable.
type Client struct {
	apiKey     string
	models     []string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Gemini client. Models are tried in the given order.
func NewClient(apiKey string, models []string, logger *zap.Logger) *Client {
	return &Client{
		apiKey:  apiKey,
		models:  models,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateText sends the prompt to each configured model in turn and
// returns the first successful answer. Quota and availability failures
// move on to the next model; the last error is reported when all fail.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for _, model := range c.models {
		text, err := c.generate(ctx, model, prompt)
		if err == nil {
			return text, nil
		}

		c.logger.Warn("AI model failed, trying next",
			zap.String("model", model),
			zap.Error(err),
		)
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("%w: %w", ErrAllModelsFailed, lastErr)
	}
	return "", ErrAllModelsFailed
}

func (c *Client) generate(ctx context.Context, model, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model %s returned status %d: %s", model, resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("model %s error %d: %s", model, parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model %s returned no candidates", model)
	}

	return strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text), nil
}
