package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultGeminiModel   = "gemini-1.5-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiTimeout = 15 * time.Second
)

// GeminiConfig configures the Gemini client. Zero values take the defaults
// above; an empty APIKey produces an unavailable failure at call time rather
// than a construction error, so the service still boots without credentials.
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Gemini calls the generateContent REST API. Safe for concurrent use.
type Gemini struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	logger     *slog.Logger
}

// NewGemini creates a Gemini client.
func NewGemini(cfg GeminiConfig, logger *slog.Logger) *Gemini {
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGeminiTimeout
	}
	return &Gemini{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		logger:     logger,
	}
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
	Error          *geminiError          `json:"error,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Generate implements TextModel against the Gemini generateContent API. All
// errors are *Failure values classifying why no text came back.
func (g *Gemini) Generate(ctx context.Context, system, user string) (string, error) {
	if g.apiKey == "" {
		return "", &Failure{Kind: FailureUnavailable, Detail: "gemini: API key is missing (GEMINI_API_KEY)"}
	}

	payload := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: system}}},
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: user}}},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &Failure{Kind: FailureTransport, Detail: fmt.Sprintf("gemini: marshaling request: %v", err)}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &Failure{Kind: FailureTransport, Detail: fmt.Sprintf("gemini: creating HTTP request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	g.logger.Debug("sending request to gemini", slog.String("model", g.model))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", &Failure{Kind: FailureTransport, Detail: fmt.Sprintf("gemini: HTTP request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Failure{Kind: FailureTransport, Detail: fmt.Sprintf("gemini: reading response body: %v", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &Failure{Kind: FailureTransport, Detail: fmt.Sprintf("gemini: API returned status %d", resp.StatusCode)}
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", &Failure{Kind: FailureTransport, Detail: fmt.Sprintf("gemini: parsing response JSON: %v", err)}
	}
	if apiResp.Error != nil {
		return "", &Failure{Kind: FailureTransport, Detail: fmt.Sprintf("gemini: API error [%d] %s", apiResp.Error.Code, apiResp.Error.Status)}
	}
	if apiResp.PromptFeedback != nil && apiResp.PromptFeedback.BlockReason != "" {
		return "", &Failure{Kind: FailureBlocked, Detail: "gemini: prompt blocked: " + apiResp.PromptFeedback.BlockReason}
	}
	if len(apiResp.Candidates) == 0 {
		return "", &Failure{Kind: FailureEmpty, Detail: "gemini: returned no candidates"}
	}
	if apiResp.Candidates[0].FinishReason == "SAFETY" {
		return "", &Failure{Kind: FailureBlocked, Detail: "gemini: response blocked by safety filter"}
	}

	var parts []string
	for _, p := range apiResp.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	text := strings.Join(parts, "")
	if text == "" {
		return "", &Failure{Kind: FailureEmpty, Detail: "gemini: returned empty text content"}
	}

	g.logger.Debug("received gemini response",
		slog.String("model", g.model),
		slog.Int("response_len", len(text)),
		slog.String("finish_reason", apiResp.Candidates[0].FinishReason))

	return text, nil
}
