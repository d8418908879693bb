package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIError is a non-2xx reply from the server, decoded when the body
// carries the standard {code, message} error shape.
type APIError struct {
	HTTPStatus int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.HTTPStatus, e.Message)
}

// QueryResponse mirrors the /v1/query payload.
type QueryResponse struct {
	Prompt           string          `json:"prompt"`
	Plan             json.RawMessage `json:"plan,omitempty"`
	Answer           *string         `json:"answer,omitempty"`
	Chart            *Chart          `json:"chart,omitempty"`
	Table            *Table          `json:"table,omitempty"`
	TranslatorFailed bool            `json:"translator_failed,omitempty"`
	TranslatorError  string          `json:"translator_error,omitempty"`
}

// Chart is a labelled series set ready for plotting.
type Chart struct {
	ChartType string      `json:"chart_type"`
	Labels    []string    `json:"labels"`
	Series    [][]float64 `json:"series"`
}

// Table is a header row plus data rows. Cells mix strings and numbers.
type Table struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// SchemaField is one queryable field in the schema listing.
type SchemaField struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"`
	Synonyms []string `json:"synonyms"`
}

// Client calls the query API.
type Client struct {
	BaseURL string
	APIKey  string
	Token   string

	httpClient *http.Client
}

// NewClient creates a client for the given host.
func NewClient(baseURL, apiKey, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Ask sends one natural-language question.
func (c *Client) Ask(ctx context.Context, prompt string) (*QueryResponse, error) {
	body, err := json.Marshal(map[string]string{"prompt": prompt})
	if err != nil {
		return nil, err
	}
	var resp QueryResponse
	if err := c.do(ctx, http.MethodPost, "/v1/query", bytes.NewReader(body), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Schema fetches the queryable field catalog grouped by dataset.
func (c *Client) Schema(ctx context.Context) (map[string][]SchemaField, error) {
	var resp struct {
		Datasets map[string][]SchemaField `json:"datasets"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/schema", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Datasets, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	} else if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		// Error bodies are either {code, message} or, for failed queries,
		// the query payload itself with the fault in the answer field.
		var shaped struct {
			Message string  `json:"message"`
			Answer  *string `json:"answer"`
		}
		if json.Unmarshal(raw, &shaped) == nil {
			switch {
			case shaped.Message != "":
				apiErr.Message = shaped.Message
			case shaped.Answer != nil && *shaped.Answer != "":
				apiErr.Message = *shaped.Answer
			}
		}
		return apiErr
	}
	return json.Unmarshal(raw, out)
}
