package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskSendsPromptAndAPIKey(t *testing.T) {
	var gotKey, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/query", r.URL.Path)
		gotKey = r.Header.Get("X-API-Key")
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotPrompt = body["prompt"]
		answer := "Revenue Booked: 1250"
		_ = json.NewEncoder(w).Encode(QueryResponse{Prompt: gotPrompt, Answer: &answer})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key", "")
	resp, err := client.Ask(context.Background(), "total revenue")

	require.NoError(t, err)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "total revenue", gotPrompt)
	require.NotNil(t, resp.Answer)
	assert.Equal(t, "Revenue Booked: 1250", *resp.Answer)
}

func TestTokenTakesPrecedenceOverAPIKey(t *testing.T) {
	var gotAuth, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.Header.Get("X-API-Key")
		_ = json.NewEncoder(w).Encode(QueryResponse{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-key", "jwt-token")
	_, err := client.Ask(context.Background(), "hi")

	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt-token", gotAuth)
	assert.Empty(t, gotKey)
}

func TestErrorBodyBecomesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    401,
			"message": "unauthorized: provide a valid JWT Bearer token or API key",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "")
	_, err := client.Ask(context.Background(), "hi")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	assert.Contains(t, apiErr.Message, "unauthorized")
}

func TestFailedQueryPayloadSurfacesAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		answer := `unknown dataset "payroll"`
		_ = json.NewEncoder(w).Encode(QueryResponse{Prompt: "payroll", Answer: &answer})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", "")
	_, err := client.Ask(context.Background(), "payroll")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "payroll")
}

func TestSchemaDecodesDatasets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/schema", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"datasets": map[string][]SchemaField{
				"employee": {{Key: "employee.role", Label: "Role", Type: "string"}},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "k", "")
	datasets, err := client.Schema(context.Background())

	require.NoError(t, err)
	require.Contains(t, datasets, "employee")
	assert.Equal(t, "Role", datasets["employee"][0].Label)
}
