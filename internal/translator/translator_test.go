package translator

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propel-insights/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// geminiStub serves a canned generateContent response.
func geminiStub(t *testing.T, status int, body interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("x-goog-api-key"))
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
}

func textResponse(text string) geminiResponse {
	return geminiResponse{
		Candidates: []geminiCandidate{{
			Content:      geminiContent{Role: "model", Parts: []geminiPart{{Text: text}}},
			FinishReason: "STOP",
		}},
	}
}

func newTestTranslator(srv *httptest.Server) *Translator {
	model := NewGemini(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL}, discardLogger())
	return New(model, discardLogger())
}

func TestTranslateSuccess(t *testing.T) {
	reply := "Here is your plan:\n```json\n" +
		`{"dataset":"customer","dimensions":["status"],"chart_type":"pie","limit":10}` +
		"\n```\nLet me know if you need anything else."
	srv := geminiStub(t, http.StatusOK, textResponse(reply))
	defer srv.Close()

	plan, err := newTestTranslator(srv).Translate(context.Background(), "customers by status", nil)
	require.NoError(t, err)
	assert.Equal(t, "customer", plan.Dataset)
	assert.Equal(t, []string{"status"}, plan.Dimensions)
	assert.Equal(t, domain.ChartPie, plan.ChartType)
	assert.Equal(t, 10, plan.Limit)
	assert.NotNil(t, plan.Filters)
}

func TestTranslateNormalizesPlan(t *testing.T) {
	reply := `{"dataset":"booking","chart_type":"scatter","limit":9000}`
	srv := geminiStub(t, http.StatusOK, textResponse(reply))
	defer srv.Close()

	plan, err := newTestTranslator(srv).Translate(context.Background(), "bookings", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ChartAnswer, plan.ChartType)
	assert.Equal(t, domain.MaxPlanLimit, plan.Limit)
}

func TestTranslateMissingAPIKey(t *testing.T) {
	model := NewGemini(GeminiConfig{}, discardLogger())
	tr := New(model, discardLogger())

	_, err := tr.Translate(context.Background(), "anything", nil)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureUnavailable, f.Kind)
	assert.Contains(t, f.Detail, "GEMINI_API_KEY")
}

func TestTranslateTransportFailure(t *testing.T) {
	srv := geminiStub(t, http.StatusInternalServerError, geminiResponse{})
	defer srv.Close()

	_, err := newTestTranslator(srv).Translate(context.Background(), "anything", nil)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureTransport, f.Kind)
}

func TestTranslateBlockedResponse(t *testing.T) {
	srv := geminiStub(t, http.StatusOK, geminiResponse{
		PromptFeedback: &geminiPromptFeedback{BlockReason: "SAFETY"},
	})
	defer srv.Close()

	_, err := newTestTranslator(srv).Translate(context.Background(), "anything", nil)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureBlocked, f.Kind)
}

func TestTranslateEmptyResponse(t *testing.T) {
	srv := geminiStub(t, http.StatusOK, geminiResponse{})
	defer srv.Close()

	_, err := newTestTranslator(srv).Translate(context.Background(), "anything", nil)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, FailureEmpty, f.Kind)
}

func TestTranslateParseError(t *testing.T) {
	srv := geminiStub(t, http.StatusOK, textResponse("I cannot answer that with a plan."))
	defer srv.Close()

	_, err := newTestTranslator(srv).Translate(context.Background(), "anything", nil)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)

	var f *Failure
	assert.False(t, errors.As(err, &f))
}

func TestTranslateMissingDatasetIsParseError(t *testing.T) {
	srv := geminiStub(t, http.StatusOK, textResponse(`{"chart_type":"bar"}`))
	defer srv.Close()

	_, err := newTestTranslator(srv).Translate(context.Background(), "anything", nil)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestRenderSchema(t *testing.T) {
	schema := map[string][]domain.FieldDescriptor{
		"employee": {
			{Key: "employee.role", Label: "Role", Dataset: "employee", DataType: domain.TypeString, Synonyms: []string{"position", "designation"}},
			{Key: "employee.name", Label: "Employee Name", Dataset: "employee", DataType: domain.TypeString},
		},
	}

	out := RenderSchema(schema)
	assert.Contains(t, out, "employee:")
	assert.Contains(t, out, "employee.role (string): Role (synonyms: position, designation)")
	assert.Contains(t, out, "employee.name (string): Employee Name")
}
