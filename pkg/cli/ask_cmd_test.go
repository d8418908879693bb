package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, srvURL string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--host", srvURL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestAskRendersAnswerAndTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		answer := "Employees by Role"
		_ = json.NewEncoder(w).Encode(QueryResponse{
			Prompt: "employees by role",
			Answer: &answer,
			Table: &Table{
				Columns: []string{"Role", "Count"},
				Rows:    [][]interface{}{{"Agent", 3.0}, {"Manager", 1.0}},
			},
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "ask", "employees by role")

	require.NoError(t, err)
	assert.Contains(t, out, "Employees by Role")
	assert.Contains(t, out, "Agent")
	assert.Contains(t, out, "Manager")
}

func TestAskRendersChartAsLabelledValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(QueryResponse{
			Prompt: "customers by status as pie",
			Chart: &Chart{
				ChartType: "pie",
				Labels:    []string{"Lead", "Booked"},
				Series:    [][]float64{{5, 2}},
			},
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "ask", "customers by status as pie")

	require.NoError(t, err)
	assert.Contains(t, out, "Lead")
	assert.Contains(t, out, "5")
}

func TestAskNotesTranslatorFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		answer := "Revenue Booked: 1250"
		_ = json.NewEncoder(w).Encode(QueryResponse{
			Prompt:           "revenue",
			Answer:           &answer,
			TranslatorFailed: true,
			TranslatorError:  "translator unavailable: gemini: API key is missing (GEMINI_API_KEY)",
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "ask", "revenue")

	require.NoError(t, err)
	assert.Contains(t, out, "keyword matching")
	assert.Contains(t, out, "Revenue Booked: 1250")
}

func TestAskJSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		answer := "Revenue Booked: 1250"
		_ = json.NewEncoder(w).Encode(QueryResponse{Prompt: "revenue", Answer: &answer})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "ask", "revenue", "-o", "json")

	require.NoError(t, err)
	var payload QueryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.NotNil(t, payload.Answer)
	assert.Equal(t, "Revenue Booked: 1250", *payload.Answer)
}

func TestUnsupportedOutputFormat(t *testing.T) {
	_, err := runCommand(t, "http://localhost:1", "ask", "hi", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestSchemaCommandListsFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"datasets": map[string][]SchemaField{
				"employee": {
					{Key: "employee.role", Label: "Role", Type: "string", Synonyms: []string{"position", "designation"}},
				},
			},
		})
	}))
	defer srv.Close()

	out, err := runCommand(t, srv.URL, "schema")

	require.NoError(t, err)
	assert.Contains(t, out, "employee")
	assert.Contains(t, out, "employee.role")
	assert.Contains(t, out, "position")
}
