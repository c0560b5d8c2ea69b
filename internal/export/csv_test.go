package export

import (
	"strings"
	"testing"

	"beconforms/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponsesCSVHeader(t *testing.T) {
	fields := []model.FormField{
		{ID: "name", Label: "Name"},
		{ID: "team", Label: "Team"},
	}

	var buf strings.Builder
	require.NoError(t, ResponsesCSV(&buf, fields, nil))
	assert.Equal(t, "\"Submitted At\",\"Name\",\"Team\"\r\n", buf.String())
}

func TestResponsesCSVEscapesQuotes(t *testing.T) {
	fields := []model.FormField{{ID: "quote", Label: "Quote"}}
	responses := []model.FormResponse{{
		CreatedAt: "2026-02-01T10:00:00Z",
		Data:      map[string]interface{}{"quote": `He said "hi"`},
	}}

	var buf strings.Builder
	require.NoError(t, ResponsesCSV(&buf, fields, responses))

	lines := strings.Split(strings.TrimRight(buf.String(), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"2026-02-01T10:00:00Z","He said ""hi"""`, lines[1])
}

func TestResponsesCSVJoinsArrays(t *testing.T) {
	fields := []model.FormField{{ID: "topics", Label: "Topics", Type: model.FieldCheckbox}}
	responses := []model.FormResponse{{
		CreatedAt: "2026-02-01T10:00:00Z",
		Data:      map[string]interface{}{"topics": []interface{}{"Go", "Rust"}},
	}}

	var buf strings.Builder
	require.NoError(t, ResponsesCSV(&buf, fields, responses))
	assert.Contains(t, buf.String(), `"Go; Rust"`)
}

func TestResponsesCSVMissingAnswerIsEmptyCell(t *testing.T) {
	fields := []model.FormField{
		{ID: "a", Label: "A"},
		{ID: "b", Label: "B"},
	}
	responses := []model.FormResponse{{
		CreatedAt: "2026-02-01T10:00:00Z",
		Data:      map[string]interface{}{"a": "x"},
	}}

	var buf strings.Builder
	require.NoError(t, ResponsesCSV(&buf, fields, responses))
	assert.Contains(t, buf.String(), `"x",""`)
}
