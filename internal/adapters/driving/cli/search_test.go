package cli

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

func sampleResults() []domain.QueryResult {
	return []domain.QueryResult{
		{
			ChunkID:      7,
			DocumentName: "Q3 planning",
			ChunkText:    "roadmap   for\nthe quarter",
			Score:        0.0325,
			Timestamp:    time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
			OriginURL:    "https://docs.google.com/document/d/abc",
		},
		{ChunkID: 9, DocumentName: "notes.md", ChunkText: "quarterly roadmap", Score: 0.0161},
	}
}

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search <query>", searchCmd.Use)
	assert.Contains(t, searchCmd.Long, "BM25")
}

func TestSearchCmd_RequiresQuery(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "", "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestSearchCmd_Flags(t *testing.T) {
	limit := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "10", limit.DefValue)
	assert.NotNil(t, searchCmd.Flags().Lookup("json"))
	assert.NotNil(t, searchCmd.Flags().Lookup("min-score"))
}

func TestSearchCmd_Table(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.results = sampleResults()

	out, err := execute(t, "", "search", "quarterly", "roadmap")

	require.NoError(t, err)
	assert.Equal(t, "quarterly roadmap", ts.search.query)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "[1] Q3 planning (0.0325)")
	assert.Contains(t, out, "roadmap for the quarter")
	assert.Contains(t, out, "https://docs.google.com/document/d/abc")
	assert.Contains(t, out, "[2] notes.md (0.0161)")
}

func TestSearchCmd_PassesOptions(t *testing.T) {
	ts := setupTestServices(t)

	_, err := execute(t, "", "search", "-n", "3", "--min-score", "0.02", "plan")

	require.NoError(t, err)
	assert.Equal(t, domain.SearchOptions{Limit: 3, MinScore: 0.02}, ts.search.opts)
}

func TestSearchCmd_DefaultsAfterFlags(t *testing.T) {
	ts := setupTestServices(t)
	_, err := execute(t, "", "search", "-n", "3", "plan")
	require.NoError(t, err)

	_, err = execute(t, "", "search", "plan")

	require.NoError(t, err)
	assert.Equal(t, 10, ts.search.opts.Limit)
}

func TestSearchCmd_JSON(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.results = sampleResults()

	out, err := execute(t, "", "search", "--json", "plan")
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "Q3 planning", decoded[0]["document_name"])
	assert.InDelta(t, 0.0325, decoded[0]["fused_score"], 1e-9)
	assert.EqualValues(t, 7, decoded[0]["id"])
	assert.Contains(t, decoded[0], "timestamp")
}

func TestSearchCmd_NoResults(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "", "search", "nothing")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	ts := setupTestServices(t)
	ts.search.err = errors.New("database is locked")

	_, err := execute(t, "", "search", "plan")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search failed: database is locked")
}
