package gemini

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/citypulse/internal/catalog/event"
)

// modelServer returns an httptest server that always answers with the given
// reply text wrapped in the generateContent response shape.
func modelServer(t *testing.T, replyText string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, http.MethodPost, request.Method)
		assert.NotEmpty(t, request.Header.Get("x-goog-api-key"))

		response := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": replyText}}}},
			},
		}
		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(response)
	}))
}

func newTestClient(baseURL string) *Client {
	return NewClient("test-key", "gemini-1.5-flash", baseURL, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

/*
TestDiscoverEvents_FencedReply verifies that a JSON array wrapped in markdown
fences and prose is still salvaged, and that free-text categories are
normalized onto the closed set.
*/
func TestDiscoverEvents_FencedReply(t *testing.T) {
	reply := "Here are some events!\n```json\n" +
		`[{"title": "City Marathon", "description": "Annual race", "category": "sports", "location": "Old Quarter"}]` +
		"\n```\nEnjoy!"

	server := modelServer(t, reply)
	defer server.Close()

	candidates, err := newTestClient(server.URL).DiscoverEvents(context.Background(), "Hanoi", "Vietnam")
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "City Marathon", candidates[0].Title)
	assert.Equal(t, event.CategorySports, candidates[0].Category)
}

/*
TestDiscoverEvents_NoArray verifies that a reply with no JSON array fails the
whole call with ErrExtraction instead of returning partial results.
*/
func TestDiscoverEvents_NoArray(t *testing.T) {
	server := modelServer(t, "I could not find any events for this city, sorry.")
	defer server.Close()

	candidates, err := newTestClient(server.URL).DiscoverEvents(context.Background(), "Hanoi", "Vietnam")
	require.ErrorIs(t, err, ErrExtraction)
	assert.Nil(t, candidates)
}

/*
TestDiscoverEvents_MalformedArray verifies that a bracketed but syntactically
broken array is an extraction failure.
*/
func TestDiscoverEvents_MalformedArray(t *testing.T) {
	server := modelServer(t, `[{"title": "Concert", "location": "Hall",},]`)
	defer server.Close()

	_, err := newTestClient(server.URL).DiscoverEvents(context.Background(), "Hanoi", "Vietnam")
	require.ErrorIs(t, err, ErrExtraction)
}

/*
TestDiscoverEvents_NullReply verifies that a bare "null" reply, which decodes
without a JSON error, is still an extraction failure rather than a silent
zero-candidate success.
*/
func TestDiscoverEvents_NullReply(t *testing.T) {
	server := modelServer(t, "null")
	defer server.Close()

	candidates, err := newTestClient(server.URL).DiscoverEvents(context.Background(), "Hanoi", "Vietnam")
	require.ErrorIs(t, err, ErrExtraction)
	assert.Nil(t, candidates)
}

/*
TestDiscoverEvents_SkipsIncompleteCandidates verifies that elements missing a
title or location are dropped while complete ones survive.
*/
func TestDiscoverEvents_SkipsIncompleteCandidates(t *testing.T) {
	reply := `[
		{"title": "", "description": "no title", "category": "MUSIC", "location": "Somewhere"},
		{"title": "Jazz Night", "description": "missing location", "category": "MUSIC", "location": ""},
		{"title": "Food Fair", "description": "complete", "category": "nonsense", "location": "Market Square"}
	]`

	server := modelServer(t, reply)
	defer server.Close()

	candidates, err := newTestClient(server.URL).DiscoverEvents(context.Background(), "Hanoi", "Vietnam")
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, "Food Fair", candidates[0].Title)
	assert.Equal(t, event.CategoryOther, candidates[0].Category)
}

/*
TestDiscoverEvents_UpstreamError verifies that a non-200 model response is a
transport error, not an extraction failure.
*/
func TestDiscoverEvents_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		http.Error(writer, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).DiscoverEvents(context.Background(), "Hanoi", "Vietnam")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExtraction)
}

func TestExtractArray(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected string
	}{
		{name: "bare array", raw: `[1,2]`, expected: `[1,2]`},
		{name: "fenced", raw: "```json\n[1,2]\n```", expected: `[1,2]`},
		{name: "prose around", raw: "sure: [1,2] hope that helps", expected: `[1,2]`},
		{name: "no brackets", raw: "nothing here", expected: "nothing here"},
		{name: "reversed brackets", raw: "] then [", expected: "] then ["},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, extractArray(testCase.raw))
		})
	}
}
