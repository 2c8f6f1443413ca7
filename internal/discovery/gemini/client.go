/*
Package gemini talks to the Google Generative Language API and turns its
free-form text answers into typed event candidates.

# Defensiveness

The model's output is untrusted input. It often wraps the requested JSON in
markdown fences or chatty prose, so the client salvages the outermost JSON
array from the raw text before parsing. A reply with no parseable array is an
extraction failure ([ErrExtraction]); no partial results are ever returned.
*/
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/citypulse/citypulse/internal/catalog/event"
	"github.com/citypulse/citypulse/internal/platform/metrics"
)

// ErrExtraction marks replies the model produced but the client could not
// turn into candidates. It is distinct from transport errors so callers can
// report the failure class.
var ErrExtraction = errors.New("gemini: no event array could be extracted from the model reply")

// CandidateEvent is one event as extracted from the model reply.
//
// Candidates carry no date; the model is asked about a time window, not
// exact schedules, and fabricated dates are worse than none.
type CandidateEvent struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    event.Category `json:"category"`
	Location    string         `json:"location"`
}

// Client is a REST client for the generateContent endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	logger     *slog.Logger
}

// NewClient constructs a Client for the given model.
func NewClient(apiKey, model, baseURL string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger,
	}
}

// # Wire Types

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
		Content content `json:"content"`
	} `json:"candidates"`
}

// # Extraction

/*
DiscoverEvents asks the model for upcoming events in a city and extracts
typed candidates from its reply.

Description: The prompt requests a bare JSON array of 3 to 5 events over the
next three months. Elements missing a title or location are skipped with a
warning; an unparseable reply fails the whole call with [ErrExtraction].
Every returned candidate's category is a member of the closed category set.

Parameters:
  - context: context.Context
  - cityName: string
  - country: string

Returns:
  - []CandidateEvent: Extracted candidates, possibly empty
  - error: Transport errors, or [ErrExtraction] on unparseable replies
*/
func (client *Client) DiscoverEvents(context context.Context, cityName, country string) ([]CandidateEvent, error) {
	raw, err := client.generate(context, buildPrompt(cityName, country))
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("transport_failed").Inc()
		return nil, err
	}

	candidates, err := client.parseCandidates(raw)
	if err != nil {
		metrics.ExtractionsTotal.WithLabelValues("extraction_failed").Inc()
		return nil, err
	}

	metrics.ExtractionsTotal.WithLabelValues("ok").Inc()
	return candidates, nil
}

// buildPrompt renders the discovery prompt for a city.
func buildPrompt(cityName, country string) string {
	return fmt.Sprintf(
		"List 3 to 5 real upcoming events in %s, %s over the next 3 months. "+
			"Respond with ONLY a JSON array, no markdown and no surrounding text. "+
			"Each element must have exactly these string fields: "+
			`"title", "description", "category", "location".`,
		cityName, country,
	)
}

// generate calls the generateContent endpoint and returns the concatenated
// text parts of the first reply candidate.
func (client *Client) generate(context context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("gemini: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", client.baseURL, client.model)

	request, err := http.NewRequestWithContext(context, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("gemini: build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("x-goog-api-key", client.apiKey)

	response, err := client.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("gemini: call model: %w", err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: read reply: %w", err)
	}

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: model returned status %d", response.StatusCode)
	}

	var reply generateResponse
	if err := json.Unmarshal(payload, &reply); err != nil {
		return "", fmt.Errorf("gemini: decode reply: %w", err)
	}
	if len(reply.Candidates) == 0 {
		return "", fmt.Errorf("gemini: reply contained no candidates")
	}

	var text strings.Builder
	for _, p := range reply.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	return text.String(), nil
}

/*
parseCandidates salvages the JSON array from a raw model reply and decodes it.

Description: Extraction is greedy: everything between the first '[' and the
last ']' is treated as the array, which strips markdown fences and prose on
either side. Elements missing a title or location are dropped with a warning
rather than failing the batch. Categories are normalized onto the closed set.
*/
func (client *Client) parseCandidates(raw string) ([]CandidateEvent, error) {
	payload := extractArray(raw)

	var decoded []CandidateEvent
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		client.logger.Warn("gemini_reply_unparseable",
			slog.Int("reply_length", len(raw)),
			slog.Any("error", err),
		)
		return nil, ErrExtraction
	}

	// A literal "null" decodes into a nil slice without error. That is not
	// an array; the reply carried no events to extract.
	if decoded == nil {
		client.logger.Warn("gemini_reply_not_an_array", slog.Int("reply_length", len(raw)))
		return nil, ErrExtraction
	}

	candidates := make([]CandidateEvent, 0, len(decoded))
	for _, candidate := range decoded {
		if strings.TrimSpace(candidate.Title) == "" || strings.TrimSpace(candidate.Location) == "" {
			client.logger.Warn("gemini_candidate_skipped",
				slog.String("title", candidate.Title),
				slog.String("location", candidate.Location),
			)
			continue
		}

		candidate.Category = event.Normalize(string(candidate.Category))
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

// extractArray returns the substring spanning the outermost JSON array, or
// the input unchanged when no array brackets are present.
func extractArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")

	if start == -1 || end == -1 || end < start {
		return raw
	}

	return raw[start : end+1]
}
