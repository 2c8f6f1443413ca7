// Copyright (c) 2026 CityPulse. All rights reserved.
// Author: dev@citypulse.app

/*
Package client is a small Go client for the CityPulse API, covering the
discovery flow browse front ends use.

# Blind Reconciliation

Triggering discovery is fire and forget on the server side; there is no job
handle to poll. The client therefore reconciles blindly: it acknowledges the
trigger, waits a fixed delay, and re-reads the city's events. The refreshed
list may or may not contain new events, and the client cannot tell a slow
scrape from an empty one.
*/
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultRefreshDelay is how long DiscoverAndWait waits before re-reading a
// city's events. It matches the delay the browse front end uses.
const DefaultRefreshDelay = 60 * time.Second

// Client talks to a CityPulse API server.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	refreshDelay time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithRefreshDelay overrides the reconciliation delay.
func WithRefreshDelay(delay time.Duration) Option {
	return func(c *Client) { c.refreshDelay = delay }
}

// New constructs a Client for the given API base URL (scheme and host, no
// trailing slash).
func New(baseURL string, options ...Option) *Client {
	client := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		refreshDelay: DefaultRefreshDelay,
	}

	for _, option := range options {
		option(client)
	}

	return client
}

// # Wire Types

// Event is an event as returned by the API.
type Event struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	EventDate   string `json:"event_date"`
	ImageURL    string `json:"image_url"`
	IsFeatured  bool   `json:"is_featured"`
	CityID      int    `json:"city_id"`
}

// Ack is the acknowledgment returned by a discovery trigger.
type Ack struct {
	Message string `json:"message"`
}

type successEnvelope[T any] struct {
	Data T `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// APIError is a non-2xx API response.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("citypulse: %s (%s, status %d)", e.Message, e.Code, e.HTTPStatus)
}

// # Operations

/*
TriggerDiscovery asks the server to launch the scraper for a city.

Description: A successful return means the scrape was launched, nothing
more. Results arrive (or don't) in the city's event list later.
*/
func (client *Client) TriggerDiscovery(context context.Context, cityID int) (*Ack, error) {
	url := fmt.Sprintf("%s/api/v1/cities/%d/find-events", client.baseURL, cityID)

	request, err := http.NewRequestWithContext(context, http.MethodPost, url, nil)
	if err != nil {
		return nil, err
	}

	return doJSON[*Ack](client, request)
}

// EventsByCity fetches the first page of a city's events.
func (client *Client) EventsByCity(context context.Context, cityID int) ([]Event, error) {
	url := fmt.Sprintf("%s/api/v1/cities/%d/events", client.baseURL, cityID)

	request, err := http.NewRequestWithContext(context, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	return doJSON[[]Event](client, request)
}

/*
DiscoverAndWait runs the full blind reconciliation flow: trigger, wait the
refresh delay, re-read.

Description: The wait is not a poll; there is nothing to poll. The returned
events are simply whatever the city's list contains after the delay, which
may be unchanged if the scrape is slow or found nothing.

Parameters:
  - context: context.Context (Cancels the wait as well as the HTTP calls)
  - cityID: int

Returns:
  - *Ack: The trigger acknowledgment
  - []Event: The city's events after the delay
  - error: Trigger errors, context cancellation, or re-read errors
*/
func (client *Client) DiscoverAndWait(context context.Context, cityID int) (*Ack, []Event, error) {
	ack, err := client.TriggerDiscovery(context, cityID)
	if err != nil {
		return nil, nil, err
	}

	select {
	case <-time.After(client.refreshDelay):
	case <-context.Done():
		return ack, nil, context.Err()
	}

	events, err := client.EventsByCity(context, cityID)
	if err != nil {
		return ack, nil, err
	}

	return ack, events, nil
}

// doJSON executes the request and decodes the standard response envelope.
func doJSON[T any](client *Client, request *http.Request) (T, error) {
	var zero T

	response, err := client.httpClient.Do(request)
	if err != nil {
		return zero, err
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		var envelope errorEnvelope
		if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
			return zero, &APIError{HTTPStatus: response.StatusCode, Code: "UNKNOWN", Message: "undecodable error response"}
		}
		return zero, &APIError{HTTPStatus: response.StatusCode, Code: envelope.Code, Message: envelope.Error}
	}

	var envelope successEnvelope[T]
	if err := json.NewDecoder(response.Body).Decode(&envelope); err != nil {
		return zero, fmt.Errorf("citypulse: decode response: %w", err)
	}

	return envelope.Data, nil
}
