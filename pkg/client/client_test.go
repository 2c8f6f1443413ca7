// Copyright (c) 2026 CityPulse. All rights reserved.
// Author: dev@citypulse.app

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discoveryServer fakes the trigger and list endpoints. Events posted to the
// events channel become visible to subsequent list reads, simulating the
// scraper finishing some time after the trigger.
type discoveryServer struct {
	*httptest.Server
	triggers atomic.Int32
	events   atomic.Pointer[[]Event]
}

func newDiscoveryServer(t *testing.T) *discoveryServer {
	t.Helper()

	server := &discoveryServer{}
	server.events.Store(&[]Event{})

	// Go 1.21's ServeMux lacks method-prefixed patterns, so each handler
	// checks the method itself.
	requireMethod := func(method string, handler http.HandlerFunc) http.HandlerFunc {
		return func(writer http.ResponseWriter, request *http.Request) {
			if request.Method != method {
				http.Error(writer, "Method Not Allowed", http.StatusMethodNotAllowed)
				return
			}
			handler(writer, request)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/cities/7/find-events", requireMethod(http.MethodPost, func(writer http.ResponseWriter, _ *http.Request) {
		server.triggers.Add(1)
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(writer).Encode(map[string]any{"data": map[string]string{"message": "Scraping for Hanoi started."}})
	}))
	mux.HandleFunc("/api/v1/cities/7/events", requireMethod(http.MethodGet, func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]any{"data": *server.events.Load()})
	}))
	mux.HandleFunc("/api/v1/cities/404/find-events", requireMethod(http.MethodPost, func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(writer).Encode(map[string]string{"error": "City not found", "code": "NOT_FOUND"})
	}))

	server.Server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

/*
TestDiscoverAndWait_SeesLateResults verifies the blind reconciliation flow:
events that appear during the wait show up in the re-read.
*/
func TestDiscoverAndWait_SeesLateResults(t *testing.T) {
	server := newDiscoveryServer(t)
	client := New(server.URL, WithRefreshDelay(100*time.Millisecond))

	// Simulate the scraper landing results mid-wait.
	go func() {
		time.Sleep(30 * time.Millisecond)
		server.events.Store(&[]Event{{ID: 1, Title: "Lantern Festival", CityID: 7}})
	}()

	ack, events, err := client.DiscoverAndWait(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "Scraping for Hanoi started.", ack.Message)
	require.Len(t, events, 1)
	assert.Equal(t, "Lantern Festival", events[0].Title)
	assert.Equal(t, int32(1), server.triggers.Load())
}

/*
TestDiscoverAndWait_EmptyIsNotAnError verifies that a scrape which produced
nothing (or has not finished) still reconciles cleanly to an empty list.
*/
func TestDiscoverAndWait_EmptyIsNotAnError(t *testing.T) {
	server := newDiscoveryServer(t)
	client := New(server.URL, WithRefreshDelay(20*time.Millisecond))

	ack, events, err := client.DiscoverAndWait(context.Background(), 7)
	require.NoError(t, err)

	assert.NotNil(t, ack)
	assert.Empty(t, events)
}

/*
TestDiscoverAndWait_ContextCancelsWait verifies that cancellation interrupts
the fixed delay instead of blocking until it elapses.
*/
func TestDiscoverAndWait_ContextCancelsWait(t *testing.T) {
	server := newDiscoveryServer(t)
	client := New(server.URL, WithRefreshDelay(10*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	started := time.Now()
	ack, events, err := client.DiscoverAndWait(ctx, 7)

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotNil(t, ack)
	assert.Nil(t, events)
	assert.Less(t, time.Since(started), time.Second)
}

func TestTriggerDiscovery_APIError(t *testing.T) {
	server := newDiscoveryServer(t)
	client := New(server.URL)

	_, err := client.TriggerDiscovery(context.Background(), 404)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}
