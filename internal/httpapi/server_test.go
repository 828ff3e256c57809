// Copyright (c) 2026 Sepehrz All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepehrz/filterwatch/internal/history"
	"github.com/sepehrz/filterwatch/src/filterwatch"
)

type fixture struct {
	registry *filterwatch.Registry
	history  *history.Store
	srv      *httptest.Server
	cycles   int
}

func newFixture(t *testing.T, withHistory bool) *fixture {
	t.Helper()

	f := &fixture{}
	f.registry = filterwatch.NewRegistry(filepath.Join(t.TempDir(), "domains.json"))

	watcher, err := filterwatch.New(f.registry,
		filterwatch.WithResolvers("192.0.2.1", "192.0.2.2"),
		filterwatch.WithTimeout(200*time.Millisecond),
	)
	require.NoError(t, err)
	t.Cleanup(watcher.Close)

	if withHistory {
		f.history, err = history.Open("sqlite", ":memory:", nil)
		require.NoError(t, err)
	}

	server := New(f.registry, watcher, f.history, func() { f.cycles++ }, nil)
	f.srv = httptest.NewServer(server.Router())
	t.Cleanup(f.srv.Close)
	return f
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, false)

	var body map[string]string
	code := getJSON(t, f.srv.URL+"/healthz", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestListDomains(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.registry.Add(filterwatch.CategoryManagement, filterwatch.NewDomainEntry("a.example.com"))
	require.NoError(t, err)
	nl, err := filterwatch.CountryCategory("NL")
	require.NoError(t, err)
	_, err = f.registry.Add(nl, filterwatch.NewDomainEntry("b.example.com"))
	require.NoError(t, err)

	var body struct {
		Count   int `json:"count"`
		Domains []struct {
			Name     string `json:"name"`
			Category string `json:"category"`
		} `json:"domains"`
	}
	code := getJSON(t, f.srv.URL+"/api/domains", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "a.example.com", body.Domains[0].Name)
	assert.Equal(t, "management", body.Domains[0].Category)
	assert.Equal(t, "countries/NL", body.Domains[1].Category)
}

func TestGetDomain(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.registry.Add(filterwatch.CategoryManagement, filterwatch.NewDomainEntry("a.example.com"))
	require.NoError(t, err)

	var body struct {
		Name     string `json:"name"`
		Category string `json:"category"`
	}
	code := getJSON(t, f.srv.URL+"/api/domains/a.example.com", &body)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a.example.com", body.Name)
	assert.Equal(t, "management", body.Category)

	code = getJSON(t, f.srv.URL+"/api/domains/missing.example.com", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDomainHistory(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.history.Append(context.Background(), filterwatch.CheckEvent{
		Domain:    "a.example.com",
		Category:  "management",
		Verdict:   filterwatch.VerdictFiltered,
		CheckedAt: time.Now().UTC(),
	}))

	var body struct {
		Domain  string           `json:"domain"`
		Records []history.Record `json:"records"`
	}
	code := getJSON(t, f.srv.URL+"/api/domains/a.example.com/history?limit=5", &body)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, body.Records, 1)
	assert.Equal(t, "filtered", body.Records[0].Verdict)
}

func TestDomainHistoryDisabled(t *testing.T) {
	f := newFixture(t, false)

	code := getJSON(t, f.srv.URL+"/api/domains/a.example.com/history", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestResolvers(t *testing.T) {
	f := newFixture(t, false)

	var body struct {
		Resolvers []struct {
			Resolver string `json:"resolver"`
			Role     string `json:"role"`
			Online   bool   `json:"online"`
		} `json:"resolvers"`
	}
	code := getJSON(t, f.srv.URL+"/api/resolvers", &body)
	assert.Equal(t, http.StatusOK, code)
	require.Len(t, body.Resolvers, 2)
	assert.Equal(t, "public", body.Resolvers[0].Role)
	assert.Equal(t, "local", body.Resolvers[1].Role)
	// TEST-NET addresses never answer.
	assert.False(t, body.Resolvers[0].Online)
}

func TestTriggerCycle(t *testing.T) {
	f := newFixture(t, false)

	resp, err := http.Post(f.srv.URL+"/api/cycle", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, 1, f.cycles)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, false)

	resp, err := http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
