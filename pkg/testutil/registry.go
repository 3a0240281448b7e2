package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Route is a canned upstream response.
type Route struct {
	Status int
	Body   string
}

// FakeRegistry is an httptest server answering GETs from a fixed route
// table. Unknown paths answer 404. It records every path requested.
type FakeRegistry struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]Route
	hits   []string
}

// NewFakeRegistry starts a FakeRegistry that is closed when the test ends.
func NewFakeRegistry(t *testing.T) *FakeRegistry {
	t.Helper()
	f := &FakeRegistry{routes: make(map[string]Route)}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

// JSON registers a 200 response with body for path.
func (f *FakeRegistry) JSON(path, body string) *FakeRegistry {
	return f.Respond(path, http.StatusOK, body)
}

// Respond registers status and body for path.
func (f *FakeRegistry) Respond(path string, status int, body string) *FakeRegistry {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = Route{Status: status, Body: body}
	return f
}

// Hits returns the requested paths in order.
func (f *FakeRegistry) Hits() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.hits...)
}

func (f *FakeRegistry) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits = append(f.hits, r.URL.Path)
	route, ok := f.routes[r.URL.Path]
	f.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(route.Status)
	_, _ = w.Write([]byte(route.Body))
}
