// Package test_helpers provides a fake old.reddit.com for tests.
package test_helpers

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

const sessionCookie = "reddit_session"

// MockServer is an httptest server that answers like old.reddit.com. Paths
// without a configured response get 404. The root page and /api/me.json are
// answered from the accepted sessions.
type MockServer struct {
	server *httptest.Server

	mu         sync.Mutex
	responses  map[string]*MockResponse
	sessions   map[string]Account
	requestLog []RequestEntry
	callCount  map[string]int
}

// Account is the user a session cookie belongs to.
type Account struct {
	Username string
	Modhash  string
}

// RequestEntry records one request.
type RequestEntry struct {
	Method    string
	Path      string
	Query     url.Values
	Form      url.Values
	Headers   http.Header
	Cookie    string
	Timestamp time.Time
}

// MockResponse defines a canned response.
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
}

// NewRedditMockServer starts a fake Reddit. Close it when done.
func NewRedditMockServer() *MockServer {
	ms := &MockServer{
		responses: make(map[string]*MockResponse),
		sessions:  make(map[string]Account),
		callCount: make(map[string]int),
	}
	ms.server = httptest.NewServer(ms)
	return ms
}

// URL returns the base URL of the mock server
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts down the mock server
func (ms *MockServer) Close() {
	ms.server.Close()
}

// AcceptSession makes cookie a logged-in session of account.
func (ms *MockServer) AcceptSession(cookie string, account Account) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.sessions[cookie] = account
}

// SetResponse configures a response for a specific path
func (ms *MockServer) SetResponse(path string, response *MockResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.responses[path] = response
}

// SetJSON answers path with status and a JSON body.
func (ms *MockServer) SetJSON(path string, status int, body string) {
	ms.SetResponse(path, &MockResponse{
		Status:  status,
		Body:    body,
		Headers: map[string]string{"Content-Type": "application/json; charset=UTF-8"},
	})
}

// CallCount returns the number of requests made to path.
func (ms *MockServer) CallCount(path string) int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.callCount[path]
}

// TotalCalls returns the number of requests made to any path.
func (ms *MockServer) TotalCalls() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return len(ms.requestLog)
}

// Requests returns the requests made to path, oldest first.
func (ms *MockServer) Requests(path string) []RequestEntry {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var out []RequestEntry
	for _, e := range ms.requestLog {
		if e.Path == path {
			out = append(out, e)
		}
	}
	return out
}

// LastRequest returns the last request made to a specific path
func (ms *MockServer) LastRequest(path string) (*RequestEntry, error) {
	reqs := ms.Requests(path)
	if len(reqs) == 0 {
		return nil, fmt.Errorf("no requests found for path: %s", path)
	}
	return &reqs[len(reqs)-1], nil
}

// ServeHTTP implements http.Handler
func (ms *MockServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	entry := RequestEntry{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		Headers:   r.Header.Clone(),
		Timestamp: time.Now(),
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		entry.Cookie = c.Value
	}
	if r.Method == http.MethodPost {
		body, _ := io.ReadAll(r.Body)
		entry.Form, _ = url.ParseQuery(string(body))
	}

	ms.mu.Lock()
	ms.requestLog = append(ms.requestLog, entry)
	ms.callCount[r.URL.Path]++
	response, configured := ms.responses[r.URL.Path]
	account, loggedIn := ms.sessions[entry.Cookie]
	ms.mu.Unlock()

	if configured {
		for key, value := range response.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(response.Status)
		io.WriteString(w, response.Body)
		return
	}

	switch r.URL.Path {
	case "/":
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		if loggedIn {
			fmt.Fprintf(w, `<html><head><script>window.r = {"config": {"logged": %q, "modhash": %q}};</script></head></html>`, account.Username, account.Modhash)
			return
		}
		io.WriteString(w, `<html><body><a href="/login">log in or sign up in seconds</a></body></html>`)
	case "/api/me.json":
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
		if loggedIn {
			fmt.Fprintf(w, `{"kind": "t2", "data": {"name": %q, "modhash": %q}}`, account.Username, account.Modhash)
			return
		}
		io.WriteString(w, `{}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message": "Not Found", "error": 404}`)
	}
}
