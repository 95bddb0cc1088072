// Package testutil provides testing utilities for the WordPress reader.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// RESTPath is the REST root of the mock server.
	RESTPath = "/wp-json/wp/v2"

	// SettingsPath is the site endpoint of the mock server.
	SettingsPath = "/rest/v1.1/sites/example.com"
)

// MockResponse defines the behavior for a mock WordPress endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockWordPress is a configurable mock WordPress server for testing.
type MockWordPress struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	Requests          []string
	LastRequestHeader http.Header
}

// NewMockWordPress creates a new mock WordPress server.
func NewMockWordPress() *MockWordPress {
	mock := &MockWordPress{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.Requests = append(mock.Requests, r.URL.RequestURI())
		mock.LastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockWordPress) URL() string {
	return m.server.URL
}

// RESTRoot returns the wp/v2 root of the mock server.
func (m *MockWordPress) RESTRoot() string {
	return m.server.URL + RESTPath
}

// SettingsRoot returns the site settings URL of the mock server.
func (m *MockWordPress) SettingsRoot() string {
	return m.server.URL + SettingsPath
}

// Close shuts down the mock server.
func (m *MockWordPress) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockWordPress) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Requests = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockWordPress) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path.
func (m *MockWordPress) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, resp)
	})
}

// SetCollection serves a paginated collection below the REST root. Each
// element of pages is the JSON array of one page. Pages past the end are
// answered with the error WordPress sends for them.
func (m *MockWordPress) SetCollection(segment string, pages ...string) {
	m.SetHandler(RESTPath+"/"+segment, func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 {
				writeResponse(w, NewErrorDocumentResponse(http.StatusBadRequest, "rest_invalid_param", "Invalid parameter(s): page"))
				return
			}
			page = n
		}

		if page > len(pages) && !(page == 1 && len(pages) == 0) {
			writeResponse(w, NewErrorDocumentResponse(http.StatusBadRequest,
				"rest_post_invalid_page_number",
				"The page number requested is larger than the number of pages available."))
			return
		}

		body := "[]"
		if len(pages) > 0 {
			body = pages[page-1]
		}
		writeResponse(w, NewPageResponse(body, len(pages)))
	})
}

// SetItem serves a single item below the REST root.
func (m *MockWordPress) SetItem(segment string, id int, body string) {
	m.SetResponse(fmt.Sprintf("%s/%s/%d", RESTPath, segment, id), NewHealthyResponse(body))
}

// SetSettings serves the site settings document.
func (m *MockWordPress) SetSettings(body string) {
	m.SetResponse(SettingsPath, NewHealthyResponse(body))
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockWordPress) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetRequests returns the request URIs received so far.
func (m *MockWordPress) GetRequests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.Requests...)
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockWordPress) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader.Clone()
}

// CountRequests returns the number of requests whose URI contains substr.
func (m *MockWordPress) CountRequests(substr string) int {
	n := 0
	for _, r := range m.GetRequests() {
		if strings.Contains(r, substr) {
			n++
		}
	}
	return n
}

// defaultHandler answers like WordPress does for unknown routes.
func (m *MockWordPress) defaultHandler(w http.ResponseWriter, r *http.Request) {
	writeResponse(w, NewErrorDocumentResponse(http.StatusNotFound, "rest_no_route", "No route was found matching the URL and request method."))
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewHealthyResponse creates a standard 200 OK JSON response.
func NewHealthyResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=UTF-8",
		},
	}
}

// NewPageResponse creates a 200 OK collection page response.
func NewPageResponse(data string, totalPages int) MockResponse {
	resp := NewHealthyResponse(data)
	resp.Headers["X-WP-TotalPages"] = strconv.Itoa(totalPages)
	return resp
}

// NewErrorDocumentResponse creates a WordPress error document response.
func NewErrorDocumentResponse(status int, code, message string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{"code":%q,"message":%q,"data":{"status":%d}}`, code, message, status),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=UTF-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response
// without an error document.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `<html><body>Internal Server Error</body></html>`,
		Headers: map[string]string{
			"Content-Type": "text/html",
		},
	}
}
