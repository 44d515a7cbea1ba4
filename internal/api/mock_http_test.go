package api

import (
	"bytes"
	"io"
	"net/url"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/bogdanfinn/tls-client/bandwidth"
)

// mockResponse represents a single HTTP response for the mock client
type mockResponse struct {
	statusCode  int
	contentType string
	body        []byte
	err         error
}

// MockHttpClient implements tls_client.HttpClient and replays responses in order
type MockHttpClient struct {
	mu        sync.Mutex
	responses []mockResponse
	requests  []*fhttp.Request
	bodies    [][]byte
	closed    bool
}

func newMockHttpClient(responses ...mockResponse) *MockHttpClient {
	return &MockHttpClient{responses: responses}
}

func (m *MockHttpClient) GetCookies(u *url.URL) []*fhttp.Cookie {
	return nil
}

func (m *MockHttpClient) SetCookies(u *url.URL, cookies []*fhttp.Cookie) {}

func (m *MockHttpClient) SetCookieJar(jar fhttp.CookieJar) {}

func (m *MockHttpClient) GetCookieJar() fhttp.CookieJar {
	return nil
}

func (m *MockHttpClient) SetProxy(proxy string) error {
	return nil
}

func (m *MockHttpClient) GetProxy() string {
	return ""
}

func (m *MockHttpClient) SetFollowRedirect(followRedirect bool) {}

func (m *MockHttpClient) GetFollowRedirect() bool {
	return false
}

func (m *MockHttpClient) CloseIdleConnections() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
}

func (m *MockHttpClient) Get(u string) (*fhttp.Response, error) {
	req, _ := fhttp.NewRequest(fhttp.MethodGet, u, nil)
	return m.Do(req)
}

func (m *MockHttpClient) Head(u string) (*fhttp.Response, error) {
	req, _ := fhttp.NewRequest(fhttp.MethodHead, u, nil)
	return m.Do(req)
}

func (m *MockHttpClient) Post(u, contentType string, body io.Reader) (*fhttp.Response, error) {
	req, _ := fhttp.NewRequest(fhttp.MethodPost, u, body)
	req.Header.Set("Content-Type", contentType)
	return m.Do(req)
}

func (m *MockHttpClient) GetBandwidthTracker() bandwidth.BandwidthTracker {
	return nil
}

func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)

	if len(m.responses) == 0 {
		return &fhttp.Response{StatusCode: fhttp.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: make(fhttp.Header)}, nil
	}

	idx := len(m.requests) - 1
	if idx >= len(m.responses) {
		// Return last response if we've exhausted the list
		idx = len(m.responses) - 1
	}

	resp := m.responses[idx]
	if resp.err != nil {
		return nil, resp.err
	}

	header := make(fhttp.Header)
	if resp.contentType != "" {
		header.Set("Content-Type", resp.contentType)
	}
	return &fhttp.Response{
		StatusCode: resp.statusCode,
		Body:       io.NopCloser(bytes.NewReader(resp.body)),
		Header:     header,
		Request:    req,
	}, nil
}

func (m *MockHttpClient) lastRequest() (*fhttp.Request, []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil, nil
	}
	return m.requests[len(m.requests)-1], m.bodies[len(m.bodies)-1]
}

// sse joins events into a server-sent event body
func sse(events ...string) []byte {
	var buf bytes.Buffer
	for _, e := range events {
		buf.WriteString("data: ")
		buf.WriteString(e)
		buf.WriteString("\n\n")
	}
	return buf.Bytes()
}

// deltaEvent returns a streamed chunk carrying content
func deltaEvent(content string) string {
	return `{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":` + quote(content) + `},"finish_reason":null}]}`
}

const finishEvent = `{"id":"c1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}`

func quote(s string) string {
	var buf bytes.Buffer
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		default:
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}
