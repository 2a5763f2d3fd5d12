package api

import (
	"io"
	"net/url"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/bogdanfinn/tls-client/bandwidth"
)

// mockResponseBody is a ReadCloser that serves canned response data
type mockResponseBody struct {
	data []byte
	pos  int
}

func newMockResponseBody(data []byte) *mockResponseBody {
	return &mockResponseBody{data: data}
}

func (m *mockResponseBody) Read(p []byte) (n int, err error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n = copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func (m *mockResponseBody) Close() error { return nil }

// MockHttpClient is a mock implementation of tls_client.HttpClient for testing
type MockHttpClient struct {
	Response *fhttp.Response
	Err      error

	LastRequest *fhttp.Request
}

func (m *MockHttpClient) GetCookies(u *url.URL) []*fhttp.Cookie            { return nil }
func (m *MockHttpClient) SetCookies(u *url.URL, cookies []*fhttp.Cookie)   {}
func (m *MockHttpClient) SetCookieJar(jar fhttp.CookieJar)                 {}
func (m *MockHttpClient) GetCookieJar() fhttp.CookieJar                    { return nil }
func (m *MockHttpClient) SetProxy(proxyUrl string) error                   { return nil }
func (m *MockHttpClient) GetProxy() string                                 { return "" }
func (m *MockHttpClient) SetFollowRedirect(followRedirect bool)            {}
func (m *MockHttpClient) GetFollowRedirect() bool                          { return false }
func (m *MockHttpClient) CloseIdleConnections()                            {}
func (m *MockHttpClient) GetBandwidthTracker() bandwidth.BandwidthTracker  { return nil }

func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.LastRequest = req
	return m.Response, m.Err
}

func (m *MockHttpClient) Get(url string) (*fhttp.Response, error) {
	return m.Response, m.Err
}

func (m *MockHttpClient) Head(url string) (*fhttp.Response, error) {
	return m.Response, m.Err
}

func (m *MockHttpClient) Post(url, contentType string, body io.Reader) (*fhttp.Response, error) {
	return m.Response, m.Err
}

// newMockHttpClient creates a MockHttpClient serving the given body
func newMockHttpClient(body []byte, statusCode int) *MockHttpClient {
	return &MockHttpClient{
		Response: &fhttp.Response{
			StatusCode: statusCode,
			Body:       newMockResponseBody(body),
			Header:     make(fhttp.Header),
		},
	}
}
