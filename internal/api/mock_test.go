package api

import (
	"bytes"
	"io"

	fhttp "github.com/bogdanfinn/fhttp"
)

// MockHttpClient is a mock httpDoer that returns a canned response and
// keeps the last request it was given
type MockHttpClient struct {
	Response *fhttp.Response
	Err      error

	LastRequest *fhttp.Request
	LastBody    []byte
}

// Do implements httpDoer
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	m.LastRequest = req
	if req.Body != nil {
		m.LastBody, _ = io.ReadAll(req.Body)
	}
	return m.Response, m.Err
}

// NewMockHttpClient creates a new MockHttpClient with the given response
func NewMockHttpClient(body []byte, statusCode int) *MockHttpClient {
	return &MockHttpClient{
		Response: &fhttp.Response{
			StatusCode: statusCode,
			Body:       io.NopCloser(bytes.NewReader(body)),
			Header:     make(fhttp.Header),
		},
	}
}

// NewMockHttpClientWithError creates a new MockHttpClient that returns an error
func NewMockHttpClientWithError(err error) *MockHttpClient {
	return &MockHttpClient{
		Response: nil,
		Err:      err,
	}
}
