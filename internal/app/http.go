package app

import (
	"net"
	"net/http"
	"time"
)

// appTitle identifies the client to OpenRouter.
const appTitle = "Scientific Text Classifier"

// titleTransport adds the X-Title header to every request.
type titleTransport struct {
	base  http.RoundTripper
	title string
}

func (t *titleTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("X-Title", t.title)
	return t.base.RoundTrip(r)
}

// newLLMHTTPClient returns the HTTP client for the remote classifier. The
// client timeout is a backstop; each attempt carries its own deadline.
func newLLMHTTPClient(attemptTimeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	timeout := 60 * time.Second
	if attemptTimeout > 0 && 2*attemptTimeout < timeout {
		timeout = 2 * attemptTimeout
	}
	return &http.Client{
		Transport: &titleTransport{base: transport, title: appTitle},
		Timeout:   timeout,
	}
}
