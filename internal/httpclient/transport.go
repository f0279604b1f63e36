// Package httpclient provides HTTP client utilities that identify taskdeck
// components to the task backend.
package httpclient

import (
	"net/http"
	"runtime"

	"taskdeck/version"
)

// ClientTransport wraps an http.RoundTripper and injects client identification headers.
type ClientTransport struct {
	Base http.RoundTripper
	// Name identifies the calling component, e.g. "taskdeck-ui" or "taskctl".
	Name string
}

// RoundTrip implements http.RoundTripper.
func (t *ClientTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.Name != "" {
		clone.Header.Set("X-Client-Name", t.Name)
	}
	clone.Header.Set("X-Client-Version", version.Version)
	clone.Header.Set("X-Client-OS", runtime.GOOS)
	clone.Header.Set("X-Client-Arch", runtime.GOARCH)

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

// NewClient returns an *http.Client configured with ClientTransport. No
// overall timeout is set: an execution may run as long as the backend lets it.
func NewClient(name string) *http.Client {
	return &http.Client{
		Transport: &ClientTransport{Name: name},
	}
}
