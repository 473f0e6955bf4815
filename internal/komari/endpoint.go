package komari

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const (
	basicInfoPath = "/api/clients/uploadBasicInfo"
	reportPath    = "/api/clients/report"
)

var ErrEndpoint = errors.New("invalid komari endpoint")

// Endpoint is the monitoring server base URL and the client token.
type Endpoint struct {
	base  url.URL
	token string
}

// ParseEndpoint validates raw as an http(s) URL, a path prefix on the URL is kept.
func ParseEndpoint(raw, token string) (*Endpoint, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Wrap(ErrEndpoint, err.Error())
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Wrapf(ErrEndpoint, "scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return nil, errors.Wrap(ErrEndpoint, "host is empty")
	}

	if token == "" {
		return nil, errors.Wrap(ErrEndpoint, "token is empty")
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	return &Endpoint{base: *u, token: token}, nil
}

// String returns the base URL, the token is never included.
func (e *Endpoint) String() string {
	return e.base.String()
}

// BasicInfoURL returns the inventory upload URL.
func (e *Endpoint) BasicInfoURL() string {
	return e.withPath(e.base.Scheme, basicInfoPath)
}

// ReportURL returns the websocket URL for live samples, http maps to ws and https to wss.
func (e *Endpoint) ReportURL() string {
	scheme := "ws"
	if e.base.Scheme == "https" {
		scheme = "wss"
	}

	return e.withPath(scheme, reportPath)
}

func (e *Endpoint) withPath(scheme, path string) string {
	u := e.base
	u.Scheme = scheme
	u.Path = e.base.Path + path
	u.RawQuery = url.Values{"token": []string{e.token}}.Encode()

	return u.String()
}
