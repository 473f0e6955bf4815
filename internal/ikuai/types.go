package ikuai

import (
	"encoding/json"

	"github.com/pkg/errors"
)

const (
	// ResultLoginOK is returned by the login action on success.
	ResultLoginOK = 10000
	// ResultCallOK is returned by the call action on success.
	ResultCallOK = 30000
	// ResultSessionExpired is returned by the call action when the session cookie is no longer valid.
	ResultSessionExpired = 10014

	loginPath = "/Action/login"
	callPath  = "/Action/call"

	sessionCookie = "sess_key"

	// maxCallAttempts bounds a call to the initial attempt and one retry after re-login.
	maxCallAttempts = 2

	// responses are small JSON documents, anything larger is not a device response.
	maxResponseBytes = 4 << 20
)

var (
	ErrLogin = errors.New("ikuai login error")
	// ErrLoginUnauthorized wraps ErrLogin, the device rejected the credentials.
	ErrLoginUnauthorized = errors.Wrap(ErrLogin, "credentials rejected")
	ErrSessionExpired    = errors.New("ikuai session expired")
	ErrAPIResponse       = errors.New("ikuai api returned an error")
	ErrMalformedResponse = errors.New("ikuai malformed response")
	ErrTransport         = errors.New("ikuai transport error")
	ErrFieldAbsent       = errors.New("ikuai field absent")
)

// Session is the authenticated state held by a Client.
type Session struct {
	// Token is the sess_key cookie value, empty when the device did not set one.
	Token         string
	Authenticated bool
}

type loginRequest struct {
	Username         string `json:"username"`
	Passwd           string `json:"passwd"`
	Pass             string `json:"pass"`
	RememberPassword string `json:"remember_password"`
}

type callRequest struct {
	FuncName string         `json:"func_name"`
	Action   string         `json:"action"`
	Param    map[string]any `json:"param,omitempty"`
}

// envelope is the common response body for the login and call actions.
type envelope struct {
	Result int             `json:"Result"`
	ErrMsg string          `json:"ErrMsg"`
	Data   json.RawMessage `json:"Data"`
}
