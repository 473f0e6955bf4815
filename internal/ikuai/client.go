package ikuai

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/publicsuffix"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/metrics"
)

const (
	loginReasonInitial = "initial"
	loginReasonExpired = "session_expired"

	defaultTimeout = 10 * time.Second
)

// Client holds one authenticated session with the device management API.
//
// Calls are serialized on the session mutex, the session is never shared
// between clients.
type Client struct {
	baseURL     string
	credentials Credentials
	timeout     time.Duration
	httpClient  *http.Client
	logger      *logrus.Entry
	tracer      trace.Tracer

	mu      sync.Mutex
	session Session
}

// Option sets optional Client parameters.
type Option func(*Client)

// WithTimeout sets the per request timeout, the default is 10 seconds.
func WithTimeout(t time.Duration) Option {
	return func(c *Client) {
		if t > 0 {
			c.timeout = t
		}
	}
}

// WithHTTPClient overrides the http client, the cookie jar is replaced on each session reset.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient returns a Client for the device at baseURL, no request is made until Login or Invoke.
func NewClient(baseURL, username, password string, logger *logrus.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		credentials: DeriveCredentials(username, password),
		timeout:     defaultTimeout,
		logger:      logger.WithField("component", "ikuai"),
		tracer:      otel.Tracer("ikuai"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = newHTTPClient(c.timeout)
	} else {
		// the jar is replaced on every session reset, the caller's client is left untouched.
		hc := *c.httpClient
		c.httpClient = &hc
	}

	c.httpClient.Jar = newJar()

	return c
}

func newJar() http.CookieJar {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		panic(err)
	}

	return jar
}

func newHTTPClient(timeout time.Duration) *http.Client {
	// nolint:gomnd // time duration declarations are clear as is.
	transport := &http.Transport{
		// nolint:gosec // routers serve the management UI with self signed certs.
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   2,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(transport),
	}
}

// Session returns a copy of the current session state.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session
}

// Login authenticates with the device and stores the session.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.login(ctx, loginReasonInitial)
}

// Close drops the session and idle connections, the client may log in again afterwards.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetSession()
	c.httpClient.CloseIdleConnections()

	c.logger.Debug("device session closed")

	return nil
}

// Invoke runs funcName/action on the device and returns the response Data.
//
// A session is established first when there is none. A session expired result
// clears the session, logs in once and retries the call once, a second expiry
// is returned as ErrSessionExpired.
func (c *Client) Invoke(ctx context.Context, funcName, action string, params map[string]any) (json.RawMessage, error) {
	ctx, span := c.tracer.Start(
		ctx,
		"ikuai.Invoke",
		trace.WithAttributes(
			attribute.String("func_name", funcName),
			attribute.String("action", action),
		),
	)
	defer span.End()

	startTS := time.Now()

	c.mu.Lock()
	data, err := c.invoke(ctx, funcName, action, params)
	c.mu.Unlock()

	metrics.DeviceCallRunTimeSummary.WithLabelValues(funcName).Observe(time.Since(startTS).Seconds())

	if err != nil {
		metrics.DeviceCallCounter.WithLabelValues(funcName, "failed").Inc()
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	metrics.DeviceCallCounter.WithLabelValues(funcName, "succeeded").Inc()

	return data, nil
}

// invoke expects the session mutex to be held.
func (c *Client) invoke(ctx context.Context, funcName, action string, params map[string]any) (json.RawMessage, error) {
	if !c.session.Authenticated {
		if err := c.login(ctx, loginReasonInitial); err != nil {
			return nil, err
		}
	}

	req := &callRequest{FuncName: funcName, Action: action, Param: params}

	for attempt := 1; attempt <= maxCallAttempts; attempt++ {
		resp, err := c.call(ctx, req)
		if err != nil {
			return nil, err
		}

		switch resp.Result {
		case ResultCallOK:
			return resp.Data, nil
		case ResultSessionExpired:
			c.resetSession()

			le := c.logger.WithFields(logrus.Fields{"func_name": funcName, "attempt": attempt})
			if attempt == maxCallAttempts {
				le.Warn("session expired after re-login")

				return nil, errors.Wrapf(ErrSessionExpired, "func: %s, retry exhausted", funcName)
			}

			le.Info("session expired, logging in again")

			if err := c.login(ctx, loginReasonExpired); err != nil {
				return nil, errors.Wrap(ErrSessionExpired, err.Error())
			}
		default:
			return nil, errors.Wrapf(ErrAPIResponse, "func: %s, result: %d, msg: %s", funcName, resp.Result, resp.ErrMsg)
		}
	}

	// not reached, the loop returns on its final attempt.
	return nil, ErrSessionExpired
}

// login expects the session mutex to be held.
func (c *Client) login(ctx context.Context, reason string) error {
	err := c.doLogin(ctx)
	if err != nil {
		metrics.DeviceLoginCounter.WithLabelValues(reason, "failed").Inc()
		c.logger.WithError(err).WithField("reason", reason).Warn("device login failed")

		return err
	}

	metrics.DeviceLoginCounter.WithLabelValues(reason, "succeeded").Inc()
	c.logger.WithFields(logrus.Fields{
		"reason":   reason,
		"hasToken": c.session.Token != "",
	}).Info("device login successful")

	return nil
}

func (c *Client) doLogin(ctx context.Context) error {
	c.resetSession()

	body := &loginRequest{
		Username:         c.credentials.Username,
		Passwd:           c.credentials.Digest,
		Pass:             c.credentials.Salted,
		RememberPassword: "true",
	}

	resp, payload, err := c.post(ctx, c.baseURL+loginPath, body)
	if err != nil {
		return errors.Wrap(ErrLogin, err.Error())
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.Wrapf(ErrLoginUnauthorized, "status: %d", resp.StatusCode)
	default:
		return errors.Wrapf(ErrLogin, "status: %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		// a non JSON body is accepted only when the device redirected away from the login page.
		if resp.Request != nil && !strings.Contains(strings.ToLower(resp.Request.URL.Path), "login") {
			c.session = Session{Authenticated: true}

			return nil
		}

		return errors.Wrapf(ErrLogin, "%s: %s", ErrMalformedResponse, err)
	}

	if env.Result != ResultLoginOK {
		msg := env.ErrMsg
		if msg == "" {
			msg = "unknown error"
		}

		return errors.Wrapf(ErrLoginUnauthorized, "result: %d, msg: %s", env.Result, msg)
	}

	c.session = Session{Token: sessionToken(resp), Authenticated: true}

	return nil
}

// call posts one call action, the session is reset on transport failure.
func (c *Client) call(ctx context.Context, req *callRequest) (*envelope, error) {
	resp, payload, err := c.post(ctx, c.baseURL+callPath, req)
	if err != nil {
		c.resetSession()

		return nil, errors.Wrap(ErrTransport, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrAPIResponse, "func: %s, status: %d", req.FuncName, resp.StatusCode)
	}

	env := &envelope{}
	if err := json.Unmarshal(payload, env); err != nil {
		return nil, errors.Wrapf(ErrMalformedResponse, "func: %s, %s", req.FuncName, err.Error())
	}

	return env, nil
}

func (c *Client) post(ctx context.Context, url string, body any) (*http.Response, []byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, err
	}

	return resp, payload, nil
}

// resetSession clears the session state and any stored cookies.
func (c *Client) resetSession() {
	c.session = Session{}
	c.httpClient.Jar = newJar()
}

func sessionToken(resp *http.Response) string {
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie {
			return ck.Value
		}
	}

	return ""
}
