package komari

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/metrics"
)

const (
	defaultReconnectDelay = 5 * time.Second
	handshakeTimeout      = 10 * time.Second
	writeWait             = 5 * time.Second
	// maxDialDelay caps the wait between consecutive failed dials.
	maxDialDelay = time.Minute
)

var (
	ErrNotConnected = errors.New("stream not connected")
	ErrSend         = errors.New("stream send error")
)

// Stream is a websocket to the report API that reconnects after a fixed delay.
//
// A single supervisor goroutine runs the receive loop and the reconnect wait,
// it exits when the context passed to Start is cancelled or Close is called.
type Stream struct {
	url    string
	dialer *websocket.Dialer
	delay  time.Duration
	logger *logrus.Entry

	connected atomic.Bool

	// mu guards conn and serializes writes.
	mu   sync.Mutex
	conn *websocket.Conn

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewStream returns a Stream for the endpoint report URL, no connection is made until Start.
func NewStream(endpoint *Endpoint, delay time.Duration, insecure bool, logger *logrus.Logger) *Stream {
	if delay <= 0 {
		delay = defaultReconnectDelay
	}

	return &Stream{
		url:   endpoint.ReportURL(),
		delay: delay,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
			// nolint:gosec // verification is disabled only when configured to.
			TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
		},
		logger: logger.WithFields(logrus.Fields{"component": "stream", "endpoint": endpoint.String()}),
		done:   make(chan struct{}),
	}
}

// Start spawns the supervisor, subsequent calls are ignored.
func (s *Stream) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)

		go s.supervise(ctx)
	})
}

// Connected reports whether a connection is currently open.
func (s *Stream) Connected() bool {
	return s.connected.Load()
}

// Send writes payload as a JSON text frame, it returns ErrNotConnected when there is no open connection.
//
// A write failure closes the connection, the supervisor then reconnects.
func (s *Stream) Send(payload any) error {
	if !s.connected.Load() {
		return ErrNotConnected
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(ErrSend, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return errors.Wrap(ErrSend, err.Error())
	}

	if err := s.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		s.connected.Store(false)
		_ = s.conn.Close()

		return errors.Wrap(ErrSend, err.Error())
	}

	return nil
}

// Close stops reconnecting, closes the open connection and waits for the supervisor to return.
func (s *Stream) Close() {
	// a stream that was never started has no supervisor to wait on.
	s.startOnce.Do(func() { close(s.done) })

	if s.cancel != nil {
		s.cancel()
	}

	<-s.done
}

func (s *Stream) supervise(ctx context.Context) {
	defer close(s.done)

	dials := s.dialBackoff()

	for {
		connected, err := s.run(ctx)
		if ctx.Err() != nil {
			s.logger.Debug("stream supervisor stopped")
			return
		}

		wait := nextDelay(connected, s.delay, dials)

		le := s.logger.WithField("delay", wait.String())
		if err != nil {
			le = le.WithError(err)
		}

		if connected {
			le.Info("stream closed, reconnecting")
		} else {
			le.Warn("stream dial failed, retrying")
		}

		select {
		case <-ctx.Done():
			s.logger.Debug("stream supervisor stopped")
			return
		case <-time.After(wait):
		}
	}
}

// dialBackoff paces failed dials, starting at the reconnect delay and doubling up to maxDialDelay.
func (s *Stream) dialBackoff() *backoff.Backoff {
	limit := maxDialDelay
	if s.delay > limit {
		limit = s.delay
	}

	// nolint:gomnd // doubling between failed dials.
	return &backoff.Backoff{Min: s.delay, Max: limit, Factor: 2}
}

// nextDelay returns the wait before the next dial.
//
// A connection that was established and then closed is redialed after exactly
// delay, and the dial backoff starts over. Consecutive failed dials back off.
func nextDelay(connected bool, delay time.Duration, dials *backoff.Backoff) time.Duration {
	if connected {
		dials.Reset()
		return delay
	}

	return dials.Duration()
}

// run dials and receives until the connection fails or ctx is cancelled.
// The returned bool is true when the dial succeeded.
func (s *Stream) run(ctx context.Context) (bool, error) {
	conn, resp, err := s.dialer.DialContext(ctx, s.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	if err != nil {
		metrics.StreamConnectCounter.WithLabelValues("failed").Inc()
		return false, err
	}

	metrics.StreamConnectCounter.WithLabelValues("succeeded").Inc()

	le := s.logger.WithField("connID", uuid.NewString())

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.connected.Store(true)

	le.Info("stream connected")

	stop := context.AfterFunc(ctx, func() { s.shutdown(conn) })

	defer func() {
		stop()
		s.release(conn)
		le.Debug("stream connection released")
	}()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				le.WithError(err).Warn("stream receive error")
			}

			return true, err
		}

		s.handleMessage(le, mt, msg)
	}
}

// handleMessage logs inbound messages, nothing is acted on.
func (s *Stream) handleMessage(le *logrus.Entry, mt int, msg []byte) {
	var data any
	if err := json.Unmarshal(msg, &data); err != nil {
		le.WithError(err).WithField("messageType", mt).Error("stream message is not JSON")
		return
	}

	le.WithField("message", data).Info("stream message received")
}

// shutdown sends a close frame and closes conn, it unblocks the receive loop.
func (s *Stream) shutdown(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected.Store(false)

	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "agent stopping"),
		time.Now().Add(writeWait),
	)

	_ = conn.Close()
}

func (s *Stream) release(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == conn {
		s.conn = nil
	}

	s.connected.Store(false)
	_ = conn.Close()
}
