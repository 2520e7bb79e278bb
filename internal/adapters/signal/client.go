// Package signal is the websocket client for the coordination server. One
// Client carries one session: Connect dials, Send queues an envelope, and
// inbound envelopes are handed to the OnMessage handler from the read pump.
package signal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/dkeye/rtcengine/internal/core"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrNotConnected     = errors.New("signaling not connected")
	ErrAlreadyConnected = errors.New("signaling already connected")
	ErrClosed           = errors.New("signaling closed")
)

const (
	DefaultSendBuffer   = 32
	DefaultWriteTimeout = 5 * time.Second
	DefaultPingPeriod   = 30 * time.Second
)

type Client struct {
	logger       zerolog.Logger
	dialer       *websocket.Dialer
	sendBuffer   int
	writeTimeout time.Duration
	pingPeriod   time.Duration

	mu        sync.RWMutex
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	handler   func(core.SignalMessage)
	closed    bool
	cancel    context.CancelFunc
	writer    conc.WaitGroup
}

type Option func(*Client)

func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

func WithSendBuffer(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.sendBuffer = n
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// WithPingPeriod sets the websocket keepalive period. Zero disables pings.
func WithPingPeriod(d time.Duration) Option {
	return func(c *Client) { c.pingPeriod = d }
}

func New(opts ...Option) *Client {
	c := &Client{
		dialer:       websocket.DefaultDialer,
		sendBuffer:   DefaultSendBuffer,
		writeTimeout: DefaultWriteTimeout,
		pingPeriod:   DefaultPingPeriod,
		sessionID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = log.With().Str("module", "signal").Str("sid", c.sessionID).Logger()
	return c
}

// Factory returns a transport constructor for the orchestrator.
func Factory(opts ...Option) func() core.SignalTransport {
	return func() core.SignalTransport { return New(opts...) }
}

func (c *Client) OnMessage(fn func(core.SignalMessage)) {
	c.mu.Lock()
	c.handler = fn
	c.mu.Unlock()
}

// SessionID is the client generated id until the server acknowledges the
// connection with its own.
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// Connect dials rawURL with token as the token query parameter and as a
// bearer header, then starts the pumps.
func (c *Client) Connect(ctx context.Context, rawURL, token string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.conn != nil {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.mu.Unlock()

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("signaling url: %w", err)
	}
	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	ws, resp, err := c.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: %s: %w", u.Host, resp.Status, err)
		}
		return fmt.Errorf("dial %s: %w", u.Host, err)
	}

	c.mu.Lock()
	if c.closed || c.conn != nil {
		c.mu.Unlock()
		_ = ws.Close()
		return ErrClosed
	}
	pumpCtx, cancel := context.WithCancel(context.Background())
	c.conn = ws
	c.send = make(chan []byte, c.sendBuffer)
	c.cancel = cancel
	send := c.send
	c.mu.Unlock()

	c.writer.Go(func() { c.writePump(pumpCtx, ws, send) })
	go c.readPump(pumpCtx, ws)
	c.logger.Info().Str("host", u.Host).Msg("signaling connected")
	return nil
}

// Send stamps msg with the session id and time and queues it for the write
// pump. A full queue fails with ErrBackpressure.
func (c *Client) Send(msg core.SignalMessage) error {
	if msg.SessionID == "" {
		msg.SessionID = c.SessionID()
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	data, err := encode(msg)
	if err != nil {
		return err
	}
	return c.trySend(data)
}

func (c *Client) trySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	if c.send == nil {
		return ErrNotConnected
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

// Close flushes queued envelopes, then closes the connection. It is
// idempotent and may be called from a message handler.
func (c *Client) Close() {
	if !c.markClosed() {
		return
	}
	c.writer.Wait()
	c.release()
}

// markClosed rejects further sends and lets the write pump drain. It reports
// whether this call did the closing.
func (c *Client) markClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.closed = true
	if c.send != nil {
		close(c.send)
	}
	return true
}

func (c *Client) release() {
	c.mu.Lock()
	cancel, ws := c.cancel, c.conn
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ws != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(c.writeTimeout))
		_ = ws.Close()
	}
	c.logger.Info().Msg("signaling closed")
}

func (c *Client) deliver(msg core.SignalMessage) {
	if msg.Type == core.SignalConnectionAck && msg.SessionID != "" {
		c.mu.Lock()
		c.sessionID = msg.SessionID
		c.mu.Unlock()
	}
	c.mu.RLock()
	fn := c.handler
	c.mu.RUnlock()
	if fn == nil {
		return
	}
	var pc panics.Catcher
	pc.Try(func() { fn(msg) })
	if r := pc.Recovered(); r != nil {
		c.logger.Error().Err(r.AsError()).Str("type", msg.Type).Msg("signal handler panicked")
	}
}
