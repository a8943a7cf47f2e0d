// Package wsconn provides a WebSocket client with automatic reconnection.
package wsconn

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

// State represents the connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateReconnecting State = "reconnecting"
)

// ErrClosed is returned when operating on a closed client.
var ErrClosed = errors.New("wsconn: client closed")

// MessageHandler receives every raw message read from the connection.
type MessageHandler func(ctx context.Context, data []byte)

// Config holds WebSocket client configuration.
type Config struct {
	URL            string
	Name           string // label used in errors and state callbacks
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxReconnects  int // 0 = infinite
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	ReadLimit      int64 // max message size in bytes
}

// DefaultConfig returns sensible defaults for the given endpoint.
func DefaultConfig(url, name string) Config {
	return Config{
		URL:            url,
		Name:           name,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		MaxReconnects:  0,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		ReadLimit:      1 << 20,
	}
}

// Client wraps a coder/websocket connection with reconnection and a
// single-reader loop that fans messages out to the registered handler.
type Client struct {
	config Config

	conn   *websocket.Conn
	connMu sync.RWMutex

	onMessage MessageHandler
	onState   func(State)
	handlerMu sync.RWMutex

	state   State
	stateMu sync.RWMutex

	closed atomic.Bool
	done   chan struct{}
}

// New creates a client. Connect or ConnectWithRetry must be called before Send.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("wsconn: empty URL")
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	return &Client{
		config: cfg,
		state:  StateDisconnected,
		done:   make(chan struct{}),
	}, nil
}

// OnMessage registers the handler invoked for every received message.
// Must be called before Connect.
func (c *Client) OnMessage(handler MessageHandler) {
	c.handlerMu.Lock()
	c.onMessage = handler
	c.handlerMu.Unlock()
}

// OnStateChange registers a callback for connection state transitions.
func (c *Client) OnStateChange(fn func(State)) {
	c.handlerMu.Lock()
	c.onState = fn
	c.handlerMu.Unlock()
}

// Connect dials once and starts the read loop. No retry.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClosed
	}
	c.setState(StateConnecting)

	conn, _, err := websocket.Dial(ctx, c.config.URL, nil)
	if err != nil {
		c.setState(StateDisconnected)
		return fmt.Errorf("wsconn %s: dial %s: %w", c.config.Name, c.config.URL, err)
	}
	if c.config.ReadLimit > 0 {
		conn.SetReadLimit(c.config.ReadLimit)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	c.setState(StateConnected)

	go c.readLoop(ctx, conn)
	return nil
}

// ConnectWithRetry dials with exponential backoff until connected, the
// context is cancelled, or MaxReconnects attempts fail.
func (c *Client) ConnectWithRetry(ctx context.Context) error {
	backoff := c.config.InitialBackoff
	attempts := 0

	for {
		err := c.Connect(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrClosed) {
			return err
		}

		attempts++
		if c.config.MaxReconnects > 0 && attempts >= c.config.MaxReconnects {
			return fmt.Errorf("wsconn %s: giving up after %d attempts: %w",
				c.config.Name, attempts, err)
		}

		c.setState(StateReconnecting)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return ErrClosed
		case <-time.After(jitter(backoff)):
		}
		backoff = min(backoff*2, c.config.MaxBackoff)
	}
}

// Send writes a text message, honoring the configured write timeout.
func (c *Client) Send(ctx context.Context, msg []byte) error {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return fmt.Errorf("wsconn %s: not connected", c.config.Name)
	}

	if c.config.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.WriteTimeout)
		defer cancel()
	}
	return conn.Write(ctx, websocket.MessageText, msg)
}

// IsConnected reports whether the connection is live.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// State returns the current connection state.
func (c *Client) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// Close tears the connection down. The client cannot be reused.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	conn := c.conn
	c.conn = nil
	c.connMu.Unlock()

	c.setState(StateDisconnected)
	if conn != nil {
		return conn.Close(websocket.StatusNormalClosure, "client closed")
	}
	return nil
}

// readLoop reads until the connection drops, then reconnects unless the
// client was closed.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		readCtx := ctx
		var cancel context.CancelFunc
		if c.config.ReadTimeout > 0 {
			readCtx, cancel = context.WithTimeout(ctx, c.config.ReadTimeout)
		}
		_, data, err := conn.Read(readCtx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			if c.closed.Load() || ctx.Err() != nil {
				return
			}
			c.setState(StateReconnecting)
			if rerr := c.ConnectWithRetry(ctx); rerr != nil {
				c.setState(StateDisconnected)
			}
			return
		}

		c.handlerMu.RLock()
		handler := c.onMessage
		c.handlerMu.RUnlock()
		if handler != nil {
			handler(ctx, data)
		}
	}
}

func (c *Client) setState(state State) {
	c.stateMu.Lock()
	changed := c.state != state
	c.state = state
	c.stateMu.Unlock()

	if !changed {
		return
	}
	c.handlerMu.RLock()
	fn := c.onState
	c.handlerMu.RUnlock()
	if fn != nil {
		fn(state)
	}
}

// jitter spreads reconnect attempts so restarting fleets do not stampede.
func jitter(d time.Duration) time.Duration {
	return d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
}
