package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WSConfig configures WebSocket connection behavior.
type WSConfig struct {
	// HandshakeTimeout bounds the initial dial.
	HandshakeTimeout time.Duration
	// SubscribeTimeout bounds the wait for subscription confirmation.
	SubscribeTimeout time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// NotifyBuffer is the capacity of the hash notification channel.
	NotifyBuffer int
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSConfig {
	return WSConfig{
		HandshakeTimeout: 10 * time.Second,
		SubscribeTimeout: 15 * time.Second,
		PingInterval:     30 * time.Second,
		ReadTimeout:      60 * time.Second,
		WriteTimeout:     10 * time.Second,
		NotifyBuffer:     1024,
	}
}

// WSDialer dials pending-transaction subscriptions over gorilla/websocket.
type WSDialer struct {
	endpoint string
	config   WSConfig
}

// NewWSDialer creates a dialer for the given ws:// or wss:// endpoint.
func NewWSDialer(endpoint string, config *WSConfig) *WSDialer {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}
	return &WSDialer{endpoint: endpoint, config: cfg}
}

// Dial connects, issues eth_subscribe("newPendingTransactions") and waits
// for the confirmation before returning.
func (d *WSDialer) Dial(ctx context.Context) (StreamConn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.config.HandshakeTimeout}

	conn, _, err := dialer.DialContext(ctx, d.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial: %w", err)
	}

	c := &wsConn{
		conn:    conn,
		config:  d.config,
		notifCh: make(chan string, d.config.NotifyBuffer),
		done:    make(chan struct{}),
	}

	if err := c.subscribe(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	c.wg.Add(1)
	go c.readLoop()

	c.wg.Add(1)
	go c.pingLoop()

	return c, nil
}

var _ StreamDialer = (*WSDialer)(nil)

// wsConn is one live subscription over a gorilla/websocket connection.
type wsConn struct {
	conn   *websocket.Conn
	config WSConfig

	writeMu sync.Mutex // serializes control and data writes

	subID   string
	notifCh chan string

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	errMu sync.Mutex
	err   error
}

// subscribe sends the eth_subscribe request and waits for its confirmation.
// The read happens inline: nothing else reads the socket yet.
func (c *wsConn) subscribe(ctx context.Context) error {
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_subscribe",
		Params:  []interface{}{"newPendingTransactions"},
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("write subscribe: %w", err)
	}

	deadline := time.Now().Add(c.config.SubscribeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	c.conn.SetReadDeadline(deadline)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read subscribe confirmation: %w", err)
		}

		var resp wsSubscribeResponse
		if err := json.Unmarshal(message, &resp); err == nil && resp.ID == req.ID {
			if resp.Error != nil {
				return fmt.Errorf("subscribe rejected: %s", resp.Error.Message)
			}
			if resp.Result == "" {
				return fmt.Errorf("subscribe confirmation without subscription id")
			}
			c.subID = resp.Result
			return nil
		}
		// Not the confirmation (e.g. an early notification); keep reading
		// until the deadline fires.
	}
}

// Notifications delivers pending transaction hashes.
func (c *wsConn) Notifications() <-chan string {
	return c.notifCh
}

// Done is closed when the connection has fully shut down.
func (c *wsConn) Done() <-chan struct{} {
	return c.done
}

// Err returns the terminal error, nil after a clean Close.
func (c *wsConn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Close unsubscribes and closes the socket.
func (c *wsConn) Close() error {
	c.shutdown(nil)
	c.wg.Wait()
	return nil
}

// shutdown records the terminal error and tears the connection down once.
func (c *wsConn) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.errMu.Lock()
		c.err = err
		c.errMu.Unlock()

		c.writeMu.Lock()
		if c.subID != "" {
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			c.conn.WriteJSON(wsRequest{
				JSONRPC: "2.0",
				ID:      2,
				Method:  "eth_unsubscribe",
				Params:  []interface{}{c.subID},
			})
		}
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()

		c.conn.Close()
		close(c.done)
	})
}

// readLoop reads messages and dispatches hash notifications. It is the
// only writer and closer of notifCh.
func (c *wsConn) readLoop() {
	defer c.wg.Done()
	defer close(c.notifCh)

	for {
		c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))

		_, message, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				// Close already in progress; keep the clean shutdown error.
			default:
				c.shutdown(fmt.Errorf("websocket read: %w", err))
			}
			return
		}

		var notif wsNotification
		if err := json.Unmarshal(message, &notif); err != nil || notif.Method != "eth_subscription" {
			continue
		}
		if notif.Params == nil || notif.Params.Subscription != c.subID {
			continue
		}

		var hash string
		if err := json.Unmarshal(notif.Params.Result, &hash); err != nil || hash == "" {
			continue
		}

		// Drop when the consumer lags: a stale pending hash is worthless
		// and blocking here would stall ping handling.
		select {
		case c.notifCh <- hash:
		case <-c.done:
			return
		default:
		}
	}
}

// pingLoop sends periodic ping frames to keep connection alive.
func (c *wsConn) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				// Connection might be dead, the reader will notice shortly.
			}
			c.writeMu.Unlock()
		}
	}
}

// WebSocket message types

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsSubscribeResponse struct {
	JSONRPC string   `json:"jsonrpc"`
	ID      uint64   `json:"id"`
	Result  string   `json:"result"` // subscription ID
	Error   *wsError `json:"error"`
}

type wsError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type wsNotification struct {
	JSONRPC string                `json:"jsonrpc"`
	Method  string                `json:"method"`
	Params  *wsNotificationParams `json:"params"`
}

type wsNotificationParams struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}
