package convo

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stayhub/messenger/internal/config"
)

// Conn is one live bidirectional channel to the message relay, bound to a
// single room for its whole lifetime.
type Conn interface {
	// ReadMessage blocks until the next raw frame or a read error.
	ReadMessage() ([]byte, error)
	WriteJSON(v interface{}) error
	Close() error
}

// Dialer opens a Conn for a room. The indirection keeps the session state
// machine testable without a network.
type Dialer interface {
	DialRoom(ctx context.Context, roomID string) (Conn, error)
}

// WSDialer dials the relay's websocket endpoint with a bearer token.
type WSDialer struct {
	// BaseURL is the websocket endpoint, e.g. ws://localhost:8080/ws.
	BaseURL string
	Token   string
}

func (d *WSDialer) DialRoom(ctx context.Context, roomID string) (Conn, error) {
	endpoint := d.BaseURL + "?room=" + url.QueryEscape(roomID)

	header := http.Header{}
	if d.Token != "" {
		header.Set("Authorization", "Bearer "+d.Token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		return nil, err
	}

	conn.SetReadLimit(config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(config.PongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	wc := &wsConn{conn: conn, done: make(chan struct{})}
	go wc.keepalive()
	return wc, nil
}

// wsConn wraps a gorilla connection with write serialization and a ping
// keepalive, the dialing-side counterpart of the relay's write pump.
type wsConn struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	return data, err
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)

		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.writeMu.Unlock()

		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) keepalive() {
	ticker := time.NewTicker(config.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
