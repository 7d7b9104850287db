package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"stayhub/messenger/internal/config"
	"stayhub/messenger/internal/models"
)

// WSClient implements Client over a gorilla websocket connection.
type WSClient struct {
	User string
	Room string
	Conn *websocket.Conn
	Hub  *Hub
	Send chan models.ServerFrame

	closeOnce sync.Once
}

func (c *WSClient) UserID() string                         { return c.User }
func (c *WSClient) RoomID() string                         { return c.Room }
func (c *WSClient) SendChannel() chan<- models.ServerFrame { return c.Send }

// Run starts the pumps.
func (c *WSClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump.
func (c *WSClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

func (c *WSClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("hub: read error from %s: %v", c.User, err)
			}
			break
		}

		var frame models.ClientFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			log.Printf("hub: dropping malformed frame from %s: %v", c.User, err)
			continue
		}

		c.Hub.IncomingCh <- Inbound{Client: c, Frame: frame}
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(frame)
			if err != nil {
				log.Printf("hub: encode error for %s: %v", c.User, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
