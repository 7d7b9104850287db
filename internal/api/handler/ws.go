package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"stayhub/messenger/internal/hub"
	"stayhub/messenger/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and registers the caller as a
// client of the room named in the query string. One websocket serves
// exactly one room; switching rooms means a new connection.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	userID, ok := h.bearerUserID(c)
	if !ok {
		return
	}

	roomID := c.Query("room")
	if roomID == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "room query parameter required"})
		return
	}

	room, err := h.Storage.GetRoomByID(roomID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if !room.HasParticipant(userID) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not a participant of this room"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
		return
	}

	client := &hub.WSClient{
		User: userID,
		Room: roomID,
		Conn: conn,
		Hub:  h.Hub,
		Send: make(chan models.ServerFrame, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
