package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"stayhub/messenger/internal/models"
)

// CreateRoom opens a conversation between two users about a listing,
// returning the existing active room when one is already open.
func (h *Handler) CreateRoom(c *gin.Context) {
	userID, ok := h.bearerUserID(c)
	if !ok {
		return
	}

	var req struct {
		ListingID  string `json:"listingId"`
		SenderID   string `json:"senderId" binding:"required"`
		ReceiverID string `json:"receiverId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "senderId and receiverId are required"})
		return
	}
	if req.SenderID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "senderId must match the authenticated user"})
		return
	}

	existing, err := h.Storage.FindRoomForListing(req.ListingID, req.SenderID, req.ReceiverID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up room"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusOK, existing)
		return
	}

	room := &models.Room{
		ListingID:    req.ListingID,
		Participants: pq.StringArray{req.SenderID, req.ReceiverID},
		IsActive:     true,
		StartedAt:    time.Now(),
	}
	if err := h.Storage.SaveRoom(room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// ListRooms returns the rooms the authenticated user participates in.
func (h *Handler) ListRooms(c *gin.Context) {
	userID, ok := h.bearerUserID(c)
	if !ok {
		return
	}
	if q := c.Query("user"); q != "" && q != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot list another user's rooms"})
		return
	}

	rooms, err := h.Storage.GetRoomsForUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}

	c.JSON(http.StatusOK, rooms)
}

// GetHistory returns a room's confirmed messages, oldest first, for the
// client's initial timeline seed.
func (h *Handler) GetHistory(c *gin.Context) {
	userID, ok := h.bearerUserID(c)
	if !ok {
		return
	}

	roomID := c.Param("id")
	room, err := h.Storage.GetRoomByID(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if !room.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this room"})
		return
	}

	history, err := h.Storage.GetHistory(roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	if history == nil {
		history = []models.Message{}
	}

	c.JSON(http.StatusOK, history)
}

// GetProfile returns display data for a user.
func (h *Handler) GetProfile(c *gin.Context) {
	if _, ok := h.bearerUserID(c); !ok {
		return
	}

	profile, err := h.Storage.GetProfileByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}

	c.JSON(http.StatusOK, profile)
}
