package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Room is a 1-on-1 conversation between two marketplace users about a
// listing. It holds the participants and the room's active status.
type Room struct {
	// RoomID is the unique identifier for the room (UUID).
	RoomID string `gorm:"primaryKey" json:"roomId"`
	// ListingID ties the conversation to the listing it started from.
	ListingID string `gorm:"index" json:"listingId,omitempty"`
	// Participants holds exactly two user ids.
	Participants pq.StringArray `gorm:"type:text[]" json:"participants"`
	// IsActive indicates whether the room accepts new messages.
	IsActive  bool      `json:"isActive"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt,omitempty"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID when the room is
// created without one.
func (r *Room) BeforeCreate(tx *gorm.DB) (err error) {
	if r.RoomID == "" {
		r.RoomID = uuid.New().String()
	}
	return
}

// Counterpart returns the other participant's id, or "" if userID is not a
// member of the room.
func (r *Room) Counterpart(userID string) string {
	if !r.HasParticipant(userID) {
		return ""
	}
	for _, p := range r.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

// HasParticipant reports whether userID is a member of the room.
func (r *Room) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
