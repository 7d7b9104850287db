package models

import (
	"strings"
	"time"
)

// AttachmentKind classifies an attachment for preview purposes only.
// Anything that is not directly displayable is a generic document.
const (
	KindImage    = "image"
	KindDocument = "document"
)

// Attachment is a reference to a file included with a message. The file
// itself lives in external storage; only the reference travels on the wire.
type Attachment struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
	URL  string `json:"url"`
}

// KindForContentType maps a MIME content type to an AttachmentKind.
func KindForContentType(contentType string) string {
	if strings.HasPrefix(contentType, "image/") {
		return KindImage
	}
	return KindDocument
}

// Message is a single entry in a conversation timeline.
//
// A message created locally starts out Pending with only a LocalID; the
// relay assigns the server ID and echoes the LocalID back, at which point
// the entry is confirmed in place. A message received from the other
// participant arrives already confirmed.
type Message struct {
	// ID is the server-assigned identity. Empty until confirmed.
	ID string `json:"id,omitempty"`
	// LocalID is the client-generated identity, unique per outgoing
	// message and echoed back by the relay on confirmation.
	LocalID    string      `json:"localId,omitempty"`
	RoomID     string      `json:"roomId"`
	SenderID   string      `json:"senderId"`
	ReceiverID string      `json:"receiverId,omitempty"`
	Content    string      `json:"content"`
	CreatedAt  time.Time   `json:"createdAt"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Read       bool        `json:"read"`

	// Pending is client-side state, never serialized: true between the
	// optimistic insert and the relay's confirmation echo.
	Pending bool `json:"-"`
}
