package models

import "gorm.io/gorm"

// MessageRecord is a message as stored by the relay in PostgreSQL. The
// embedded gorm.Model provides the internal primary key and timestamps;
// MessageID is the identity clients see.
type MessageRecord struct {
	gorm.Model

	// MessageID is the server-assigned message identity (UUID).
	MessageID string `gorm:"type:uuid;uniqueIndex"`
	// LocalID is the sender's client-generated id, echoed back on the
	// confirmation frame so the sender can reconcile its optimistic entry.
	LocalID    string `gorm:"type:text;index"`
	RoomID     string `gorm:"type:uuid;not null;index:idx_room_msg"`
	SenderID   string `gorm:"type:text;not null;index:idx_room_msg"`
	ReceiverID string `gorm:"type:text"`
	Content    string `gorm:"type:text;not null"`
	Read       bool

	AttachmentName string
	AttachmentKind string
	AttachmentURL  string
}

// ToMessage converts the stored record into the wire/timeline shape.
func (r *MessageRecord) ToMessage() Message {
	msg := Message{
		ID:         r.MessageID,
		LocalID:    r.LocalID,
		RoomID:     r.RoomID,
		SenderID:   r.SenderID,
		ReceiverID: r.ReceiverID,
		Content:    r.Content,
		CreatedAt:  r.CreatedAt,
		Read:       r.Read,
	}
	if r.AttachmentURL != "" {
		msg.Attachment = &Attachment{
			Name: r.AttachmentName,
			Kind: r.AttachmentKind,
			URL:  r.AttachmentURL,
		}
	}
	return msg
}

// RecordFromMessage builds the storable record for a confirmed message.
func RecordFromMessage(msg Message) MessageRecord {
	rec := MessageRecord{
		MessageID:  msg.ID,
		LocalID:    msg.LocalID,
		RoomID:     msg.RoomID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		Read:       msg.Read,
	}
	if msg.Attachment != nil {
		rec.AttachmentName = msg.Attachment.Name
		rec.AttachmentKind = msg.Attachment.Kind
		rec.AttachmentURL = msg.Attachment.URL
	}
	return rec
}
