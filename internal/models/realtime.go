package models

// Client frame actions and server frame types for the room channel.
const (
	ActionMessage = "message"
	ActionTyping  = "typing"

	TypeChatMessage  = "chat_message"
	TypeTypingStatus = "typing_status"
)

// ClientFrame is a frame sent by a client over the room channel. The set of
// meaningful fields depends on Action: "message" carries content, receiver,
// localId and an optional attachment; "typing" carries the typing flag and
// the receiver.
type ClientFrame struct {
	Action     string      `json:"action"`
	Content    string      `json:"content,omitempty"`
	ReceiverID string      `json:"receiverId,omitempty"`
	LocalID    string      `json:"localId,omitempty"`
	Typing     bool        `json:"typing"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// ServerFrame is a frame delivered by the relay over the room channel.
// "chat_message" carries a confirmed Message; "typing_status" carries the
// originating user id and their typing flag.
type ServerFrame struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
	UserID  string   `json:"user_id,omitempty"`
	Typing  bool     `json:"typing"`
}
