// Package hub is the relay-side counterpart of the client conversation
// core: it tracks connected room clients, assigns server identities to
// incoming messages and fans confirmed frames back out, including the echo
// that confirms the sender's optimistic entry.
package hub

import (
	"encoding/json"
	"log"

	"stayhub/messenger/internal/models"
	"stayhub/messenger/internal/storage"
)

// Client is one connected participant, bound to a single room. It abstracts
// the underlying transport so the hub can be tested without websockets.
type Client interface {
	UserID() string
	RoomID() string
	// SendChannel is the channel the hub delivers outbound frames to.
	SendChannel() chan<- models.ServerFrame
	// Run starts the client's read and write pumps.
	Run()
	Close()
}

// Inbound pairs a client action frame with its origin.
type Inbound struct {
	Client Client
	Frame  models.ClientFrame
}

// Hub owns the client registry and the message flow. All registry mutation
// happens on the Run goroutine.
type Hub struct {
	Clients map[Client]struct{}

	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan Inbound
	PubSubCh     chan models.Message

	Storage storage.Storage
}

func NewHub(s storage.Storage) *Hub {
	return &Hub{
		Clients:      make(map[Client]struct{}),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan Inbound),
		PubSubCh:     make(chan models.Message),
		Storage:      s,
	}
}

// Run is the hub's dispatch loop.
func (h *Hub) Run() {
	h.startPubSubListener()

	for {
		select {
		case client := <-h.RegisterCh:
			h.Clients[client] = struct{}{}
			log.Printf("hub: user %s joined room %s", client.UserID(), client.RoomID())

		case client := <-h.UnregisterCh:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Close()
				log.Printf("hub: user %s left room %s", client.UserID(), client.RoomID())
			}

		case in := <-h.IncomingCh:
			h.handleIncoming(in)

		case msg := <-h.PubSubCh:
			h.fanoutMessage(msg)
		}
	}
}

// startPubSubListener bridges the Redis room channels into the Run loop so
// messages persisted by any relay instance reach this instance's clients.
func (h *Hub) startPubSubListener() {
	pubsub := h.Storage.SubscribeRooms()
	if pubsub == nil {
		return
	}

	go func() {
		defer pubsub.Close()
		for redisMsg := range pubsub.Channel() {
			var msg models.Message
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				log.Printf("hub: dropping bad pubsub payload: %v", err)
				continue
			}
			h.PubSubCh <- msg
		}
	}()
}

func (h *Hub) handleIncoming(in Inbound) {
	switch in.Frame.Action {
	case models.ActionMessage:
		msg := models.Message{
			LocalID:    in.Frame.LocalID,
			RoomID:     in.Client.RoomID(),
			SenderID:   in.Client.UserID(),
			ReceiverID: in.Frame.ReceiverID,
			Content:    in.Frame.Content,
			Attachment: in.Frame.Attachment,
		}
		// SaveMessage assigns the id and timestamp clients reconcile on.
		if err := h.Storage.SaveMessage(&msg); err != nil {
			return
		}
		if err := h.Storage.PublishMessage(msg.RoomID, msg); err != nil {
			log.Printf("hub: publish failed for room %s, falling back to local fanout: %v", msg.RoomID, err)
			h.fanoutMessage(msg)
		}

	case models.ActionTyping:
		// Typing is ephemeral: fanned out to the other participant on
		// this instance only, never persisted.
		frame := models.ServerFrame{
			Type:   models.TypeTypingStatus,
			UserID: in.Client.UserID(),
			Typing: in.Frame.Typing,
		}
		for client := range h.Clients {
			if client.RoomID() == in.Client.RoomID() && client.UserID() != in.Client.UserID() {
				h.deliver(client, frame)
			}
		}

	default:
		log.Printf("hub: dropping frame with unknown action %q from %s", in.Frame.Action, in.Client.UserID())
	}
}

// fanoutMessage delivers a confirmed message to every client in its room.
// The sender gets it too; that echo is what confirms their optimistic
// entry.
func (h *Hub) fanoutMessage(msg models.Message) {
	frame := models.ServerFrame{Type: models.TypeChatMessage, Message: &msg}
	for client := range h.Clients {
		if client.RoomID() == msg.RoomID {
			h.deliver(client, frame)
		}
	}
}

// deliver pushes a frame without blocking the dispatch loop; a client whose
// buffer is full is dropped.
func (h *Hub) deliver(client Client, frame models.ServerFrame) {
	select {
	case client.SendChannel() <- frame:
	default:
		delete(h.Clients, client)
		client.Close()
	}
}
