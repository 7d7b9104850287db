package handler

import (
	"stayhub/messenger/internal/hub"
	"stayhub/messenger/internal/storage"
)

// Handler holds the relay's shared dependencies.
type Handler struct {
	Hub       *hub.Hub
	Storage   storage.Storage
	JWTSecret []byte
}

func NewHandler(h *hub.Hub, s storage.Storage, jwtSecret string) *Handler {
	return &Handler{Hub: h, Storage: s, JWTSecret: []byte(jwtSecret)}
}
