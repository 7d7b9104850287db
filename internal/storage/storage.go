package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stayhub/messenger/internal/models"
)

// Storage is the relay's persistence boundary: rooms, message history and
// profiles in PostgreSQL, cross-instance message fan-out over Redis.
type Storage interface {
	SaveRoom(room *models.Room) error
	CloseRoom(roomID string) error
	GetRoomByID(roomID string) (*models.Room, error)
	GetRoomsForUser(userID string) ([]models.Room, error)
	FindRoomForListing(listingID, userA, userB string) (*models.Room, error)

	SaveMessage(msg *models.Message) error
	GetHistory(roomID string) ([]models.Message, error)

	SaveProfile(profile *models.Profile) error
	GetProfileByID(id string) (*models.Profile, error)

	PublishMessage(roomID string, msg models.Message) error
	SubscribeRooms() *redis.PubSub
}

// Service implements Storage on gorm + go-redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

func NewService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

func (s *Service) SaveRoom(room *models.Room) error {
	return s.DB.Save(room).Error
}

// CloseRoom deactivates a room and stamps its end time.
func (s *Service) CloseRoom(roomID string) error {
	return s.DB.Model(&models.Room{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"is_active": false,
			"ended_at":  gorm.Expr("NOW()"),
		}).Error
}

func (s *Service) GetRoomByID(roomID string) (*models.Room, error) {
	var room models.Room
	err := s.DB.Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("room not found")
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %s: %v", roomID, err)
		return nil, err
	}
	return &room, nil
}

// GetRoomsForUser lists the rooms a user participates in, most recent
// first.
func (s *Service) GetRoomsForUser(userID string) ([]models.Room, error) {
	var rooms []models.Room
	err := s.DB.Where("? = ANY(participants)", userID).
		Order("started_at desc").
		Find(&rooms).Error
	if err != nil {
		log.Printf("ERROR: Failed to list rooms for user %s: %v", userID, err)
		return nil, err
	}
	return rooms, nil
}

// FindRoomForListing returns the existing active room between two users for
// a listing, or nil when none exists.
func (s *Service) FindRoomForListing(listingID, userA, userB string) (*models.Room, error) {
	var room models.Room
	err := s.DB.Where("listing_id = ? AND is_active = ?", listingID, true).
		Where("? = ANY(participants)", userA).
		Where("? = ANY(participants)", userB).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// SaveMessage persists a message, assigning the server identity and
// creation time that the confirmation frame echoes back to clients.
func (s *Service) SaveMessage(msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	record := models.RecordFromMessage(*msg)
	record.CreatedAt = msg.CreatedAt
	if err := s.DB.Create(&record).Error; err != nil {
		log.Printf("ERROR: Failed to save message for room %s: %v", msg.RoomID, err)
		return err
	}
	return nil
}

// GetHistory loads a room's messages in creation order.
func (s *Service) GetHistory(roomID string) ([]models.Message, error) {
	var records []models.MessageRecord
	err := s.DB.Where("room_id = ?", roomID).Order("created_at asc").Find(&records).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("ERROR: Failed to get history for room %s: %v", roomID, err)
		return nil, err
	}

	history := make([]models.Message, 0, len(records))
	for i := range records {
		history = append(history, records[i].ToMessage())
	}
	return history, nil
}

func (s *Service) SaveProfile(profile *models.Profile) error {
	return s.DB.Save(profile).Error
}

func (s *Service) GetProfileByID(id string) (*models.Profile, error) {
	var profile models.Profile
	err := s.DB.Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("profile not found")
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// PublishMessage puts a confirmed message on the room's Redis channel so
// every relay instance can fan it out to its connected clients.
func (s *Service) PublishMessage(roomID string, msg models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, "room:"+roomID, payload).Err()
}

// SubscribeRooms subscribes to every room channel.
func (s *Service) SubscribeRooms() *redis.PubSub {
	return s.Redis.PSubscribe(s.Ctx, "room:*")
}
