package hub_test

import (
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"

	"stayhub/messenger/internal/models"
)

type mockClient struct {
	user string
	room string
	Recv chan models.ServerFrame
}

func newMockClient(user, room string) *mockClient {
	return &mockClient{
		user: user,
		room: room,
		Recv: make(chan models.ServerFrame, 10),
	}
}

func (c *mockClient) UserID() string                         { return c.user }
func (c *mockClient) RoomID() string                         { return c.room }
func (c *mockClient) SendChannel() chan<- models.ServerFrame { return c.Recv }
func (c *mockClient) Run()                                   {}
func (c *mockClient) Close()                                 {}

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) SaveRoom(room *models.Room) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *mockStorage) CloseRoom(roomID string) error {
	args := m.Called(roomID)
	return args.Error(0)
}

func (m *mockStorage) GetRoomByID(roomID string) (*models.Room, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *mockStorage) GetRoomsForUser(userID string) ([]models.Room, error) {
	args := m.Called(userID)
	return args.Get(0).([]models.Room), args.Error(1)
}

func (m *mockStorage) FindRoomForListing(listingID, userA, userB string) (*models.Room, error) {
	args := m.Called(listingID, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Room), args.Error(1)
}

func (m *mockStorage) SaveMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *mockStorage) GetHistory(roomID string) ([]models.Message, error) {
	args := m.Called(roomID)
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *mockStorage) SaveProfile(profile *models.Profile) error {
	args := m.Called(profile)
	return args.Error(0)
}

func (m *mockStorage) GetProfileByID(id string) (*models.Profile, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *mockStorage) PublishMessage(roomID string, msg models.Message) error {
	args := m.Called(roomID, msg)
	return args.Error(0)
}

func (m *mockStorage) SubscribeRooms() *redis.PubSub {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.PubSub)
}
