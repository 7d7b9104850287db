// Package directory resolves rooms, history and counterpart profiles over
// the marketplace REST API. It is the collaborator boundary of the
// conversation core: everything here is plain request/response, no live
// state.
package directory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"stayhub/messenger/internal/models"
)

// Client talks to the messaging REST endpoints with a bearer token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) doRequest(method, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequest(method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return nil, fmt.Errorf("directory: %d %s", resp.StatusCode, errResp.Error)
	}

	return respBody, nil
}

// IssueToken obtains a bearer token for userID and stores it on the client
// for subsequent calls.
func (c *Client) IssueToken(userID string) (string, error) {
	body, _ := json.Marshal(map[string]string{"userId": userID})
	respBody, err := c.doRequest("POST", "/token", body)
	if err != nil {
		return "", err
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", err
	}
	c.Token = resp.Token
	return resp.Token, nil
}

// ListRooms returns the rooms userID participates in.
func (c *Client) ListRooms(userID string) ([]models.Room, error) {
	respBody, err := c.doRequest("GET", "/rooms?user="+userID, nil)
	if err != nil {
		return nil, err
	}

	var rooms []models.Room
	if err := json.Unmarshal(respBody, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// History fetches the confirmed message history for a room, oldest first,
// shaped for Timeline.Seed.
func (c *Client) History(roomID string) ([]models.Message, error) {
	respBody, err := c.doRequest("GET", "/rooms/"+roomID+"/messages", nil)
	if err != nil {
		return nil, err
	}

	var history []models.Message
	if err := json.Unmarshal(respBody, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// CreateRoomRequest is the body for opening a conversation about a listing.
type CreateRoomRequest struct {
	ListingID  string `json:"listingId"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
}

// CreateRoom opens (or returns the existing) room between two users for a
// listing.
func (c *Client) CreateRoom(listingID, senderID, receiverID string) (*models.Room, error) {
	body, _ := json.Marshal(CreateRoomRequest{
		ListingID:  listingID,
		SenderID:   senderID,
		ReceiverID: receiverID,
	})

	respBody, err := c.doRequest("POST", "/rooms", body)
	if err != nil {
		return nil, err
	}

	var room models.Room
	if err := json.Unmarshal(respBody, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// GetProfile fetches display data for a user, used only for presentation.
func (c *Client) GetProfile(userID string) (*models.Profile, error) {
	respBody, err := c.doRequest("GET", "/users/"+userID, nil)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	if err := json.Unmarshal(respBody, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Resolve returns the room and the counterpart id for userID, the two
// values a Session.Bind needs.
func (c *Client) Resolve(roomID, userID string) (*models.Room, string, error) {
	rooms, err := c.ListRooms(userID)
	if err != nil {
		return nil, "", err
	}
	for i := range rooms {
		if rooms[i].RoomID == roomID {
			return &rooms[i], rooms[i].Counterpart(userID), nil
		}
	}
	return nil, "", fmt.Errorf("directory: room %s not found for user %s", roomID, userID)
}
