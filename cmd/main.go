package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"stayhub/messenger/internal/config"
	"stayhub/messenger/internal/convo"
	"stayhub/messenger/internal/directory"
	"stayhub/messenger/internal/models"
)

// Terminal messenger client: binds a conversation session to a room and
// drives it from stdin. Lines are sent as messages; slash commands manage
// the room binding and attachment staging.
func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: messenger <user_id> <room_id|new:listing_id:receiver_id>")
		os.Exit(1)
	}
	userID := os.Args[1]
	roomArg := os.Args[2]

	cfg := config.Load()

	dir := directory.NewClient(cfg.APIBaseURL, cfg.AuthToken)
	if dir.Token == "" {
		if _, err := dir.IssueToken(userID); err != nil {
			log.Fatalf("failed to obtain token: %v", err)
		}
	}

	roomID, peerID, err := resolveRoom(dir, userID, roomArg)
	if err != nil {
		log.Fatalf("failed to resolve room: %v", err)
	}

	stager := convo.NewAttachmentStager(nil)
	session := convo.NewSession(
		&convo.WSDialer{BaseURL: cfg.RelayWSURL, Token: dir.Token},
		stager,
		convo.Notify{
			TimelineChanged: renderTimeline,
			TypingChanged: func(typing bool) {
				if typing {
					fmt.Println("... peer is typing")
				}
			},
			StateChanged: func(state convo.State) {
				fmt.Printf("-- connection %s\n", state)
			},
			ErrorChanged: func(err error) {
				fmt.Printf("!! %v\n", err)
			},
		},
	)

	if err := bindAndSeed(session, dir, roomID, userID, peerID); err != nil {
		log.Fatalf("failed to join room: %v", err)
	}
	defer session.Unbind()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case strings.HasPrefix(line, "/room "):
			newRoom := strings.TrimSpace(line[len("/room "):])
			newRoom, newPeer, err := resolveRoom(dir, userID, newRoom)
			if err != nil {
				fmt.Printf("!! %v\n", err)
				continue
			}
			if err := bindAndSeed(session, dir, newRoom, userID, newPeer); err != nil {
				fmt.Printf("!! %v\n", err)
			}
		case strings.HasPrefix(line, "/attach "):
			parts := strings.Fields(line[len("/attach "):])
			if len(parts) != 3 {
				fmt.Println("Usage: /attach <name> <content-type> <url>")
				continue
			}
			stager.Stage(parts[0], parts[1], parts[2])
			fmt.Printf("-- staged %s (%s)\n", parts[0], stager.Staged().Kind)
		default:
			// A line of input is the closest stdin gets to keystrokes.
			session.SetLocalTyping(true)
			if _, err := session.Send(line); err != nil {
				fmt.Printf("!! send failed: %v\n", err)
			}
			session.SetLocalTyping(false)
		}
	}
}

// resolveRoom turns the room argument into a bound room id and counterpart:
// either an existing room id, or "new:<listing>:<receiver>" to open one.
func resolveRoom(dir *directory.Client, userID, roomArg string) (string, string, error) {
	if strings.HasPrefix(roomArg, "new:") {
		parts := strings.SplitN(roomArg, ":", 3)
		if len(parts) != 3 {
			return "", "", fmt.Errorf("expected new:<listing_id>:<receiver_id>")
		}
		room, err := dir.CreateRoom(parts[1], userID, parts[2])
		if err != nil {
			return "", "", err
		}
		return room.RoomID, parts[2], nil
	}

	_, peerID, err := dir.Resolve(roomArg, userID)
	if err != nil {
		return "", "", err
	}
	return roomArg, peerID, nil
}

func bindAndSeed(session *convo.Session, dir *directory.Client, roomID, userID, peerID string) error {
	if err := session.Bind(context.Background(), roomID, userID, peerID); err != nil {
		return err
	}
	history, err := dir.History(roomID)
	if err != nil {
		return err
	}
	session.SeedHistory(history)
	return nil
}

func renderTimeline(timeline []models.Message) {
	fmt.Println("----")
	for _, msg := range timeline {
		marker := " "
		if msg.Pending {
			marker = "~"
		}
		line := fmt.Sprintf("%s [%s] %s: %s", marker, msg.CreatedAt.Format("15:04:05"), msg.SenderID, msg.Content)
		if msg.Attachment != nil {
			line += fmt.Sprintf(" (%s: %s)", msg.Attachment.Kind, msg.Attachment.Name)
		}
		fmt.Println(line)
	}
}
