package convo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"stayhub/messenger/internal/config"
	"stayhub/messenger/internal/models"
)

// State is the connection lifecycle state of a session.
type State string

const (
	StateClosed     State = "closed"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosing    State = "closing"
)

// Notify is the subscribe surface for the presentation layer. All callbacks
// are optional and are invoked outside the session's internal locks.
type Notify struct {
	TimelineChanged func([]models.Message)
	TypingChanged   func(bool)
	StateChanged    func(State)
	ErrorChanged    func(error)
}

// Session owns one live connection bound to exactly one room at a time and
// routes all outbound and inbound conversation traffic. Switching rooms
// tears the previous binding fully down (connection, timers, pending
// entries) before the new one opens, so frames from an old room can never
// reach the new room's timeline.
type Session struct {
	dialer Dialer
	notify Notify

	debounce  time.Duration
	staleness time.Duration

	mu          sync.Mutex
	state       State
	roomID      string
	localUserID string
	peerID      string
	conn        Conn
	// gen identifies the current binding; pumps and late frames carrying
	// an older generation are discarded.
	gen      uint64
	timeline *Timeline
	typing   *TypingCoordinator
	stager   *AttachmentStager
	lastErr  error
}

// NewSession creates an unbound session. A nil stager gets a default one
// with no probe.
func NewSession(dialer Dialer, stager *AttachmentStager, notify Notify) *Session {
	if stager == nil {
		stager = NewAttachmentStager(nil)
	}
	return &Session{
		dialer:    dialer,
		notify:    notify,
		debounce:  config.TypingDebounce,
		staleness: config.TypingStaleness,
		state:     StateClosed,
		timeline:  NewTimeline(),
		stager:    stager,
	}
}

// SetTypingWindows overrides the typing debounce and staleness durations.
// Must be called before Bind.
func (s *Session) SetTypingWindows(debounce, staleness time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debounce = debounce
	s.staleness = staleness
}

// Bind connects the session to a room. Idempotent when already bound to the
// same room; otherwise the previous binding is torn down first, then the
// new connection is dialed. A dial failure leaves the session closed with
// ErrUnavailable.
func (s *Session) Bind(ctx context.Context, roomID, localUserID, peerID string) error {
	s.mu.Lock()
	if roomID == s.roomID && (s.state == StateOpen || s.state == StateConnecting) {
		s.mu.Unlock()
		return nil
	}
	s.teardownLocked()

	s.roomID = roomID
	s.localUserID = localUserID
	s.peerID = peerID
	s.timeline = NewTimeline()
	s.typing = NewTypingCoordinator(localUserID, s.debounce, s.staleness,
		s.transmitTyping, s.emitTyping)
	s.lastErr = nil
	s.state = StateConnecting
	gen := s.gen
	s.mu.Unlock()
	s.emitState(StateConnecting)

	conn, err := s.dialer.DialRoom(ctx, roomID)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return nil // superseded by a newer bind
	}
	if err != nil {
		s.state = StateClosed
		s.lastErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
		lastErr := s.lastErr
		s.mu.Unlock()
		s.emitState(StateClosed)
		s.emitError(lastErr)
		return lastErr
	}
	s.conn = conn
	s.state = StateOpen
	s.mu.Unlock()
	s.emitState(StateOpen)

	go s.readPump(conn, roomID, gen)
	return nil
}

// Unbind tears the current binding down. The session emits no error: the
// closure was requested locally.
func (s *Session) Unbind() {
	s.mu.Lock()
	if s.roomID == "" && s.conn == nil {
		s.mu.Unlock()
		return
	}
	s.teardownLocked()
	s.roomID = ""
	s.peerID = ""
	s.mu.Unlock()
	s.emitState(StateClosed)
}

// teardownLocked closes the current connection, cancels the binding's
// timers and rolls back still-pending entries. Bumping gen invalidates the
// old read pump and any frame it may still deliver.
func (s *Session) teardownLocked() {
	if s.typing != nil {
		s.typing.Stop()
	}
	if s.timeline != nil {
		s.timeline.RollbackPending()
	}
	s.gen++
	if s.conn != nil {
		s.state = StateClosing
		s.conn.Close()
		s.conn = nil
	}
	s.state = StateClosed
}

// SeedHistory loads REST-fetched history into the timeline, typically right
// after Bind and before live frames flow.
func (s *Session) SeedHistory(history []models.Message) {
	s.mu.Lock()
	s.timeline.Seed(history)
	snap := s.timeline.Snapshot()
	s.mu.Unlock()
	s.emitTimeline(snap)
}

// Send creates an optimistic timeline entry and transmits the message
// frame. The optimistic entry is observable before any network round trip;
// if the channel is not open, or the write fails, the entry is rolled back
// and ErrNotConnected is returned.
func (s *Session) Send(content string) (models.Message, error) {
	att, err := s.stager.Take()
	if err != nil {
		s.setError(err)
		return models.Message{}, err
	}

	s.mu.Lock()
	if s.roomID == "" {
		s.mu.Unlock()
		s.setError(ErrNotConnected)
		return models.Message{}, ErrNotConnected
	}

	msg := models.Message{
		LocalID:    uuid.New().String(),
		RoomID:     s.roomID,
		SenderID:   s.localUserID,
		ReceiverID: s.peerID,
		Content:    content,
		CreatedAt:  time.Now(),
		Attachment: att,
		Pending:    true,
	}
	s.timeline.InsertOptimistic(msg)
	optimistic := s.timeline.Snapshot()

	if s.state != StateOpen || s.conn == nil {
		s.timeline.Rollback(msg.LocalID)
		rolledBack := s.timeline.Snapshot()
		s.lastErr = ErrNotConnected
		s.mu.Unlock()
		s.emitTimeline(optimistic)
		s.emitTimeline(rolledBack)
		s.emitError(ErrNotConnected)
		return models.Message{}, ErrNotConnected
	}
	conn := s.conn
	gen := s.gen
	s.mu.Unlock()
	s.emitTimeline(optimistic)

	frame := models.ClientFrame{
		Action:     models.ActionMessage,
		Content:    content,
		ReceiverID: msg.ReceiverID,
		LocalID:    msg.LocalID,
		Attachment: att,
	}
	if err := conn.WriteJSON(frame); err != nil {
		s.mu.Lock()
		if gen == s.gen {
			s.timeline.Rollback(msg.LocalID)
			rolledBack := s.timeline.Snapshot()
			s.lastErr = ErrNotConnected
			s.mu.Unlock()
			s.emitTimeline(rolledBack)
			s.emitError(ErrNotConnected)
		} else {
			s.mu.Unlock()
		}
		return models.Message{}, ErrNotConnected
	}
	return msg, nil
}

// SetLocalTyping forwards local input activity to the typing coordinator.
func (s *Session) SetLocalTyping(typing bool) {
	s.mu.Lock()
	t := s.typing
	s.mu.Unlock()
	if t != nil {
		t.SetLocalTyping(typing)
	}
}

// transmitTyping sends a typing frame. Best effort: typing signals are
// advisory and a failed write is only logged.
func (s *Session) transmitTyping(typing bool) {
	s.mu.Lock()
	conn := s.conn
	peer := s.peerID
	open := s.state == StateOpen
	s.mu.Unlock()
	if !open || conn == nil {
		return
	}

	frame := models.ClientFrame{
		Action:     models.ActionTyping,
		Typing:     typing,
		ReceiverID: peer,
	}
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("convo: typing frame not sent: %v", err)
	}
}

func (s *Session) readPump(conn Conn, roomID string, gen uint64) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			s.handleClosed(gen, err)
			return
		}
		s.handleFrame(roomID, gen, data)
	}
}

// handleFrame dispatches one inbound frame. Frames from a superseded
// binding or tagged with a different room are discarded; malformed frames
// are dropped and logged, never fatal.
func (s *Session) handleFrame(roomID string, gen uint64, data []byte) {
	var frame models.ServerFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("convo: dropping malformed frame: %v", err)
		return
	}

	s.mu.Lock()
	if gen != s.gen || roomID != s.roomID {
		s.mu.Unlock()
		return
	}

	switch frame.Type {
	case models.TypeChatMessage:
		if frame.Message == nil {
			s.mu.Unlock()
			log.Printf("convo: dropping chat_message frame without a message body")
			return
		}
		msg := *frame.Message
		if msg.RoomID == "" {
			msg.RoomID = roomID
		}
		if msg.RoomID != roomID {
			s.mu.Unlock()
			return
		}
		changed := s.timeline.ApplyConfirmed(msg)
		snap := s.timeline.Snapshot()
		s.mu.Unlock()
		if changed {
			s.emitTimeline(snap)
		}
	case models.TypeTypingStatus:
		typing := s.typing
		s.mu.Unlock()
		typing.HandleRemote(frame.UserID, frame.Typing)
	default:
		s.mu.Unlock()
		log.Printf("convo: dropping frame with unknown type %q", frame.Type)
	}
}

// handleClosed runs when the read pump exits. A locally-requested close
// bumped gen first and is silent; anything else is an unexpected loss,
// surfaced once to the user with no automatic reconnect.
func (s *Session) handleClosed(gen uint64, err error) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	if s.typing != nil {
		s.typing.Stop()
	}
	s.conn = nil
	s.gen++
	s.state = StateClosed
	s.lastErr = ErrConnectionLost
	s.mu.Unlock()

	log.Printf("convo: connection to room lost: %v", err)
	s.emitState(StateClosed)
	s.emitError(ErrConnectionLost)
}

// Timeline returns a rendering copy of the current timeline.
func (s *Session) Timeline() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.Snapshot()
}

// RemoteTyping reports whether the counterpart is currently typing.
func (s *Session) RemoteTyping() bool {
	s.mu.Lock()
	t := s.typing
	s.mu.Unlock()
	return t != nil && t.RemoteTyping()
}

// Stager returns the session's attachment stager.
func (s *Session) Stager() *AttachmentStager { return s.stager }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// LastError returns the most recent surfaced error condition, or nil.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Session) setError(err error) {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.emitError(err)
}

func (s *Session) emitTimeline(snap []models.Message) {
	if s.notify.TimelineChanged != nil {
		s.notify.TimelineChanged(snap)
	}
}

func (s *Session) emitTyping(typing bool) {
	if s.notify.TypingChanged != nil {
		s.notify.TypingChanged(typing)
	}
}

func (s *Session) emitState(state State) {
	if s.notify.StateChanged != nil {
		s.notify.StateChanged(state)
	}
}

func (s *Session) emitError(err error) {
	if s.notify.ErrorChanged != nil {
		s.notify.ErrorChanged(err)
	}
}
