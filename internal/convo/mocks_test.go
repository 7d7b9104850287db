package convo_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"stayhub/messenger/internal/convo"
	"stayhub/messenger/internal/models"
)

// fakeConn is a scripted Conn: tests push inbound frames or read errors and
// inspect what the session wrote. Close does not unblock a pending read,
// which lets tests feed frames to a superseded connection and exercise the
// session's stale-frame guard.
type fakeConn struct {
	room string

	frames chan []byte
	errs   chan error

	mu       sync.Mutex
	writes   []models.ClientFrame
	writeErr error
	closed   bool
}

func newFakeConn(room string) *fakeConn {
	return &fakeConn{
		room:   room,
		frames: make(chan []byte, 16),
		errs:   make(chan error, 1),
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.frames:
		return data, nil
	case err := <-c.errs:
		return nil, err
	}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return c.writeErr
	}
	frame, ok := v.(models.ClientFrame)
	if !ok {
		return errors.New("unexpected frame type")
	}
	c.writes = append(c.writes, frame)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) written() []models.ClientFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ClientFrame, len(c.writes))
	copy(out, c.writes)
	return out
}

func (c *fakeConn) setWriteErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

func (c *fakeConn) deliver(frame models.ServerFrame) {
	data, _ := json.Marshal(frame)
	c.frames <- data
}

func (c *fakeConn) deliverRaw(data []byte) {
	c.frames <- data
}

func (c *fakeConn) failReads(err error) {
	c.errs <- err
}

// fakeDialer hands out fakeConns and remembers them for inspection.
type fakeDialer struct {
	mu      sync.Mutex
	dialErr error
	conns   []*fakeConn
}

func (d *fakeDialer) DialRoom(ctx context.Context, roomID string) (convo.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dialErr != nil {
		return nil, d.dialErr
	}
	c := newFakeConn(roomID)
	d.conns = append(d.conns, c)
	return c, nil
}

func (d *fakeDialer) conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

// notifyRecorder captures every callback emission for assertions.
type notifyRecorder struct {
	mu        sync.Mutex
	timelines [][]models.Message
	typing    []bool
	states    []convo.State
	errors    []error
}

func (r *notifyRecorder) notify() convo.Notify {
	return convo.Notify{
		TimelineChanged: func(snap []models.Message) {
			r.mu.Lock()
			r.timelines = append(r.timelines, snap)
			r.mu.Unlock()
		},
		TypingChanged: func(typing bool) {
			r.mu.Lock()
			r.typing = append(r.typing, typing)
			r.mu.Unlock()
		},
		StateChanged: func(state convo.State) {
			r.mu.Lock()
			r.states = append(r.states, state)
			r.mu.Unlock()
		},
		ErrorChanged: func(err error) {
			r.mu.Lock()
			r.errors = append(r.errors, err)
			r.mu.Unlock()
		},
	}
}

func (r *notifyRecorder) timelineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timelines)
}

func (r *notifyRecorder) lastTimeline() []models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.timelines) == 0 {
		return nil
	}
	return r.timelines[len(r.timelines)-1]
}

func (r *notifyRecorder) typingChanges() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]bool, len(r.typing))
	copy(out, r.typing)
	return out
}

func (r *notifyRecorder) lastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.errors) == 0 {
		return nil
	}
	return r.errors[len(r.errors)-1]
}
