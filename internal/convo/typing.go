package convo

import (
	"sync"
	"time"
)

// TypingCoordinator debounces the local typing signal and tracks the remote
// party's typing state with a staleness timeout.
//
// Local side: the first keystroke transmits typing=true and arms an
// inactivity timer; every further keystroke re-arms the timer without
// re-transmitting; when the timer fires, typing=false is transmitted once.
//
// Remote side: a typing=true frame sets the indicator and arms a staleness
// timer at least as long as the sender's debounce; if no refreshing frame
// arrives in that window the indicator is cleared even when the explicit
// stop frame was lost. Frames carrying the local user's own id are ignored.
type TypingCoordinator struct {
	mu sync.Mutex

	localUserID string
	debounce    time.Duration
	staleness   time.Duration

	// send transmits a typing frame; notify reports remote state changes.
	send   func(typing bool)
	notify func(typing bool)

	localTyping      bool
	remoteTyping     bool
	lastRemoteSignal time.Time

	idleTimer  *time.Timer
	staleTimer *time.Timer
	stopped    bool
}

func NewTypingCoordinator(localUserID string, debounce, staleness time.Duration, send, notify func(bool)) *TypingCoordinator {
	return &TypingCoordinator{
		localUserID: localUserID,
		debounce:    debounce,
		staleness:   staleness,
		send:        send,
		notify:      notify,
	}
}

// SetLocalTyping records local input activity. Only the transition into the
// typing state transmits a frame; repeats merely re-arm the idle timer.
func (t *TypingCoordinator) SetLocalTyping(typing bool) {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}

	var transmit, send bool
	if typing {
		transmit = !t.localTyping
		send = true
		t.localTyping = true
		if t.idleTimer != nil {
			t.idleTimer.Stop()
		}
		t.idleTimer = time.AfterFunc(t.debounce, func() { t.SetLocalTyping(false) })
	} else if t.localTyping {
		t.localTyping = false
		if t.idleTimer != nil {
			t.idleTimer.Stop()
			t.idleTimer = nil
		}
		transmit = true
		send = false
	}
	t.mu.Unlock()

	if transmit {
		t.send(send)
	}
}

// HandleRemote applies an inbound typing_status frame.
func (t *TypingCoordinator) HandleRemote(userID string, typing bool) {
	if userID == t.localUserID {
		return // self-echo, never applied to the remote indicator
	}

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}

	changed := t.remoteTyping != typing
	t.remoteTyping = typing
	if typing {
		t.lastRemoteSignal = time.Now()
		if t.staleTimer != nil {
			t.staleTimer.Stop()
		}
		t.staleTimer = time.AfterFunc(t.staleness, t.expireRemote)
	} else if t.staleTimer != nil {
		t.staleTimer.Stop()
		t.staleTimer = nil
	}
	t.mu.Unlock()

	if changed {
		t.notify(typing)
	}
}

// expireRemote clears the remote indicator when no refresh arrived within
// the staleness window.
func (t *TypingCoordinator) expireRemote() {
	t.mu.Lock()
	if t.stopped || !t.remoteTyping || time.Since(t.lastRemoteSignal) < t.staleness {
		t.mu.Unlock()
		return
	}
	t.remoteTyping = false
	t.staleTimer = nil
	t.mu.Unlock()

	t.notify(false)
}

// RemoteTyping reports the current remote indicator state.
func (t *TypingCoordinator) RemoteTyping() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remoteTyping
}

// Stop cancels both timers and deactivates the coordinator. A coordinator
// belongs to one room binding; leaking an armed timer across a room switch
// would fire a typing frame into the wrong room.
func (t *TypingCoordinator) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	t.localTyping = false
	t.remoteTyping = false
	if t.idleTimer != nil {
		t.idleTimer.Stop()
		t.idleTimer = nil
	}
	if t.staleTimer != nil {
		t.staleTimer.Stop()
		t.staleTimer = nil
	}
}
