package convo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"stayhub/messenger/internal/convo"
	"stayhub/messenger/internal/models"
)

func pendingMessage(localID, content string) models.Message {
	return models.Message{
		LocalID:   localID,
		RoomID:    "room-1",
		SenderID:  "renter-1",
		Content:   content,
		CreatedAt: time.Now(),
		Pending:   true,
	}
}

func confirmedMessage(id, localID, content string) models.Message {
	return models.Message{
		ID:        id,
		LocalID:   localID,
		RoomID:    "room-1",
		SenderID:  "owner-1",
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// TestReconciliationIdentity verifies that an optimistic entry followed by
// its server echo yields exactly one confirmed entry with the server id.
func TestReconciliationIdentity(t *testing.T) {
	tl := convo.NewTimeline()

	tl.InsertOptimistic(pendingMessage("t2", "hello"))
	assert.Equal(t, 1, tl.Len())
	assert.True(t, tl.Snapshot()[0].Pending)

	changed := tl.ApplyConfirmed(confirmedMessage("42", "t2", "hello"))
	assert.True(t, changed)

	snap := tl.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, "42", snap[0].ID)
	assert.False(t, snap[0].Pending)
}

// TestNoDuplicationByID verifies repeated confirmed ids collapse to one
// entry.
func TestNoDuplicationByID(t *testing.T) {
	tl := convo.NewTimeline()

	assert.True(t, tl.ApplyConfirmed(confirmedMessage("42", "", "hi")))
	assert.False(t, tl.ApplyConfirmed(confirmedMessage("42", "", "hi")))
	assert.False(t, tl.ApplyConfirmed(confirmedMessage("42", "", "hi")))

	snap := tl.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, "42", snap[0].ID)
}

// TestRollbackRemovesPendingEntry covers the failed-send path: the
// optimistic entry disappears entirely.
func TestRollbackRemovesPendingEntry(t *testing.T) {
	tl := convo.NewTimeline()

	tl.InsertOptimistic(pendingMessage("t1", "Hello"))
	assert.Equal(t, 1, tl.Len())

	assert.True(t, tl.Rollback("t1"))
	assert.Equal(t, 0, tl.Len())

	// Rolling back twice, or a confirmed entry, is a no-op.
	assert.False(t, tl.Rollback("t1"))
	tl.ApplyConfirmed(confirmedMessage("7", "t7", "kept"))
	assert.False(t, tl.Rollback("t7"))
	assert.Equal(t, 1, tl.Len())
}

// TestConfirmKeepsPosition verifies the pending→confirmed transition
// happens in place rather than re-appending.
func TestConfirmKeepsPosition(t *testing.T) {
	tl := convo.NewTimeline()

	tl.ApplyConfirmed(confirmedMessage("1", "", "first"))
	tl.InsertOptimistic(pendingMessage("t5", "second"))
	tl.ApplyConfirmed(confirmedMessage("2", "", "third"))

	tl.ApplyConfirmed(confirmedMessage("3", "t5", "second"))

	snap := tl.Snapshot()
	assert.Len(t, snap, 3)
	assert.Equal(t, "3", snap[1].ID)
	assert.Equal(t, "second", snap[1].Content)
	assert.False(t, snap[1].Pending)
}

// TestInboundAppendsInArrivalOrder verifies the timeline never re-sorts by
// timestamp.
func TestInboundAppendsInArrivalOrder(t *testing.T) {
	tl := convo.NewTimeline()

	late := confirmedMessage("b", "", "arrived second")
	late.CreatedAt = time.Now().Add(-time.Hour)
	tl.ApplyConfirmed(confirmedMessage("a", "", "arrived first"))
	tl.ApplyConfirmed(late)

	snap := tl.Snapshot()
	assert.Equal(t, "a", snap[0].ID)
	assert.Equal(t, "b", snap[1].ID)
}

func TestSeedReplacesContent(t *testing.T) {
	tl := convo.NewTimeline()
	tl.InsertOptimistic(pendingMessage("t1", "stale"))

	tl.Seed([]models.Message{
		confirmedMessage("1", "", "old"),
		confirmedMessage("2", "", "older"),
	})

	snap := tl.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, "1", snap[0].ID)
	assert.False(t, snap[0].Pending)
}

func TestRollbackPending(t *testing.T) {
	tl := convo.NewTimeline()
	tl.ApplyConfirmed(confirmedMessage("1", "", "kept"))
	tl.InsertOptimistic(pendingMessage("t1", "dropped"))
	tl.InsertOptimistic(pendingMessage("t2", "dropped too"))

	tl.RollbackPending()

	snap := tl.Snapshot()
	assert.Len(t, snap, 1)
	assert.Equal(t, "1", snap[0].ID)
}
