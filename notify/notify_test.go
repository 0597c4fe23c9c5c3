package notify_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/notify"
	"github.com/warp/shift-engine/schedule"
	"github.com/warp/shift-engine/schedule/store"
)

// recordingSink captures sends; fail makes every delivery error.
type recordingSink struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (s *recordingSink) Send(_ context.Context, handle, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("chat service unavailable")
	}
	s.sent = append(s.sent, handle+": "+text)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func member(id schedule.StaffID, handle string) *schedule.Staff {
	return &schedule.Staff{ID: id, Username: "m", FullName: "Member", ChatHandle: handle}
}

func TestDispatcherDeliversAndLogs(t *testing.T) {
	sink := &recordingSink{}
	mem := store.NewMemory()
	d := notify.NewDispatcher(sink, mem, zerolog.Nop(), "slack")

	d.Notify(member(7, "U123"), notify.KindShiftAssigned, "you picked up a shift")
	d.Wait()

	assert.Equal(t, 1, sink.count())
	entries := mem.Notifications()
	require.Len(t, entries, 1)
	assert.Equal(t, schedule.StaffID(7), entries[0].StaffID)
	assert.Equal(t, notify.KindShiftAssigned, entries[0].Kind)
	assert.Equal(t, "slack", entries[0].SentVia)
}

func TestDispatcherSkipsMembersWithoutHandle(t *testing.T) {
	sink := &recordingSink{}
	mem := store.NewMemory()
	d := notify.NewDispatcher(sink, mem, zerolog.Nop(), "slack")

	d.Notify(member(7, ""), notify.KindShiftAssigned, "unreachable")
	d.Notify(nil, notify.KindShiftAssigned, "nobody")
	d.Wait()

	assert.Zero(t, sink.count())
	assert.Empty(t, mem.Notifications())
}

func TestDispatcherDropsFailedDeliveries(t *testing.T) {
	sink := &recordingSink{fail: true}
	mem := store.NewMemory()
	d := notify.NewDispatcher(sink, mem, zerolog.Nop(), "slack")

	d.Notify(member(7, "U123"), notify.KindShiftAssigned, "never arrives")
	d.Wait()

	assert.Empty(t, mem.Notifications(), "failed sends are not logged")
}

func TestNotifyAllFansOut(t *testing.T) {
	sink := &recordingSink{}
	mem := store.NewMemory()
	d := notify.NewDispatcher(sink, mem, zerolog.Nop(), "slack")

	admins := []schedule.Staff{
		{ID: 1, ChatHandle: "U1"},
		{ID: 2, ChatHandle: "U2"},
		{ID: 3}, // no handle
	}
	d.NotifyAll(admins, notify.KindRequestReceived, "new request")
	d.Wait()

	assert.Equal(t, 2, sink.count())
	assert.Len(t, mem.Notifications(), 2)
}
