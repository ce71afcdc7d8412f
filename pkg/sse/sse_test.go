package sse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Message{}
}

func TestBroadcastAndSendToUser(t *testing.T) {
	m := NewManager()
	go m.Run()
	defer m.Stop()

	alice, cancelAlice := m.Subscribe("alice")
	defer cancelAlice()
	bob, cancelBob := m.Subscribe("bob")
	defer cancelBob()

	m.Broadcast("todos_rolled_over", map[string]int{"moved": 2})
	assert.Equal(t, "todos_rolled_over", next(t, alice).Type)
	assert.Equal(t, "todos_rolled_over", next(t, bob).Type)

	m.SendToUser("bob", "follow_up_due", "lead-1")
	msg := next(t, bob)
	assert.Equal(t, "follow_up_due", msg.Type)
	assert.Equal(t, "lead-1", msg.Payload)

	select {
	case msg := <-alice:
		t.Fatalf("alice received %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	m := NewManager()
	go m.Run()
	defer m.Stop()

	ch, cancel := m.Subscribe("alice")
	assert.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	_, ok := <-ch
	assert.False(t, ok)
	assert.Eventually(t, func() bool { return m.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestStopDisconnectsClients(t *testing.T) {
	m := NewManager()
	go m.Run()

	ch, cancel := m.Subscribe("alice")
	m.Stop()

	_, ok := <-ch
	assert.False(t, ok)
	cancel()
	m.Broadcast("ignored", nil)
}
