package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHub_BroadcastReachesAllConnectionsOfOneUser(t *testing.T) {
	hub := NewUserHub()

	tab1 := hub.Register("alice", nil)
	tab2 := hub.Register("alice", nil)
	other := hub.Register("bob", nil)

	hub.Broadcast("alice", []byte("ping"))

	assert.Equal(t, []string{"ping"}, drain(tab1))
	assert.Equal(t, []string{"ping"}, drain(tab2))
	assert.Empty(t, drain(other))
}

func TestUserHub_BroadcastToOfflineUserIsNoop(t *testing.T) {
	hub := NewUserHub()
	assert.NotPanics(t, func() {
		hub.Broadcast("nobody", []byte("ping"))
	})
}

func TestUserHub_IsOnlineTracksLastConnection(t *testing.T) {
	hub := NewUserHub()

	tab1 := hub.Register("alice", nil)
	tab2 := hub.Register("alice", nil)
	assert.True(t, hub.IsOnline("alice"))

	hub.UnregisterClient(tab1)
	assert.True(t, hub.IsOnline("alice"))

	hub.UnregisterClient(tab2)
	assert.False(t, hub.IsOnline("alice"))
}

func TestUserHub_Shutdown(t *testing.T) {
	hub := NewUserHub()
	hub.Register("alice", nil)
	hub.Register("bob", nil)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.False(t, hub.IsOnline("alice"))
	assert.False(t, hub.IsOnline("bob"))
}
