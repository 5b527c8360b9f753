package realtime

import (
	"context"
	"regexp"
	"testing"

	"github.com/md2004sameer/Wire/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain reads every currently buffered message from the client.
func drain(c *Client) []string {
	var out []string
	for {
		select {
		case msg := <-c.Send:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestRoomHub_CreateRoomGeneratesFourDigitIDs(t *testing.T) {
	hub := NewRoomHub()
	pattern := regexp.MustCompile(`^\d{4}$`)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id := hub.CreateRoom()
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	// Fresh ids are not reserved until someone joins, so duplicates are
	// possible across calls; we only assert the format here.
	assert.NotEmpty(t, seen)
}

func TestRoomHub_JoinRequiresUsername(t *testing.T) {
	hub := NewRoomHub()
	c := NewClient(hub, nil, "")

	err := hub.Join("1234", "", c)
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeMissingUsername, appErr.Code)
	assert.Equal(t, 0, hub.RoomSize("1234"))
}

func TestRoomHub_JoinNotifiesExistingMembersOnly(t *testing.T) {
	hub := NewRoomHub()

	alice := NewClient(hub, nil, "alice")
	require.NoError(t, hub.Join("4242", "alice", alice))

	bob := NewClient(hub, nil, "bob")
	require.NoError(t, hub.Join("4242", "bob", bob))

	assert.Equal(t, []string{SystemNoticePrefix + "bob joined the room"}, drain(alice))
	assert.Empty(t, drain(bob), "joining member must not receive its own join notice")
	assert.Equal(t, 2, hub.RoomSize("4242"))
}

func TestRoomHub_BroadcastSkipsSender(t *testing.T) {
	hub := NewRoomHub()

	alice := NewClient(hub, nil, "alice")
	bob := NewClient(hub, nil, "bob")
	carol := NewClient(hub, nil, "carol")
	require.NoError(t, hub.Join("9000", "alice", alice))
	require.NoError(t, hub.Join("9000", "bob", bob))
	require.NoError(t, hub.Join("9000", "carol", carol))
	drain(alice)
	drain(bob)
	drain(carol)

	hub.Broadcast("9000", []byte("hello"), alice)

	assert.Empty(t, drain(alice))
	assert.Equal(t, []string{"hello"}, drain(bob))
	assert.Equal(t, []string{"hello"}, drain(carol))
}

func TestRoomHub_MessagesArriveInOrder(t *testing.T) {
	hub := NewRoomHub()

	alice := NewClient(hub, nil, "alice")
	bob := NewClient(hub, nil, "bob")
	require.NoError(t, hub.Join("7777", "alice", alice))
	require.NoError(t, hub.Join("7777", "bob", bob))
	drain(alice)

	hub.Broadcast("7777", []byte("one"), bob)
	hub.Broadcast("7777", []byte("two"), bob)
	hub.Broadcast("7777", []byte("three"), bob)

	assert.Equal(t, []string{"one", "two", "three"}, drain(alice))
}

func TestRoomHub_LeaveNotifiesRemainingMembers(t *testing.T) {
	hub := NewRoomHub()

	alice := NewClient(hub, nil, "alice")
	bob := NewClient(hub, nil, "bob")
	require.NoError(t, hub.Join("3131", "alice", alice))
	require.NoError(t, hub.Join("3131", "bob", bob))
	drain(alice)

	hub.Leave("3131", "bob", bob)

	assert.Equal(t, []string{SystemNoticePrefix + "bob left the room"}, drain(alice))
	assert.Equal(t, 1, hub.RoomSize("3131"))
}

func TestRoomHub_EmptyRoomIsGarbageCollected(t *testing.T) {
	hub := NewRoomHub()

	alice := NewClient(hub, nil, "alice")
	require.NoError(t, hub.Join("5555", "alice", alice))
	hub.Leave("5555", "alice", alice)

	assert.Equal(t, 0, hub.RoomSize("5555"))

	// Rejoining the same id works like a brand-new room: no stale
	// members, no notices from the previous life.
	again := NewClient(hub, nil, "alice")
	require.NoError(t, hub.Join("5555", "alice", again))
	assert.Empty(t, drain(again))
	assert.Equal(t, 1, hub.RoomSize("5555"))
}

func TestRoomHub_LeaveIsDefensive(t *testing.T) {
	hub := NewRoomHub()

	alice := NewClient(hub, nil, "alice")
	require.NoError(t, hub.Join("6100", "alice", alice))

	stranger := NewClient(hub, nil, "bob")
	hub.Leave("6100", "bob", stranger) // never joined
	hub.Leave("no-such-room", "alice", alice)

	assert.Equal(t, 1, hub.RoomSize("6100"))
}

func TestRoomHub_SameUsernameTwoConnections(t *testing.T) {
	hub := NewRoomHub()

	first := NewClient(hub, nil, "alice")
	second := NewClient(hub, nil, "alice")
	require.NoError(t, hub.Join("2020", "alice", first))
	require.NoError(t, hub.Join("2020", "alice", second))
	assert.Equal(t, 2, hub.RoomSize("2020"))

	// Leaving with one connection must remove exactly that pair.
	hub.Leave("2020", "alice", first)
	assert.Equal(t, 1, hub.RoomSize("2020"))
}

func TestRoomHub_UnregisterClientCleansUpRoom(t *testing.T) {
	hub := NewRoomHub()

	alice := NewClient(hub, nil, "alice")
	bob := NewClient(hub, nil, "bob")
	require.NoError(t, hub.Join("8800", "alice", alice))
	require.NoError(t, hub.Join("8800", "bob", bob))
	drain(alice)

	// Simulates an abnormal disconnect: ReadPump calls UnregisterClient
	// without an explicit leave.
	hub.UnregisterClient(bob)

	assert.Equal(t, 1, hub.RoomSize("8800"))
	assert.Equal(t, []string{SystemNoticePrefix + "bob left the room"}, drain(alice))

	// Unknown clients are ignored.
	hub.UnregisterClient(NewClient(hub, nil, "ghost"))
}

func TestRoomHub_Shutdown(t *testing.T) {
	hub := NewRoomHub()

	alice := NewClient(hub, nil, "alice")
	require.NoError(t, hub.Join("1111", "alice", alice))

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.Equal(t, 0, hub.RoomSize("1111"))
}
