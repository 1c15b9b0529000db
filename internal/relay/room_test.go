package relay_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codedrop/server/internal/relay"
)

func newPeer() *relay.Client {
	return &relay.Client{
		ID:   uuid.New(),
		Send: make(chan *relay.Message, 16),
	}
}

func TestRegistry_Create(t *testing.T) {
	reg := relay.NewRegistry()
	sender := newPeer()

	room, err := reg.Create("1234", sender)
	require.NoError(t, err)
	require.NotNil(t, room)

	assert.Equal(t, "1234", room.Code)
	assert.Same(t, sender, room.Sender)
	assert.Nil(t, room.Receiver)
	assert.Nil(t, room.Metadata)
	assert.False(t, room.CreatedAt.IsZero())
	assert.Equal(t, 1, reg.Len())

	got, err := reg.Get("1234")
	require.NoError(t, err)
	assert.Same(t, room, got)
}

func TestRegistry_CreateDuplicate(t *testing.T) {
	reg := relay.NewRegistry()
	first := newPeer()

	original, err := reg.Create("4321", first)
	require.NoError(t, err)

	_, err = reg.Create("4321", newPeer())
	assert.ErrorIs(t, err, relay.ErrCodeTaken)

	// The live room must be untouched by the failed create.
	got, err := reg.Get("4321")
	require.NoError(t, err)
	assert.Same(t, original, got)
	assert.Same(t, first, got.Sender)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_GetMissing(t *testing.T) {
	reg := relay.NewRegistry()

	_, err := reg.Get("0000")
	assert.ErrorIs(t, err, relay.ErrRoomNotFound)
}

func TestRegistry_ByConnection(t *testing.T) {
	reg := relay.NewRegistry()
	sender := newPeer()
	receiver := newPeer()
	stranger := newPeer()

	room, err := reg.Create("5678", sender)
	require.NoError(t, err)
	reg.SetReceiver(room, receiver)

	got, err := reg.ByConnection(sender)
	require.NoError(t, err)
	assert.Same(t, room, got)

	got, err = reg.ByConnection(receiver)
	require.NoError(t, err)
	assert.Same(t, room, got)

	_, err = reg.ByConnection(stranger)
	assert.ErrorIs(t, err, relay.ErrRoomNotFound)
}

func TestRegistry_RemoveClearsIndex(t *testing.T) {
	reg := relay.NewRegistry()
	sender := newPeer()
	receiver := newPeer()

	room, err := reg.Create("9012", sender)
	require.NoError(t, err)
	reg.SetReceiver(room, receiver)

	reg.Remove(room)

	assert.Equal(t, 0, reg.Len())
	_, err = reg.Get("9012")
	assert.ErrorIs(t, err, relay.ErrRoomNotFound)
	_, err = reg.ByConnection(sender)
	assert.ErrorIs(t, err, relay.ErrRoomNotFound)
	_, err = reg.ByConnection(receiver)
	assert.ErrorIs(t, err, relay.ErrRoomNotFound)

	// The code is free for reuse once the room is gone.
	_, err = reg.Create("9012", newPeer())
	assert.NoError(t, err)
}
