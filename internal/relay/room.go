package relay

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Registry errors.
var (
	ErrCodeTaken    = errors.New("room code already in use")
	ErrRoomNotFound = errors.New("room not found")
)

// Room represents a single pairing session where two peers
// (sender and receiver) exchange one file transfer.
type Room struct {
	// Code is the 4-digit identifier assigned by the registering client.
	Code string

	// Sender is the client who registered the room (Peer A).
	Sender *Client

	// Receiver is the client who joined the room (Peer B).
	// Nil until the first successful join.
	Receiver *Client

	// Metadata is the declared file description, set at most once
	// per transfer.
	Metadata *FileMetadata

	CreatedAt    time.Time
	LastActivity time.Time
}

// peerOf returns the occupant on the other side of c, or nil if c is
// alone in the room.
func (r *Room) peerOf(c *Client) *Client {
	if r.Sender != nil && r.Sender.ID == c.ID {
		return r.Receiver
	}
	return r.Sender
}

// Registry owns all live rooms. It keeps a secondary index from
// connection identity to room code so that per-message routing
// (messages after register/join carry no code) is a map lookup
// rather than a scan over all rooms.
//
// The registry is not safe for concurrent use; the Hub's run loop is
// its single writer.
type Registry struct {
	rooms  map[string]*Room
	byConn map[uuid.UUID]string
}

// NewRegistry creates an empty room registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		byConn: make(map[uuid.UUID]string),
	}
}

// Create registers a new room under code with the given sender.
// Fails with ErrCodeTaken if a live room already holds the code.
func (reg *Registry) Create(code string, sender *Client) (*Room, error) {
	if _, ok := reg.rooms[code]; ok {
		return nil, ErrCodeTaken
	}
	now := time.Now()
	room := &Room{
		Code:         code,
		Sender:       sender,
		CreatedAt:    now,
		LastActivity: now,
	}
	reg.rooms[code] = room
	reg.byConn[sender.ID] = code
	return room, nil
}

// Get looks up a live room by code.
func (reg *Registry) Get(code string) (*Room, error) {
	room, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// ByConnection resolves the room occupied by c, in either role.
func (reg *Registry) ByConnection(c *Client) (*Room, error) {
	code, ok := reg.byConn[c.ID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return reg.Get(code)
}

// SetReceiver assigns c as the room's receiver and indexes it.
func (reg *Registry) SetReceiver(room *Room, c *Client) {
	room.Receiver = c
	room.LastActivity = time.Now()
	reg.byConn[c.ID] = room.Code
}

// Remove deletes a room and clears both occupants from the
// connection index.
func (reg *Registry) Remove(room *Room) {
	delete(reg.rooms, room.Code)
	if room.Sender != nil {
		delete(reg.byConn, room.Sender.ID)
	}
	if room.Receiver != nil {
		delete(reg.byConn, room.Receiver.ID)
	}
}

// Len reports the number of live rooms.
func (reg *Registry) Len() int {
	return len(reg.rooms)
}
