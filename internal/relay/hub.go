package relay

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"time"
)

// MaxFileSize is the largest declared metadata size accepted, in bytes.
const MaxFileSize = 200 * 1024 * 1024

// maxNameLen is the longest file name stored or forwarded, counted
// in characters; longer names are truncated, not rejected.
const maxNameLen = 256

// codePattern accepts exactly four ASCII digits. Codes are validated
// before any registry lookup.
var codePattern = regexp.MustCompile(`^\d{4}$`)

// Human-readable reasons carried on "error" replies.
const (
	reasonInvalidFormat    = "Invalid message format"
	reasonUnknownType      = "Unknown message type"
	reasonInvalidCode      = "Room code must be exactly 4 digits"
	reasonCodeTaken        = "Room code already in use"
	reasonRoomNotFound     = "Room not found"
	reasonRoomFull         = "Room is full"
	reasonFileTooLarge     = "File too large. Maximum file size is 200MB"
	reasonPeerDisconnected = "Peer disconnected"
	reasonAlreadyInRoom    = "Already in a room"
)

// frame is one raw inbound websocket frame plus its origin, queued
// for the hub to decode and dispatch.
type frame struct {
	client *Client
	data   []byte
}

// Hub is the central brain of the relay server. It owns the room
// registry and is its only writer: every inbound frame and every
// disconnect is funneled through Run's select loop, so room state
// never needs a lock.
type Hub struct {
	registry *Registry
	logger   *slog.Logger

	// Register is the channel new connections announce themselves on.
	Register chan *Client

	// Unregister is the channel closed connections are reported on.
	Unregister chan *Client

	// Inbound carries raw frames from every connection's read pump.
	Inbound chan *frame
}

// NewHub creates a hub with an empty registry.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		registry:   NewRegistry(),
		logger:     logger,
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Inbound:    make(chan *frame),
	}
}

// Registry exposes the room registry for inspection. Callers other
// than the hub's own goroutine must not mutate it.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// Run starts the hub's main processing loop. It is the single
// goroutine that touches room state.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			// Not in a room yet; the client must send "register"
			// or "join" first.
			h.logger.Info("client connected", "client", client.ID)

		case client := <-h.Unregister:
			h.Disconnect(client)
			close(client.Send)

		case f := <-h.Inbound:
			h.Dispatch(f.client, f.data)
		}
	}
}

// Dispatch decodes one inbound frame and routes it by type. Unparseable
// frames and unrecognized types get a synchronous error reply; they
// never terminate the connection.
func (h *Hub) Dispatch(c *Client, data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		h.send(c, errorMessage(reasonInvalidFormat))
		return
	}
	msg.client = c

	switch msg.Type {
	case TypeRegister:
		h.handleRegister(&msg)
	case TypeJoin:
		h.handleJoin(&msg)
	case TypeMetadata:
		h.handleMetadata(&msg)
	case TypeChunk:
		h.handleChunk(&msg)
	case TypeComplete:
		h.handleComplete(&msg)
	default:
		h.logger.Warn("unknown message type", "client", c.ID, "type", msg.Type)
		h.send(c, errorMessage(reasonUnknownType))
	}
}

// handleRegister creates a room under a client-assigned 4-digit code
// and acknowledges with "registered". Validation precedes every
// mutation: a rejected register leaves the registry untouched.
func (h *Hub) handleRegister(msg *Message) {
	if !codePattern.MatchString(msg.Code) {
		h.send(msg.client, errorMessage(reasonInvalidCode))
		return
	}
	if _, err := h.registry.ByConnection(msg.client); err == nil {
		h.send(msg.client, errorMessage(reasonAlreadyInRoom))
		return
	}

	if _, err := h.registry.Create(msg.Code, msg.client); err != nil {
		h.send(msg.client, errorMessage(reasonCodeTaken))
		return
	}

	h.logger.Info("room registered", "code", msg.Code, "client", msg.client.ID)
	h.send(msg.client, &Message{Type: TypeRegistered, Code: msg.Code})
}

// handleJoin pairs a second client into an existing room: the sender
// learns a peer arrived, the joiner gets a "connected" acknowledgement.
func (h *Hub) handleJoin(msg *Message) {
	if !codePattern.MatchString(msg.Code) {
		h.send(msg.client, errorMessage(reasonInvalidCode))
		return
	}
	if _, err := h.registry.ByConnection(msg.client); err == nil {
		h.send(msg.client, errorMessage(reasonAlreadyInRoom))
		return
	}

	room, err := h.registry.Get(msg.Code)
	if err != nil {
		h.send(msg.client, errorMessage(reasonRoomNotFound))
		return
	}
	if room.Receiver != nil {
		h.send(msg.client, errorMessage(reasonRoomFull))
		return
	}

	h.registry.SetReceiver(room, msg.client)

	h.logger.Info("peer joined", "code", room.Code, "client", msg.client.ID)
	h.send(room.Sender, &Message{Type: TypePeerConnected})
	h.send(msg.client, &Message{Type: TypeConnected, Code: room.Code})
}

// handleMetadata validates and stores the declared file description,
// forwarding it to the receiver when one is present. A message whose
// room has vanished is dropped silently: a benign race, not a client
// error worth reporting.
//
// Metadata stored before a receiver joins is never replayed on the
// later join; clients are expected to declare metadata only after
// pairing completes.
func (h *Hub) handleMetadata(msg *Message) {
	room, err := h.registry.ByConnection(msg.client)
	if err != nil || msg.Metadata == nil {
		return
	}

	if msg.Metadata.Size > MaxFileSize || msg.Metadata.Size < 0 {
		h.send(msg.client, errorMessage(reasonFileTooLarge))
		return
	}

	meta := *msg.Metadata
	if runes := []rune(meta.Name); len(runes) > maxNameLen {
		meta.Name = string(runes[:maxNameLen])
	}

	room.Metadata = &meta
	room.LastActivity = time.Now()

	h.logger.Info("metadata set", "code", room.Code, "name", meta.Name, "size", meta.Size)
	if room.Receiver != nil {
		h.send(room.Receiver, &Message{Type: TypeMetadata, Metadata: &meta})
	}
}

// handleChunk relays one opaque payload unit to the receiver verbatim.
// No decoding, no size accounting; ordering is transport order. Drops
// silently if the room or receiver is gone.
func (h *Hub) handleChunk(msg *Message) {
	room, err := h.registry.ByConnection(msg.client)
	if err != nil || room.Receiver == nil {
		return
	}

	room.LastActivity = time.Now()
	h.send(room.Receiver, &Message{Type: TypeChunk, Chunk: msg.Chunk})
}

// handleComplete signals the receiver that the transfer finished and
// tears the room down. Drops silently if the room or receiver is gone.
func (h *Hub) handleComplete(msg *Message) {
	room, err := h.registry.ByConnection(msg.client)
	if err != nil || room.Receiver == nil {
		return
	}

	h.send(room.Receiver, &Message{Type: TypeComplete})
	h.registry.Remove(room)
	h.logger.Info("transfer complete", "code", room.Code)
}

// Disconnect is the cleanup path for a closed connection: notify the
// surviving occupant, if any, and remove the room. A connection that
// owned no room is a no-op. At most one room is affected per close.
func (h *Hub) Disconnect(c *Client) {
	room, err := h.registry.ByConnection(c)
	if err != nil {
		h.logger.Info("client disconnected", "client", c.ID)
		return
	}

	if peer := room.peerOf(c); peer != nil {
		h.send(peer, errorMessage(reasonPeerDisconnected))
	}
	h.registry.Remove(room)
	h.logger.Info("client disconnected, room removed", "client", c.ID, "code", room.Code)
}

// send queues a message on the client's outbound channel without
// blocking the hub. A full buffer means the write pump is dead or
// drowning; the frame is dropped rather than stalling every room.
func (h *Hub) send(c *Client, msg *Message) {
	select {
	case c.Send <- msg:
	default:
		h.logger.Warn("outbound buffer full, dropping message", "client", c.ID, "type", msg.Type)
	}
}
