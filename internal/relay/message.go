package relay

// Message defines the structure for all C2S (Client to Server)
// and S2C (Server to Client) websocket messages. The envelope is
// flat JSON tagged by Type; unused fields are omitted on the wire.
type Message struct {
	Type     string        `json:"type"`
	Code     string        `json:"code,omitempty"`
	Metadata *FileMetadata `json:"metadata,omitempty"`

	// Chunk is a pointer so an empty payload still carries its key on
	// the wire: the relay forwards exactly what arrived.
	Chunk *string `json:"chunk,omitempty"`

	// Error carries the human-readable reason on "error" messages.
	Error string `json:"message,omitempty"`

	// client is the client that sent the message.
	// It's used internally by the Hub and not sent over JSON.
	client *Client
}

// FileMetadata describes the file being transferred. It is declared
// once per transfer by the sender and relayed to the receiver verbatim
// after validation.
type FileMetadata struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Inbound message types.
const (
	TypeRegister = "register"
	TypeJoin     = "join"
	TypeMetadata = "metadata"
	TypeChunk    = "chunk"
	TypeComplete = "complete"
)

// Outbound message types.
const (
	TypeRegistered    = "registered"
	TypeConnected     = "connected"
	TypePeerConnected = "peerConnected"
	TypeError         = "error"
)

// errorMessage builds an "error" reply with a human-readable reason.
func errorMessage(reason string) *Message {
	return &Message{Type: TypeError, Error: reason}
}
