package relay

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Large enough for one
	// encoded file chunk plus envelope overhead.
	maxMessageSize = 1024 * 1024
)

// Client is a wrapper for a single websocket connection (a peer).
// Its ID is the connection identity the registry indexes rooms by.
type Client struct {
	ID uuid.UUID

	// Hub is the hub this client reports to.
	Hub *Hub

	// Conn is the websocket connection.
	Conn *websocket.Conn

	// Send is a buffered channel for all outbound messages. The hub
	// writes to this channel and WritePump drains it onto the socket.
	Send chan *Message
}

// NewClient wraps an upgraded websocket connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		ID:   uuid.New(),
		Hub:  hub,
		Conn: conn,
		Send: make(chan *Message, 256),
	}
}

// ReadPump pumps raw frames from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine. The
// application ensures that there is at most one reader on a connection
// by executing all reads from this goroutine. Frames are delivered
// undecoded: the hub owns parsing so that malformed JSON can be
// answered with an error reply instead of killing the connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Debug("websocket read failed", "client", c.ID, "error", err)
			}
			break
		}
		c.Hub.Inbound <- &frame{client: c, data: data}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
//
// A goroutine running WritePump is started for each connection. The
// application ensures that there is at most one writer to a connection
// by executing all writes from this goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(message); err != nil {
				slog.Debug("websocket write failed", "client", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
