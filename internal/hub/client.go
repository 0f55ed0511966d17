package hub

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type Config struct {
	PingInterval   time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

func (c Config) withDefaults() Config {
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingInterval <= 0 || c.PingInterval >= c.PongWait {
		c.PingInterval = (c.PongWait * 9) / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 512 << 10
	}
	if c.SendBuffer <= 0 {
		c.SendBuffer = 256
	}
	return c
}

// Handler receives the events of one connection, in the order they were read.
type Handler interface {
	Handle(ctx context.Context, event string, data []byte)
	Disconnect(ctx context.Context)
}

// Client is one websocket connection. room and closed are guarded by the hub mutex.
type Client struct {
	ID       int64
	UserName string
	conn     *websocket.Conn
	send     chan []byte
	room     string
	closed   bool
}

// NewClient creates a client, conn may be nil for a client that is only
// ever read through Send.
func NewClient(id int64, username string, conn *websocket.Conn, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Client{
		ID:       id,
		UserName: username,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
	}
}

// Send returns the queue of frames waiting to be written to the client.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// Serve upgrades the request, then reads events into the handler built by
// newHandler until the connection drops. It returns once the client is
// unregistered.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, cfg Config, connectionID int64, username string, newHandler func(*Client) Handler) {
	cfg = cfg.withDefaults()

	h.sugar.Debugf("Connecting user [%s] to WebSocket", username)

	var upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
	}

	// upgrader already replied to the client on error
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.sugar.Debug(err)
		return
	}

	h.serving.Add(1)
	defer h.serving.Done()

	clientCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := NewClient(connectionID, username, conn, cfg.SendBuffer)
	h.Register(client)

	handler := newHandler(client)

	done := make(chan struct{})
	go func() {
		defer close(done)
		client.writePump(h, cfg)
	}()

	client.readPump(clientCtx, h, cfg, handler)

	handler.Disconnect(clientCtx)
	h.Unregister(client)
	<-done
}

func (c *Client) readPump(ctx context.Context, h *Hub, cfg Config, handler Handler) {
	c.conn.SetReadLimit(cfg.MaxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait)); err != nil {
		h.sugar.Error(err)
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	// listening to incoming messages directly from client
	for {
		messageType, frame, err := c.conn.ReadMessage()
		if err != nil {
			logReadError(h, c, err)
			return
		}

		if messageType != websocket.TextMessage {
			h.sugar.Warnf("Connection ID [%d] sent a non text frame, ignoring", c.ID)
			continue
		}

		event, data, err := Decode(frame)
		if err != nil {
			h.sugar.Warnf("Connection ID [%d] sent a malformed frame: %v", c.ID, err)
			continue
		}

		handler.Handle(ctx, event, data)
	}
}

func logReadError(h *Hub, c *Client, err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		h.sugar.Warnf("Frame from connection ID [%d] exceeded the size limit", c.ID)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		h.sugar.Debugf("Connection ID [%d] disconnected: %v", c.ID, err)
	case isExpectedCloseError(err):
		h.sugar.Debugf("Connection ID [%d] connection closed: %v", c.ID, err)
	default:
		h.sugar.Errorf("Read error on connection ID [%d]: %v", c.ID, err)
	}
}

func (c *Client) writePump(h *Hub, cfg Config) {
	ticker := time.NewTicker(cfg.PingInterval)
	defer func() {
		ticker.Stop()
		err := c.conn.Close()
		if err != nil && !isExpectedCloseError(err) {
			h.sugar.Error(err)
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait)); err != nil {
				h.sugar.Error(err)
				return
			}

			if !ok {
				// hub closed the queue
				err := c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				if err != nil && !isExpectedCloseError(err) {
					h.sugar.Debug(err)
				}
				return
			}

			err := c.conn.WriteMessage(websocket.TextMessage, frame)
			if err != nil {
				if !isExpectedCloseError(err) {
					h.sugar.Error(err)
				}
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(cfg.WriteWait)); err != nil {
				h.sugar.Error(err)
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if !isExpectedCloseError(err) {
					h.sugar.Debug(err)
				}
				return
			}
		}
	}
}

func isExpectedCloseError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) || errors.Is(err, websocket.ErrCloseSent) {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}
