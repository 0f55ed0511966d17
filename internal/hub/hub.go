package hub

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub knows every connected client and which room each one is joined to.
// Emits take the hub mutex for the whole fan out, so all members of a room
// receive frames in the same order.
type Hub struct {
	mutex   sync.Mutex
	clients map[int64]*Client
	rooms   rooms
	sugar   *zap.SugaredLogger

	// one per running Serve
	serving sync.WaitGroup
}

func New(sugar *zap.SugaredLogger) *Hub {
	return &Hub{
		clients: make(map[int64]*Client),
		rooms:   make(rooms),
		sugar:   sugar,
	}
}

func (h *Hub) Register(client *Client) {
	h.sugar.Debugf("Adding user [%s] to clients as connection ID [%d]", client.UserName, client.ID)
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client.ID] = client
}

// Unregister removes the client from its room and closes its send queue.
// Calling it again is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	h.sugar.Debugf("Removing connection ID [%d] from clients", client.ID)
	if client.room != "" {
		h.rooms.unsubscribe(client.room, client.ID)
		client.room = ""
	}
	delete(h.clients, client.ID)
	client.closed = true
	close(client.send)
}

func (h *Hub) GetClient(connectionID int64) (*Client, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	client, exists := h.clients[connectionID]
	return client, exists
}

// Join moves the client into room, leaving the previous one.
func (h *Hub) Join(client *Client, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if client.closed {
		return
	}
	if client.room != "" {
		h.rooms.unsubscribe(client.room, client.ID)
	}
	client.room = room
	h.rooms.subscribe(room, client)

	h.sugar.Debugf("Connection ID [%d] subscribed to room [%s]", client.ID, room)
}

// Leave takes the client out of its room and returns the room it was in.
func (h *Hub) Leave(client *Client) string {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room := client.room
	if room != "" {
		h.rooms.unsubscribe(room, client.ID)
		client.room = ""
		h.sugar.Debugf("Connection ID [%d] unsubscribed from room [%s]", client.ID, room)
	}
	return room
}

func (h *Hub) RoomSize(room string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return len(h.rooms[room])
}

// EmitTo sends an event to a single client.
func (h *Hub) EmitTo(client *Client, event string, payload any) error {
	frame, err := Encode(event, payload)
	if err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.enqueue(client, frame)
	return nil
}

// EmitToRoom sends an event to everyone joined to room.
func (h *Hub) EmitToRoom(room string, event string, payload any) error {
	return h.EmitToRoomExcept(room, 0, event, payload)
}

// EmitToRoomExcept sends an event to everyone joined to room but the client
// with ID exceptID.
func (h *Hub) EmitToRoomExcept(room string, exceptID int64, event string, payload any) error {
	frame, err := Encode(event, payload)
	if err != nil {
		return err
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	members := h.rooms[room]
	h.sugar.Debugf("Sending [%s] to %d clients in room [%s]", event, len(members), room)

	for id, client := range members {
		if id == exceptID {
			continue
		}
		h.enqueue(client, frame)
	}
	return nil
}

// enqueue never blocks, a client whose queue is full misses the frame.
// Callers hold the mutex.
func (h *Hub) enqueue(client *Client, frame []byte) {
	if client.closed {
		return
	}

	select {
	case client.send <- frame:
	default:
		h.sugar.Warnf("Send queue of connection ID [%d] is full, dropping frame", client.ID)
	}
}

// Shutdown closes every client connection, their read pumps then run the
// regular disconnect path. It waits for that to finish or for ctx to be done.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		if client.conn == nil {
			continue
		}
		err := client.conn.Close()
		if err != nil && !isExpectedCloseError(err) {
			h.sugar.Error(err)
		}
	}

	h.sugar.Infof("Closed %d client connections", len(clients))

	done := make(chan struct{})
	go func() {
		h.serving.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		h.sugar.Warn("Gave up waiting for client connections to finish")
	}
}
