package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/BLxcwg666/hooklog/internal/models"
	pkgredis "github.com/BLxcwg666/hooklog/internal/pkg/redis"
	"github.com/google/uuid"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

func NewHub(rc *pkgredis.Client, logger *zap.Logger, store LogSource, settings SettingsSource, tokenValidator func(string) (string, bool)) *Hub {
	sio := socketio.NewServer(nil, nil)
	h := &Hub{
		sidUser:        make(map[string]string),
		roomCount:      make(map[string]int),
		subs:           make(map[uint64]localSub),
		broadcast:      make(chan Message, 256),
		register:       make(chan clientMeta, 256),
		unregister:     make(chan clientMeta, 256),
		instanceID:     uuid.New().String(),
		rc:             rc,
		logger:         logger,
		sio:            sio,
		tokenValidator: tokenValidator,
		store:          store,
		settings:       settings,
	}
	h.registerNamespace()
	return h
}

// Run starts the hub loop and Redis subscriber.
func (h *Hub) Run(ctx context.Context) {
	go h.subscribeRedis(ctx)

	for {
		select {
		case <-ctx.Done():
			h.sio.Close(nil)
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.deliver(msg)
			data, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := h.rc.Publish(ctx, redisChanLogs, string(data)); err != nil && h.logger != nil {
				h.logger.Warn("gateway publish failed", zap.String("channel", redisChanLogs), zap.Error(err))
			}
		}
	}
}

func (h *Hub) registerClient(c clientMeta) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sidUser[c.sid]; ok {
		return
	}
	h.sidUser[c.sid] = c.userID
	h.roomCount[UserRoom(c.userID)]++
}

func (h *Hub) unregisterClient(c clientMeta) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userID, ok := h.sidUser[c.sid]
	if !ok {
		return
	}
	delete(h.sidUser, c.sid)
	room := UserRoom(userID)
	if h.roomCount[room] > 0 {
		h.roomCount[room]--
	}
}

// Broadcast queues an event for the given rooms on every instance.
func (h *Hub) Broadcast(event string, payload interface{}, rooms ...string) {
	h.broadcast <- Message{Event: event, Payload: payload, Rooms: rooms, Origin: h.instanceID}
}

// LogCreated fans a freshly stored record out to its owner's rooms. Records
// with no owner have no audience and are dropped.
func (h *Hub) LogCreated(log models.WebhookLogModel) {
	if log.UserID == nil {
		return
	}
	rooms := []string{UserRoom(*log.UserID)}
	if log.TokenID != nil {
		rooms = append(rooms, TokenRoom(*log.TokenID))
	}
	h.Broadcast(eventLogCreate, log, rooms...)
}

// BroadcastToUser sends an event to every dashboard session of one user.
// The settings module uses it for cross-tab sync.
func (h *Hub) BroadcastToUser(userID, event string, payload interface{}) {
	h.Broadcast(event, payload, UserRoom(userID))
}

// ClientCount returns the number of connected dashboard clients, optionally
// filtered by room.
func (h *Hub) ClientCount(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if room == "" {
		return len(h.sidUser)
	}
	return h.roomCount[room]
}

// SubscribeLocal registers an in-process callback for events delivered to a
// room. The hosted views use it as their live feed. Cancel only removes the
// entry; it never blocks on an in-flight delivery.
func (h *Hub) SubscribeLocal(room string, fn func(models.WebhookLogModel)) func() {
	h.subMu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = localSub{room: room, fn: fn}
	h.subMu.Unlock()

	return func() {
		h.subMu.Lock()
		delete(h.subs, id)
		h.subMu.Unlock()
	}
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}
