package gateway

import (
	"context"
	"encoding/json"

	"github.com/BLxcwg666/hooklog/internal/models"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func gatewayMessageFormat(event string, payload interface{}) gatewayPayload {
	return gatewayPayload{Type: event, Data: payload}
}

// deliver emits the message to its rooms on this instance: once to the
// sockets in each room, and once to the in-process subscribers the hosted
// views hang off of.
func (h *Hub) deliver(msg Message) {
	ns := h.sio.Of(namespaceDashboard, nil)
	for _, room := range msg.Rooms {
		ns.To(socketio.Room(room)).Emit("message", gatewayMessageFormat(msg.Event, msg.Payload))
	}

	if msg.Event != eventLogCreate {
		return
	}
	log, ok := logFromPayload(msg.Payload)
	if !ok {
		return
	}
	h.dispatchLocal(msg.Rooms, log)
}

func (h *Hub) dispatchLocal(rooms []string, log models.WebhookLogModel) {
	inRooms := make(map[string]bool, len(rooms))
	for _, r := range rooms {
		inRooms[r] = true
	}

	h.subMu.RLock()
	var fns []func(models.WebhookLogModel)
	for _, sub := range h.subs {
		if inRooms[sub.room] {
			fns = append(fns, sub.fn)
		}
	}
	h.subMu.RUnlock()

	for _, fn := range fns {
		fn(log)
	}
}

// logFromPayload recovers the record from a broadcast payload. Locally queued
// messages carry the struct; messages that crossed Redis carry decoded JSON.
func logFromPayload(payload interface{}) (models.WebhookLogModel, bool) {
	switch v := payload.(type) {
	case models.WebhookLogModel:
		return v, true
	case *models.WebhookLogModel:
		if v == nil {
			return models.WebhookLogModel{}, false
		}
		return *v, true
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return models.WebhookLogModel{}, false
		}
		var log models.WebhookLogModel
		if err := json.Unmarshal(data, &log); err != nil {
			return models.WebhookLogModel{}, false
		}
		return log, log.ID != ""
	}
}

// subscribeRedis listens for broadcasts from other server instances.
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rc.Subscribe(ctx, redisChanLogs)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			var msg Message
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				continue
			}
			if msg.Origin == h.instanceID {
				continue
			}
			h.deliver(msg)
		}
	}
}
