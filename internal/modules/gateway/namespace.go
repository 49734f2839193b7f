package gateway

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/BLxcwg666/hooklog/internal/models"
	"github.com/BLxcwg666/hooklog/internal/modules/viewer"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	messageFetch   = "fetch"
	messageSelect  = "select"
	messageFilter  = "filter"
	messageMode    = "mode"
	messageRefresh = "refresh"
)

const viewOpTimeout = 10 * time.Second

type inboundMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

func (h *Hub) registerNamespace() {
	ns := h.sio.Of(namespaceDashboard, nil)
	_ = ns.On("connection", func(args ...any) {
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}

		token := normalizeToken(extractToken(client))
		userID := ""
		authed := false
		if token != "" && h.tokenValidator != nil {
			userID, authed = h.tokenValidator(token)
		}
		if !authed {
			_ = client.Emit("message", gatewayMessageFormat(eventAuthFailed, "auth failed"))
			client.Disconnect(true)
			return
		}

		sid := string(client.Id())
		client.Join(socketio.Room(UserRoom(userID)))
		h.register <- clientMeta{sid: sid, userID: userID}
		_ = client.Emit("message", gatewayMessageFormat(eventGatewayConnect, "WebSocket connected"))

		view := h.newHostedView(client, userID)
		h.seedView(view, userID)
		emitViewState(client, view)

		_ = client.On("message", func(eventArgs ...any) {
			msg, ok := parseInboundMessage(eventArgs...)
			if !ok {
				return
			}
			h.handleViewMessage(client, view, msg)
		})

		_ = client.On("disconnect", func(_ ...any) {
			view.Close()
			h.unregister <- clientMeta{sid: sid, userID: userID}
		})
	})
}

// newHostedView builds a view wired to this socket: store reads go to the
// logs service scoped to the user, the live feed rides the hub's local
// subscriptions, and notices land back on the socket.
func (h *Hub) newHostedView(client *socketio.Socket, userID string) *viewer.View {
	notifier := &socketNotifier{client: client}
	onQueryState := func(qs viewer.QueryState) {
		_ = client.Emit("message", gatewayMessageFormat(eventQueryState, qs))
	}
	view := viewer.New(
		userID,
		&hostedStore{hub: h, userID: userID},
		&hostedFeed{hub: h, userID: userID},
		notifier,
		viewer.RealClock{},
		onQueryState,
	)
	notifier.view = view
	return view
}

// seedView applies the user's saved dashboard settings and loads the first
// page. A settings load failure falls back to the defaults rather than
// leaving the view dead.
func (h *Hub) seedView(view *viewer.View, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), viewOpTimeout)
	defer cancel()

	mode := viewer.ModePush
	interval := 5 * time.Second
	follow := true
	if h.settings != nil {
		vs, err := h.settings.ViewSettings(ctx, userID)
		if err == nil {
			mode = vs.Mode
			interval = time.Duration(vs.IntervalMS) * time.Millisecond
			follow = vs.FollowLatest
		} else if h.logger != nil {
			h.logger.Warn("gateway settings load failed, using defaults",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	view.SetFollowLatest(follow)
	_ = view.SetUpdateMode(mode, interval)
	_ = view.FetchPage(ctx, 1)
}

func (h *Hub) handleViewMessage(client *socketio.Socket, view *viewer.View, msg inboundMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), viewOpTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case messageFetch:
		err = view.FetchPage(ctx, intFromAny(msg.Payload["page"], 1))
	case messageSelect:
		id := strFromAny(msg.Payload["id"])
		if id == "" {
			return
		}
		view.Select(id)
	case messageFilter:
		var tokenID *string
		if v := strFromAny(msg.Payload["tokenId"]); v != "" {
			tokenID = &v
		}
		err = view.SetFilter(ctx, tokenID)
	case messageMode:
		mode := viewer.UpdateMode(strFromAny(msg.Payload["mode"]))
		interval := time.Duration(intFromAny(msg.Payload["interval"], 0)) * time.Millisecond
		err = view.SetUpdateMode(mode, interval)
	case messageRefresh:
		err = view.Refresh(ctx)
	default:
		return
	}

	if err != nil {
		_ = client.Emit("message", gatewayMessageFormat(eventViewError, err.Error()))
	}
	emitViewState(client, view)
}

func emitViewState(client *socketio.Socket, view *viewer.View) {
	_ = client.Emit("message", gatewayMessageFormat(eventViewState, view.Snapshot()))
}

type hostedStore struct {
	hub    *Hub
	userID string
}

func (s *hostedStore) FetchPage(ctx context.Context, tokenID *string, page, size int) ([]models.WebhookLogModel, int64, error) {
	return s.hub.store.FetchPage(ctx, s.userID, tokenID, page, size)
}

type hostedFeed struct {
	hub    *Hub
	userID string
}

func (f *hostedFeed) Subscribe(tokenID *string, fn func(models.WebhookLogModel)) (func(), error) {
	room := UserRoom(f.userID)
	if tokenID != nil {
		room = TokenRoom(*tokenID)
	}
	return f.hub.SubscribeLocal(room, fn), nil
}

// socketNotifier forwards view notices to the socket. Emission happens on a
// fresh goroutine because Notify is called while the view lock is held and
// the state snapshot needs that same lock.
type socketNotifier struct {
	client *socketio.Socket
	view   *viewer.View
}

func (n *socketNotifier) Notify(kind, message string) {
	go func() {
		_ = n.client.Emit("message", gatewayMessageFormat(eventNotice, map[string]string{
			"kind":    kind,
			"message": message,
		}))
		if n.view != nil {
			emitViewState(n.client, n.view)
		}
	}()
}

func extractToken(client *socketio.Socket) string {
	handshake := client.Handshake()
	if handshake == nil {
		return ""
	}
	if token := firstValueFromMultiMap(handshake.Query, "token"); token != "" {
		return token
	}
	if token := firstValueFromMultiMap(handshake.Headers, "authorization"); token != "" {
		return token
	}
	return ""
}

func firstValueFromMultiMap(values map[string][]string, key string) string {
	if len(values) == 0 {
		return ""
	}
	for k, list := range values {
		if !strings.EqualFold(strings.TrimSpace(k), key) || len(list) == 0 {
			continue
		}
		v := strings.TrimSpace(list[0])
		if v != "" {
			return v
		}
	}
	return ""
}

func normalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}

func parseInboundMessage(args ...any) (inboundMessage, bool) {
	if len(args) == 0 || args[0] == nil {
		return inboundMessage{}, false
	}

	var msg inboundMessage
	switch raw := args[0].(type) {
	case inboundMessage:
		msg = raw
	case map[string]interface{}:
		msg.Type = strFromAny(raw["type"])
		msg.Payload = mapFromAny(raw["payload"])
	case string:
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			return inboundMessage{}, false
		}
	case []byte:
		if err := json.Unmarshal(raw, &msg); err != nil {
			return inboundMessage{}, false
		}
	default:
		data, err := json.Marshal(raw)
		if err != nil {
			return inboundMessage{}, false
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			return inboundMessage{}, false
		}
	}

	msg.Type = strings.TrimSpace(msg.Type)
	if msg.Type == "" {
		return inboundMessage{}, false
	}
	if msg.Payload == nil {
		msg.Payload = map[string]interface{}{}
	}
	return msg, true
}

func mapFromAny(v interface{}) map[string]interface{} {
	switch typed := v.(type) {
	case nil:
		return map[string]interface{}{}
	case map[string]interface{}:
		return typed
	default:
		data, err := json.Marshal(typed)
		if err != nil {
			return map[string]interface{}{}
		}
		out := map[string]interface{}{}
		if err := json.Unmarshal(data, &out); err != nil {
			return map[string]interface{}{}
		}
		return out
	}
}

func strFromAny(v interface{}) string {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	default:
		return ""
	}
}

func intFromAny(v interface{}, fallback int) int {
	switch typed := v.(type) {
	case float64:
		return int(typed)
	case int:
		return typed
	case json.Number:
		if n, err := typed.Int64(); err == nil {
			return int(n)
		}
	}
	return fallback
}
