package gateway

import (
	"context"
	"sync"

	"github.com/BLxcwg666/hooklog/internal/models"
	"github.com/BLxcwg666/hooklog/internal/modules/viewer"
	pkgredis "github.com/BLxcwg666/hooklog/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	namespaceDashboard = "/dashboard"
	redisChanLogs      = "hooklog:gateway:logs"

	eventGatewayConnect = "GATEWAY_CONNECT"
	eventAuthFailed     = "AUTH_FAILED"
	eventLogCreate      = "LOG_CREATE"
	eventSettingsUpdate = "SETTINGS_UPDATE"
	eventViewState      = "VIEW_STATE"
	eventQueryState     = "QUERY_STATE"
	eventNotice         = "NOTICE"
	eventViewError      = "VIEW_ERROR"
)

// UserRoom is the room receiving every record owned by one user.
func UserRoom(userID string) string { return "logs:user:" + userID }

// TokenRoom is the room receiving records of a single credential.
func TokenRoom(tokenID string) string { return "logs:token:" + tokenID }

// Message is the envelope used by hub broadcasts and Redis fan-out.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	Rooms   []string    `json:"rooms,omitempty"`
	// Origin identifies the publishing instance so the Redis subscriber can
	// skip messages this instance already delivered locally.
	Origin string `json:"origin,omitempty"`
}

type gatewayPayload struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type clientMeta struct {
	sid    string
	userID string
}

// LogSource serves paginated log reads; the logs service implements it.
type LogSource interface {
	FetchPage(ctx context.Context, userID string, tokenID *string, page, size int) ([]models.WebhookLogModel, int64, error)
}

// ViewSettings is the slice of a user's saved settings the gateway needs to
// seed a freshly connected view.
type ViewSettings struct {
	Mode         viewer.UpdateMode
	IntervalMS   int
	FollowLatest bool
}

// SettingsSource loads the seed settings for a user; the settings service
// implements it.
type SettingsSource interface {
	ViewSettings(ctx context.Context, userID string) (ViewSettings, error)
}

type localSub struct {
	room string
	fn   func(models.WebhookLogModel)
}

// Hub manages the dashboard socket.io namespace, per-socket hosted views,
// in-process feed subscriptions and Redis cluster fan-out.
type Hub struct {
	mu sync.RWMutex

	sidUser   map[string]string
	roomCount map[string]int

	subMu   sync.RWMutex
	subs    map[uint64]localSub
	nextSub uint64

	broadcast  chan Message
	register   chan clientMeta
	unregister chan clientMeta

	instanceID     string
	rc             *pkgredis.Client
	logger         *zap.Logger
	sio            *socketio.Server
	tokenValidator func(token string) (userID string, ok bool)
	store          LogSource
	settings       SettingsSource
}
