package viewer

import (
	"context"
	"time"

	"github.com/BLxcwg666/hooklog/internal/models"
)

// UpdateMode is how a view learns about new records.
type UpdateMode string

const (
	ModePush     UpdateMode = "push"
	ModeInterval UpdateMode = "interval"
	ModeManual   UpdateMode = "manual"
)

// Valid reports whether m is one of the three known modes.
func (m UpdateMode) Valid() bool {
	return m == ModePush || m == ModeInterval || m == ModeManual
}

// Store serves paginated log reads for one user. Implementations bind the
// owning user at construction; tokenID narrows to a single credential when
// non-nil.
type Store interface {
	FetchPage(ctx context.Context, tokenID *string, page, size int) ([]models.WebhookLogModel, int64, error)
}

// Feed delivers live records for one user, optionally narrowed to a single
// token. The returned cancel func must be safe to call once and must not
// block on in-flight deliveries.
type Feed interface {
	Subscribe(tokenID *string, fn func(models.WebhookLogModel)) (cancel func(), err error)
}

// Notifier surfaces user-facing notices (toasts on the dashboard).
type Notifier interface {
	Notify(kind, message string) // kind is one of the Notice* constants
}

const (
	NoticeNewLog          = "log:new"
	NoticeFollowDisabled  = "follow:disabled"
	NoticeFilterChanged   = "filter:changed"
	NoticeSubscribeFailed = "subscribe:failed"
)

// Ticker abstracts time.Ticker so interval mode is testable.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. The zero-dependency production Clock wraps the
// time package.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

// QueryState is the shareable part of a view's state, reported whenever the
// filter changes so clients can reflect it in the address bar.
type QueryState struct {
	TokenID *string `json:"token_id"`
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// RealClock is the production Clock.
type RealClock struct{}

func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}
