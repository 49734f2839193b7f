package viewer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BLxcwg666/hooklog/internal/models"
)

const (
	defaultPageSize     = 20
	defaultPollInterval = 5 * time.Second
)

var errUnknownMode = errors.New("unknown update mode")

// View is the server-held state of one dashboard log list: the current page,
// the token filter, the selection and how the list keeps itself fresh. All
// operations serialize on an internal mutex; Feed callbacks and ticker
// refreshes go through the same lock.
type View struct {
	mu sync.Mutex

	userID       string
	store        Store
	feed         Feed
	notifier     Notifier
	clock        Clock
	onQueryState func(QueryState)

	records      []models.WebhookLogModel
	total        int64
	page         int
	size         int
	tokenID      *string
	selected     *string
	followLatest bool
	mode         UpdateMode
	interval     time.Duration

	// sub is the cancel func of the single live subscription; subGen fences
	// out deliveries from subscriptions already torn down.
	sub    func()
	subGen uint64

	ticker     Ticker
	tickerStop chan struct{}

	loaded  bool
	lastErr error
	closed  bool
}

func New(userID string, store Store, feed Feed, notifier Notifier, clock Clock, onQueryState func(QueryState)) *View {
	return &View{
		userID:       userID,
		store:        store,
		feed:         feed,
		notifier:     notifier,
		clock:        clock,
		onQueryState: onQueryState,
		page:         1,
		size:         defaultPageSize,
		followLatest: true,
		mode:         ModeManual,
		interval:     defaultPollInterval,
	}
}

// FetchPage loads page p through the store. On failure the previous records
// stay in place and the error is remembered so the client can offer a retry.
func (v *View) FetchPage(ctx context.Context, p int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetchLocked(ctx, p)
}

func (v *View) fetchLocked(ctx context.Context, p int) error {
	if p < 1 {
		p = 1
	}
	records, total, err := v.store.FetchPage(ctx, v.tokenID, p, v.size)
	if err != nil {
		v.lastErr = err
		return err
	}
	first := !v.loaded
	v.lastErr = nil
	v.loaded = true
	v.records = records
	v.total = total
	v.page = p
	v.selected = nextSelection(records, v.selected, first, v.followLatest)
	return nil
}

// Refresh re-fetches the current page. Interval mode calls this on every
// tick; clients call it for manual refresh.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	return v.fetchLocked(ctx, v.page)
}

// ApplyLiveUpdate merges one pushed record into the list. Records owned by a
// different user are dropped; rooms already filter, this is the second line.
// The record is prepended as-is: no re-sort, no de-dup, and the stored total
// is left alone (counts are advisory until the next fetch).
func (v *View) ApplyLiveUpdate(rec models.WebhookLogModel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.applyLiveLocked(rec)
}

func (v *View) applyLiveLocked(rec models.WebhookLogModel) {
	if v.closed {
		return
	}
	if rec.UserID == nil || *rec.UserID != v.userID {
		return
	}
	v.records = append([]models.WebhookLogModel{rec}, v.records...)
	if v.followLatest || v.selected == nil {
		id := rec.ID
		v.selected = &id
	}
	v.notifier.Notify(NoticeNewLog, "new webhook received")
}

// Select pins the detail pane to one record. Picking a record by hand turns
// follow-latest off so a live update cannot yank the pane away.
func (v *View) Select(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = &id
	if v.followLatest {
		v.followLatest = false
		v.notifier.Notify(NoticeFollowDisabled, "auto-follow disabled")
	}
}

// SetFollowLatest toggles follow-latest without touching the selection.
func (v *View) SetFollowLatest(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.followLatest = on
}

// SetFilter swaps the token filter. The selection is cleared, any live
// subscription is re-keyed under the new filter, page 1 is re-fetched as a
// fresh first load, and the shareable query state is reported.
func (v *View) SetFilter(ctx context.Context, tokenID *string) error {
	v.mu.Lock()
	v.selected = nil
	v.tokenID = tokenID
	v.loaded = false
	teardown := v.detachSubLocked()
	v.mu.Unlock()
	if teardown != nil {
		teardown()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	if v.mode == ModePush {
		v.subscribeLocked()
	}
	err := v.fetchLocked(ctx, 1)
	v.notifier.Notify(NoticeFilterChanged, "filter updated")
	if v.onQueryState != nil {
		v.onQueryState(QueryState{TokenID: tokenID})
	}
	return err
}

// SetUpdateMode switches how the view stays fresh. The old mode's resource
// is always released first; push holds exactly one subscription, interval
// exactly one ticker, manual neither. A subscription that fails to open only
// notifies, it never falls back to polling on its own.
func (v *View) SetUpdateMode(mode UpdateMode, interval time.Duration) error {
	if !mode.Valid() {
		return errUnknownMode
	}

	v.mu.Lock()
	teardowns := []func(){v.detachSubLocked(), v.stopTickerLocked()}
	v.mode = mode
	switch mode {
	case ModePush:
		v.subscribeLocked()
	case ModeInterval:
		if interval <= 0 {
			interval = defaultPollInterval
		}
		v.interval = interval
		v.startTickerLocked()
	}
	v.mu.Unlock()

	for _, td := range teardowns {
		if td != nil {
			td()
		}
	}
	return nil
}

// Close releases the subscription and ticker. The view is unusable after.
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	teardowns := []func(){v.detachSubLocked(), v.stopTickerLocked()}
	v.mu.Unlock()

	for _, td := range teardowns {
		if td != nil {
			td()
		}
	}
}

func (v *View) subscribeLocked() {
	gen := v.subGen
	cancel, err := v.feed.Subscribe(v.tokenID, func(rec models.WebhookLogModel) {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.subGen != gen {
			return
		}
		v.applyLiveLocked(rec)
	})
	if err != nil {
		v.notifier.Notify(NoticeSubscribeFailed, "live updates unavailable")
		return
	}
	v.sub = cancel
}

// detachSubLocked drops the current subscription and bumps the generation so
// late deliveries from it are ignored. The returned cancel func must be run
// after the lock is released.
func (v *View) detachSubLocked() func() {
	v.subGen++
	cancel := v.sub
	v.sub = nil
	return cancel
}

func (v *View) startTickerLocked() {
	t := v.clock.NewTicker(v.interval)
	stop := make(chan struct{})
	v.ticker = t
	v.tickerStop = stop
	go func() {
		for {
			select {
			case <-t.C():
				_ = v.Refresh(context.Background())
			case <-stop:
				return
			}
		}
	}()
}

func (v *View) stopTickerLocked() func() {
	t, stop := v.ticker, v.tickerStop
	v.ticker, v.tickerStop = nil, nil
	if t == nil {
		return nil
	}
	return func() {
		t.Stop()
		close(stop)
	}
}

// Snapshot is a copy of the view state for emitting to the client.
type Snapshot struct {
	Records      []models.WebhookLogModel `json:"records"`
	Total        int64                    `json:"total"`
	Page         int                      `json:"page"`
	Size         int                      `json:"size"`
	TokenID      *string                  `json:"token_id"`
	Selected     *string                  `json:"selected"`
	FollowLatest bool                     `json:"follow_latest"`
	Mode         UpdateMode               `json:"mode"`
}

func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	records := make([]models.WebhookLogModel, len(v.records))
	copy(records, v.records)
	return Snapshot{
		Records:      records,
		Total:        v.total,
		Page:         v.page,
		Size:         v.size,
		TokenID:      v.tokenID,
		Selected:     v.selected,
		FollowLatest: v.followLatest,
		Mode:         v.mode,
	}
}
