package viewer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BLxcwg666/hooklog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUser = "user-1"

func rec(id string, userID string) models.WebhookLogModel {
	m := models.WebhookLogModel{}
	m.ID = id
	m.Method = "POST"
	m.UserID = &userID
	return m
}

type fakeStore struct {
	mu      sync.Mutex
	records []models.WebhookLogModel
	total   int64
	err     error
	calls   int

	lastTokenID *string
	lastPage    int
}

func (s *fakeStore) FetchPage(_ context.Context, tokenID *string, page, _ int) ([]models.WebhookLogModel, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastTokenID = tokenID
	s.lastPage = page
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make([]models.WebhookLogModel, len(s.records))
	copy(out, s.records)
	return out, s.total, nil
}

type fakeFeed struct {
	mu        sync.Mutex
	active    int
	opened    int
	cancelled int
	lastToken *string
	fn        func(models.WebhookLogModel)
	err       error
}

func (f *fakeFeed) Subscribe(tokenID *string, fn func(models.WebhookLogModel)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.active++
	f.opened++
	f.lastToken = tokenID
	f.fn = fn
	return func() {
		f.mu.Lock()
		f.active--
		f.cancelled++
		f.mu.Unlock()
	}, nil
}

func (f *fakeFeed) activeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

type fakeNotifier struct {
	mu    sync.Mutex
	kinds []string
}

func (n *fakeNotifier) Notify(kind, _ string) {
	n.mu.Lock()
	n.kinds = append(n.kinds, kind)
	n.mu.Unlock()
}

func (n *fakeNotifier) has(kind string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, k := range n.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

type fakeTicker struct {
	ch      chan time.Time
	stopped bool
	mu      sync.Mutex
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop() {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
}

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
	lastD   time.Duration
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, t)
	c.lastD = d
	return t
}

func newTestView(store *fakeStore, feed *fakeFeed, notifier *fakeNotifier, clock *fakeClock) *View {
	return New(testUser, store, feed, notifier, clock, nil)
}

func TestFetchPageSelectsNewestOnFirstLoad(t *testing.T) {
	store := &fakeStore{records: []models.WebhookLogModel{rec("b", testUser), rec("a", testUser)}, total: 2}
	v := newTestView(store, &fakeFeed{}, &fakeNotifier{}, &fakeClock{})

	require.NoError(t, v.FetchPage(context.Background(), 1))

	snap := v.Snapshot()
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "b", *snap.Selected)
	assert.Equal(t, int64(2), snap.Total)
	assert.Len(t, snap.Records, 2)
}

func TestFetchFailureKeepsPriorRecords(t *testing.T) {
	store := &fakeStore{records: []models.WebhookLogModel{rec("a", testUser)}, total: 1}
	v := newTestView(store, &fakeFeed{}, &fakeNotifier{}, &fakeClock{})
	require.NoError(t, v.FetchPage(context.Background(), 1))

	store.mu.Lock()
	store.err = errors.New("db down")
	store.mu.Unlock()

	err := v.FetchPage(context.Background(), 2)
	require.Error(t, err)

	snap := v.Snapshot()
	assert.Len(t, snap.Records, 1, "failed fetch must not clear the list")
	assert.Equal(t, 1, snap.Page, "page stays where the last success left it")
}

func TestSelectDisablesFollowLatest(t *testing.T) {
	store := &fakeStore{records: []models.WebhookLogModel{rec("b", testUser), rec("a", testUser)}, total: 2}
	notifier := &fakeNotifier{}
	v := newTestView(store, &fakeFeed{}, notifier, &fakeClock{})
	require.NoError(t, v.FetchPage(context.Background(), 1))

	v.Select("a")

	snap := v.Snapshot()
	assert.Equal(t, "a", *snap.Selected)
	assert.False(t, snap.FollowLatest)
	assert.True(t, notifier.has(NoticeFollowDisabled))

	// selecting again with follow already off does not re-notify
	before := len(notifier.kinds)
	v.Select("b")
	assert.Len(t, notifier.kinds, before)
}

func TestApplyLiveUpdatePrependsWithoutDedup(t *testing.T) {
	store := &fakeStore{records: []models.WebhookLogModel{rec("a", testUser)}, total: 1}
	notifier := &fakeNotifier{}
	v := newTestView(store, &fakeFeed{}, notifier, &fakeClock{})
	require.NoError(t, v.FetchPage(context.Background(), 1))

	v.ApplyLiveUpdate(rec("a", testUser))

	snap := v.Snapshot()
	// the same id appears twice: live merge does not de-duplicate
	assert.Len(t, snap.Records, 2)
	assert.Equal(t, int64(1), snap.Total, "live merge leaves the stored total alone")
	assert.True(t, notifier.has(NoticeNewLog))
}

func TestApplyLiveUpdateDiscardsForeignRecords(t *testing.T) {
	store := &fakeStore{records: []models.WebhookLogModel{rec("a", testUser)}, total: 1}
	notifier := &fakeNotifier{}
	v := newTestView(store, &fakeFeed{}, notifier, &fakeClock{})
	require.NoError(t, v.FetchPage(context.Background(), 1))

	v.ApplyLiveUpdate(rec("x", "someone-else"))
	anon := models.WebhookLogModel{}
	anon.ID = "y"
	v.ApplyLiveUpdate(anon)

	snap := v.Snapshot()
	assert.Len(t, snap.Records, 1)
	assert.False(t, notifier.has(NoticeNewLog))
}

func TestApplyLiveUpdateFollowsLatest(t *testing.T) {
	store := &fakeStore{records: []models.WebhookLogModel{rec("a", testUser)}, total: 1}
	v := newTestView(store, &fakeFeed{}, &fakeNotifier{}, &fakeClock{})
	require.NoError(t, v.FetchPage(context.Background(), 1))

	v.ApplyLiveUpdate(rec("new", testUser))

	snap := v.Snapshot()
	assert.Equal(t, "new", *snap.Selected)
}

func TestSelectionStableWhenNotFollowing(t *testing.T) {
	store := &fakeStore{records: []models.WebhookLogModel{rec("b", testUser), rec("a", testUser)}, total: 2}
	v := newTestView(store, &fakeFeed{}, &fakeNotifier{}, &fakeClock{})
	require.NoError(t, v.FetchPage(context.Background(), 1))
	v.Select("a") // also turns follow-latest off

	v.ApplyLiveUpdate(rec("live", testUser))
	require.NoError(t, v.FetchPage(context.Background(), 1))

	snap := v.Snapshot()
	assert.Equal(t, "a", *snap.Selected, "neither fetch nor live delivery moves a manual selection")
}

func TestSetFilterClearsSelectionAndResubscribes(t *testing.T) {
	store := &fakeStore{records: []models.WebhookLogModel{rec("a", testUser)}, total: 1}
	feed := &fakeFeed{}
	notifier := &fakeNotifier{}
	v := newTestView(store, feed, notifier, &fakeClock{})

	require.NoError(t, v.SetUpdateMode(ModePush, 0))
	require.Equal(t, 1, feed.activeCount())
	require.NoError(t, v.FetchPage(context.Background(), 1))
	v.Select("a")

	tokenID := "tok-1"
	require.NoError(t, v.SetFilter(context.Background(), &tokenID))

	assert.Equal(t, 1, feed.activeCount(), "exactly one live subscription after re-key")
	assert.Equal(t, 2, feed.opened)
	assert.Equal(t, 1, feed.cancelled)
	require.NotNil(t, feed.lastToken)
	assert.Equal(t, "tok-1", *feed.lastToken)
	assert.True(t, notifier.has(NoticeFilterChanged))

	snap := v.Snapshot()
	require.NotNil(t, snap.TokenID)
	assert.Equal(t, "tok-1", *snap.TokenID)
	// selection was cleared, then the first-load policy picked the newest
	require.NotNil(t, snap.Selected)
	assert.Equal(t, "a", *snap.Selected)
	assert.Equal(t, 1, store.lastPage, "filter change refetches page 1")
}

func TestSetFilterReportsQueryState(t *testing.T) {
	store := &fakeStore{}
	var got []QueryState
	v := New(testUser, store, &fakeFeed{}, &fakeNotifier{}, &fakeClock{}, func(qs QueryState) {
		got = append(got, qs)
	})

	tokenID := "tok-9"
	require.NoError(t, v.SetFilter(context.Background(), &tokenID))
	require.NoError(t, v.SetFilter(context.Background(), nil))

	require.Len(t, got, 2)
	require.NotNil(t, got[0].TokenID)
	assert.Equal(t, "tok-9", *got[0].TokenID)
	assert.Nil(t, got[1].TokenID)
}

func TestSetUpdateModeTransitions(t *testing.T) {
	store := &fakeStore{records: []models.WebhookLogModel{rec("a", testUser)}, total: 1}
	feed := &fakeFeed{}
	clock := &fakeClock{}
	v := newTestView(store, feed, &fakeNotifier{}, clock)

	require.NoError(t, v.SetUpdateMode(ModePush, 0))
	assert.Equal(t, 1, feed.activeCount())
	assert.Empty(t, clock.tickers)

	require.NoError(t, v.SetUpdateMode(ModeInterval, 2*time.Second))
	assert.Equal(t, 0, feed.activeCount(), "leaving push cancels the subscription")
	require.Len(t, clock.tickers, 1)
	assert.Equal(t, 2*time.Second, clock.lastD)

	require.NoError(t, v.SetUpdateMode(ModeInterval, 7*time.Second))
	require.Len(t, clock.tickers, 2, "re-entering interval restarts the ticker")
	assert.True(t, tickerStopped(clock.tickers[0]))
	assert.Equal(t, 7*time.Second, clock.lastD)

	require.NoError(t, v.SetUpdateMode(ModeManual, 0))
	assert.Equal(t, 0, feed.activeCount())
	assert.True(t, tickerStopped(clock.tickers[1]))

	assert.Error(t, v.SetUpdateMode(UpdateMode("bogus"), 0))
}

func TestIntervalTickTriggersRefresh(t *testing.T) {
	store := &fakeStore{records: []models.WebhookLogModel{rec("a", testUser)}, total: 1}
	clock := &fakeClock{}
	v := newTestView(store, &fakeFeed{}, &fakeNotifier{}, clock)

	require.NoError(t, v.SetUpdateMode(ModeInterval, time.Second))
	require.Len(t, clock.tickers, 1)

	clock.tickers[0].ch <- time.Now()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.calls >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestPushDeliveryFlowsThroughFeed(t *testing.T) {
	store := &fakeStore{}
	feed := &fakeFeed{}
	v := newTestView(store, feed, &fakeNotifier{}, &fakeClock{})

	require.NoError(t, v.SetUpdateMode(ModePush, 0))
	require.NotNil(t, feed.fn)

	feed.fn(rec("live-1", testUser))

	snap := v.Snapshot()
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "live-1", snap.Records[0].ID)
}

func TestStaleSubscriptionDeliveryIsIgnored(t *testing.T) {
	store := &fakeStore{}
	feed := &fakeFeed{}
	v := newTestView(store, feed, &fakeNotifier{}, &fakeClock{})

	require.NoError(t, v.SetUpdateMode(ModePush, 0))
	stale := feed.fn
	require.NoError(t, v.SetUpdateMode(ModeManual, 0))

	stale(rec("late", testUser))

	assert.Empty(t, v.Snapshot().Records)
}

func TestSubscribeFailureOnlyNotifies(t *testing.T) {
	store := &fakeStore{}
	feed := &fakeFeed{err: errors.New("redis gone")}
	notifier := &fakeNotifier{}
	clock := &fakeClock{}
	v := newTestView(store, feed, notifier, clock)

	require.NoError(t, v.SetUpdateMode(ModePush, 0))

	assert.True(t, notifier.has(NoticeSubscribeFailed))
	assert.Equal(t, ModePush, v.Snapshot().Mode, "mode stays push, no silent fallback")
	assert.Empty(t, clock.tickers, "no polling starts on its own")
}

func TestCloseReleasesResources(t *testing.T) {
	store := &fakeStore{}
	feed := &fakeFeed{}
	clock := &fakeClock{}
	v := newTestView(store, feed, &fakeNotifier{}, clock)

	require.NoError(t, v.SetUpdateMode(ModePush, 0))
	v.Close()

	assert.Equal(t, 0, feed.activeCount())
	v.ApplyLiveUpdate(rec("after-close", testUser))
	assert.Empty(t, v.Snapshot().Records)
}

func tickerStopped(t *fakeTicker) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
