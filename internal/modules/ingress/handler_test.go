package ingress

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BLxcwg666/hooklog/internal/config"
	"github.com/BLxcwg666/hooklog/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	creds map[string]*models.UserWebhookModel
	err   error
}

func (r *fakeResolver) Resolve(value string) (*models.UserWebhookModel, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.creds[value], nil
}

type fakeRecorder struct {
	mu   sync.Mutex
	logs []*models.WebhookLogModel
	err  error
	done chan struct{}
}

func (r *fakeRecorder) Record(_ context.Context, log *models.WebhookLogModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.logs = append(r.logs, log)
	if r.done != nil {
		close(r.done)
		r.done = nil
	}
	return nil
}

func (r *fakeRecorder) recorded() []*models.WebhookLogModel {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.WebhookLogModel, len(r.logs))
	copy(out, r.logs)
	return out
}

func validCred() *models.UserWebhookModel {
	cred := &models.UserWebhookModel{UserID: "user-1", Token: "whk_good"}
	cred.ID = "token-1"
	return cred
}

func newTestRouter(t *testing.T, cfg config.IngressConfig, resolver TokenResolver, recorder Recorder) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if cfg.TokenHeader == "" {
		cfg.TokenHeader = "X-Webhook-Token"
	}
	r := gin.New()
	NewHandler(resolver, recorder, cfg, nil).RegisterRoutes(r)
	return r
}

func TestReceiveMissingToken(t *testing.T) {
	rec := &fakeRecorder{}
	r := newTestRouter(t, config.IngressConfig{Persistence: config.PersistenceSync}, &fakeResolver{}, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(`{"a":1}`))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"missing webhook token"}`, w.Body.String())
	assert.Empty(t, rec.recorded(), "rejected request must not be stored")
}

func TestReceiveUnknownToken(t *testing.T) {
	rec := &fakeRecorder{}
	r := newTestRouter(t, config.IngressConfig{Persistence: config.PersistenceSync}, &fakeResolver{}, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", nil)
	req.Header.Set("X-Webhook-Token", "whk_nope")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid webhook token"}`, w.Body.String())
	assert.Empty(t, rec.recorded())
}

func TestReceiveSyncStoresAndAttributes(t *testing.T) {
	resolver := &fakeResolver{creds: map[string]*models.UserWebhookModel{"whk_good": validCred()}}
	rec := &fakeRecorder{}
	r := newTestRouter(t, config.IngressConfig{Persistence: config.PersistenceSync}, resolver, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/webhook/orders/created", strings.NewReader(`{"event":"order.created"}`))
	req.Header.Set("X-Webhook-Token", "whk_good")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Stripe/1.0")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	logs := rec.recorded()
	require.Len(t, logs, 1)
	log := logs[0]
	assert.Equal(t, http.MethodPut, log.Method)
	assert.Equal(t, "/orders/created", log.Path)
	assert.Equal(t, "Stripe/1.0", log.Source)
	assert.Equal(t, "order.created", log.Body["event"])
	assert.Equal(t, "application/json", log.Headers["content-type"], "header keys are lowercased")
	require.NotNil(t, log.UserID)
	require.NotNil(t, log.TokenID)
	assert.Equal(t, "user-1", *log.UserID)
	assert.Equal(t, "token-1", *log.TokenID)
}

func TestReceiveSyncStorageFailure(t *testing.T) {
	resolver := &fakeResolver{creds: map[string]*models.UserWebhookModel{"whk_good": validCred()}}
	rec := &fakeRecorder{err: errors.New("insert failed")}
	r := newTestRouter(t, config.IngressConfig{Persistence: config.PersistenceSync}, resolver, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(`{}`))
	req.Header.Set("X-Webhook-Token", "whk_good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"failed to store webhook"}`, w.Body.String())
}

func TestReceiveAsyncAcknowledgesBeforeStore(t *testing.T) {
	resolver := &fakeResolver{creds: map[string]*models.UserWebhookModel{"whk_good": validCred()}}
	done := make(chan struct{})
	rec := &fakeRecorder{done: done}
	r := newTestRouter(t, config.IngressConfig{Persistence: config.PersistenceAsync}, resolver, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(`{"n":1}`))
	req.Header.Set("X-Webhook-Token", "whk_good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("background store never ran")
	}
	assert.Len(t, rec.recorded(), 1)
}

func TestReceiveAsyncStorageFailureStaysSilent(t *testing.T) {
	resolver := &fakeResolver{creds: map[string]*models.UserWebhookModel{"whk_good": validCred()}}
	rec := &fakeRecorder{err: errors.New("insert failed")}
	r := newTestRouter(t, config.IngressConfig{Persistence: config.PersistenceAsync}, resolver, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(`{}`))
	req.Header.Set("X-Webhook-Token", "whk_good")
	r.ServeHTTP(w, req)

	// the sender already got its ack; the failure is an operator concern
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReceiveAnonymousWhenAllowed(t *testing.T) {
	rec := &fakeRecorder{}
	cfg := config.IngressConfig{Persistence: config.PersistenceSync, AllowAnonymous: true}
	r := newTestRouter(t, cfg, &fakeResolver{}, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/webhook", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	logs := rec.recorded()
	require.Len(t, logs, 1)
	assert.Nil(t, logs[0].UserID)
	assert.Nil(t, logs[0].TokenID)
	assert.Equal(t, "/", logs[0].Path)
	assert.Equal(t, "unknown", logs[0].Source)
}

func TestReceiveNonJSONBodyStoredEmpty(t *testing.T) {
	resolver := &fakeResolver{creds: map[string]*models.UserWebhookModel{"whk_good": validCred()}}
	rec := &fakeRecorder{}
	r := newTestRouter(t, config.IngressConfig{Persistence: config.PersistenceSync}, resolver, rec)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader("plain text body"))
	req.Header.Set("X-Webhook-Token", "whk_good")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	logs := rec.recorded()
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].Body, "unparseable body becomes an empty object, never an error")
}

func TestReceiveAcceptsEveryMethod(t *testing.T) {
	resolver := &fakeResolver{creds: map[string]*models.UserWebhookModel{"whk_good": validCred()}}
	rec := &fakeRecorder{}
	r := newTestRouter(t, config.IngressConfig{Persistence: config.PersistenceSync}, resolver, rec)

	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/api/webhook", nil)
		req.Header.Set("X-Webhook-Token", "whk_good")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
	assert.Len(t, rec.recorded(), 5)
}
