package ingress

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/BLxcwg666/hooklog/internal/config"
	"github.com/BLxcwg666/hooklog/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler owns the public webhook receiver. It lives outside the dashboard
// API group: no auth middleware, no rate limit, no response envelope. Senders
// only ever see {"success":true} or {"error":"..."}.
type Handler struct {
	resolver TokenResolver
	recorder Recorder
	cfg      config.IngressConfig
	logger   *zap.Logger
}

func NewHandler(resolver TokenResolver, recorder Recorder, cfg config.IngressConfig, logger *zap.Logger) *Handler {
	return &Handler{resolver: resolver, recorder: recorder, cfg: cfg, logger: logger}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.Any("/api/webhook", h.Receive)
	r.Any("/api/webhook/*path", h.Receive)
}

func (h *Handler) Receive(c *gin.Context) {
	var userID, tokenID *string

	value := strings.TrimSpace(c.GetHeader(h.cfg.TokenHeader))
	if value == "" {
		if !h.cfg.AllowAnonymous {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing webhook token"})
			return
		}
	} else {
		cred, err := h.resolver.Resolve(value)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token lookup failed"})
			return
		}
		if cred == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook token"})
			return
		}
		uid, tid := cred.UserID, cred.ID
		userID, tokenID = &uid, &tid
	}

	log := h.buildLog(c)
	log.UserID = userID
	log.TokenID = tokenID

	if h.cfg.Persistence == config.PersistenceSync {
		if err := h.recorder.Record(c.Request.Context(), log); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store webhook"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	// Fire and forget: acknowledge before the insert so slow storage never
	// stalls the sender. The request context dies with the response, so the
	// background write gets its own.
	c.JSON(http.StatusOK, gin.H{"success": true})
	go func() {
		_ = h.recorder.Record(context.Background(), log)
	}()
}

func (h *Handler) buildLog(c *gin.Context) *models.WebhookLogModel {
	headers := make(map[string]string, len(c.Request.Header))
	for name, values := range c.Request.Header {
		headers[strings.ToLower(name)] = strings.Join(values, ", ")
	}

	body := map[string]interface{}{}
	if raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes)); err == nil && len(raw) > 0 {
		var parsed map[string]interface{}
		if json.Unmarshal(raw, &parsed) == nil {
			body = parsed
		} else if h.logger != nil {
			h.logger.Debug("webhook body is not a JSON object, storing empty body",
				zap.String("path", c.Request.URL.Path))
		}
	}

	source := c.GetHeader("User-Agent")
	if source == "" {
		source = sourceUnknown
	}

	return &models.WebhookLogModel{
		Method:  c.Request.Method,
		Headers: headers,
		Body:    body,
		Source:  source,
		Path:    subPath(c),
	}
}

// subPath is the portion after the receiver mount point, "/" when the
// webhook hit the bare endpoint.
func subPath(c *gin.Context) string {
	p := c.Param("path")
	if p == "" {
		return "/"
	}
	return p
}
