package logs

import (
	"errors"

	"github.com/BLxcwg666/hooklog/internal/middleware"
	"github.com/BLxcwg666/hooklog/internal/pkg/pagination"
	"github.com/BLxcwg666/hooklog/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler wires the log query endpoints.
type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/logs", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.get)
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		UserID: middleware.CurrentUserID(c),
		Page:   pagination.FromContext(c),
	}
	if tokenID := c.Query("tokenId"); tokenID != "" {
		q.TokenID = &tokenID
	}

	items, pag, err := h.svc.List(c.Request.Context(), q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

func (h *Handler) get(c *gin.Context) {
	log, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, errLogNotFound) {
			response.NotFound(c)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, log)
}
