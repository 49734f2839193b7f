package settings

import (
	"errors"

	"github.com/BLxcwg666/hooklog/internal/middleware"
	"github.com/BLxcwg666/hooklog/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler wires the viewer settings endpoints.
type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/settings", authMW)
	g.GET("", h.get)
	g.PATCH("", h.update)
}

func (h *Handler) get(c *gin.Context) {
	s, err := h.svc.Load(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, s)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	s, err := h.svc.Update(c.Request.Context(), middleware.CurrentUserID(c), dto)
	if err != nil {
		if errors.Is(err, errInvalidMode) || errors.Is(err, errInvalidInterval) {
			response.UnprocessableEntity(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, s)
}
