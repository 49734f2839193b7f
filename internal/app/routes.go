package app

import (
	"net/http"

	"github.com/BLxcwg666/hooklog/internal/middleware"
	"github.com/BLxcwg666/hooklog/internal/modules/auth"
	"github.com/BLxcwg666/hooklog/internal/modules/gateway"
	"github.com/BLxcwg666/hooklog/internal/modules/health"
	"github.com/BLxcwg666/hooklog/internal/modules/ingress"
	"github.com/BLxcwg666/hooklog/internal/modules/logs"
	"github.com/BLxcwg666/hooklog/internal/modules/settings"
	"github.com/BLxcwg666/hooklog/internal/modules/token"
	"github.com/BLxcwg666/hooklog/internal/pkg/bark"
	pkgredis "github.com/BLxcwg666/hooklog/internal/pkg/redis"
	"github.com/BLxcwg666/hooklog/internal/pkg/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(rc *pkgredis.Client, logSvc *logs.Service, settingsSvc *settings.Service) {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "hooklog",
		"version":  "1.0.0",
		"homepage": "https://github.com/BLxcwg666/hooklog",
		"issues":   "https://github.com/BLxcwg666/hooklog/issues",
	}

	barkSvc := bark.New(func() (key, serverURL, siteTitle string) {
		if !a.cfg.Bark.Enable {
			return "", "", ""
		}
		title := a.cfg.Bark.Title
		if title == "" {
			title = "HookLog"
		}
		return a.cfg.Bark.Key, a.cfg.Bark.ServerURL, title
	})

	// Webhook receiver: no auth, no rate limit, no idempotence guard, and
	// open CORS since senders come from anywhere. Duplicate and bursty
	// deliveries are the material being collected, not abuse.
	tokenSvc := token.NewService(db)
	ingressSvc := ingress.NewService(db, a.hub, a.logger, barkSvc)
	receiver := r.Group("", cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:    []string{"*"},
	}))
	ingress.NewHandler(tokenSvc, ingressSvc, a.cfg.Ingress, a.logger).RegisterRoutes(receiver)

	// socket.io transport, outside the API middleware chain but behind the
	// dashboard CORS policy.
	root := r.Group("", cors.New(corsConfig(a.cfg)))
	gateway.RegisterRoutes(root, a.hub)

	api := r.Group("/api/v1")
	api.Use(cors.New(corsConfig(a.cfg)))
	api.Use(middleware.RateLimit(rc.Raw(), barkSvc))
	api.Use(middleware.Idempotence(rc.Raw()))

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })

	health.RegisterRoutes(api, db, rc, a.sched, authMW)
	auth.NewHandler(auth.NewService(db)).RegisterRoutes(api, authMW)
	token.NewHandler(tokenSvc).RegisterRoutes(api, authMW)
	logs.NewHandler(logSvc).RegisterRoutes(api, authMW)
	settings.NewHandler(settingsSvc).RegisterRoutes(api, authMW)
}
