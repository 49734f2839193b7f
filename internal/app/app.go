package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/BLxcwg666/hooklog/internal/config"
	"github.com/BLxcwg666/hooklog/internal/database"
	"github.com/BLxcwg666/hooklog/internal/middleware"
	"github.com/BLxcwg666/hooklog/internal/modules/gateway"
	"github.com/BLxcwg666/hooklog/internal/modules/logs"
	"github.com/BLxcwg666/hooklog/internal/modules/settings"
	pkgcron "github.com/BLxcwg666/hooklog/internal/pkg/cron"
	jwtpkg "github.com/BLxcwg666/hooklog/internal/pkg/jwt"
	pkgredis "github.com/BLxcwg666/hooklog/internal/pkg/redis"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	hub    *gateway.Hub
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
}

// New initializes the application: config → DB → Redis → hub → cron → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if cfg.JWTSecret != "" {
		jwtpkg.SetSecret(cfg.JWTSecret)
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	logSvc := logs.NewService(db)
	settingsSvc := settings.NewService(db, nil)
	hub := gateway.NewHub(rc, logger,
		logSvc,
		settingsSource{svc: settingsSvc},
		func(token string) (string, bool) {
			claims, err := middleware.ValidateTokenClaims(db, token)
			if err != nil {
				return "", false
			}
			return claims.UserID, true
		},
	)
	settingsSvc.SetBroadcaster(hub)

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	sched := pkgcron.New()
	registerCronJobs(sched, db, logSvc, cfg, logger)
	go sched.Start(ctx)

	app := &App{cfg: cfg, router: router, db: db, hub: hub, logger: logger, cancel: cancel, sched: sched}
	app.registerRoutes(rc, logSvc, settingsSvc)

	return app, nil
}

func corsConfig(cfg *config.AppConfig) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		corsCfg.AllowOriginFunc = func(origin string) bool {
			host := extractOriginHost(origin)
			for _, pattern := range patterns {
				if matchOriginPattern(pattern, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsCfg.AllowOriginFunc = func(origin string) bool { return true }
	}
	return corsCfg
}

// settingsSource adapts the settings service to what the gateway needs when
// seeding a freshly connected view.
type settingsSource struct{ svc *settings.Service }

func (s settingsSource) ViewSettings(ctx context.Context, userID string) (gateway.ViewSettings, error) {
	st, err := s.svc.Load(ctx, userID)
	if err != nil {
		return gateway.ViewSettings{}, err
	}
	return gateway.ViewSettings{
		Mode:         st.Mode,
		IntervalMS:   st.PollIntervalMS,
		FollowLatest: st.FollowLatest,
	}, nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown cleans up background goroutines.
func (a *App) Shutdown() { a.cancel() }
