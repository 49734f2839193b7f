package app

import (
	"context"
	"fmt"
	"time"

	"github.com/BLxcwg666/hooklog/internal/config"
	"github.com/BLxcwg666/hooklog/internal/modules/logs"
	pkgcron "github.com/BLxcwg666/hooklog/internal/pkg/cron"
	"github.com/BLxcwg666/hooklog/internal/pkg/session"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, logSvc *logs.Service, cfg *config.AppConfig, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")
	retentionDays := cfg.RetentionDays

	sched.Register(pkgcron.Job{
		Name:        "cleanup_webhook_logs",
		Description: fmt.Sprintf("清理 %d 天以上的 webhook 记录", retentionDays),
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -retentionDays)
			deleted, err := logSvc.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				cronLogger.Warn("清理 webhook 记录失败", zap.Error(err))
				return err
			}
			cronLogger.Info(fmt.Sprintf("清理 webhook 记录成功，共删除 %d 条", deleted))
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "cleanup_expired_sessions",
		Description: "清理过期登录会话",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			deleted, err := session.CleanupExpired(db)
			if err != nil {
				cronLogger.Warn("清理过期会话失败", zap.Error(err))
				return err
			}
			cronLogger.Info(fmt.Sprintf("清理过期会话成功，共删除 %d 条", deleted))
			return nil
		},
	})
}
