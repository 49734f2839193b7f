package ingress

import (
	"context"
	"fmt"

	"github.com/BLxcwg666/hooklog/internal/models"
	"github.com/BLxcwg666/hooklog/internal/pkg/bark"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Broadcaster pushes a freshly stored record to connected viewers.
type Broadcaster interface {
	LogCreated(log models.WebhookLogModel)
}

// Service is the persistence side of the ingress path.
type Service struct {
	db     *gorm.DB
	feed   Broadcaster
	logger *zap.Logger
	bark   *bark.Service
}

func NewService(db *gorm.DB, feed Broadcaster, logger *zap.Logger, barkSvc *bark.Service) *Service {
	return &Service{db: db, feed: feed, logger: logger, bark: barkSvc}
}

// Record inserts the log row and, on success, announces it on the change
// feed. Insert failures are logged for operators and alert (throttled)
// through Bark; the caller decides whether they reach the webhook sender.
func (s *Service) Record(ctx context.Context, log *models.WebhookLogModel) error {
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("webhook log insert failed",
				zap.String("method", log.Method),
				zap.String("path", log.Path),
				zap.Error(err),
			)
		}
		if s.bark != nil {
			go s.bark.ThrottledPush("ingress_store", "Webhook 入库失败", fmt.Sprintf("%s %s: %v", log.Method, log.Path, err))
		}
		return err
	}

	if s.feed != nil {
		s.feed.LogCreated(*log)
	}
	return nil
}
