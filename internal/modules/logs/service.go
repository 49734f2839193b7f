package logs

import (
	"context"
	"errors"
	"time"

	"github.com/BLxcwg666/hooklog/internal/models"
	"github.com/BLxcwg666/hooklog/internal/pkg/pagination"
	"github.com/BLxcwg666/hooklog/internal/pkg/response"
	"gorm.io/gorm"
)

// Service reads webhook log records. Writes happen only in the ingress
// module; this service never mutates rows.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// List returns one page of the user's logs, newest first. The count and page
// queries are separate; a record inserted between them may skew the total by
// one, which is acceptable for pagination metadata.
func (s *Service) List(ctx context.Context, q ListQuery) ([]models.WebhookLogModel, response.Pagination, error) {
	tx := s.db.WithContext(ctx).Model(&models.WebhookLogModel{}).
		Where("user_id = ?", q.UserID)
	if q.TokenID != nil {
		tx = tx.Where("token_id = ?", *q.TokenID)
	}
	tx = tx.Order("created_at DESC")

	var items []models.WebhookLogModel
	pag, err := pagination.Paginate(tx, q.Page, &items)
	if err != nil {
		return nil, response.Pagination{}, err
	}
	return items, pag, nil
}

// FetchPage is the flat page read the gateway's hosted views use. Size is
// clamped the same way the HTTP API clamps it.
func (s *Service) FetchPage(ctx context.Context, userID string, tokenID *string, page, size int) ([]models.WebhookLogModel, int64, error) {
	if page < 1 {
		page = pagination.DefaultPage
	}
	if size < 1 || size > pagination.MaxSize {
		size = pagination.DefaultSize
	}
	items, pag, err := s.List(ctx, ListQuery{
		UserID:  userID,
		TokenID: tokenID,
		Page:    pagination.Query{Page: page, Size: size},
	})
	if err != nil {
		return nil, 0, err
	}
	return items, pag.Total, nil
}

// Get returns one record owned by the user, or errLogNotFound.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.WebhookLogModel, error) {
	var log models.WebhookLogModel
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errLogNotFound
		}
		return nil, err
	}
	return &log, nil
}

// DeleteOlderThan hard-deletes records past the retention cutoff. Returns
// rows removed. Called only by the retention cron.
func (s *Service) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.WebhookLogModel{})
	return res.RowsAffected, res.Error
}
