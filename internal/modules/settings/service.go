package settings

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/BLxcwg666/hooklog/internal/models"
	"gorm.io/gorm"
)

const eventSettingsUpdate = "SETTINGS_UPDATE"

// Broadcaster pushes a settings change to the user's other dashboard
// sessions. The gateway hub implements it.
type Broadcaster interface {
	BroadcastToUser(userID, event string, payload interface{})
}

type Service struct {
	db   *gorm.DB
	feed Broadcaster
}

func NewService(db *gorm.DB, feed Broadcaster) *Service {
	return &Service{db: db, feed: feed}
}

// SetBroadcaster attaches the gateway after construction. The hub needs the
// settings service to seed views and the service needs the hub to broadcast,
// so one side binds late during wiring.
func (s *Service) SetBroadcaster(feed Broadcaster) { s.feed = feed }

// Load returns the user's settings in the current shape. Legacy payloads are
// migrated in memory only; the stored row keeps its version until the next
// save.
func (s *Service) Load(ctx context.Context, userID string) (Settings, error) {
	var row models.SettingModel
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Defaults(), nil
		}
		return Settings{}, err
	}
	return migrate(row.SchemaVersion, row.Payload), nil
}

// Update applies a partial update over the stored settings and saves the
// result at the current schema version. Last writer wins; concurrent tabs
// converge through the broadcast.
func (s *Service) Update(ctx context.Context, userID string, dto UpdateDTO) (Settings, error) {
	if dto.Mode != nil && !dto.Mode.Valid() {
		return Settings{}, errInvalidMode
	}
	if dto.PollIntervalMS != nil && (*dto.PollIntervalMS < minIntervalMS || *dto.PollIntervalMS > maxIntervalMS) {
		return Settings{}, errInvalidInterval
	}

	current, err := s.Load(ctx, userID)
	if err != nil {
		return Settings{}, err
	}
	if dto.Mode != nil {
		current.Mode = *dto.Mode
	}
	if dto.PollIntervalMS != nil {
		current.PollIntervalMS = *dto.PollIntervalMS
	}
	if dto.FollowLatest != nil {
		current.FollowLatest = *dto.FollowLatest
	}

	payload, err := json.Marshal(current)
	if err != nil {
		return Settings{}, err
	}

	var row models.SettingModel
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	switch {
	case err == nil:
		row.SchemaVersion = SchemaVersion
		row.Payload = string(payload)
		if err := s.db.WithContext(ctx).Save(&row).Error; err != nil {
			return Settings{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = models.SettingModel{
			UserID:        userID,
			SchemaVersion: SchemaVersion,
			Payload:       string(payload),
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return Settings{}, err
		}
	default:
		return Settings{}, err
	}

	if s.feed != nil {
		s.feed.BroadcastToUser(userID, eventSettingsUpdate, current)
	}
	return current, nil
}
