package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/BLxcwg666/hooklog/internal/models"
	"gorm.io/gorm"
)

const valuePrefix = "whk_"

// Service manages inbound-webhook tokens. Tokens are created and listed;
// they are never updated or deleted, so log ownership stays stable for the
// lifetime of a record.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// List returns the user's tokens, newest first.
func (s *Service) List(userID string) ([]models.UserWebhookModel, error) {
	var tokens []models.UserWebhookModel
	return tokens, s.db.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&tokens).Error
}

// Create generates a fresh opaque token value. Name is unique per user;
// a collision returns errTokenNameTaken.
func (s *Service) Create(userID string, dto *CreateTokenDTO) (*models.UserWebhookModel, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		name = defaultTokenName
	}

	var count int64
	if err := s.db.Model(&models.UserWebhookModel{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errTokenNameTaken
	}

	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	t := models.UserWebhookModel{
		UserID: userID,
		Token:  valuePrefix + hex.EncodeToString(b),
		Name:   name,
	}
	return &t, s.db.Create(&t).Error
}

// Resolve maps a bearer token value to its owner. Used by the ingress path.
func (s *Service) Resolve(value string) (*models.UserWebhookModel, error) {
	var t models.UserWebhookModel
	err := s.db.Where("token = ?", value).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
