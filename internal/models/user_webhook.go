package models

// UserWebhookModel is a named inbound-webhook credential. The token value is
// an opaque random string stored in plaintext: it is an inspection
// credential the dashboard displays back to its owner, not a secret hash.
type UserWebhookModel struct {
	Base
	UserID string `json:"user_id" gorm:"index;not null"`
	Token  string `json:"token"   gorm:"uniqueIndex;not null"`
	Name   string `json:"name"    gorm:"not null"`

	Logs []WebhookLogModel `json:"logs,omitempty" gorm:"foreignKey:TokenID"`
}

func (UserWebhookModel) TableName() string { return "user_webhooks" }
