package models

// WebhookLogModel is one immutable record per received webhook request.
// Rows are written once by the ingress handler and never updated; the
// retention cron is the only deleter.
type WebhookLogModel struct {
	Base
	Method     string                 `json:"method"      gorm:"not null"`
	Headers    map[string]string      `json:"headers"     gorm:"type:longtext;serializer:json"`
	Body       map[string]interface{} `json:"body"        gorm:"type:longtext;serializer:json"`
	Source     string                 `json:"source"`
	Path       string                 `json:"path"`
	StatusCode *int                   `json:"status_code,omitempty"`
	// UserID and TokenID are both set (authenticated ingestion) or both
	// null (anonymous ingestion), never one without the other.
	UserID  *string `json:"user_id,omitempty"  gorm:"index"`
	TokenID *string `json:"token_id,omitempty" gorm:"index"`
}

func (WebhookLogModel) TableName() string { return "webhook_logs" }
