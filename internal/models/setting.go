package models

// SettingModel stores one user's viewer preferences. Payload is an opaque
// JSON document interpreted by the settings module; SchemaVersion lets old
// payload shapes migrate forward at read time.
type SettingModel struct {
	Base
	UserID        string `json:"user_id"        gorm:"uniqueIndex;not null"`
	SchemaVersion int    `json:"schema_version" gorm:"not null;default:1"`
	Payload       string `json:"payload"        gorm:"type:longtext"`
}

func (SettingModel) TableName() string { return "user_settings" }
