package models

import "time"

// UserModel represents a dashboard owner account.
type UserModel struct {
	Base
	Username      string     `json:"username" gorm:"uniqueIndex;not null"`
	Name          string     `json:"name"`
	Password      string     `json:"-"        gorm:"not null"`
	Mail          string     `json:"mail"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`

	Webhooks []UserWebhookModel `json:"webhooks,omitempty" gorm:"foreignKey:UserID"`
}

func (UserModel) TableName() string { return "users" }
