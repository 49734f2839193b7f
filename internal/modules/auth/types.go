package auth

import (
	"errors"
	"time"
)

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterDTO struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name"`
	Mail     string `json:"mail"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	IP        string    `json:"ip"`
	UA        string    `json:"ua"`
	Current   bool      `json:"current"`
	ExpiresAt time.Time `json:"expires_at"`
	Created   time.Time `json:"created"`
}

var (
	errAuthUserNotFound       = errors.New("auth user not found")
	errAuthWrongPassword      = errors.New("auth wrong password")
	errOwnerAlreadyRegistered = errors.New("owner already registered")
)
