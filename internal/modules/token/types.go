package token

import (
	"errors"
	"time"
)

// CreateTokenDTO is the request body for creating a webhook token.
type CreateTokenDTO struct {
	Name string `json:"name"`
}

// tokenResponse is the outbound representation of a webhook token. The value
// is returned in full: it is the credential the user pastes into a sender.
type tokenResponse struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Token   string    `json:"token"`
	Created time.Time `json:"created"`
}

const defaultTokenName = "My Webhook"

var errTokenNameTaken = errors.New("token name already exists")
