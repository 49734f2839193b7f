package ingress

import (
	"context"

	"github.com/BLxcwg666/hooklog/internal/models"
)

// TokenResolver maps an inbound bearer token value to its owning credential.
// A nil credential with nil error means the token is unknown.
type TokenResolver interface {
	Resolve(value string) (*models.UserWebhookModel, error)
}

// Recorder persists one immutable log record and announces it on the change
// feed. In fire-and-forget deployments the caller never sees its error.
type Recorder interface {
	Record(ctx context.Context, log *models.WebhookLogModel) error
}

const (
	sourceUnknown = "unknown"

	// maxBodyBytes caps how much of a webhook body is read for storage.
	maxBodyBytes = 1 << 20
)
