package settings

import (
	"errors"

	"github.com/BLxcwg666/hooklog/internal/modules/viewer"
)

// SchemaVersion is the payload shape this build reads and writes. Version 1
// is the legacy realtime/auto-refresh flag pair; version 2 is the explicit
// update-mode shape.
const SchemaVersion = 2

const (
	defaultIntervalMS = 5000
	minIntervalMS     = 1000
	maxIntervalMS     = 60000
)

// Settings is the current (version 2) payload shape.
type Settings struct {
	Mode           viewer.UpdateMode `json:"mode"`
	PollIntervalMS int               `json:"poll_interval_ms"`
	FollowLatest   bool              `json:"follow_latest"`
}

// legacySettings is the version 1 payload shape.
type legacySettings struct {
	EnableRealtime  bool `json:"enableRealtime"`
	AutoRefresh     bool `json:"autoRefresh"`
	RefreshInterval int  `json:"refreshInterval"`
}

// UpdateDTO is a partial update; nil fields keep their stored value.
type UpdateDTO struct {
	Mode           *viewer.UpdateMode `json:"mode"`
	PollIntervalMS *int               `json:"poll_interval_ms"`
	FollowLatest   *bool              `json:"follow_latest"`
}

var (
	errInvalidMode     = errors.New("mode must be one of push, interval, manual")
	errInvalidInterval = errors.New("poll interval must be between 1000 and 60000 ms")
)

// Defaults is what a user without a stored row gets.
func Defaults() Settings {
	return Settings{
		Mode:           viewer.ModePush,
		PollIntervalMS: defaultIntervalMS,
		FollowLatest:   true,
	}
}
