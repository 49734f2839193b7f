package settings

import (
	"encoding/json"

	"github.com/BLxcwg666/hooklog/internal/modules/viewer"
)

// migrate turns a stored payload of any known schema version into the
// current shape. It is pure: unknown versions and unparseable payloads fall
// back to the defaults, nothing is written back until the next save.
func migrate(version int, payload string) Settings {
	switch version {
	case 1:
		var legacy legacySettings
		if err := json.Unmarshal([]byte(payload), &legacy); err != nil {
			return Defaults()
		}
		return migrateLegacy(legacy)
	case SchemaVersion:
		var s Settings
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return Defaults()
		}
		return clamp(s)
	default:
		return Defaults()
	}
}

// migrateLegacy maps the old flag pair onto an update mode. Realtime wins
// over auto-refresh when both are set. The old UI used autoRefresh to mean
// both "poll" and "jump to newest", so follow-latest is seeded from it.
func migrateLegacy(legacy legacySettings) Settings {
	s := Settings{
		Mode:           viewer.ModeManual,
		PollIntervalMS: legacy.RefreshInterval,
		FollowLatest:   legacy.AutoRefresh,
	}
	switch {
	case legacy.EnableRealtime:
		s.Mode = viewer.ModePush
	case legacy.AutoRefresh:
		s.Mode = viewer.ModeInterval
	}
	return clamp(s)
}

// clamp repairs out-of-range stored values instead of erroring: reads always
// succeed, validation only gates writes.
func clamp(s Settings) Settings {
	if !s.Mode.Valid() {
		s.Mode = viewer.ModePush
	}
	if s.PollIntervalMS < minIntervalMS || s.PollIntervalMS > maxIntervalMS {
		s.PollIntervalMS = defaultIntervalMS
	}
	return s
}
