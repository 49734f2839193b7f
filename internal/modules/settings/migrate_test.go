package settings

import (
	"testing"

	"github.com/BLxcwg666/hooklog/internal/modules/viewer"
	"github.com/stretchr/testify/assert"
)

func TestMigrateLegacyPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Settings
	}{
		{
			name:    "realtime wins over auto refresh",
			payload: `{"enableRealtime":true,"autoRefresh":true,"refreshInterval":3000}`,
			want:    Settings{Mode: viewer.ModePush, PollIntervalMS: 3000, FollowLatest: true},
		},
		{
			name:    "auto refresh maps to interval",
			payload: `{"enableRealtime":false,"autoRefresh":true,"refreshInterval":10000}`,
			want:    Settings{Mode: viewer.ModeInterval, PollIntervalMS: 10000, FollowLatest: true},
		},
		{
			name:    "neither flag maps to manual",
			payload: `{"enableRealtime":false,"autoRefresh":false,"refreshInterval":2000}`,
			want:    Settings{Mode: viewer.ModeManual, PollIntervalMS: 2000, FollowLatest: false},
		},
		{
			name:    "out of range interval repaired",
			payload: `{"enableRealtime":false,"autoRefresh":true,"refreshInterval":50}`,
			want:    Settings{Mode: viewer.ModeInterval, PollIntervalMS: defaultIntervalMS, FollowLatest: true},
		},
		{
			name:    "garbage payload falls back to defaults",
			payload: `not json`,
			want:    Defaults(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, migrate(1, tt.payload))
		})
	}
}

func TestMigrateCurrentVersion(t *testing.T) {
	got := migrate(SchemaVersion, `{"mode":"interval","poll_interval_ms":2500,"follow_latest":false}`)
	assert.Equal(t, Settings{Mode: viewer.ModeInterval, PollIntervalMS: 2500, FollowLatest: false}, got)

	// bad stored mode is repaired at read time, not rejected
	got = migrate(SchemaVersion, `{"mode":"warp","poll_interval_ms":2500,"follow_latest":true}`)
	assert.Equal(t, viewer.ModePush, got.Mode)
}

func TestMigrateUnknownVersion(t *testing.T) {
	assert.Equal(t, Defaults(), migrate(99, `{"mode":"interval"}`))
}
