package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name                  string
		version, commit, date string
		want                  string
	}{
		{"dev build", "dev", "none", "unknown", "dev (development build)"},
		{"release", "v0.3.0", "abc1234", "2026-10-01", "v0.3.0 (commit: abc1234, built: 2026-10-01)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatVersion(tt.version, tt.commit, tt.date))
		})
	}
}

func TestGetVersionComponents(t *testing.T) {
	v, c, d := GetVersionComponents()
	assert.Equal(t, Version, v)
	assert.Equal(t, Commit, c)
	assert.Equal(t, Date, d)
	assert.Contains(t, GetVersion(), v)
}
