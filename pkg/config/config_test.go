package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, time.Minute, cfg.BusyCacheTTL)
	assert.Equal(t, 4, cfg.SchedulerInitialWeeks)
	assert.Equal(t, 12, cfg.SchedulerMaxWeeks)
	assert.Equal(t, 30*time.Minute, cfg.SchedulerWidenMargin)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "tandem.db")
	t.Setenv("BUSY_CACHE_TTL", "5m")
	t.Setenv("SCHEDULER_MAX_WEEKS", "8")
	t.Setenv("CALDAV_URL", "https://caldav.fastmail.com/dav/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "tandem.db", cfg.DatabaseURL)
	assert.Equal(t, 5*time.Minute, cfg.BusyCacheTTL)
	assert.Equal(t, 8, cfg.SchedulerMaxWeeks)
	assert.Equal(t, "https://caldav.fastmail.com/dav/", cfg.CalDAVURL)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SCHEDULER_MAX_WEEKS", "a lot")
	t.Setenv("BUSY_CACHE_TTL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.SchedulerMaxWeeks)
	assert.Equal(t, time.Minute, cfg.BusyCacheTTL)
}
