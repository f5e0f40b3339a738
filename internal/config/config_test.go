package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "")
	t.Setenv("PENDING_ACTION_TTL", "")
	t.Setenv("TAX_RATE", "")

	cfg := Load()
	assert.Equal(t, 3600, cfg.SessionTimeout)
	assert.Equal(t, time.Hour, cfg.SessionTTL())
	assert.Equal(t, 24*time.Hour, cfg.PendingActionTTL)
	assert.InDelta(t, 0.08, cfg.TaxRate, 1e-9)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "60")
	t.Setenv("PENDING_ACTION_TTL", "2h")
	t.Setenv("TAX_RATE", "0.1")
	t.Setenv("WHATSAPP_API_URL", "http://wa.local")

	cfg := Load()
	assert.Equal(t, time.Minute, cfg.SessionTTL())
	assert.Equal(t, 2*time.Hour, cfg.PendingActionTTL)
	assert.InDelta(t, 0.1, cfg.TaxRate, 1e-9)
	assert.True(t, cfg.NotificationsEnabled())
}

func TestLoad_IgnoresMalformed(t *testing.T) {
	t.Setenv("SESSION_TIMEOUT", "soon")
	t.Setenv("PENDING_ACTION_TTL", "-5m")

	cfg := Load()
	assert.Equal(t, 3600, cfg.SessionTimeout)
	assert.Equal(t, 24*time.Hour, cfg.PendingActionTTL)
}
