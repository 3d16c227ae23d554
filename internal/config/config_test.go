package config

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "PORT", "FEED_URL", "MERGE_POLICY", "DEFAULT_LIMIT", "FEED_CACHE_TTL", "REFERENCE_TZ"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "5005", cfg.Port)
	assert.Equal(t, "field", cfg.MergePolicy)
	assert.Equal(t, 500, cfg.DefaultLimit)
	assert.Equal(t, 5*time.Minute, cfg.FeedCacheTTL)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "America/New_York", cfg.Location().String())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FEED_URL", "https://letterboxd.com/someone/rss/")
	t.Setenv("MERGE_POLICY", "score")
	t.Setenv("FEED_CACHE_TTL", "90")
	t.Setenv("POSTER_RPS", "2.5")
	t.Setenv("DEFAULT_LIMIT", "oops")

	cfg := Load()
	assert.Equal(t, "score", cfg.MergePolicy)
	assert.Equal(t, 90*time.Second, cfg.FeedCacheTTL)
	assert.Equal(t, 2.5, cfg.PosterRPS)
	assert.Equal(t, 500, cfg.DefaultLimit)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("MERGE_POLICY", "newest")
	assert.Error(t, Load().Validate())

	t.Setenv("MERGE_POLICY", "")
	t.Setenv("REFERENCE_TZ", "Mars/Olympus")
	cfg := Load()
	assert.Error(t, cfg.Validate())
	assert.Equal(t, time.UTC, cfg.Location())
}
