package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gametracker.db", cfg.DatabasePath)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, 300*time.Millisecond, cfg.Client.SearchDebounce)
	assert.Equal(t, 5*time.Second, cfg.Client.ConfirmTimeout)
	assert.Equal(t, "http://localhost:8080/api", cfg.Client.APIBaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("SEARCH_DEBOUNCE", "150ms")
	t.Setenv("API_BASE_URL", "http://tracker.local/api/")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 150*time.Millisecond, cfg.Client.SearchDebounce)
	assert.Equal(t, "http://tracker.local/api", cfg.Client.APIBaseURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
}

func TestLoadAuthRequiresHash(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTH_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Second, parseDuration("", time.Second))
	assert.Equal(t, time.Second, parseDuration("soon", time.Second))
	assert.Equal(t, time.Second, parseDuration("-3s", time.Second))
	assert.Equal(t, 2*time.Minute, parseDuration("2m", time.Second))
}

// chdir changes the working directory for the duration of the test,
// equivalent to testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
