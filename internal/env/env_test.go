package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	t.Setenv("USER_SECRET", "secret")

	cfg, err := Parse()
	require.NoError(t, err)
	require.Equal(t, ":83", cfg.ListenAddr)
	require.Equal(t, "users", cfg.UserCollection)
	require.Equal(t, "calls:events", cfg.EventsChannel)
	require.Equal(t, 30*time.Second, cfg.PingInterval)
	require.Equal(t, 60*time.Second, cfg.PongWait)
	require.False(t, cfg.RedisEnabled())
	require.False(t, cfg.DirectoryEnabled())
}

func TestParseRequiresSecret(t *testing.T) {
	t.Setenv("USER_SECRET", "")

	_, err := Parse()
	require.Error(t, err)
}

func TestParseReadsOriginList(t *testing.T) {
	t.Setenv("USER_SECRET", "secret")
	t.Setenv("WEB_URL", "http://localhost:3000,https://app.example.com")

	cfg, err := Parse()
	require.NoError(t, err)
	require.Equal(t, []string{"http://localhost:3000", "https://app.example.com"}, cfg.AllowedOrigins)
}

func TestParseRejectsPingSlowerThanPong(t *testing.T) {
	t.Setenv("USER_SECRET", "secret")
	t.Setenv("WS_PING_INTERVAL", "90s")
	t.Setenv("WS_PONG_WAIT", "60s")

	_, err := Parse()
	require.ErrorContains(t, err, "WS_PING_INTERVAL")
}
