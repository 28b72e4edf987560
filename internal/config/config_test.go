package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liteclaw/mirai/test/fixtures"
	test "github.com/liteclaw/mirai/test/helpers"
)

func TestConfigDefaults(t *testing.T) {
	test.NewTempHome(t)

	cfg, err := Load()
	assert.ErrorIs(t, err, ErrConfigNotFound)
	require.NotNil(t, cfg)

	assert.Equal(t, "http://localhost:8080", cfg.Gateway.URL)
	assert.Equal(t, 30*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, "polling", cfg.Events.Mode)
	assert.Equal(t, 500*time.Millisecond, cfg.Events.PollInterval)
	assert.Equal(t, 10, cfg.Events.Batch)
	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.RequireBot())
}

func TestConfigPath(t *testing.T) {
	home := test.NewTempHome(t)

	assert.Equal(t, filepath.Join(home.Dir, ".mirai", "mirai.json"), ConfigPath())
	assert.Equal(t, filepath.Join(home.Dir, ".mirai"), StateDir())

	t.Setenv("MIRAI_STATE_DIR", "/srv/mirai")
	assert.Equal(t, "/srv/mirai", StateDir())
	assert.Equal(t, "/srv/mirai/mirai.json", ConfigPath())

	t.Setenv("MIRAI_CONFIG_PATH", "/etc/mirai/bot.json")
	assert.Equal(t, "/etc/mirai/bot.json", ConfigPath())
}

func TestLoadConfigFromFile(t *testing.T) {
	home := test.NewTempHome(t)
	home.WriteConfig(t, `{
  "gateway": {
    "url": "http://127.0.0.1:9000",
    "authKey": "${TEST_MIRAI_AUTH}",
    "timeout": "5s"
  },
  "bot": {"qq": 10001},
  "events": {"mode": "websocket"},
  "replies": [
    {"match": "ping", "reply": "pong", "quote": true}
  ]
}`)
	t.Setenv("TEST_MIRAI_AUTH", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000", cfg.Gateway.URL)
	assert.Equal(t, "secret", cfg.Gateway.AuthKey)
	assert.Equal(t, 5*time.Second, cfg.Gateway.Timeout)
	assert.Equal(t, uint64(10001), cfg.Bot.QQ)
	assert.Equal(t, "websocket", cfg.Events.Mode)
	require.Len(t, cfg.Replies, 1)
	assert.Equal(t, ReplyRule{Match: "ping", Reply: "pong", Quote: true}, cfg.Replies[0])
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, cfg.RequireBot())
}

func TestLoadSampleConfig(t *testing.T) {
	home := test.NewTempHome(t)
	home.WriteConfig(t, fixtures.SampleConfig)
	t.Setenv("MIRAI_AUTH_KEY", "sample")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sample", cfg.Gateway.AuthKey)
	assert.Equal(t, 200*time.Millisecond, cfg.Events.PollInterval)
	assert.True(t, cfg.Schedule.Enabled)
	assert.Equal(t, filepath.Join(home.StateDir(), "schedule.json"), cfg.SchedulePath())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	home := test.NewTempHome(t)
	home.WriteConfig(t, `{"gateway": {"url": "http://127.0.0.1:9000"}}`)
	t.Setenv("MIRAI_GATEWAY_URL", "http://10.0.0.2:8080")
	t.Setenv("MIRAI_BOT_QQ", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:8080", cfg.Gateway.URL)
	assert.Equal(t, uint64(42), cfg.Bot.QQ)
}

func TestLoadConfig_Malformed(t *testing.T) {
	home := test.NewTempHome(t)
	home.WriteConfig(t, `{"gateway": `)

	_, err := Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfigNotFound)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Gateway: GatewayConfig{URL: "http://localhost:8080"},
			Events:  EventsConfig{Mode: "polling", Batch: 1},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing url", func(c *Config) { c.Gateway.URL = "" }, true},
		{"bad url", func(c *Config) { c.Gateway.URL = "not a url" }, true},
		{"bad mode", func(c *Config) { c.Events.Mode = "carrier-pigeon" }, true},
		{"zero batch", func(c *Config) { c.Events.Batch = 0 }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"empty reply", func(c *Config) { c.Replies = []ReplyRule{{Match: "hi"}} }, true},
		{"duplicate reply", func(c *Config) {
			c.Replies = []ReplyRule{{Match: "hi", Reply: "a"}, {Match: " hi ", Reply: "b"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveConfig(t *testing.T) {
	home := test.NewTempHome(t)

	cfg := &Config{
		Gateway: GatewayConfig{URL: "http://127.0.0.1:9000", Timeout: 10 * time.Second},
		Bot:     BotConfig{QQ: 7},
		Events:  EventsConfig{Mode: "polling", Batch: 3},
	}
	require.NoError(t, Save(cfg))

	info, err := os.Stat(filepath.Join(home.StateDir(), "mirai.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000", loaded.Gateway.URL)
	assert.Equal(t, 10*time.Second, loaded.Gateway.Timeout)
	assert.Equal(t, uint64(7), loaded.Bot.QQ)
	assert.Equal(t, 3, loaded.Events.Batch)
}

func TestSchedulePath(t *testing.T) {
	home := test.NewTempHome(t)

	cfg := &Config{}
	assert.Equal(t, filepath.Join(home.StateDir(), "schedule.json"), cfg.SchedulePath())

	cfg.Schedule.StorePath = "/var/lib/mirai/jobs.json"
	assert.Equal(t, "/var/lib/mirai/jobs.json", cfg.SchedulePath())
}

func TestWatch(t *testing.T) {
	home := test.NewTempHome(t)
	path := home.WriteConfig(t, `{"replies": [{"match": "a", "reply": "1"}]}`)

	v, err := LoadViper()
	require.NoError(t, err)

	reloaded := make(chan *Config, 16)
	Watch(v, func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	}, nil)

	require.NoError(t, os.WriteFile(path, []byte(`{"replies": [{"match": "b", "reply": "2"}]}`), 0644))

	// A write can surface as several events; wait for the new content.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if len(cfg.Replies) == 1 && cfg.Replies[0].Match == "b" {
				return
			}
		case <-timeout:
			t.Fatal("config was not reloaded")
		}
	}
}
