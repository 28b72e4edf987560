package mirai

import (
	"context"
)

// ServerConfig is the gateway's runtime configuration.
type ServerConfig struct {
	// CacheSize is the number of messages the gateway keeps for quoting and
	// recalling. A cache that is too small makes both fail.
	CacheSize int `json:"cacheSize" yaml:"cacheSize"`
	// EnableWebsocket switches the gateway from polling to websocket delivery.
	EnableWebsocket bool `json:"enableWebsocket" yaml:"enableWebsocket"`
}

// GetConfig returns the gateway configuration.
func (s *Session) GetConfig(ctx context.Context) (*ServerConfig, error) {
	var cfg ServerConfig
	if err := s.get(ctx, "GetConfig", "/config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ModifyConfig replaces the gateway configuration.
func (s *Session) ModifyConfig(ctx context.Context, cfg ServerConfig) error {
	if cfg.CacheSize <= 0 {
		return clientErrorf("ModifyConfig", "cache size must be positive, got %d", cfg.CacheSize)
	}

	body := map[string]any{
		"cacheSize":       cfg.CacheSize,
		"enableWebsocket": cfg.EnableWebsocket,
	}
	return s.post(ctx, "ModifyConfig", "/config", body, nil)
}
