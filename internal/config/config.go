package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Auth      AuthConfig      `mapstructure:"auth"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// APIConfig holds backend data API configuration
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	SendTimeout    time.Duration `mapstructure:"send_timeout"`
	UploadTimeout  time.Duration `mapstructure:"upload_timeout"`
}

// AuthConfig holds session configuration
type AuthConfig struct {
	Token string `mapstructure:"token"`
}

// WebSocketConfig holds realtime channel configuration
type WebSocketConfig struct {
	URL             string        `mapstructure:"url"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	WriteWait       time.Duration `mapstructure:"write_wait"`
	PongWait        time.Duration `mapstructure:"pong_wait"`
	PingPeriod      time.Duration `mapstructure:"ping_period"`
	EventBufferSize int           `mapstructure:"event_buffer_size"`
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero-valued fields
func (cfg *Config) ApplyDefaults() {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080"
	}
	if cfg.API.RequestTimeout == 0 {
		cfg.API.RequestTimeout = 15 * time.Second
	}
	if cfg.API.SendTimeout == 0 {
		cfg.API.SendTimeout = 10 * time.Second
	}
	if cfg.API.UploadTimeout == 0 {
		cfg.API.UploadTimeout = 60 * time.Second
	}
	if cfg.WebSocket.URL == "" {
		cfg.WebSocket.URL = "ws://localhost:8080/ws"
	}
	if cfg.WebSocket.MaxMessageSize == 0 {
		cfg.WebSocket.MaxMessageSize = 51200
	}
	if cfg.WebSocket.WriteWait == 0 {
		cfg.WebSocket.WriteWait = 10 * time.Second
	}
	if cfg.WebSocket.PongWait == 0 {
		cfg.WebSocket.PongWait = 30 * time.Second
	}
	if cfg.WebSocket.PingPeriod == 0 {
		cfg.WebSocket.PingPeriod = 27 * time.Second
	}
	if cfg.WebSocket.EventBufferSize == 0 {
		cfg.WebSocket.EventBufferSize = 256
	}
}

// Default returns a config with all defaults applied
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}
