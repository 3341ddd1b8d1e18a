// Package config loads MSAPI-sub000 node configuration from a YAML file
// plus environment overrides, mirroring the teacher stack's viper-based
// loader.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the unified configuration for one msapi-server process.
type Config struct {
	Server struct {
		ListenIP            string `mapstructure:"listen_ip" json:"listen_ip"`
		ListenPort           uint16 `mapstructure:"listen_port" json:"listen_port"`
		MaxConnections        int32  `mapstructure:"max_connections" json:"max_connections"`
		MaxConnectionsPerIP   uint64 `mapstructure:"max_connections_per_ip" json:"max_connections_per_ip"`
		RecvBufferSize        uint64 `mapstructure:"recv_buffer_size" json:"recv_buffer_size"`
		RecvBufferSizeLimit   uint64 `mapstructure:"recv_buffer_size_limit" json:"recv_buffer_size_limit"`
		ReconnectSeconds      uint32 `mapstructure:"reconnect_seconds" json:"reconnect_seconds"`
		ReconnectAttemptLimit uint64 `mapstructure:"reconnect_attempt_limit" json:"reconnect_attempt_limit"`
	} `mapstructure:"server" json:"server"`

	Admin struct {
		Enabled    bool   `mapstructure:"enabled" json:"enabled"`
		ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
	} `mapstructure:"admin" json:"admin"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load.
var AppConfig Config

// Default populates Config with the values every msapi-server instance
// falls back to when no file and no environment override is present.
func Default() Config {
	var c Config
	c.Server.ListenIP = "0.0.0.0"
	c.Server.ListenPort = 9443
	c.Server.MaxConnections = 1024
	c.Server.MaxConnectionsPerIP = 16
	c.Server.RecvBufferSize = 4096
	c.Server.RecvBufferSizeLimit = 1 << 20
	c.Server.ReconnectSeconds = 5
	c.Server.ReconnectAttemptLimit = 10
	c.Admin.Enabled = true
	c.Admin.ListenAddr = "127.0.0.1:9444"
	c.Logging.Level = "info"
	return c
}

// Load reads configuration from configPath (if non-empty) and merges
// MSAPI_-prefixed environment variable overrides. An empty configPath
// skips the file read and starts from Default().
func Load(configPath string) (*Config, error) {
	c := Default()

	v := viper.New()
	v.SetEnvPrefix("MSAPI")
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("load config %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	c.Server.ListenIP = EnvOrDefault("MSAPI_LISTEN_IP", c.Server.ListenIP)
	c.Logging.Level = EnvOrDefault("MSAPI_LOG_LEVEL", c.Logging.Level)

	c.Server.MaxConnections = int32(EnvOrDefaultInt("MSAPI_MAX_CONNECTIONS", int(c.Server.MaxConnections)))
	c.Server.MaxConnectionsPerIP = EnvOrDefaultUint64("MSAPI_MAX_CONNECTIONS_PER_IP", c.Server.MaxConnectionsPerIP)
	c.Server.RecvBufferSize = EnvOrDefaultUint64("MSAPI_RECV_BUFFER_SIZE", c.Server.RecvBufferSize)
	c.Server.RecvBufferSizeLimit = EnvOrDefaultUint64("MSAPI_RECV_BUFFER_SIZE_LIMIT", c.Server.RecvBufferSizeLimit)
	c.Server.ReconnectAttemptLimit = EnvOrDefaultUint64("MSAPI_RECONNECT_ATTEMPT_LIMIT", c.Server.ReconnectAttemptLimit)
	reconnectSeconds := EnvOrDefaultUint64("MSAPI_RECONNECT_SECONDS", uint64(c.Server.ReconnectSeconds))
	c.Server.ReconnectSeconds = uint32(reconnectSeconds)

	AppConfig = c
	return &c, nil
}
