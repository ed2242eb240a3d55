package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Load reads config/config.<env>.yaml (CONFIG_ENV, default "dev"),
// falling back to defaults, with ROOMCAST_* environment overrides.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvPrefix("ROOMCAST")

	setDefaults(v)
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Directory DirectoryConfig `mapstructure:"directory"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Client    ClientConfig    `mapstructure:"client"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Mode string `mapstructure:"mode"`
	Port int    `mapstructure:"port"`
}

type AuthConfig struct {
	JWTSecret         string `mapstructure:"jwt_secret"`
	TokenQueryParam   string `mapstructure:"token_query_param"`
	RequireMembership bool   `mapstructure:"require_membership"`
	HandshakeTimeout  int    `mapstructure:"handshake_timeout"` // Seconds
}

type DirectoryConfig struct {
	Backend string      `mapstructure:"backend"` // "memory" or "redis"
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type WebSocketConfig struct {
	ReadLimit    int64 `mapstructure:"read_limit"`
	SendBuffer   int   `mapstructure:"send_buffer"`
	WriteTimeout int   `mapstructure:"write_timeout"` // Seconds
	PingInterval int   `mapstructure:"ping_interval"` // Seconds
	PongTimeout  int   `mapstructure:"pong_timeout"`  // Seconds
	MessageRate  int   `mapstructure:"message_rate"`  // Events per rate window
	RateWindow   int   `mapstructure:"rate_window"`   // Seconds
}

type ClientConfig struct {
	MaxAttempts int `mapstructure:"max_attempts"`
	RetryDelay  int `mapstructure:"retry_delay"` // Milliseconds
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
