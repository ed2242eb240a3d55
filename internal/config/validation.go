package config

import (
	"errors"
	"fmt"
	"strings"
)

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return errors.New("invalid server port")
	}

	if c.Auth.JWTSecret == "" || c.Auth.JWTSecret == "default-secret" {
		return errors.New("auth.jwt_secret must be set to a strong secret")
	}
	if c.Auth.TokenQueryParam == "" {
		return errors.New("auth.token_query_param must be configured")
	}
	if c.Auth.HandshakeTimeout < 1 {
		return errors.New("handshake timeout must be at least 1 second")
	}

	switch strings.ToLower(c.Directory.Backend) {
	case "memory":
	case "redis":
		if c.Directory.Redis.Address == "" {
			return errors.New("redis address must be specified for redis directory")
		}
	default:
		return fmt.Errorf("invalid directory backend: %s. Must be 'memory' or 'redis'", c.Directory.Backend)
	}

	if c.WebSocket.SendBuffer < 1 {
		return errors.New("send buffer must be positive")
	}
	if c.WebSocket.PingInterval >= c.WebSocket.PongTimeout {
		return errors.New("ping interval should be less than pong timeout")
	}
	if c.WebSocket.MessageRate < 1 || c.WebSocket.RateWindow < 1 {
		return errors.New("message rate and rate window must be positive")
	}

	if c.Client.MaxAttempts < 1 {
		return errors.New("client max attempts must be at least 1")
	}
	if c.Client.RetryDelay < 0 {
		return errors.New("client retry delay must not be negative")
	}

	return nil
}
