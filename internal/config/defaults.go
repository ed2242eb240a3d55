package config

import "github.com/spf13/viper"

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.port", 8080)

	// Auth
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_query_param", "token")
	v.SetDefault("auth.require_membership", true)
	v.SetDefault("auth.handshake_timeout", 5)

	// Directory
	v.SetDefault("directory.backend", "memory")
	v.SetDefault("directory.redis.address", "localhost:6379")
	v.SetDefault("directory.redis.db", 0)

	// WebSocket
	v.SetDefault("websocket.read_limit", 32768)
	v.SetDefault("websocket.send_buffer", 32)
	v.SetDefault("websocket.write_timeout", 5)
	v.SetDefault("websocket.ping_interval", 25)
	v.SetDefault("websocket.pong_timeout", 60)
	v.SetDefault("websocket.message_rate", 20)
	v.SetDefault("websocket.rate_window", 10)

	// Client defaults mirror the web client this service replaced:
	// 5 attempts, 3s apart.
	v.SetDefault("client.max_attempts", 5)
	v.SetDefault("client.retry_delay", 3000)

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func bindEnvVars(v *viper.Viper) {
	v.BindEnv("server.port", "ROOMCAST_PORT")
	v.BindEnv("server.mode", "ROOMCAST_MODE")

	v.BindEnv("auth.jwt_secret", "ROOMCAST_JWT_SECRET")
	v.BindEnv("auth.token_query_param", "ROOMCAST_TOKEN_PARAM")
	v.BindEnv("auth.require_membership", "ROOMCAST_REQUIRE_MEMBERSHIP")

	v.BindEnv("directory.backend", "ROOMCAST_DIRECTORY_BACKEND")
	v.BindEnv("directory.redis.address", "ROOMCAST_REDIS_ADDRESS")
	v.BindEnv("directory.redis.password", "ROOMCAST_REDIS_PASSWORD")
}
