package config

import (
	"fmt"
	"time"
)

// Config holds all runtime settings. Defaults come from DefaultConfig;
// the CLI layer overrides individual fields from flags and environment
// variables before validation.
type Config struct {
	HTTP      *HTTPConfig
	Database  *DatabaseConfig
	Game      *GameConfig
	WebSocket *WebSocketConfig
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Path string
}

// GameConfig carries the fixed delays of the round state machine and
// the default question count for create-game requests that omit one.
type GameConfig struct {
	QuestionCount  int
	PreGameDelay   time.Duration
	RoundCountdown time.Duration
	ResultDelay    time.Duration
}

type WebSocketConfig struct {
	PingInterval time.Duration
	ReadTimeout  time.Duration
}

// DefaultConfig returns production defaults: 2s pre-game delay, 10s
// answer countdown, 5s result display, 10 questions per game.
func DefaultConfig() *Config {
	return &Config{
		HTTP: &HTTPConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: &DatabaseConfig{
			Path: "./quizhub.db",
		},
		Game: &GameConfig{
			QuestionCount:  10,
			PreGameDelay:   2 * time.Second,
			RoundCountdown: 10 * time.Second,
			ResultDelay:    5 * time.Second,
		},
		WebSocket: &WebSocketConfig{
			PingInterval: 30 * time.Second,
			ReadTimeout:  60 * time.Second,
		},
	}
}

// Validate rejects configurations that would fail at runtime.
func (c *Config) Validate() error {
	if c.HTTP == nil {
		return fmt.Errorf("HTTP configuration is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}
	if c.HTTP.Host == "" {
		return fmt.Errorf("HTTP host cannot be empty")
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP timeouts must be positive")
	}

	if c.Database == nil || c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.Game == nil {
		return fmt.Errorf("game configuration is required")
	}
	if c.Game.QuestionCount <= 0 {
		return fmt.Errorf("question count must be positive")
	}
	if c.Game.PreGameDelay <= 0 || c.Game.RoundCountdown <= 0 || c.Game.ResultDelay <= 0 {
		return fmt.Errorf("game delays must be positive")
	}

	if c.WebSocket == nil {
		return fmt.Errorf("WebSocket configuration is required")
	}
	if c.WebSocket.PingInterval <= 0 || c.WebSocket.ReadTimeout <= 0 {
		return fmt.Errorf("WebSocket timeouts must be positive")
	}
	if c.WebSocket.ReadTimeout <= c.WebSocket.PingInterval {
		return fmt.Errorf("WebSocket read timeout must exceed the ping interval")
	}

	return nil
}
