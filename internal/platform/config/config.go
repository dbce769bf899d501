// Package config holds the tunable parameters of the server.
// Values come from a preset, then an optional .env file, then NEON_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every knob the server reads at start-up.
type Config struct {
	// Process
	Addr      string
	DBPath    string
	RedisAddr string // when set, matches are archived in Redis instead of SQLite
	LogLevel  string

	// Simulation
	TickInterval      time.Duration
	HeartbeatEvery    int // ticks between full-state broadcasts
	GameDuration      time.Duration
	LobbyWait         time.Duration
	MaxPlayersPerRoom int
	ActionCooldown    time.Duration
	SunSpawnChance    float64

	// Transport
	ClientSendBuffer     int
	MaxMessagesPerSecond float64
	MessageBurst         int

	// Match archive
	ArchiveTimeout time.Duration
}

// DefaultConfig returns the production rules of the game.
func DefaultConfig() *Config {
	return &Config{
		Addr:     ":3000",
		DBPath:   "data/neon.db",
		LogLevel: "info",

		TickInterval:      100 * time.Millisecond,
		HeartbeatEvery:    5,
		GameDuration:      180 * time.Second,
		LobbyWait:         15 * time.Second,
		MaxPlayersPerRoom: 4,
		ActionCooldown:    100 * time.Millisecond,
		SunSpawnChance:    0.03,

		ClientSendBuffer:     256,
		MaxMessagesPerSecond: 30,
		MessageBurst:         15,

		ArchiveTimeout: 5 * time.Second,
	}
}

// StressTestConfig keeps the game rules but widens buffers for load runs.
func StressTestConfig() *Config {
	c := DefaultConfig()
	c.LogLevel = "warn"
	c.ClientSendBuffer = 512 * runtime.NumCPU()
	c.MaxMessagesPerSecond = 200
	c.MessageBurst = 100
	return c
}

// LowResourceConfig returns small buffers for development machines.
func LowResourceConfig() *Config {
	c := DefaultConfig()
	c.LogLevel = "debug"
	c.ClientSendBuffer = 16
	c.MaxMessagesPerSecond = 10
	c.MessageBurst = 5
	return c
}

// Preset returns the named preset.
func Preset(name string) (*Config, error) {
	switch name {
	case "", "default":
		return DefaultConfig(), nil
	case "stress":
		return StressTestConfig(), nil
	case "lowresource":
		return LowResourceConfig(), nil
	}
	return nil, fmt.Errorf("unknown profile %q", name)
}

// Load builds the configuration. With no arguments an optional ".env" in the
// working directory is read; explicitly named files must exist.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("failed to read env files: %w", err)
	}

	c, err := Preset(os.Getenv("NEON_PROFILE"))
	if err != nil {
		return nil, err
	}

	var errs []error
	c.Addr = envString("NEON_ADDR", c.Addr)
	if port := os.Getenv("PORT"); port != "" && os.Getenv("NEON_ADDR") == "" {
		c.Addr = ":" + port
	}
	c.DBPath = envString("NEON_DB_PATH", c.DBPath)
	c.RedisAddr = envString("NEON_REDIS_ADDR", c.RedisAddr)
	c.LogLevel = envString("NEON_LOG_LEVEL", c.LogLevel)
	c.TickInterval = envDuration("NEON_TICK_INTERVAL", c.TickInterval, &errs)
	c.HeartbeatEvery = envInt("NEON_HEARTBEAT_EVERY", c.HeartbeatEvery, &errs)
	c.GameDuration = envDuration("NEON_GAME_DURATION", c.GameDuration, &errs)
	c.LobbyWait = envDuration("NEON_LOBBY_WAIT", c.LobbyWait, &errs)
	c.MaxPlayersPerRoom = envInt("NEON_MAX_PLAYERS", c.MaxPlayersPerRoom, &errs)
	c.ActionCooldown = envDuration("NEON_ACTION_COOLDOWN", c.ActionCooldown, &errs)
	c.SunSpawnChance = envFloat("NEON_SUN_CHANCE", c.SunSpawnChance, &errs)
	c.ClientSendBuffer = envInt("NEON_CLIENT_SEND_BUFFER", c.ClientSendBuffer, &errs)
	c.MaxMessagesPerSecond = envFloat("NEON_MAX_MSG_PER_SEC", c.MaxMessagesPerSecond, &errs)
	c.MessageBurst = envInt("NEON_MSG_BURST", c.MessageBurst, &errs)
	c.ArchiveTimeout = envDuration("NEON_ARCHIVE_TIMEOUT", c.ArchiveTimeout, &errs)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.TickInterval <= 0:
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	case c.HeartbeatEvery < 1:
		return fmt.Errorf("heartbeat divisor must be at least 1, got %d", c.HeartbeatEvery)
	case c.GameDuration < c.TickInterval:
		return fmt.Errorf("game duration %s is shorter than one tick", c.GameDuration)
	case c.MaxPlayersPerRoom < 1:
		return fmt.Errorf("rooms need at least one seat, got %d", c.MaxPlayersPerRoom)
	case c.SunSpawnChance < 0 || c.SunSpawnChance > 1:
		return fmt.Errorf("sun spawn chance must be within [0,1], got %v", c.SunSpawnChance)
	case c.ClientSendBuffer < 1:
		return fmt.Errorf("client send buffer must be at least 1, got %d", c.ClientSendBuffer)
	case c.MaxMessagesPerSecond <= 0:
		return fmt.Errorf("message rate must be positive, got %v", c.MaxMessagesPerSecond)
	case c.MessageBurst < 1:
		return fmt.Errorf("message burst must be at least 1, got %d", c.MessageBurst)
	case c.ActionCooldown < 0:
		return fmt.Errorf("action cooldown cannot be negative, got %s", c.ActionCooldown)
	case c.LobbyWait < 0:
		return fmt.Errorf("lobby wait cannot be negative, got %s", c.LobbyWait)
	case c.ArchiveTimeout <= 0:
		return fmt.Errorf("archive timeout must be positive, got %s", c.ArchiveTimeout)
	}
	return nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func envFloat(key string, def float64, errs *[]error) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return f
}

func envDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}
