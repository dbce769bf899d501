package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigMatchesGameRules(t *testing.T) {
	c := DefaultConfig()
	if c.TickInterval != 100*time.Millisecond {
		t.Errorf("TickInterval = %s, want 100ms", c.TickInterval)
	}
	if c.HeartbeatEvery != 5 {
		t.Errorf("HeartbeatEvery = %d, want 5", c.HeartbeatEvery)
	}
	if c.GameDuration != 180*time.Second {
		t.Errorf("GameDuration = %s, want 3m", c.GameDuration)
	}
	if c.LobbyWait != 15*time.Second {
		t.Errorf("LobbyWait = %s, want 15s", c.LobbyWait)
	}
	if c.MaxPlayersPerRoom != 4 {
		t.Errorf("MaxPlayersPerRoom = %d, want 4", c.MaxPlayersPerRoom)
	}
	if c.ActionCooldown != 100*time.Millisecond {
		t.Errorf("ActionCooldown = %s, want 100ms", c.ActionCooldown)
	}
	if c.SunSpawnChance != 0.03 {
		t.Errorf("SunSpawnChance = %v, want 0.03", c.SunSpawnChance)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestPresets(t *testing.T) {
	for _, name := range []string{"", "default", "stress", "lowresource"} {
		c, err := Preset(name)
		if err != nil {
			t.Fatalf("Preset(%q): %v", name, err)
		}
		if err := c.Validate(); err != nil {
			t.Errorf("Preset(%q) does not validate: %v", name, err)
		}
	}
	if _, err := Preset("turbo"); err == nil {
		t.Errorf("expected unknown profile to fail")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("NEON_PROFILE", "lowresource")
	t.Setenv("NEON_ADDR", ":9999")
	t.Setenv("NEON_LOBBY_WAIT", "2s")
	t.Setenv("NEON_MAX_PLAYERS", "6")
	t.Setenv("NEON_SUN_CHANCE", "0.5")
	t.Setenv("NEON_REDIS_ADDR", "localhost:6379")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Addr != ":9999" || c.LobbyWait != 2*time.Second || c.MaxPlayersPerRoom != 6 || c.SunSpawnChance != 0.5 {
		t.Errorf("environment overrides not applied: %+v", c)
	}
	if c.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q", c.RedisAddr)
	}
	if c.LogLevel != "debug" {
		t.Errorf("expected lowresource preset log level, got %q", c.LogLevel)
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("NEON_GAME_DURATION=90s\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// Registers cleanup for the key the file is about to populate.
	t.Setenv("NEON_GAME_DURATION", "")
	os.Unsetenv("NEON_GAME_DURATION")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.GameDuration != 90*time.Second {
		t.Errorf("GameDuration = %s, want 90s", c.GameDuration)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("NEON_TICK_INTERVAL", "soon")
	if _, err := Load(); err == nil {
		t.Errorf("expected a parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "sun chance above one", mutate: func(c *Config) { c.SunSpawnChance = 1.5 }},
		{name: "zero heartbeat divisor", mutate: func(c *Config) { c.HeartbeatEvery = 0 }},
		{name: "zero message rate", mutate: func(c *Config) { c.MaxMessagesPerSecond = 0 }},
		{name: "zero message burst", mutate: func(c *Config) { c.MessageBurst = 0 }},
		{name: "negative action cooldown", mutate: func(c *Config) { c.ActionCooldown = -time.Millisecond }},
		{name: "negative lobby wait", mutate: func(c *Config) { c.LobbyWait = -time.Second }},
		{name: "zero archive timeout", mutate: func(c *Config) { c.ArchiveTimeout = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Errorf("expected validation to fail")
			}
		})
	}

	c := DefaultConfig()
	c.ActionCooldown = 0
	if err := c.Validate(); err != nil {
		t.Errorf("a zero cooldown disables rate limiting and is allowed: %v", err)
	}
}
