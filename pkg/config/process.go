package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// LogLevels are the accepted log.level values, "" means info.
var LogLevels = []string{"debug", "info", "warn", "error"}

// LogConfig, PProfConfig and ShutdownConfig configure the process around the
// service itself and are shared by every binary.
type LogConfig struct {
	Level string `koanf:"level"`
}

type PProfConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

type ShutdownConfig struct {
	// Timeout bounds the drain of each server, provider and broker connection.
	Timeout time.Duration `koanf:"timeout"`
}

// section renders a titled block of key/value lines for the startup log.
func section(title string, pairs ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n--- %s ---\n", title)
	for i := 0; i+1 < len(pairs); i += 2 {
		fmt.Fprintf(&b, "  %v: %v\n", pairs[i], pairs[i+1])
	}
	return b.String()
}

func (c *LogConfig) String() string {
	return section("Log", "level", c.Level)
}

func (c *LogConfig) Validate() error {
	if c.Level != "" && !slices.Contains(LogLevels, c.Level) {
		return fmt.Errorf("unknown log level %q, want one of %s", c.Level, strings.Join(LogLevels, ", "))
	}
	return nil
}

func (c *PProfConfig) String() string {
	if !c.Enabled {
		return section("PProf", "enabled", false)
	}
	return section("PProf", "enabled", true, "address", c.Addr)
}

func (c *PProfConfig) Validate() error {
	if c.Enabled && c.Addr == "" {
		return fmt.Errorf("pprof is enabled but address is not configured")
	}
	return nil
}

func (c *ShutdownConfig) String() string {
	return section("Shutdown", "timeout", c.Timeout)
}

func (c *ShutdownConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("shutdown timeout is not configured")
	}
	return nil
}
