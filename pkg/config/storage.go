package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	StorageDriverMemory = "memory"
	StorageDriverFile   = "file"
	StorageDriverRedis  = "redis"
)

type StorageConfig struct {
	Driver  string        `koanf:"driver"`
	Timeout time.Duration `koanf:"timeout"`
	File    struct {
		Dir string `koanf:"dir"`
	} `koanf:"file"`
	Redis struct {
		Addr     string        `koanf:"addr"`
		Password string        `koanf:"password"`
		DB       int           `koanf:"db"`
		TTL      time.Duration `koanf:"ttl"`
	} `koanf:"redis"`
}

// String returns a string representation of the storage configuration.
func (c *StorageConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Storage ---\n")
	b.WriteString(fmt.Sprintf("  driver: %s\n", c.Driver))
	b.WriteString(fmt.Sprintf("  timeout: %s\n", c.Timeout))
	switch c.Driver {
	case StorageDriverFile:
		b.WriteString(fmt.Sprintf("  file.dir: %s\n", c.File.Dir))
	case StorageDriverRedis:
		b.WriteString(fmt.Sprintf("  redis.addr: %s\n", c.Redis.Addr))
		b.WriteString(fmt.Sprintf("  redis.db: %d\n", c.Redis.DB))
		b.WriteString(fmt.Sprintf("  redis.ttl: %s\n", c.Redis.TTL))
	}
	return b.String()
}

func (c *StorageConfig) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("storage timeout must be greater than 0")
	}
	switch c.Driver {
	case StorageDriverMemory:
		return nil
	case StorageDriverFile:
		if c.File.Dir == "" {
			return fmt.Errorf("storage.file.dir is not configured")
		}
		return nil
	case StorageDriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr is not configured")
		}
		if c.Redis.TTL < 0 {
			return fmt.Errorf("storage.redis.ttl must not be negative")
		}
		return nil
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Driver)
	}
}
