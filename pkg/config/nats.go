package config

import (
	"fmt"
	"net/url"
	"time"
)

// NATSConfig locates the JetStream server and the stream handoff events land in.
type NATSConfig struct {
	Url     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`
	Stream  string        `koanf:"stream"`
}

func (c *NATSConfig) String() string {
	return section("NATS", "url", c.Url, "timeout", c.Timeout, "stream", c.Stream)
}

func (c *NATSConfig) Validate() error {
	u, err := url.Parse(c.Url)
	if c.Url == "" || err != nil || u.Host == "" {
		return fmt.Errorf("events.nats.url is not a valid NATS url: %q", c.Url)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("events.nats.timeout must be greater than 0")
	}
	if c.Stream == "" {
		return fmt.Errorf("events.nats.stream is not configured")
	}
	return nil
}
