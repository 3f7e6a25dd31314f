package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/abgdnv/shopease/pkg/config"
	"github.com/abgdnv/shopease/pkg/config/configloader"
)

var _ configloader.Validator = (*Config)(nil)

const (
	EventsDriverNone  = "none"
	EventsDriverNATS  = "nats"
	EventsDriverKafka = "kafka"
)

// ShippingFields are the checkout form fields that may be marked required.
var ShippingFields = []string{"fullName", "email", "address", "phone", "notes"}

type Config struct {
	HTTPServer     config.HTTPConfig           `koanf:"server"`
	Log            config.LogConfig            `koanf:"log"`
	PProf          config.PProfConfig          `koanf:"pprof"`
	Shutdown       config.ShutdownConfig       `koanf:"shutdown"`
	Telemetry      config.TelemetryConfig      `koanf:"telemetry"`
	Catalog        CatalogConfig               `koanf:"catalog"`
	CircuitBreaker config.CircuitBreakerConfig `koanf:"circuitbreaker"`
	Storage        config.StorageConfig        `koanf:"storage"`
	Session        SessionConfig               `koanf:"session"`
	Cart           CartConfig                  `koanf:"cart"`
	Checkout       CheckoutConfig              `koanf:"checkout"`
	Events         EventsConfig                `koanf:"events"`
}

type CatalogConfig struct {
	BaseURL string        `koanf:"baseurl"`
	Timeout time.Duration `koanf:"timeout"`
	// Limit is passed as ?limit= on listing requests, 0 leaves it to the catalog.
	Limit int `koanf:"limit"`
}

type SessionConfig struct {
	CookieName    string        `koanf:"cookiename"`
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweepinterval"`
}

type CartConfig struct {
	Cooldown      time.Duration `koanf:"cooldown"`
	ToastDuration time.Duration `koanf:"toastduration"`
}

type CheckoutConfig struct {
	// RequiredFields is a comma separated subset of ShippingFields.
	RequiredFields string        `koanf:"requiredfields"`
	Recipient      string        `koanf:"recipient"`
	BaseURL        string        `koanf:"baseurl"`
	RedirectDelay  time.Duration `koanf:"redirectdelay"`
}

// RequiredFieldList splits RequiredFields, dropping blanks.
func (c *CheckoutConfig) RequiredFieldList() []string {
	fields := []string{}
	for _, f := range strings.Split(c.RequiredFields, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

type EventsConfig struct {
	Driver string             `koanf:"driver"`
	NATS   config.NATSConfig  `koanf:"nats"`
	Kafka  config.KafkaConfig `koanf:"kafka"`
}

func (c *Config) String() string {
	var b strings.Builder

	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	b.WriteString(c.Telemetry.String())

	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  catalog.baseurl: %s\n", c.Catalog.BaseURL))
	b.WriteString(fmt.Sprintf("  catalog.timeout: %s\n", c.Catalog.Timeout))
	b.WriteString(fmt.Sprintf("  catalog.limit: %d\n", c.Catalog.Limit))
	b.WriteString(c.CircuitBreaker.String())

	b.WriteString(c.Storage.String())
	if c.Storage.Driver == config.StorageDriverRedis {
		b.WriteString(fmt.Sprintf("  redis.password: %s\n", maskSecret(c.Storage.Redis.Password)))
	}

	b.WriteString("\n--- Session ---\n")
	b.WriteString(fmt.Sprintf("  session.cookiename: %s\n", c.Session.CookieName))
	b.WriteString(fmt.Sprintf("  session.ttl: %s\n", c.Session.TTL))
	b.WriteString(fmt.Sprintf("  session.sweepinterval: %s\n", c.Session.SweepInterval))

	b.WriteString("\n--- Cart ---\n")
	b.WriteString(fmt.Sprintf("  cart.cooldown: %s\n", c.Cart.Cooldown))
	b.WriteString(fmt.Sprintf("  cart.toastduration: %s\n", c.Cart.ToastDuration))

	b.WriteString("\n--- Checkout ---\n")
	b.WriteString(fmt.Sprintf("  checkout.requiredfields: %s\n", c.Checkout.RequiredFields))
	b.WriteString(fmt.Sprintf("  checkout.recipient: %s\n", maskSecret(c.Checkout.Recipient)))
	b.WriteString(fmt.Sprintf("  checkout.baseurl: %s\n", c.Checkout.BaseURL))
	b.WriteString(fmt.Sprintf("  checkout.redirectdelay: %s\n", c.Checkout.RedirectDelay))

	b.WriteString("\n--- Events ---\n")
	b.WriteString(fmt.Sprintf("  events.driver: %s\n", c.Events.Driver))
	switch c.Events.Driver {
	case EventsDriverNATS:
		b.WriteString(c.Events.NATS.String())
	case EventsDriverKafka:
		b.WriteString(c.Events.Kafka.String())
	}

	return b.String()
}

// maskSecret keeps the last two characters so operators can tell values apart.
func maskSecret(s string) string {
	if s == "" {
		return "<not configured>"
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-2:]
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.CircuitBreaker.Validate(); err != nil {
		return err
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Session.Validate(); err != nil {
		return err
	}
	if err := c.Cart.Validate(); err != nil {
		return err
	}
	if err := c.Checkout.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

func (c *CatalogConfig) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("catalog.baseurl must be an absolute URL, got %q", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be greater than 0")
	}
	if c.Limit < 0 {
		return fmt.Errorf("catalog.limit must not be negative")
	}
	return nil
}

func (c *SessionConfig) Validate() error {
	if c.CookieName == "" {
		return fmt.Errorf("session.cookiename is not configured")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("session.ttl must be greater than 0")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("session.sweepinterval must be greater than 0")
	}
	return nil
}

func (c *CartConfig) Validate() error {
	if c.Cooldown <= 0 {
		return fmt.Errorf("cart.cooldown must be greater than 0")
	}
	if c.ToastDuration <= 0 {
		return fmt.Errorf("cart.toastduration must be greater than 0")
	}
	return nil
}

func (c *CheckoutConfig) Validate() error {
	for _, f := range c.RequiredFieldList() {
		if !slices.Contains(ShippingFields, f) {
			return fmt.Errorf("checkout.requiredfields: unknown field %q", f)
		}
	}
	if c.Recipient == "" {
		return fmt.Errorf("checkout.recipient is not configured")
	}
	if strings.ContainsAny(c.Recipient, "+ ") {
		return fmt.Errorf("checkout.recipient must be digits in international format without '+'")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("checkout.baseurl must be an absolute URL, got %q", c.BaseURL)
	}
	if c.RedirectDelay <= 0 {
		return fmt.Errorf("checkout.redirectdelay must be greater than 0")
	}
	return nil
}

func (c *EventsConfig) Validate() error {
	switch c.Driver {
	case "", EventsDriverNone:
		return nil
	case EventsDriverNATS:
		return c.NATS.Validate()
	case EventsDriverKafka:
		return c.Kafka.Validate()
	default:
		return fmt.Errorf("unknown events driver: %q", c.Driver)
	}
}
