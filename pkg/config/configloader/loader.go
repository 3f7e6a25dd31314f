// Package configloader fills a service configuration from, in increasing
// priority, a YAML file, a .env file and the process environment.
package configloader

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultConfigFile = "config.yaml"
	defaultEnvFile    = ".env"
)

type Validator interface {
	Validate() error
}

// Load reads config.yaml and .env from the working directory, then the system environment.
func Load[T Validator](serviceName string) (T, error) {
	return LoadFiles[T](serviceName, defaultConfigFile, defaultEnvFile)
}

// LoadFiles is Load with explicit file locations. Missing files are skipped,
// a YAML file that cannot be parsed is an error.
//
// Environment keys carry the upper-cased service name as prefix and use '_'
// as separator: STOREFRONT_SERVER_PORT sets server.port.
func LoadFiles[T Validator](serviceName, configFile, envFile string) (T, error) {
	var cfg T
	k := koanf.New(".")
	keys := envKeys(strings.ToUpper(serviceName) + "_")

	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("error loading %s: %w", configFile, err)
	}
	if err := loadDotEnv(k, envFile, keys); err != nil {
		log.Printf("WARN: %v", err)
	}
	if err := k.Load(env.Provider(keys.prefix(), ".", keys.path), nil); err != nil {
		log.Printf("WARN: error loading system env vars: %v", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envKeys maps prefixed environment keys onto koanf paths.
type envKeys string

func (e envKeys) prefix() string { return string(e) }

func (e envKeys) owns(key string) bool {
	return strings.HasPrefix(strings.ToUpper(key), string(e))
}

func (e envKeys) path(key string) string {
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, strings.ToLower(string(e)))
	return strings.ReplaceAll(key, "_", ".")
}

// loadDotEnv applies the prefixed keys of envFile. Keys of other services are ignored.
func loadDotEnv(k *koanf.Koanf, envFile string, keys envKeys) error {
	values, err := godotenv.Read(envFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading %s: %w", envFile, err)
	}
	m := make(map[string]any, len(values))
	for key, value := range values {
		if keys.owns(key) {
			m[keys.path(key)] = value
		}
	}
	if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
		return fmt.Errorf("error loading %s: %w", envFile, err)
	}
	return nil
}
