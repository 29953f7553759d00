package core

import (
	"fmt"
	"strings"
)

const (
	DefaultServiceName      = "resources"
	DefaultAuthHeaderName   = "Authorization"
	DefaultAuthHeaderPrefix = "Bearer"
	DefaultPrimaryKeyField  = "id"
)

type Config struct {
	ServiceName      string            `koanf:"service_name" mapstructure:"service_name" yaml:"service_name"`
	ExternalAPIURL   string            `koanf:"external_api_url" mapstructure:"external_api_url" yaml:"external_api_url"`
	AuthHeaderName   string            `koanf:"auth_header_name" mapstructure:"auth_header_name" yaml:"auth_header_name"`
	AuthHeaderPrefix string            `koanf:"auth_header_prefix" mapstructure:"auth_header_prefix" yaml:"auth_header_prefix"`
	PrimaryKeyField  string            `koanf:"primary_key_field" mapstructure:"primary_key_field" yaml:"primary_key_field"`
	Headers          map[string]string `koanf:"headers" mapstructure:"headers" yaml:"headers"`
	Transport        TransportConfig   `koanf:"transport" mapstructure:"transport" yaml:"transport"`
	Persistence      PersistenceConfig `koanf:"persistence" mapstructure:"persistence" yaml:"persistence"`
}

type TransportConfig struct {
	Kind         string `koanf:"kind" mapstructure:"kind" yaml:"kind"`
	TimeoutMS    int    `koanf:"timeout_ms" mapstructure:"timeout_ms" yaml:"timeout_ms"`
	RetryMax     int    `koanf:"retry_max" mapstructure:"retry_max" yaml:"retry_max"`
	RetryWaitMS  int    `koanf:"retry_wait_ms" mapstructure:"retry_wait_ms" yaml:"retry_wait_ms"`
	MaxBodyBytes int64  `koanf:"max_body_bytes" mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

type PersistenceConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver" yaml:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn" yaml:"dsn"`
	Debug  bool   `koanf:"debug" mapstructure:"debug" yaml:"debug"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName:      DefaultServiceName,
		AuthHeaderName:   DefaultAuthHeaderName,
		AuthHeaderPrefix: DefaultAuthHeaderPrefix,
		PrimaryKeyField:  DefaultPrimaryKeyField,
		Headers:          map[string]string{},
		Transport: TransportConfig{
			Kind:      "rest",
			TimeoutMS: 30000,
		},
		Persistence: PersistenceConfig{
			Driver: "sqlite3",
		},
	}
}

// Validate checks the process-wide settings. A missing external_api_url is
// not an error here: it surfaces as a configuration error on the first call.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.AuthHeaderName) == "" {
		return fmt.Errorf("core: auth_header_name is required")
	}
	if strings.TrimSpace(c.PrimaryKeyField) == "" {
		return fmt.Errorf("core: primary_key_field is required")
	}
	if c.Transport.TimeoutMS < 0 || c.Transport.RetryMax < 0 || c.Transport.RetryWaitMS < 0 {
		return fmt.Errorf("core: transport settings must not be negative")
	}
	return nil
}
