package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"constructboq/services"
)

// Wallet backends.
const (
	WalletMemory     = "memory"
	WalletPocketBase = "pocketbase"
	WalletRedis      = "redis"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONSTRUCTBOQ_"

// Config is the process configuration. Defaults holds the valuation knobs a
// new session starts with.
type Config struct {
	Defaults      services.Settings `yaml:"defaults"`
	LogLevel      string            `yaml:"log_level"`
	LogFormat     string            `yaml:"log_format"`
	WalletBackend string            `yaml:"wallet_backend"`
	RedisAddr     string            `yaml:"redis_addr"`
	RedisPrefix   string            `yaml:"redis_prefix"`
	CustomCodes   map[string]int    `yaml:"custom_codes"`
}

// Default returns the configuration used when no file or environment
// override is given.
func Default() Config {
	return Config{
		Defaults:      services.DefaultSettings(),
		LogLevel:      "info",
		LogFormat:     "text",
		WalletBackend: WalletPocketBase,
		RedisAddr:     "localhost:6379",
		RedisPrefix:   "constructboq:wallet:",
		CustomCodes:   map[string]int{"MYDREAM..123": 3},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// CONSTRUCTBOQ_* environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	pct := func(name string, dst *float64) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			return nil
		}
		f, err := cast.ToFloat64E(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("env %s%s: %w", EnvPrefix, name, err)
		}
		if !services.IsFinite(f) {
			return fmt.Errorf("env %s%s: %q is not a finite number", EnvPrefix, name, v)
		}
		*dst = f
		return nil
	}

	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	str("WALLET_BACKEND", &c.WalletBackend)
	str("REDIS_ADDR", &c.RedisAddr)
	str("REDIS_PREFIX", &c.RedisPrefix)
	str("CURRENCY", &c.Defaults.Currency)

	var unit string
	str("UNIT_SYSTEM", &unit)
	if unit != "" {
		c.Defaults.UnitSystem = services.UnitSystem(strings.ToLower(unit))
	}

	for name, dst := range map[string]*float64{
		"CONTINGENCY_PCT":   &c.Defaults.ContingencyPct,
		"VAT_PCT":           &c.Defaults.VATPct,
		"RETENTION_PCT":     &c.Defaults.RetentionPct,
		"ADVANCE_RECOVERY":  &c.Defaults.AdvanceRecovery,
		"PREVIOUS_PAYMENTS": &c.Defaults.PreviousPayments,
	} {
		if err := pct(name, dst); err != nil {
			return err
		}
	}
	return nil
}

func (c Config) validate() error {
	switch c.WalletBackend {
	case WalletMemory, WalletPocketBase, WalletRedis:
	default:
		return fmt.Errorf("unknown wallet backend %q", c.WalletBackend)
	}
	switch c.Defaults.UnitSystem {
	case services.UnitMetric, services.UnitImperial:
	default:
		return fmt.Errorf("unknown unit system %q", c.Defaults.UnitSystem)
	}
	for code, credits := range c.CustomCodes {
		if credits <= 0 {
			return fmt.Errorf("custom code %q must grant a positive number of credits", code)
		}
	}
	return nil
}
