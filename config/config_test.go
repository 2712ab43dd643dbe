package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"constructboq/services"
)

// writeTemp writes content to a temp file and returns its path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "constructboq.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Defaults != services.DefaultSettings() {
		t.Errorf("Defaults = %+v, want %+v", cfg.Defaults, services.DefaultSettings())
	}
	if cfg.WalletBackend != WalletPocketBase {
		t.Errorf("WalletBackend = %q", cfg.WalletBackend)
	}
	if cfg.CustomCodes["MYDREAM..123"] != 3 {
		t.Errorf("CustomCodes = %v", cfg.CustomCodes)
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	f := writeTemp(t, `
defaults:
  vat_pct: 7.5
  currency: USD
log_format: json
wallet_backend: redis
redis_addr: cache:6379
custom_codes:
  LAUNCH: 5
`)
	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Defaults.VATPct != 7.5 {
		t.Errorf("VATPct: got %v, want 7.5", cfg.Defaults.VATPct)
	}
	if cfg.Defaults.ContingencyPct != 10 {
		t.Errorf("ContingencyPct: got %v, want default 10", cfg.Defaults.ContingencyPct)
	}
	if cfg.Defaults.Currency != "USD" {
		t.Errorf("Currency: got %q, want USD", cfg.Defaults.Currency)
	}
	if cfg.LogFormat != "json" || cfg.WalletBackend != WalletRedis || cfg.RedisAddr != "cache:6379" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.CustomCodes["LAUNCH"] != 5 || cfg.CustomCodes["MYDREAM..123"] != 3 {
		t.Errorf("CustomCodes: got %v, want LAUNCH merged over defaults", cfg.CustomCodes)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	f := writeTemp(t, "defaults:\n  retention_pct: 10\n")
	t.Setenv("CONSTRUCTBOQ_RETENTION_PCT", "2.5")
	t.Setenv("CONSTRUCTBOQ_WALLET_BACKEND", "memory")
	t.Setenv("CONSTRUCTBOQ_UNIT_SYSTEM", "Imperial")

	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Defaults.RetentionPct != 2.5 {
		t.Errorf("RetentionPct: got %v, want 2.5", cfg.Defaults.RetentionPct)
	}
	if cfg.WalletBackend != WalletMemory {
		t.Errorf("WalletBackend: got %q", cfg.WalletBackend)
	}
	if cfg.Defaults.UnitSystem != services.UnitImperial {
		t.Errorf("UnitSystem: got %q", cfg.Defaults.UnitSystem)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
		want string
	}{
		{"bad yaml", "defaults: [", nil, "parsing config file"},
		{"unknown backend", "wallet_backend: etcd\n", nil, "unknown wallet backend"},
		{"unknown unit system", "defaults:\n  unit_system: cubits\n", nil, "unknown unit system"},
		{"zero credit code", "custom_codes:\n  FREE: 0\n", nil, "positive number of credits"},
		{"bad env number", "", map[string]string{"CONSTRUCTBOQ_VAT_PCT": "fifteen"}, "CONSTRUCTBOQ_VAT_PCT"},
		{"non-finite env number", "", map[string]string{"CONSTRUCTBOQ_RETENTION_PCT": "NaN"}, "not a finite number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.yaml != "" {
				path = writeTemp(t, tt.yaml)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestNewLogger(t *testing.T) {
	if _, err := NewLogger("verbose", "text"); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := NewLogger("info", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestLogError(t *testing.T) {
	var buf bytes.Buffer
	logg, err := newLogger("error", "json", &buf)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}

	LogError(logg, "handlers", "HandleExportExcel", "generate workbook", map[string]string{"takeoff": "t1"}, errors.New("boom"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	for key, want := range map[string]string{
		"module":   "handlers",
		"funcName": "HandleExportExcel",
		"context":  "generate workbook",
		"msg":      "boom",
		"level":    "error",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %q", key, entry[key], want)
		}
	}
	if _, ok := entry["data"]; !ok {
		t.Error("expected data field")
	}
}
