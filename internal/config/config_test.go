package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		Port:            "8081",
		ShutdownTimeout: 30 * time.Second,
		DataBackend:     "file",
		DataDir:         "./data",
		Timezone:        "UTC",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

func TestConfig_Validate(t *testing.T) {
	tmp := t.TempDir()

	tests := []struct {
		name        string
		mutate      func(*Config)
		wantErr     bool
		errorString string
	}{
		{
			name:    "valid file backend config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name: "valid sqlite backend config",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = filepath.Join(tmp, "nested", "tracker.db")
			},
			wantErr: false,
		},
		{
			name: "valid postgres backend config",
			mutate: func(c *Config) {
				c.DataBackend = "postgres"
				c.DatabaseURL = "postgres://user:pw@localhost:5432/tracker"
			},
			wantErr: false,
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown backend",
			mutate:      func(c *Config) { c.DataBackend = "sheets" },
			wantErr:     true,
			errorString: "invalid data backend 'sheets'",
		},
		{
			name:        "file backend without directory",
			mutate:      func(c *Config) { c.DataDir = "" },
			wantErr:     true,
			errorString: "data directory cannot be empty",
		},
		{
			name: "sqlite backend without path",
			mutate: func(c *Config) {
				c.DataBackend = "sqlite"
				c.SQLiteDBPath = ""
			},
			wantErr:     true,
			errorString: "SQLite database path cannot be empty",
		},
		{
			name:        "postgres backend without url",
			mutate:      func(c *Config) { c.DataBackend = "postgres" },
			wantErr:     true,
			errorString: "DATABASE_URL is required",
		},
		{
			name: "postgres backend with wrong scheme",
			mutate: func(c *Config) {
				c.DataBackend = "postgres"
				c.DatabaseURL = "mysql://localhost/tracker"
			},
			wantErr:     true,
			errorString: "invalid DATABASE_URL scheme 'mysql'",
		},
		{
			name:        "unknown timezone",
			mutate:      func(c *Config) { c.Timezone = "Mars/Olympus" },
			wantErr:     true,
			errorString: "invalid timezone 'Mars/Olympus'",
		},
		{
			name:        "negative write rate limit",
			mutate:      func(c *Config) { c.WriteRateLimit = -1 },
			wantErr:     true,
			errorString: "invalid write rate limit -1",
		},
		{
			name:        "unknown log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			wantErr:     true,
			errorString: "invalid log format 'xml'",
		},
		{
			name:        "shutdown timeout too short",
			mutate:      func(c *Config) { c.ShutdownTimeout = 10 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid shutdown timeout",
		},
		{
			name: "multiple errors are combined",
			mutate: func(c *Config) {
				c.Port = "0"
				c.LogFormat = "xml"
			},
			wantErr:     true,
			errorString: "configuration validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Config.Validate() error = %v, want it to contain %q", err, tt.errorString)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	for _, key := range []string{"PORT", "DATA_BACKEND", "DATA_DIR", "SQLITE_DB_PATH", "DATABASE_URL", "LEDGER_TIMEZONE", "LOG_LEVEL", "LOG_FORMAT", "SHUTDOWN_TIMEOUT", "WRITE_RATE_LIMIT"} {
		t.Setenv(key, "")
	}

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DataBackend != "file" {
			t.Errorf("Load() DataBackend = %v, want file", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "./data/tracker.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want ./data/tracker.db", cfg.SQLiteDBPath)
		}
		if cfg.Timezone != "Local" {
			t.Errorf("Load() Timezone = %v, want Local", cfg.Timezone)
		}
		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
		}
		if cfg.WriteRateLimit != 120 {
			t.Errorf("Load() WriteRateLimit = %v, want 120", cfg.WriteRateLimit)
		}
		if loc, err := cfg.Location(); err != nil || loc != time.Local {
			t.Errorf("Location() = %v, %v, want Local", loc, err)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("DATA_BACKEND", "sqlite")
		t.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
		t.Setenv("LEDGER_TIMEZONE", "Europe/Rome")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("SHUTDOWN_TIMEOUT", "45s")
		t.Setenv("WRITE_RATE_LIMIT", "0")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DataBackend != "sqlite" {
			t.Errorf("Load() DataBackend = %v, want sqlite", cfg.DataBackend)
		}
		if cfg.SQLiteDBPath != "/tmp/test.db" {
			t.Errorf("Load() SQLiteDBPath = %v, want /tmp/test.db", cfg.SQLiteDBPath)
		}
		if cfg.LogFormat != "json" {
			t.Errorf("Load() LogFormat = %v, want json", cfg.LogFormat)
		}
		if cfg.ShutdownTimeout != 45*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 45s", cfg.ShutdownTimeout)
		}
		if cfg.WriteRateLimit != 0 {
			t.Errorf("Load() WriteRateLimit = %v, want 0", cfg.WriteRateLimit)
		}
	})

	t.Run("invalid duration uses default", func(t *testing.T) {
		t.Setenv("SHUTDOWN_TIMEOUT", "invalid")

		cfg := Load()

		if cfg.ShutdownTimeout != 30*time.Second {
			t.Errorf("Load() ShutdownTimeout = %v, want 30s (default for invalid input)", cfg.ShutdownTimeout)
		}
	})
}
