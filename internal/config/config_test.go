package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"quiz-service/pkg/database"
)

var configEnv = []string{
	"ADDR", "ALLOWED_ORIGINS",
	"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_PATH",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
	"JWT_SECRET",
}

// clearEnv blanks every variable Load reads so the host environment does not
// leak into the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Database.Driver != database.DriverSQLite {
		t.Fatalf("unexpected defaults: addr=%q driver=%q", cfg.Server.Addr, cfg.Database.Driver)
	}
	if cfg.Redis.Addr != "" {
		t.Fatalf("cache should be disabled by default, got %q", cfg.Redis.Addr)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected token ttl: %v", cfg.Auth.TokenTTL)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	clearEnv(t)
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server:
  addr: ":9000"
  read_timeout: 5s
database:
  driver: postgres
  host: db.internal
  dbname: quiz
redis:
  addr: "localhost:6379"
  ttl: 1h
auth:
  jwt_secret: from-file
  token_ttl: 2h
`)
	t.Setenv("DB_HOST", "db.override")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout != 5*time.Second {
		t.Fatalf("server section not read: %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout != 15*time.Second {
		t.Fatalf("default write timeout lost: %v", cfg.Server.WriteTimeout)
	}
	if cfg.Database.Host != "db.override" || cfg.Database.Name != "quiz" {
		t.Fatalf("database section: %+v", cfg.Database)
	}
	if cfg.Redis.DB != 3 || cfg.Redis.TTL != time.Hour {
		t.Fatalf("redis section: %+v", cfg.Redis)
	}
	if cfg.Auth.JWTSecret != "from-file" || cfg.Auth.TokenTTL != 2*time.Hour {
		t.Fatalf("auth section: %+v", cfg.Auth)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("origins: %v", cfg.Server.AllowedOrigins)
	}

	dbConfig := cfg.DatabaseConfig()
	if dbConfig.DBName != "quiz" || dbConfig.Driver != database.DriverPostgres {
		t.Fatalf("DatabaseConfig: %+v", dbConfig)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"JWT_SECRET": "x", "DB_DRIVER": "oracle"}},
		{name: "postgres without host", env: map[string]string{"JWT_SECRET": "x", "DB_DRIVER": "postgres"}},
		{name: "bad redis db", env: map[string]string{"JWT_SECRET": "x", "REDIS_DB": "zero"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			if _, err := Load(""); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
