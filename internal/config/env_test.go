package config

import (
	"testing"
)

func TestGetDatabaseDSN_FromEnvVars(t *testing.T) {
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_HOST", "testhost")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_NAME", "testdb")
	t.Setenv("DATABASE_DSN", "ignored")

	dsn := GetDatabaseDSN()
	expected := "testuser:testpass@tcp(testhost:3307)/testdb?parseTime=true"

	if dsn != expected {
		t.Errorf("GetDatabaseDSN() = %v, want %v", dsn, expected)
	}
}

func TestGetDatabaseDSN_FromDatabaseDSNEnv(t *testing.T) {
	t.Setenv("DB_USER", "")
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "")

	testDSN := "custom:dsn@tcp(custom:3306)/customdb?parseTime=true"
	t.Setenv("DATABASE_DSN", testDSN)

	if dsn := GetDatabaseDSN(); dsn != testDSN {
		t.Errorf("GetDatabaseDSN() = %v, want %v", dsn, testDSN)
	}
}

func TestGetDatabaseDSN_PartialEnvVarsIsUnset(t *testing.T) {
	t.Setenv("DB_USER", "testuser")
	t.Setenv("DB_PASSWORD", "testpass")
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("DATABASE_DSN", "")

	if dsn := GetDatabaseDSN(); dsn != "" {
		t.Errorf("GetDatabaseDSN() = %v, want empty", dsn)
	}
}

func TestRedisConfig_WithEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "testhost:6380")
	t.Setenv("REDIS_PASSWORD", "testpassword")
	t.Setenv("REDIS_DB", "5")

	cfg := RedisConfig{Addr: "localhost:6379"}.withEnv()

	if cfg.Addr != "testhost:6380" {
		t.Errorf("Addr = %v, want %v", cfg.Addr, "testhost:6380")
	}
	if cfg.Password != "testpassword" {
		t.Errorf("Password = %v, want %v", cfg.Password, "testpassword")
	}
	if cfg.DB != 5 {
		t.Errorf("DB = %v, want %v", cfg.DB, 5)
	}
}

func TestRedisConfig_InvalidDBKeepsFileValue(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_PASSWORD", "")
	t.Setenv("REDIS_DB", "invalid")

	cfg := RedisConfig{Addr: "localhost:6379", DB: 1}.withEnv()

	if cfg.DB != 1 {
		t.Errorf("DB = %v, want %v (file value on parse error)", cfg.DB, 1)
	}
	if cfg.Addr != "localhost:6379" {
		t.Errorf("Addr = %v, want localhost:6379", cfg.Addr)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{"env var set", "CROPSENSE_TEST_KEY", "default", "custom", "custom"},
		{"env var not set", "CROPSENSE_TEST_KEY_NOT_SET", "default", "", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.envValue)

			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}
