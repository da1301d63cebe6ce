package config

import (
	"testing"
	"time"
)

func TestParseEnv(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
	}{
		{"prod", EnvProduction},
		{"test", EnvTest},
		{"dev", EnvDevelopment},
		{"", EnvDevelopment},
		{"staging", EnvDevelopment},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseEnv(tt.input); got != tt.expected {
				t.Errorf("parseEnv(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	// 清空相关环境变量，验证默认值
	for _, key := range []string{"APP_ENV", "PORT", "MONGO_URI", "MONGO_DB", "CACHE_TYPE", "SECRET_KEY", "UPLOAD_BACKEND"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != EnvDevelopment {
		t.Errorf("Env = %q, want dev", cfg.Env)
	}
	if cfg.MongoDatabase != "library" {
		t.Errorf("MongoDatabase = %q, want library", cfg.MongoDatabase)
	}
	if cfg.CacheType != "simple" {
		t.Errorf("CacheType = %q, want simple", cfg.CacheType)
	}
	if cfg.UploadBackend != "local" {
		t.Errorf("UploadBackend = %q, want local", cfg.UploadBackend)
	}
	if cfg.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want 168h", cfg.TokenTTL)
	}
	if cfg.ThumbnailWidth != 400 || cfg.ThumbnailQuality != 85 {
		t.Errorf("thumbnail defaults = %d/%d, want 400/85", cfg.ThumbnailWidth, cfg.ThumbnailQuality)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("MONGO_URI", "mongodb://db.internal:27017")
	t.Setenv("MONGO_DB", "library_test")
	t.Setenv("CACHE_TYPE", "none")
	t.Setenv("PORT", "8080")

	cfg := Load()

	if cfg.Env != EnvTest {
		t.Errorf("Env = %q, want test", cfg.Env)
	}
	if cfg.MongoURI != "mongodb://db.internal:27017" {
		t.Errorf("MongoURI = %q, env override lost", cfg.MongoURI)
	}
	if cfg.MongoDatabase != "library_test" {
		t.Errorf("MongoDatabase = %q, env override lost", cfg.MongoDatabase)
	}
	if cfg.CacheType != "none" {
		t.Errorf("CacheType = %q, env override lost", cfg.CacheType)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, env override lost", cfg.Port)
	}
}
