// Package config 统一配置管理
//
// 配置加载策略：
//  1. 从 .env 加载敏感信息（SECRET_KEY、管理员口令）和 APP_ENV
//  2. 根据 APP_ENV 加载对应的 configs/{env}.yaml 配置文件
//  3. 环境变量可覆盖 YAML 配置
//
// 使用方式：
//   - 开发环境: APP_ENV=dev (默认)
//   - 测试环境: APP_ENV=test
//   - 生产环境: APP_ENV=prod
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"library-admin/internal/shared/objstore"
)

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test"
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	Uploads   UploadConfig    `yaml:"uploads"`
	MinIO     objstore.Config `yaml:"minio"`
	Thumbnail ThumbnailConfig `yaml:"thumbnail"`
}

type ServerConfig struct {
	Port         string `yaml:"port"`
	CookieSecure bool   `yaml:"cookie_secure"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

// CacheConfig 聚合缓存配置
// Type: simple（进程内）| redis | none
type CacheConfig struct {
	Type string        `yaml:"type"`
	TTL  time.Duration `yaml:"ttl"`
}

// UploadConfig 上传存储配置
// Backend: local | minio
type UploadConfig struct {
	Backend string `yaml:"backend"`
	Dir     string `yaml:"dir"`
}

type ThumbnailConfig struct {
	Width   int `yaml:"width"`
	Quality int `yaml:"quality"`
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env Environment

	Port         string
	CookieSecure bool

	MongoURI      string
	MongoDatabase string
	RedisURL      string

	CacheType string
	CacheTTL  time.Duration

	// SecretKey 同时用于会话 Cookie 签名与 JWT 签名
	SecretKey string
	TokenTTL  time.Duration

	UploadBackend string
	UploadDir     string
	MinIO         objstore.Config

	ThumbnailWidth   int
	ThumbnailQuality int

	// 首次启动引导管理员
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

var configPaths = []string{
	"configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

var envPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"../../../.env",
}

// Load 加载配置
// 1. 加载 .env（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 环境变量覆盖，构建最终配置
func Load() *Config {
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	env := parseEnv(getEnv("APP_ENV", "dev"))
	yamlCfg := loadYAMLConfig(env)

	cfg := &Config{
		Env:              env,
		Port:             firstNonEmpty(getEnv("PORT", ""), yamlCfg.Server.Port, "2000"),
		CookieSecure:     getEnvBool("SESSION_COOKIE_SECURE", yamlCfg.Server.CookieSecure),
		MongoURI:         firstNonEmpty(getEnv("MONGO_URI", ""), yamlCfg.Mongo.URI, "mongodb://localhost:27017"),
		MongoDatabase:    firstNonEmpty(getEnv("MONGO_DB", ""), yamlCfg.Mongo.Database, "library"),
		RedisURL:         firstNonEmpty(getEnv("REDIS_URL", ""), yamlCfg.Redis.URL, "redis://localhost:6379/0"),
		CacheType:        firstNonEmpty(getEnv("CACHE_TYPE", ""), yamlCfg.Cache.Type, "simple"),
		CacheTTL:         yamlCfg.Cache.TTL,
		SecretKey:        getEnv("SECRET_KEY", "dev-secret-key-change-in-production"),
		TokenTTL:         7 * 24 * time.Hour,
		UploadBackend:    firstNonEmpty(getEnv("UPLOAD_BACKEND", ""), yamlCfg.Uploads.Backend, "local"),
		UploadDir:        firstNonEmpty(getEnv("UPLOAD_DIR", ""), yamlCfg.Uploads.Dir, filepath.Join("static", "uploads")),
		MinIO:            yamlCfg.MinIO,
		ThumbnailWidth:   yamlCfg.Thumbnail.Width,
		ThumbnailQuality: yamlCfg.Thumbnail.Quality,
		AdminUsername:    getEnv("ADMIN_USERNAME", "admin"),
		AdminEmail:       getEnv("ADMIN_EMAIL", "admin@library.local"),
		AdminPassword:    getEnv("ADMIN_PASSWORD", "admin123"),
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.ThumbnailWidth <= 0 {
		cfg.ThumbnailWidth = 400
	}
	if cfg.ThumbnailQuality <= 0 {
		cfg.ThumbnailQuality = 85
	}

	// MinIO 敏感信息仅从环境变量读取
	if v := getEnv("MINIO_ENDPOINT", ""); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := getEnv("MINIO_ACCESS_KEY", ""); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := getEnv("MINIO_SECRET_KEY", ""); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := getEnv("MINIO_BUCKET", ""); v != "" {
		cfg.MinIO.Bucket = v
	}

	return cfg
}

// String 打印非敏感配置摘要
func (c *Config) String() string {
	return fmt.Sprintf("port=%s mongo=%s db=%s cache=%s uploads=%s backend=%s",
		c.Port, c.MongoURI, c.MongoDatabase, c.CacheType, c.UploadDir, c.UploadBackend)
}

func parseEnv(s string) Environment {
	switch Environment(s) {
	case EnvProduction, EnvTest, EnvDevelopment:
		return Environment(s)
	default:
		return EnvDevelopment
	}
}

// loadYAMLConfig 按环境加载 YAML 配置，找不到文件时返回零值（全部走默认）
func loadYAMLConfig(env Environment) YAMLConfig {
	var cfg YAMLConfig
	for _, dir := range configPaths {
		path := filepath.Join(dir, string(env)+".yaml")
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg
		}
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
