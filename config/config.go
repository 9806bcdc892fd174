package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultJWTSecret is the local/dev signing key. Release deployments must override it.
const DefaultJWTSecret = "your_secret_key"

// DefaultDatabaseURI is the local/dev store used when nothing else is configured.
const DefaultDatabaseURI = "sqlite://quickpost.db"

// DefaultPath is where Load looks for the JSON config file.
const DefaultPath = "config/config.json"

// AppConfig holds environment driven configuration values.
type AppConfig struct {
	AppPort        string
	JWTSecret      string
	TokenTTLHours  int
	SanitizePosts  bool
	AllowedOrigins []string
	// DatabaseURI accepts mysql DSNs or URLs with a mysql://, postgres:// or sqlite:// scheme.
	// See DSN for the fallback order.
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Cache
	CacheDriver     string
	CacheTTLSeconds int
	RedisHost       string
	RedisPort       int
	RedisDB         int
	RedisPassword   string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

// Load builds the configuration. Precedence: JSON file -> defaults -> environment overrides.
// A missing file is not an error; malformed JSON or a malformed numeric env value is.
func Load(path string) (AppConfig, error) {
	var cfg AppConfig
	if path == "" {
		path = DefaultPath
	}
	if err := loadJSONConfig(path, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := applyEnvOverrides(&cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// DSN resolves the store connection string: DatabaseURI when set, otherwise a
// MySQL DSN from the DB* parts when DBHost is set, otherwise a local SQLite file.
func (c AppConfig) DSN() string {
	if c.DatabaseURI != "" {
		return c.DatabaseURI
	}
	if c.DBHost != "" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}
	return DefaultDatabaseURI
}

// UsesDefaultSecret reports whether the signing key was never configured.
func (c AppConfig) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads the grouped JSON file into out if present.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if f, ok := m[key].(float64); ok {
			return int(f)
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		b, _ := m[key].(bool)
		return b
	}
	getStringSlice := func(m map[string]any, key string) []string {
		arr, ok := m[key].([]any)
		if !ok {
			return nil
		}
		res := make([]string, 0, len(arr))
		for _, it := range arr {
			if s, ok := it.(string); ok {
				res = append(res, s)
			}
		}
		return res
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.JWTSecret = getString(app, "JWTSecret")
		out.TokenTTLHours = getInt(app, "TokenTTLHours")
		out.SanitizePosts = getBool(app, "SanitizePosts")
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if c, ok := raw["cache"].(map[string]any); ok {
		out.CacheDriver = getString(c, "Driver")
		out.CacheTTLSeconds = getInt(c, "TTLSeconds")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		out.RedisPort = getInt(rds, "RedisPort")
		out.RedisDB = getInt(rds, "RedisDB")
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		out.GinMode = getString(g, "Mode")
		out.GinPath = getString(g, "LogPath")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}

	return nil
}

// applyDefaults sets local/dev defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.JWTSecret == "" {
		c.JWTSecret = DefaultJWTSecret
	}
	if c.TokenTTLHours == 0 {
		c.TokenTTLHours = 24
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "quickpost"
	}
	if c.CacheDriver == "" {
		c.CacheDriver = "redis"
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = 300
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) error {
	var errs []error
	intEnv := func(key string, dst *int) {
		v := getEnv(key, "")
		if v == "" {
			return
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid integer value %s=%q: %w", key, v, err))
			return
		}
		*dst = i
	}
	boolEnv := func(key string, dst *bool) {
		if v := getEnv(key, ""); v != "" {
			*dst = v == "true" || v == "1"
		}
	}

	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	// SECRET_KEY is the historical name; JWT_SECRET wins when both are set.
	if v := getEnv("SECRET_KEY", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	intEnv("TOKEN_TTL_HOURS", &c.TokenTTLHours)
	boolEnv("SANITIZE_POSTS", &c.SanitizePosts)
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("DATABASE_URL", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	if v := getEnv("CACHE_DRIVER", ""); v != "" {
		c.CacheDriver = strings.ToLower(v)
	}
	intEnv("CACHE_TTL_SECONDS", &c.CacheTTLSeconds)
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	intEnv("REDIS_PORT", &c.RedisPort)
	intEnv("REDIS_DB", &c.RedisDB)
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	intEnv("LOG_MAX_SIZE_MB", &c.LogMaxSizeMB)
	intEnv("LOG_MAX_BACKUPS", &c.LogMaxBackups)
	intEnv("LOG_MAX_AGE_DAYS", &c.LogMaxAgeDays)
	boolEnv("LOG_COMPRESS", &c.LogCompress)

	return errors.Join(errs...)
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
