package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via config files or the environment.
type AppConfig struct {
	AppPort     string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	// Upload acceptance rules
	StorageDir            string
	MaxUploadSizeMB       int
	MaxFilesPerSubmission int
	AllowedMimeTypes      []string
	// Orphan blob reaping
	OrphanGraceMinutes int
	OrphanReapEnabled  bool
	// Request throttling and CORS
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Redis for read-side caching
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
// Precedence: config/config.json -> defaults -> environment variable overrides.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			case json.Number:
				i, _ := t.Int64()
				return int(i)
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
		out.GinMode = getString(app, "GinMode")
		out.GinPath = getString(app, "GinPath")
	}
	if db, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(db, "DatabaseURI")
		out.DBHost = getString(db, "DBHost")
		out.DBPort = getString(db, "DBPort")
		out.DBUser = getString(db, "DBUser")
		out.DBPassword = getString(db, "DBPassword")
		out.DBName = getString(db, "DBName")
	}
	if st, ok := raw["storage"].(map[string]any); ok {
		out.StorageDir = getString(st, "StorageDir")
		if v := getInt(st, "MaxUploadSizeMB"); v != 0 {
			out.MaxUploadSizeMB = v
		}
		if v := getInt(st, "MaxFilesPerSubmission"); v != 0 {
			out.MaxFilesPerSubmission = v
		}
		if list := getStringSlice(st, "AllowedMimeTypes"); len(list) > 0 {
			out.AllowedMimeTypes = list
		}
		if v := getInt(st, "OrphanGraceMinutes"); v != 0 {
			out.OrphanGraceMinutes = v
		}
		out.OrphanReapEnabled = getBool(st, "OrphanReapEnabled")
	}
	if rd, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rd, "RedisHost")
		if v := getInt(rd, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		out.RedisDB = getInt(rd, "RedisDB")
		out.RedisPassword = getString(rd, "RedisPassword")
	}
	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "LogLevel")
		out.LogPath = getString(lg, "LogPath")
		if v := getInt(lg, "LogMaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "LogMaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "LogMaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "LogCompress")
	}

	return nil
}

func applyDefaults(out *AppConfig) {
	if out.AppPort == "" {
		out.AppPort = "8080"
	}
	if out.DBHost == "" {
		out.DBHost = "127.0.0.1"
	}
	if out.DBPort == "" {
		out.DBPort = "3306"
	}
	if out.DBUser == "" {
		out.DBUser = "root"
	}
	if out.DBName == "" {
		out.DBName = "gradgate"
	}
	if out.StorageDir == "" {
		out.StorageDir = filepath.Join(".", "data", "blobs")
	}
	if out.MaxUploadSizeMB == 0 {
		out.MaxUploadSizeMB = 10
	}
	if out.MaxFilesPerSubmission == 0 {
		out.MaxFilesPerSubmission = 5
	}
	if len(out.AllowedMimeTypes) == 0 {
		out.AllowedMimeTypes = []string{"application/pdf", "image/jpeg", "image/png"}
	}
	if out.OrphanGraceMinutes == 0 {
		out.OrphanGraceMinutes = 24 * 60
	}
	if out.RateLimitPerMinute == 0 {
		out.RateLimitPerMinute = 60
	}
	if len(out.AllowedOrigins) == 0 {
		out.AllowedOrigins = []string{"*"}
	}
	if out.GinMode == "" {
		out.GinMode = "release"
	}
	if out.GinPath == "" {
		out.GinPath = filepath.Join("logs", "gin.log")
	}
	if out.RedisHost == "" {
		out.RedisHost = "127.0.0.1"
	}
	if out.RedisPort == 0 {
		out.RedisPort = 6379
	}
	if out.LogLevel == "" {
		out.LogLevel = "info"
	}
	if out.LogPath == "" {
		out.LogPath = filepath.Join("logs", "app.log")
	}
	if out.LogMaxSizeMB == 0 {
		out.LogMaxSizeMB = 100
	}
	if out.LogMaxBackups == 0 {
		out.LogMaxBackups = 3
	}
	if out.LogMaxAgeDays == 0 {
		out.LogMaxAgeDays = 7
	}
}

func applyEnvOverrides(out *AppConfig) {
	out.AppPort = getEnv("APP_PORT", out.AppPort)
	out.DatabaseURI = getEnv("DATABASE_URI", out.DatabaseURI)
	out.DBHost = getEnv("DB_HOST", out.DBHost)
	out.DBPort = getEnv("DB_PORT", out.DBPort)
	out.DBUser = getEnv("DB_USER", out.DBUser)
	out.DBPassword = getEnv("DB_PASSWORD", out.DBPassword)
	out.DBName = getEnv("DB_NAME", out.DBName)

	out.StorageDir = getEnv("STORAGE_DIR", out.StorageDir)
	if v := os.Getenv("MAX_UPLOAD_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.MaxUploadSizeMB = n
		}
	}
	if v := os.Getenv("MAX_FILES_PER_SUBMISSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.MaxFilesPerSubmission = n
		}
	}
	if v := os.Getenv("ALLOWED_MIME_TYPES"); v != "" {
		if res := splitCSV(v); len(res) > 0 {
			out.AllowedMimeTypes = res
		}
	}
	if v := os.Getenv("ORPHAN_GRACE_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.OrphanGraceMinutes = n
		}
	}
	if v := os.Getenv("ORPHAN_REAP_ENABLED"); v != "" {
		out.OrphanReapEnabled = v == "1" || strings.EqualFold(v, "true")
	}

	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.RateLimitPerMinute = n
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		if res := splitCSV(v); len(res) > 0 {
			out.AllowedOrigins = res
		}
	}
	out.GinMode = getEnv("GIN_MODE", out.GinMode)
	out.GinPath = getEnv("GIN_PATH", out.GinPath)

	out.RedisHost = getEnv("REDIS_HOST", out.RedisHost)
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.RedisPort = n
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			out.RedisDB = n
		}
	}
	out.RedisPassword = getEnv("REDIS_PASSWORD", out.RedisPassword)

	out.LogLevel = getEnv("LOG_LEVEL", out.LogLevel)
	out.LogPath = getEnv("LOG_PATH", out.LogPath)
	if v := os.Getenv("LOG_MAX_SIZE_MB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.LogMaxSizeMB = n
		}
	}
	if v := os.Getenv("LOG_COMPRESS"); v != "" {
		out.LogCompress = v == "1" || strings.EqualFold(v, "true")
	}
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			res = append(res, s)
		}
	}
	return res
}

// MaxUploadSizeBytes returns the per-file size ceiling in bytes.
func (c AppConfig) MaxUploadSizeBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}
