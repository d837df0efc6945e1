package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"xeroq/internal/models"
)

const (
	DefaultAPIURL     = "http://127.0.0.1:8000"
	DefaultDBFileName = ".xeroq.db"
	DefaultLogLevel   = "info"

	DefaultTTLHours              = 24
	DefaultReaperIntervalMinutes = 60
	DefaultMultipartMemory       int64 = 8 * 1024 * 1024

	configDirEnvKey = "XEROQ_CONFIG_DIR"
	apiURLEnvKey    = "XEROQ_API_URL"
	dbPathEnvKey    = "XEROQ_DB"
	ttlHoursEnvKey  = "XEROQ_TTL_HOURS"
)

// UploadConfig defines per-type upload ceilings and multipart parsing limits.
type UploadConfig struct {
	PDFMaxBytes        int64 `toml:"pdf_max_bytes"`
	DOCXMaxBytes       int64 `toml:"docx_max_bytes"`
	ImageMaxBytes      int64 `toml:"image_max_bytes"`
	MultipartMaxMemory int64 `toml:"multipart_max_memory"`
}

// StorageConfig selects and parameterizes the blob store backend.
type StorageConfig struct {
	Backend     string `toml:"backend"`
	LocalRoot   string `toml:"local_root"`
	S3Endpoint  string `toml:"s3_endpoint"`
	S3Region    string `toml:"s3_region"`
	S3Bucket    string `toml:"s3_bucket"`
	S3AccessKey string `toml:"s3_access_key"`
	S3SecretKey string `toml:"s3_secret_key"`
	S3UseSSL    bool   `toml:"s3_use_ssl"`
}

// ServerConfig defines transport-level settings.
type ServerConfig struct {
	AllowedOrigins        []string `toml:"allowed_origins"`
	AdminPasswordHash     string   `toml:"admin_password_hash"`
	ReaperIntervalMinutes int      `toml:"reaper_interval_minutes"`
}

// Config defines runtime configuration for xeroq.
type Config struct {
	APIURL   string        `toml:"api_url"`
	DBPath   string        `toml:"db_path"`
	LogLevel string        `toml:"log_level"`
	TTLHours int           `toml:"ttl_hours"`
	Uploads  UploadConfig  `toml:"uploads"`
	Storage  StorageConfig `toml:"storage"`
	Server   ServerConfig  `toml:"server"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		DBPath:   "",
		LogLevel: DefaultLogLevel,
		TTLHours: DefaultTTLHours,
		Uploads: UploadConfig{
			PDFMaxBytes:        models.DefaultPDFMaxBytes,
			DOCXMaxBytes:       models.DefaultDOCXMaxBytes,
			ImageMaxBytes:      models.DefaultImageMaxBytes,
			MultipartMaxMemory: DefaultMultipartMemory,
		},
		Storage: StorageConfig{
			Backend: "local",
		},
		Server: ServerConfig{
			ReaperIntervalMinutes: DefaultReaperIntervalMinutes,
		},
	}
}

// SizeLimits converts the configured ceilings into the domain policy type.
func (c *Config) SizeLimits() models.SizeLimits {
	limits := models.DefaultSizeLimits()
	if c.Uploads.PDFMaxBytes > 0 {
		limits.PDFMaxBytes = c.Uploads.PDFMaxBytes
	}
	if c.Uploads.DOCXMaxBytes > 0 {
		limits.DOCXMaxBytes = c.Uploads.DOCXMaxBytes
	}
	if c.Uploads.ImageMaxBytes > 0 {
		limits.ImageMaxBytes = c.Uploads.ImageMaxBytes
	}
	return limits
}

func loadFile(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, ".xeroq.toml"), true
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".xeroq.toml"), nil
}

// Load reads config from the global file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := GlobalPath()
	if err == nil {
		if loadErr := loadFile(path, &cfg); loadErr != nil {
			return nil, loadErr
		}
	}

	if cfg.DBPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.DBPath = filepath.Join(cwd, DefaultDBFileName)
		}
	}

	if apiURL := os.Getenv(apiURLEnvKey); apiURL != "" {
		cfg.APIURL = apiURL
	}
	if dbPath := os.Getenv(dbPathEnvKey); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if raw := strings.TrimSpace(os.Getenv(ttlHoursEnvKey)); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			cfg.TTLHours = parsed
		}
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

var allowedKeys = []string{
	"api_url",
	"db_path",
	"log_level",
	"ttl_hours",
	"uploads.pdf_max_bytes",
	"uploads.docx_max_bytes",
	"uploads.image_max_bytes",
	"uploads.multipart_max_memory",
	"storage.backend",
	"storage.local_root",
	"storage.s3_endpoint",
	"storage.s3_region",
	"storage.s3_bucket",
	"storage.s3_access_key",
	"storage.s3_secret_key",
	"storage.s3_use_ssl",
	"server.allowed_origins",
	"server.admin_password_hash",
	"server.reaper_interval_minutes",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "db_path":
		return c.DBPath, nil
	case "log_level":
		return c.LogLevel, nil
	case "ttl_hours":
		return strconv.Itoa(c.TTLHours), nil
	case "uploads.pdf_max_bytes":
		return strconv.FormatInt(c.Uploads.PDFMaxBytes, 10), nil
	case "uploads.docx_max_bytes":
		return strconv.FormatInt(c.Uploads.DOCXMaxBytes, 10), nil
	case "uploads.image_max_bytes":
		return strconv.FormatInt(c.Uploads.ImageMaxBytes, 10), nil
	case "uploads.multipart_max_memory":
		return strconv.FormatInt(c.Uploads.MultipartMaxMemory, 10), nil
	case "storage.backend":
		return c.Storage.Backend, nil
	case "storage.local_root":
		return c.Storage.LocalRoot, nil
	case "storage.s3_endpoint":
		return c.Storage.S3Endpoint, nil
	case "storage.s3_region":
		return c.Storage.S3Region, nil
	case "storage.s3_bucket":
		return c.Storage.S3Bucket, nil
	case "storage.s3_access_key":
		return c.Storage.S3AccessKey, nil
	case "storage.s3_secret_key":
		return c.Storage.S3SecretKey, nil
	case "storage.s3_use_ssl":
		return strconv.FormatBool(c.Storage.S3UseSSL), nil
	case "server.allowed_origins":
		return strings.Join(c.Server.AllowedOrigins, ","), nil
	case "server.admin_password_hash":
		return c.Server.AdminPasswordHash, nil
	case "server.reaper_interval_minutes":
		return strconv.Itoa(c.Server.ReaperIntervalMinutes), nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "uploads.pdf_max_bytes", "uploads.docx_max_bytes", "uploads.image_max_bytes", "uploads.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "ttl_hours", "server.reaper_interval_minutes":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("%s must be a non-negative integer", key)
		}
		return parsed, nil
	case "storage.s3_use_ssl":
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false", key)
		}
		return parsed, nil
	case "storage.backend":
		switch value {
		case "local", "s3":
			return value, nil
		default:
			return nil, fmt.Errorf("storage.backend must be local or s3")
		}
	case "server.allowed_origins":
		return splitCSV(value), nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) normalizeDefaults() {
	if c.TTLHours <= 0 {
		c.TTLHours = DefaultTTLHours
	}
	if c.Uploads.PDFMaxBytes <= 0 {
		c.Uploads.PDFMaxBytes = models.DefaultPDFMaxBytes
	}
	if c.Uploads.DOCXMaxBytes <= 0 {
		c.Uploads.DOCXMaxBytes = models.DefaultDOCXMaxBytes
	}
	if c.Uploads.ImageMaxBytes <= 0 {
		c.Uploads.ImageMaxBytes = models.DefaultImageMaxBytes
	}
	if c.Uploads.MultipartMaxMemory <= 0 {
		c.Uploads.MultipartMaxMemory = DefaultMultipartMemory
	}
	if strings.TrimSpace(c.Storage.Backend) == "" {
		c.Storage.Backend = "local"
	}
	if c.Server.ReaperIntervalMinutes < 0 {
		c.Server.ReaperIntervalMinutes = DefaultReaperIntervalMinutes
	}
}
