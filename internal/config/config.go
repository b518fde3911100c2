package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported metadata drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported storage disks.
const (
	DiskPublic = "public"
	DiskMinIO  = "minio"
)

// Config aggregates runtime configuration for the MediaDrop API.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Media    MediaConfig
	Auth     AuthConfig
	CORS     CORSConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects and parameterizes the metadata store.
type DatabaseConfig struct {
	Driver      string
	Postgres    PostgresConfig
	SQLitePath  string
	AutoMigrate bool
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// StorageConfig names the default disk and configures every available one.
type StorageConfig struct {
	DefaultDisk string
	Local       LocalDiskConfig
	MinIO       MinIOConfig
}

// LocalDiskConfig configures the filesystem-backed public disk.
type LocalDiskConfig struct {
	Root      string
	PublicURL string
	MountPath string
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	PublicURL       string
	PresignTTL      time.Duration
}

// MediaConfig holds upload rules.
type MediaConfig struct {
	MaxUploadKB  int64
	Namespace    string
	RequestSlack int64
}

// MaxUploadBytes converts the kilobyte limit to bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	return m.MaxUploadKB * 1024
}

// MaxRequestBytes is the cap applied to the raw request body.
func (m MediaConfig) MaxRequestBytes() int64 {
	return m.MaxUploadBytes() + m.RequestSlack
}

// AuthConfig groups authentication-related settings.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenTTL    time.Duration
	BcryptCost        int
}

// CORSConfig mirrors the cross-origin policy of the public API.
type CORSConfig struct {
	AllowedOrigins  []string
	OriginPatterns  []string
	MaxAge          time.Duration
	AllowCredential bool
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("MEDIADROP_API_HOST", "0.0.0.0"),
			Port:         getInt("MEDIADROP_API_PORT", 8080),
			ReadTimeout:  getDuration("MEDIADROP_API_READ_TIMEOUT", 5*time.Minute),
			WriteTimeout: getDuration("MEDIADROP_API_WRITE_TIMEOUT", 5*time.Minute),
			IdleTimeout:  getDuration("MEDIADROP_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getString("DB_CONNECTION", DriverPostgres)),
			Postgres: PostgresConfig{
				Host:     getString("POSTGRES_HOST", "localhost"),
				Port:     getInt("POSTGRES_PORT", 5432),
				User:     getString("POSTGRES_USER", "mediadrop_app"),
				Password: getString("POSTGRES_PASSWORD", "change-me"),
				Database: getString("POSTGRES_DB", "mediadrop"),
				SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
			},
			SQLitePath:  getString("SQLITE_PATH", "storage/mediadrop.sqlite"),
			AutoMigrate: getBool("DB_AUTO_MIGRATE", true),
		},
		Storage: StorageConfig{
			DefaultDisk: strings.ToLower(getString("FILESYSTEM_DISK", DiskPublic)),
			Local: LocalDiskConfig{
				Root:      getString("PUBLIC_DISK_ROOT", "storage/app/public"),
				PublicURL: strings.TrimRight(getString("PUBLIC_DISK_URL", "http://localhost:8080/storage"), "/"),
				MountPath: getString("PUBLIC_DISK_MOUNT", "/storage"),
			},
			MinIO: MinIOConfig{
				Enabled:         getBool("MINIO_ENABLED", false),
				Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
				AccessKeyID:     getString("MINIO_ROOT_USER", "mediadrop"),
				SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
				Bucket:          getString("MINIO_BUCKET", "mediadrop"),
				UseSSL:          getBool("MINIO_USE_SSL", false),
				Region:          getString("MINIO_REGION", ""),
				PublicURL:       strings.TrimRight(getString("MINIO_PUBLIC_URL", ""), "/"),
				PresignTTL:      getDuration("MINIO_PRESIGN_TTL", 24*time.Hour),
			},
		},
		Media: MediaConfig{
			MaxUploadKB:  int64(getInt("MEDIA_MAX_UPLOAD_KB", 204800)),
			Namespace:    getString("MEDIA_NAMESPACE", "media"),
			RequestSlack: int64(getInt("MEDIA_REQUEST_SLACK_BYTES", 16<<20)),
		},
		Auth: loadAuthConfig(),
		CORS: CORSConfig{
			AllowedOrigins:  getList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "https://mediadrop.test"}),
			OriginPatterns:  getList("CORS_ALLOWED_ORIGIN_PATTERNS", []string{`^https?://([a-z0-9-]+\.)?mediadrop\.test$`}),
			MaxAge:          getDuration("CORS_MAX_AGE", time.Hour),
			AllowCredential: getBool("CORS_SUPPORTS_CREDENTIALS", false),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("MEDIADROP_METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getString("LOG_LEVEL", "info")),
			Format: strings.ToLower(getString("LOG_FORMAT", "json")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_CONNECTION %q", c.Database.Driver))
	}
	switch c.Storage.DefaultDisk {
	case DiskPublic, DiskMinIO:
	default:
		errs = append(errs, fmt.Errorf("unsupported FILESYSTEM_DISK %q", c.Storage.DefaultDisk))
	}
	if c.Storage.DefaultDisk == DiskMinIO && !c.Storage.MinIO.Enabled {
		errs = append(errs, errors.New("FILESYSTEM_DISK=minio requires MINIO_ENABLED"))
	}
	if c.Media.MaxUploadKB <= 0 {
		errs = append(errs, errors.New("MEDIA_MAX_UPLOAD_KB must be positive"))
	}
	if c.Media.RequestSlack < 0 {
		errs = append(errs, errors.New("MEDIA_REQUEST_SLACK_BYTES must not be negative"))
	}
	if strings.TrimSpace(c.Media.Namespace) == "" {
		errs = append(errs, errors.New("MEDIA_NAMESPACE must not be empty"))
	}
	return errors.Join(errs...)
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

// getList splits a comma separated variable, dropping empty entries.
func getList(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadAuthConfig() AuthConfig {
	cost := getInt("MEDIADROP_AUTH_BCRYPT_COST", 12)
	if cost < 4 || cost > 31 {
		cost = 12
	}

	return AuthConfig{
		AccessTokenSecret: getString("MEDIADROP_JWT_SECRET", "change-me-to-a-32-byte-secret"),
		AccessTokenTTL:    getDuration("MEDIADROP_AUTH_ACCESS_TOKEN_TTL", 24*time.Hour),
		BcryptCost:        cost,
	}
}
