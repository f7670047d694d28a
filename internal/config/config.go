// Package config provides configuration loading and validation for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default configuration constants.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultMongoDBTimeout     = 10 * time.Second
	DefaultMongoDBMaxPoolSize = 100

	DefaultRedisPoolSize = 10

	DefaultPreferenceCacheTTL = 5 * time.Minute

	DefaultRateLimit       = 300
	DefaultRateLimitWindow = time.Minute

	DefaultPurgeInterval = time.Hour

	DefaultAdminAPIURL         = "http://localhost:8080"
	DefaultAdminRequestTimeout = 15 * time.Second
	DefaultAdminDebounceWindow = 500 * time.Millisecond
	DefaultAdminPageSize       = 25
)

// AppMode defines the application wiring mode.
type AppMode string

// Application wiring modes.
const (
	// AppModeReal uses real implementations (MongoDB, Redis).
	// This is the default mode and should be used in production.
	AppModeReal AppMode = "real"

	// AppModeMock uses in-memory implementations for development/testing.
	// This mode is NOT allowed in production environments.
	AppModeMock AppMode = "mock"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the complete application configuration.
type Config struct {
	App         AppConfig         `yaml:"app"`
	Server      ServerConfig      `yaml:"server"`
	MongoDB     MongoDBConfig     `yaml:"mongodb"`
	Redis       RedisConfig       `yaml:"redis"`
	Log         LogConfig         `yaml:"log"`
	Users       UsersConfig       `yaml:"users"`
	Preferences PreferencesConfig `yaml:"preferences"`
	RateLimit   RateLimitConfig   `yaml:"ratelimit"`
	Worker      WorkerConfig      `yaml:"worker"`
	Admin       AdminConfig       `yaml:"admin"`
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	// Mode controls dependency wiring: "real" (default) or "mock".
	// In production, only "real" mode is allowed.
	Mode AppMode `yaml:"mode" env:"APP_MODE"`

	// Name is the application name used in logs and metrics.
	Name string `yaml:"name" env:"APP_NAME"`

	// Environment is either "development" or "production".
	Environment string `yaml:"environment" env:"APP_ENV"`
}

// IsRealMode returns true if the application should use real implementations.
func (c AppConfig) IsRealMode() bool {
	return c.Mode == "" || c.Mode == AppModeReal
}

// IsMockMode returns true if the application should use mock implementations.
func (c AppConfig) IsMockMode() bool {
	return c.Mode == AppModeMock
}

// ServerConfig holds HTTP server configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST"`
	Port            int           `yaml:"port" env:"SERVER_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// Address returns the full server address (host:port).
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// MongoDBConfig holds MongoDB connection configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type MongoDBConfig struct {
	URI         string        `yaml:"uri" env:"MONGODB_URI"`
	Database    string        `yaml:"database" env:"MONGODB_DATABASE"`
	Timeout     time.Duration `yaml:"timeout" env:"MONGODB_TIMEOUT"`
	MaxPoolSize uint64        `yaml:"max_pool_size" env:"MONGODB_MAX_POOL_SIZE"`
}

// RedisConfig holds Redis connection configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE"`
}

// LogConfig holds logging configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`   // debug | info | warn | error
	Format string `yaml:"format" env:"LOG_FORMAT"` // json | text
}

// UsersConfig holds the user directory rules.
type UsersConfig struct {
	// Undeletable lists usernames that can never be removed.
	// Comma separated when given through the environment.
	Undeletable []string `yaml:"undeletable" env:"USERS_UNDELETABLE"`
}

// PreferencesConfig holds system preference storage configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type PreferencesConfig struct {
	CacheEnabled bool          `yaml:"cache_enabled" env:"PREFERENCES_CACHE_ENABLED"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env:"PREFERENCES_CACHE_TTL"`
}

// RateLimitConfig holds API rate limiting configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled" env:"RATELIMIT_ENABLED"`
	Limit   int           `yaml:"limit" env:"RATELIMIT_LIMIT"`
	Window  time.Duration `yaml:"window" env:"RATELIMIT_WINDOW"`
}

// WorkerConfig holds background worker configuration.
//
//nolint:golines // Struct tags require longer lines for readability
type WorkerConfig struct {
	PurgeEnabled  bool          `yaml:"purge_enabled" env:"WORKER_PURGE_ENABLED"`
	PurgeInterval time.Duration `yaml:"purge_interval" env:"WORKER_PURGE_INTERVAL"`
}

// AdminConfig holds configuration of the admin console client.
//
//nolint:golines // Struct tags require longer lines for readability
type AdminConfig struct {
	APIURL         string        `yaml:"api_url" env:"ADMIN_API_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"ADMIN_REQUEST_TIMEOUT"`
	DebounceWindow time.Duration `yaml:"debounce_window" env:"ADMIN_DEBOUNCE_WINDOW"`
	PageSize       int           `yaml:"page_size" env:"ADMIN_PAGE_SIZE"`
}

// Configuration errors.
var (
	ErrConfigNotFound   = errors.New("configuration file not found")
	ErrConfigInvalid    = errors.New("invalid configuration")
	ErrInvalidDuration  = errors.New("invalid duration format")
	ErrInvalidLogLevel  = errors.New("invalid log level: must be debug, info, warn, or error")
	ErrInvalidLogFormat = errors.New("invalid log format: must be json or text")
	ErrInvalidAppMode   = errors.New("invalid app mode: must be real or mock")
	ErrInvalidEnv       = errors.New("invalid environment: must be development or production")
	ErrMockModeInProd   = errors.New("mock mode is not allowed in production")
	ErrInvalidPageSize  = errors.New("invalid admin page size: must be 5, 10, 25 or 100")
)

// adminPageSizes mirrors the page sizes offered by the admin user list.
var adminPageSizes = []int{5, 10, 25, 100}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Mode:        AppModeReal,
			Name:        "imghost",
			Environment: EnvDevelopment,
		},
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		MongoDB: MongoDBConfig{
			URI:         "mongodb://localhost:27017",
			Database:    "imghost",
			Timeout:     DefaultMongoDBTimeout,
			MaxPoolSize: DefaultMongoDBMaxPoolSize,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
			PoolSize: DefaultRedisPoolSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Users: UsersConfig{
			Undeletable: []string{"admin", "guest"},
		},
		Preferences: PreferencesConfig{
			CacheEnabled: true,
			CacheTTL:     DefaultPreferenceCacheTTL,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Limit:   DefaultRateLimit,
			Window:  DefaultRateLimitWindow,
		},
		Worker: WorkerConfig{
			PurgeEnabled:  true,
			PurgeInterval: DefaultPurgeInterval,
		},
		Admin: AdminConfig{
			APIURL:         DefaultAdminAPIURL,
			RequestTimeout: DefaultAdminRequestTimeout,
			DebounceWindow: DefaultAdminDebounceWindow,
			PageSize:       DefaultAdminPageSize,
		},
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []error

	errs = c.validateApp(errs)
	errs = c.validateServer(errs)
	errs = c.validateMongoDB(errs)
	errs = c.validateRedis(errs)
	errs = c.validateLog(errs)
	errs = c.validatePreferences(errs)
	errs = c.validateRateLimit(errs)
	errs = c.validateWorker(errs)
	errs = c.validateAdmin(errs)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, errors.Join(errs...))
	}

	return nil
}

// validateApp validates application configuration.
func (c *Config) validateApp(errs []error) []error {
	if c.App.Mode != "" && c.App.Mode != AppModeReal && c.App.Mode != AppModeMock {
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidAppMode, c.App.Mode))
	}
	env := strings.ToLower(c.App.Environment)
	if env != "" && env != EnvDevelopment && env != EnvProduction {
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidEnv, c.App.Environment))
	}
	if c.App.IsMockMode() && c.IsProduction() {
		errs = append(errs, ErrMockModeInProd)
	}
	return errs
}

// validateServer validates server configuration.
func (c *Config) validateServer(errs []error) []error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server.read_timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server.write_timeout must be positive"))
	}
	return errs
}

// validateMongoDB validates MongoDB configuration.
func (c *Config) validateMongoDB(errs []error) []error {
	if c.App.IsMockMode() {
		return errs
	}
	if c.MongoDB.URI == "" {
		errs = append(errs, errors.New("mongodb.uri is required"))
	}
	if c.MongoDB.Database == "" {
		errs = append(errs, errors.New("mongodb.database is required"))
	}
	return errs
}

// validateRedis validates Redis configuration.
func (c *Config) validateRedis(errs []error) []error {
	if c.App.IsMockMode() {
		return errs
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required"))
	}
	return errs
}

// validateLog validates logging configuration.
func (c *Config) validateLog(errs []error) []error {
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ErrInvalidLogLevel)
	}
	validLogFormats := map[string]bool{"json": true, "text": true}
	if !validLogFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ErrInvalidLogFormat)
	}
	return errs
}

// validatePreferences validates preference cache configuration.
func (c *Config) validatePreferences(errs []error) []error {
	if c.Preferences.CacheEnabled && c.Preferences.CacheTTL <= 0 {
		errs = append(errs, errors.New("preferences.cache_ttl must be positive when the cache is enabled"))
	}
	return errs
}

// validateRateLimit validates rate limiting configuration.
func (c *Config) validateRateLimit(errs []error) []error {
	if !c.RateLimit.Enabled {
		return errs
	}
	if c.RateLimit.Limit <= 0 {
		errs = append(errs, errors.New("ratelimit.limit must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("ratelimit.window must be positive"))
	}
	return errs
}

// validateWorker validates worker configuration.
func (c *Config) validateWorker(errs []error) []error {
	if c.Worker.PurgeEnabled && c.Worker.PurgeInterval <= 0 {
		errs = append(errs, errors.New("worker.purge_interval must be positive"))
	}
	return errs
}

// validateAdmin validates admin console configuration.
func (c *Config) validateAdmin(errs []error) []error {
	if c.Admin.APIURL == "" {
		errs = append(errs, errors.New("admin.api_url is required"))
	}
	if c.Admin.RequestTimeout <= 0 {
		errs = append(errs, errors.New("admin.request_timeout must be positive"))
	}
	if c.Admin.DebounceWindow <= 0 {
		errs = append(errs, errors.New("admin.debounce_window must be positive"))
	}
	if !slices.Contains(adminPageSizes, c.Admin.PageSize) {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidPageSize, c.Admin.PageSize))
	}
	return errs
}

// Load loads configuration from the default config file and environment variables.
func Load() (*Config, error) {
	return LoadFromPath("")
}

// LoadFromPath loads configuration from a specific file path.
// If path is empty, it tries to find the config file in standard locations.
func LoadFromPath(path string) (*Config, error) {
	loader := NewLoader()
	return loader.Load(path)
}

// Loader handles configuration loading from files and environment variables.
type Loader struct {
	configPaths []string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		configPaths: []string{
			"configs/config.yaml",
			"config.yaml",
			"/etc/imghost/config.yaml",
		},
	}
}

// WithConfigPaths sets custom config paths to search.
func (l *Loader) WithConfigPaths(paths []string) *Loader {
	l.configPaths = paths
	return l
}

// Load loads configuration from file and environment variables.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	configPath := path
	if configPath == "" {
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			configPath = envPath
		} else {
			for _, p := range l.configPaths {
				if _, err := os.Stat(p); err == nil {
					configPath = p
					break
				}
			}
		}
	}

	if configPath != "" {
		if err := l.loadFromFile(cfg, configPath); err != nil {
			// Only fail if the path was asked for explicitly
			if path != "" || os.Getenv("CONFIG_PATH") != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func (l *Loader) loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil {
		return fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables.
func (l *Loader) loadFromEnv(cfg *Config) error {
	return l.loadEnvToStruct(reflect.ValueOf(cfg).Elem())
}

// loadEnvToStruct recursively loads environment variables into a struct.
func (l *Loader) loadEnvToStruct(v reflect.Value) error {
	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		fieldType := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := l.loadEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		envTag := fieldType.Tag.Get("env")
		if envTag == "" {
			continue
		}

		envValue := os.Getenv(envTag)
		if envValue == "" {
			continue
		}

		if err := l.setFieldFromEnv(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s from env %s: %w", fieldType.Name, envTag, err)
		}
	}

	return nil
}

// setFieldFromEnv sets a struct field value from an environment variable string.
//
//nolint:exhaustive // We only support a subset of reflect.Kind for config values
func (l *Loader) setFieldFromEnv(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeFor[time.Duration]() {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("%w: %s", ErrInvalidDuration, value)
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %s", value)
			}
			field.SetInt(i)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid unsigned integer value: %s", value)
		}
		field.SetUint(u)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value: %s", value)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type())
		}
		var items []string
		for item := range strings.SplitSeq(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// IsDevelopment returns true if the log level indicates a development environment.
func (c *Config) IsDevelopment() bool {
	return strings.ToLower(c.Log.Level) == "debug"
}

// IsProduction returns true if the application runs in the production environment.
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.App.Environment) == EnvProduction
}
