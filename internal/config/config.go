package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// defaultJWTSecret keeps local runs working. Production must override it.
const defaultJWTSecret = "secret"

var ErrDefaultJWTSecret = errors.New("auth.jwt_secret must be changed from the default in production")

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api" validate:"required"`
	Gin      *GinConfig      `mapstructure:"gin" validate:"required"`
	Auth     *AuthConfig     `mapstructure:"auth" validate:"required"`
	Database *DatabaseConfig `mapstructure:"database" validate:"required"`
	Postgres *PostgresConfig `mapstructure:"postgres" validate:"required"`
	Mongo    *MongoConfig    `mapstructure:"mongo" validate:"required"`
	PubSub   *PubSubConfig   `mapstructure:"pubsub" validate:"required"`
	WS       *WSConfig       `mapstructure:"ws" validate:"required"`
	Admin    *AdminConfig    `mapstructure:"admin" validate:"required"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment" validate:"oneof=development production test"`
	Port               string        `mapstructure:"port" validate:"required,numeric"`
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`

	mu sync.RWMutex
}

// CORSDomains returns the current allow list. It changes when the config file is edited.
func (c *APIConfig) CORSDomains() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]string(nil), c.AllowedCORSDomains...)
}

func (c *APIConfig) setCORSDomains(domains []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.AllowedCORSDomains = domains
}

func (c *APIConfig) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

type GinConfig struct {
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"`
}

type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret" validate:"required"`
	JWTExpiresIn     string `mapstructure:"jwt_expires_in" validate:"required"`
	AllowAdminSignup bool   `mapstructure:"allow_admin_signup"`
}

// TokenTTL parses JWTExpiresIn. On top of Go durations it accepts a day suffix, e.g. "7d".
func (c *AuthConfig) TokenTTL() (time.Duration, error) {
	return ParseTTL(c.JWTExpiresIn)
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=mongo postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"ssl_mode"`
	URL      string `mapstructure:"url"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database" validate:"required"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gt=0"`
}

type PubSubConfig struct {
	OutputChannelBuffer int64 `mapstructure:"output_channel_buffer" validate:"gte=0"`
}

type WSConfig struct {
	InitTimeout    time.Duration `mapstructure:"init_timeout" validate:"gt=0"`
	PingPeriod     time.Duration `mapstructure:"ping_period" validate:"gt=0"`
	MaxMessageSize int64         `mapstructure:"max_message_size" validate:"gt=0"`
}

// AdminConfig seeds an administrator account on startup when Email is set.
type AdminConfig struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email" validate:"omitempty,email"`
	Password string `mapstructure:"password" validate:"required_with=Email"`
}

// envBindings lists the environment variables read for each key, first match wins.
var envBindings = map[string][]string{
	"api.environment":          {"APP_ENV", "NODE_ENV"},
	"api.port":                 {"API_PORT", "PORT"},
	"api.base_url":             {"API_BASE_URL"},
	"api.allowed_cors_domains": {"CORS_ORIGIN"},
	"gin.mode":                 {"GIN_MODE"},
	"auth.jwt_secret":          {"JWT_SECRET"},
	"auth.jwt_expires_in":      {"JWT_EXPIRES_IN"},
	"auth.allow_admin_signup":  {"ALLOW_ADMIN_SIGNUP"},
	"database.driver":          {"DATABASE_DRIVER"},
	"postgres.url":             {"DATABASE_URL"},
	"mongo.uri":                {"MONGODB_URI"},
	"mongo.database":           {"MONGODB_DATABASE"},
	"admin.email":              {"ADMIN_EMAIL"},
	"admin.password":           {"ADMIN_PASSWORD"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", EnvDevelopment)
	v.SetDefault("api.port", "4000")
	v.SetDefault("api.base_url", "localhost:4000")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:5173"})
	v.SetDefault("api.shutdown_timeout", 10*time.Second)
	v.SetDefault("gin.mode", "release")
	v.SetDefault("auth.jwt_secret", defaultJWTSecret)
	v.SetDefault("auth.jwt_expires_in", "7d")
	v.SetDefault("auth.allow_admin_signup", false)
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "postgres")
	v.SetDefault("postgres.db", "eventhub")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.url", "")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "eventhub")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)
	v.SetDefault("pubsub.output_channel_buffer", 64)
	v.SetDefault("ws.init_timeout", 10*time.Second)
	v.SetDefault("ws.ping_period", 30*time.Second)
	v.SetDefault("ws.max_message_size", 64*1024)
	v.SetDefault("admin.name", "Administrator")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
}

// Load reads the YAML file at path when it exists, then applies environment
// overrides and validates the result.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("v.BindEnv(%s) -> %w", key, err)
		}
	}

	fileFound := false
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err = v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
			}
			fileFound = true
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("os.Stat -> %w", err)
		}
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}

	if fileFound {
		watch(v, conf)
	}

	return conf, nil
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	// CORS_ORIGIN arrives as a single comma separated string.
	conf.API.AllowedCORSDomains = splitList(v.GetStringSlice("api.allowed_cors_domains"))

	if _, err := conf.Auth.TokenTTL(); err != nil {
		return nil, fmt.Errorf("invalid auth.jwt_expires_in -> %w", err)
	}

	if err := validator.New().Struct(conf); err != nil {
		return nil, fmt.Errorf("invalid config -> %w", err)
	}

	if conf.API.Environment == EnvProduction && conf.Auth.JWTSecret == defaultJWTSecret {
		return nil, ErrDefaultJWTSecret
	}

	return conf, nil
}

// watch reloads the CORS allow list on file changes. Other settings need a restart.
func watch(v *viper.Viper, conf *AppConfig) {
	v.OnConfigChange(func(e fsnotify.Event) {
		domains := splitList(v.GetStringSlice("api.allowed_cors_domains"))
		conf.API.setCORSDomains(domains)
		zap.L().Info("config reloaded",
			zap.String("file", e.Name),
			zap.String("op", e.Op.String()),
			zap.Strings("allowed_cors_domains", domains),
		)
	})
	v.WatchConfig()
}

func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

// ParseTTL parses a Go duration, or a whole number of days such as "7d".
func ParseTTL(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}

		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}

	return d, nil
}
