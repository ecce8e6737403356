package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig   `mapstructure:"session"`
	CSRF      CSRFConfig      `mapstructure:"csrf"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool   `mapstructure:"-"`
	MigrateOnly  bool   `mapstructure:"-"`
	ConfigFile   string `mapstructure:"-"` // 实际加载的配置文件路径，供热更新使用
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	SecretKey   string `mapstructure:"secret_key"`
	WatchConfig bool   `mapstructure:"watch_config"`
}

type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver"` // mysql, postgres, sqlite
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	Charset                string `mapstructure:"charset"`
	ParseTime              bool   `mapstructure:"parse_time"`
	SSLMode                string `mapstructure:"sslmode"`
	Path                   string `mapstructure:"path"` // sqlite 文件路径
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int    `mapstructure:"conn_max_lifetime_seconds"`
	LogSQL                 bool   `mapstructure:"log_sql"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	Store       string `mapstructure:"store"` // database, redis
	CookieName  string `mapstructure:"cookie_name"`
	MaxAgeHours int    `mapstructure:"max_age_hours"`
	Secure      bool   `mapstructure:"secure"`
	Domain      string `mapstructure:"domain"`
}

// MaxAge 会话有效期
func (s SessionConfig) MaxAge() time.Duration {
	return time.Duration(s.MaxAgeHours) * time.Hour
}

type CSRFConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	HeaderName string `mapstructure:"header_name"`
}

type OAuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	GoogleRedirectURL  string `mapstructure:"google_redirect_url"`
	LoginRedirectURL   string `mapstructure:"login_redirect_url"`
	StateTTLMinutes    int    `mapstructure:"state_ttl_minutes"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxAgeSeconds  int      `mapstructure:"max_age_seconds"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.secret_key", "insecure-development-secret-key")
	v.SetDefault("server.watch_config", false)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "root")
	v.SetDefault("database.dbname", "quiz_app")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "quiz_app.db")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_seconds", 60)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("session.store", "database")
	v.SetDefault("session.cookie_name", "sessionid")
	v.SetDefault("session.max_age_hours", 24*14)

	v.SetDefault("csrf.cookie_name", "csrftoken")
	v.SetDefault("csrf.header_name", "X-CSRFToken")

	v.SetDefault("oauth.google_redirect_url", "http://localhost:8000/api/accounts/google/login/callback")
	v.SetDefault("oauth.login_redirect_url", "http://localhost:3000/quizzes")
	v.SetDefault("oauth.state_ttl_minutes", 10)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.max_age_seconds", 86400)

	v.SetDefault("rate_limit.max_requests", 1000)
	v.SetDefault("rate_limit.window_minutes", 1)

	v.SetDefault("log.file", "logs/app.log")
}

func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	v.SetEnvPrefix("QUIZ_APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 兼容原部署使用的环境变量名
	v.BindEnv("server.secret_key", "SECRET_KEY")
	v.BindEnv("server.mode", "SERVER_MODE")

	// Database
	v.BindEnv("database.driver", "DB_ENGINE")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSL_MODE")
	v.BindEnv("database.conn_max_lifetime_seconds", "DB_CONN_MAX_AGE")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Session
	v.BindEnv("session.store", "SESSION_STORE")

	// OAuth
	v.BindEnv("oauth.google_client_id", "GOOGLE_OAUTH2_CLIENT_ID")
	v.BindEnv("oauth.google_client_secret", "GOOGLE_OAUTH2_CLIENT_SECRET")
	v.BindEnv("oauth.google_redirect_url", "GOOGLE_OAUTH2_REDIRECT_URL")
	v.BindEnv("oauth.login_redirect_url", "LOGIN_REDIRECT_URL")

	// CORS
	v.BindEnv("cors.allowed_origins", "CORS_ALLOWED_ORIGINS")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if used := v.ConfigFileUsed(); used != "" {
		cfg.ConfigFile, _ = filepath.Abs(used)
	}

	// DEBUG=False 等价于 release 模式
	if raw, ok := os.LookupEnv("DEBUG"); ok {
		if debug, err := strconv.ParseBool(raw); err == nil && !debug {
			cfg.Server.Mode = "release"
		}
	}

	// 生产环境校验 Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.Server.SecretKey) < 32 {
		return nil, fmt.Errorf("secret key is too short (%d chars), must be at least 32 characters in release mode", len(cfg.Server.SecretKey))
	}

	switch cfg.Server.Mode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("unknown server mode %q", cfg.Server.Mode)
	}

	if cfg.Session.Store != "database" && cfg.Session.Store != "redis" {
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}

	return &cfg, nil
}
