package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

const devJWTSecret = "carona-dev-secret-change-me"

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8888"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"carona-condominio"`

	// 远端后端（用户、进度、carona 的权威数据源）
	BackendProvider       string `env:"BACKEND_PROVIDER" envDefault:"http"` // http, mock
	BackendBaseURL        string `env:"BACKEND_BASE_URL" envDefault:"http://localhost:8080/api"`
	BackendTimeoutSeconds int    `env:"BACKEND_TIMEOUT_SECONDS" envDefault:"10"`

	// 本地缓存 / 凭证存储
	StoreDriver         string `env:"STORE_DRIVER" envDefault:"redis"` // redis, memory
	SessionTTLMinutes   int    `env:"SESSION_TTL_MINUTES" envDefault:"120"`
	PersistentTTLDays   int    `env:"PERSISTENT_TTL_DAYS" envDefault:"30"`
	ProgressLockSeconds int    `env:"PROGRESS_LOCK_SECONDS" envDefault:"15"`

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"carona"`

	// JWT 配置（BFF 自己签发，只标识用户和存储范围）
	JWTSecret        string `env:"JWT_SECRET"`
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"120"`
	JWTRememberDays  int    `env:"JWT_REMEMBER_DAYS" envDefault:"30"`

	// Cookie
	CookieDomain string `env:"COOKIE_DOMAIN" envDefault:""`
	CookieSecure bool   `env:"COOKIE_SECURE" envDefault:"false"`

	// CSRF（浏览器通过 cookie 提交向导表单时启用）
	CSRFEnabled   bool   `env:"CSRF_ENABLED" envDefault:"false"`
	CSRFSecret    string `env:"CSRF_SECRET" envDefault:"carona-csrf-secret"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"carona-session-secret"`

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	OTelEnabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelSampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"0.1"`
	ServiceVersion  string  `env:"SERVICE_VERSION" envDefault:"dev"`

	// 速率限制配置, 配置在中间件内
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	LoginRateLimit   int  `env:"LOGIN_RATE_LIMIT" envDefault:"10"`  // 每分钟登录次数
	SubmitRateLimit  int  `env:"SUBMIT_RATE_LIMIT" envDefault:"30"` // 每分钟向导提交次数
	AccountRateLimit int  `env:"ACCOUNT_RATE_LIMIT" envDefault:"5"` // 每分钟注册和找回密码次数
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.JWTSecret == "" {
		if Cfg.IsProduction() {
			log.Fatal("JWT_SECRET is required")
		}
		log.Printf("WARN: JWT_SECRET is not set, using development secret")
		Cfg.JWTSecret = devJWTSecret
	}

	if Cfg.BackendProvider == "http" && Cfg.BackendBaseURL == "" {
		log.Fatal("BACKEND_BASE_URL is required when BACKEND_PROVIDER=http")
	}

	if Cfg.StoreDriver == "memory" && Cfg.IsProduction() {
		log.Printf("WARN: STORE_DRIVER=memory keeps progress cache in process, not shared across instances")
	}

	if Cfg.CSRFEnabled && Cfg.CSRFSecret == "carona-csrf-secret" {
		log.Printf("WARN: CSRF_SECRET uses the default value")
	}
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSeconds) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c *Config) PersistentTTL() time.Duration {
	return time.Duration(c.PersistentTTLDays) * 24 * time.Hour
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
