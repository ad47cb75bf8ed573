package infra

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config: корневая структура конфигурации клиента дашборда.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Identity  IdentityConfig  `mapstructure:"identity"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// APIConfig описывает подключение к HTTP API маркетплейса.
type APIConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	RateLimit float64 `mapstructure:"rate_limit"` // запросов в секунду
	RateBurst int     `mapstructure:"rate_burst"`

	// Настройки Circuit Breaker
	CBMaxRequests uint32        `mapstructure:"cb_max_requests"`
	CBInterval    time.Duration `mapstructure:"cb_interval"`
	CBTimeout     time.Duration `mapstructure:"cb_timeout"`
	CBMaxFailures uint32        `mapstructure:"cb_max_failures"`

	RetryAttempts uint `mapstructure:"retry_attempts"` // только для идемпотентных чтений списков
}

// DashboardConfig: параметры агрегатора статистики.
type DashboardConfig struct {
	PollInterval   time.Duration `mapstructure:"poll_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// DevMode полностью отключает поллинг. Задается явно, а не угадывается по окружению.
	DevMode bool `mapstructure:"dev_mode"`
}

// IdentityConfig: где лежит сериализованный пользователь.
type IdentityConfig struct {
	Backend  string `mapstructure:"backend"` // file, redis
	FilePath string `mapstructure:"file_path"`
	Key      string `mapstructure:"key"`
}

// ServerConfig описывает локальный HTTP-сервер консоли.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr собирает адрес для http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig описывает подключение к PostgreSQL (журнал циклов). Пустой URL: журнал выключен.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int    `mapstructure:"max_conns"`
}

// RedisConfig описывает подключение к Redis (хранилище identity и Pub/Sub логаута).
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JournalConfig struct {
	BufferSize    int           `mapstructure:"buffer_size"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
// path задает явный путь к файлу (флаг --config), при пустом ищем по умолчанию.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// 2. ENV перекрывает файл: DASHBOARD_DEV_MODE=true перекроет dashboard.dev_mode
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Дефолты
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Файла нет: работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет значения, без которых клиент не может работать.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("config: api.base_url is required")
	}
	if c.Dashboard.PollInterval <= 0 {
		return errors.New("config: dashboard.poll_interval must be positive")
	}
	if c.Dashboard.RequestTimeout <= 0 {
		return errors.New("config: dashboard.request_timeout must be positive")
	}
	switch c.Identity.Backend {
	case "file", "redis":
	default:
		return fmt.Errorf("config: unknown identity.backend %q", c.Identity.Backend)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:3000")
	v.SetDefault("api.rate_limit", 20)
	v.SetDefault("api.rate_burst", 5)
	v.SetDefault("api.cb_max_requests", 1)
	v.SetDefault("api.cb_interval", 60*time.Second)
	v.SetDefault("api.cb_timeout", 30*time.Second)
	v.SetDefault("api.cb_max_failures", 5)
	v.SetDefault("api.retry_attempts", 3)

	v.SetDefault("dashboard.poll_interval", 30*time.Second)
	v.SetDefault("dashboard.request_timeout", 10*time.Second)
	v.SetDefault("dashboard.dev_mode", false)

	v.SetDefault("identity.backend", "file")
	v.SetDefault("identity.file_path", "./storage.json")
	v.SetDefault("identity.key", "user")

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("database.max_conns", 5)
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("journal.buffer_size", 1000)
	v.SetDefault("journal.batch_size", 100)
	v.SetDefault("journal.flush_interval", 1*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}
