package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации сервиса.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Checker  CheckerConfig  `mapstructure:"checker"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MetricsConfig — отдельный листенер для Prometheus.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// DatabaseConfig описывает подключение к PostgreSQL.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RedisConfig описывает подключение к Redis (Pub/Sub и rate-limit store).
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AuthConfig содержит пути к RSA ключам и настройки JWT консольного API.
type AuthConfig struct {
	PublicKeyPath  string        `mapstructure:"public_key_path"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	BcryptCost     int           `mapstructure:"bcrypt_cost"`
	PublicKey      []byte
	PrivateKey     []byte
}

// OpenAIConfig — внешний AI-провайдер качественной оценки.
type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"` // жесткий предел на один вызов
}

// CheckerConfig — настройки пайплайна проверки и его обвязки.
type CheckerConfig struct {
	AuditBufferSize    int           `mapstructure:"audit_buffer_size"`
	AuditFlushInterval time.Duration `mapstructure:"audit_flush_interval"`

	// Настройки Circuit Breaker вокруг AI-провайдера
	CBMaxRequests      uint32        `mapstructure:"cb_max_requests"`
	CBInterval         time.Duration `mapstructure:"cb_interval"`
	CBTimeout          time.Duration `mapstructure:"cb_timeout"`
	CBFailureThreshold uint32        `mapstructure:"cb_failure_threshold"`

	// Клиентский лимитер исходящих AI-вызовов (запросов в секунду + burst)
	AIRateLimit float64 `mapstructure:"ai_rate_limit"`
	AIRateBurst int     `mapstructure:"ai_rate_burst"`

	// Лимит публичного эндпоинта проверки: запросов на клиента за окно
	PublicRateLimit  int64         `mapstructure:"public_rate_limit"`
	PublicRateWindow time.Duration `mapstructure:"public_rate_window"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	v.SetConfigName("config")    // имя файла без расширения
	v.SetConfigType("yaml")      // формат
	v.AddConfigPath(".")         // ищем в корне
	v.AddConfigPath("./configs") // и в папке с конфигами

	// 2. Настройка переменных окружения (ENV)
	// Позволяет перекрывать конфиг: SERVER_PORT=9000 перекроет server.port
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// AutomaticEnv не отдает через Unmarshal ключи, которых нет ни в файле,
	// ни в дефолтах. Секреты в файл не кладем, поэтому биндим их явно.
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")

	// 3. Установка дефолтных значений
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// 6. Загрузка ключей из Файла ИЛИ из ENV
	// Сначала проверяем, не лежит ли сам PEM-ключ в ENV (для Docker/K8s)
	cfg.Auth.PublicKey = loadKeyResource(cfg.Auth.PublicKeyPath, "AUTH_PUBLIC_KEY_DATA")
	cfg.Auth.PrivateKey = loadKeyResource(cfg.Auth.PrivateKeyPath, "AUTH_PRIVATE_KEY_DATA")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second) // AI-вызов может занимать десятки секунд
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("database.max_conns", 15)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "gpt-4-turbo-preview")
	v.SetDefault("openai.max_tokens", 800)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.timeout", 20*time.Second)
	v.SetDefault("checker.audit_buffer_size", 1000)
	v.SetDefault("checker.audit_flush_interval", 1*time.Second)
	v.SetDefault("checker.cb_max_requests", 3)
	v.SetDefault("checker.cb_interval", 5*time.Second)
	v.SetDefault("checker.cb_timeout", 30*time.Second)
	v.SetDefault("checker.cb_failure_threshold", 5)
	v.SetDefault("checker.ai_rate_limit", 5)
	v.SetDefault("checker.ai_rate_burst", 5)
	v.SetDefault("checker.public_rate_limit", 30)
	v.SetDefault("checker.public_rate_window", 1*time.Minute)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

// loadKeyResource — универсальный хелпер: ключ либо напрямую в ENV, либо файлом
func loadKeyResource(path string, envDataKey string) []byte {
	if data := os.Getenv(envDataKey); data != "" {
		return []byte(data)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data
		}
	}
	return nil
}
