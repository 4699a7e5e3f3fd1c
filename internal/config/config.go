package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
)

// Ошибки загрузки конфигурации
var (
	ErrLoadFailed = errors.New("config: failed to load configuration")
	ErrInvalid    = errors.New("config: invalid configuration")
)

// Config корневая конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Booking  BookingConfig  `toml:"booking"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к postgres
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения postgres
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// BookingConfig настройки движка бронирования
type BookingConfig struct {
	// MaxOccurrences ограничение на число вхождений при разворачивании
	// повторяющегося бронирования
	MaxOccurrences int `toml:"max_occurrences"`
	// SlotGranularityMinutes шаг сетки слотов в выдаче доступного времени
	SlotGranularityMinutes int `toml:"slot_granularity_minutes"`
	// EscalationIntervalMinutes период фонового прогона эскалаций согласования
	EscalationIntervalMinutes int `toml:"escalation_interval_minutes"`
}

// RabbitMQConfig настройки брокера уведомлений
type RabbitMQConfig struct {
	Enabled  bool   `toml:"enabled"`
	URL      string `toml:"url"`
	Exchange string `toml:"exchange"`
}

// Дефолтные значения конфигурации
const (
	defaultHTTPPort        = 8080
	defaultReadTimeout     = 15
	defaultWriteTimeout    = 15
	defaultIdleTimeout     = 60
	defaultShutdownTimeout = 10

	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 300
	defaultSSLMode         = "disable"

	defaultMetricsPath = "/metrics"
	defaultServiceName = "mfp-booking-service"

	defaultMaxOccurrences     = 1000
	defaultSlotGranularity    = 60
	defaultEscalationInterval = 15

	defaultExchange = "mfp.bookings"
)

// Load читает конфигурацию из TOML файла, применяет дефолты и валидирует
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = defaultHTTPPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaultWriteTimeout
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = defaultIdleTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaultShutdownTimeout
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = defaultConnMaxLifetime
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = defaultSSLMode
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = defaultMetricsPath
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = defaultServiceName
	}

	if c.Booking.MaxOccurrences == 0 {
		c.Booking.MaxOccurrences = defaultMaxOccurrences
	}
	if c.Booking.SlotGranularityMinutes == 0 {
		c.Booking.SlotGranularityMinutes = defaultSlotGranularity
	}
	if c.Booking.EscalationIntervalMinutes == 0 {
		c.Booking.EscalationIntervalMinutes = defaultEscalationInterval
	}

	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = defaultExchange
	}
}

func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("%w: database.host is required", ErrInvalid)
	}
	if c.Database.Port <= 0 {
		return fmt.Errorf("%w: database.port is required", ErrInvalid)
	}
	if c.Database.User == "" {
		return fmt.Errorf("%w: database.user is required", ErrInvalid)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("%w: database.dbname is required", ErrInvalid)
	}
	if c.Booking.MaxOccurrences < 1 {
		return fmt.Errorf("%w: booking.max_occurrences must be positive", ErrInvalid)
	}
	if c.Booking.SlotGranularityMinutes < 5 {
		return fmt.Errorf("%w: booking.slot_granularity_minutes must be at least 5", ErrInvalid)
	}
	if c.Booking.EscalationIntervalMinutes < 1 {
		return fmt.Errorf("%w: booking.escalation_interval_minutes must be positive", ErrInvalid)
	}
	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return fmt.Errorf("%w: rabbitmq.url is required when rabbitmq is enabled", ErrInvalid)
	}
	return nil
}
