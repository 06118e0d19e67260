package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix префикс переменных окружения, переопределяющих config.toml
const EnvPrefix = "NETS"

// Режимы коммита пакетного бронирования
const (
	BatchModePerSlot = "per_slot"
	BatchModeAtomic  = "atomic"
)

// ErrInvalidConfig некорректная конфигурация
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config конфигурация сервиса
type Config struct {
	Server      ServerConfig      `toml:"server" envconfig:"SERVER"`
	Database    DatabaseConfig    `toml:"database" envconfig:"DATABASE"`
	Logs        LogsConfig        `toml:"logs" envconfig:"LOGS"`
	Metrics     MetricsConfig     `toml:"metrics" envconfig:"METRICS"`
	UserService UserServiceConfig `toml:"user_service" envconfig:"USER_SERVICE"`
	RabbitMQ    RabbitMQConfig    `toml:"rabbitmq" envconfig:"RABBITMQ"`
	Booking     BookingConfig     `toml:"booking" envconfig:"BOOKING"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port" split_words:"true"`
	ReadTimeout     int `toml:"read_timeout" split_words:"true"`
	WriteTimeout    int `toml:"write_timeout" split_words:"true"`
	IdleTimeout     int `toml:"idle_timeout" split_words:"true"`
	ShutdownTimeout int `toml:"shutdown_timeout" split_words:"true"`
}

type DatabaseConfig struct {
	Host            string `toml:"host" split_words:"true"`
	Port            int    `toml:"port" split_words:"true"`
	User            string `toml:"user" split_words:"true"`
	Password        string `toml:"password" split_words:"true"`
	DBName          string `toml:"dbname" split_words:"true"`
	SSLMode         string `toml:"sslmode" split_words:"true"`
	MaxOpenConns    int    `toml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `toml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" split_words:"true"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file" split_words:"true"`
	Level string `toml:"level" split_words:"true"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" split_words:"true"`
	Path        string `toml:"path" split_words:"true"`
	ServiceName string `toml:"service_name" split_words:"true"`
}

type UserServiceConfig struct {
	URL     string `toml:"url" split_words:"true"`
	Timeout int    `toml:"timeout" split_words:"true"`
}

// RabbitMQConfig брокер для уведомлений об отменах. Пустой URL отключает публикацию.
type RabbitMQConfig struct {
	URL        string `toml:"url" split_words:"true"`
	Exchange   string `toml:"exchange" split_words:"true"`
	RoutingKey string `toml:"routing_key" split_words:"true"`
}

type BookingConfig struct {
	BatchMode    string `toml:"batch_mode" split_words:"true"`
	MaxBatchSize int    `toml:"max_batch_size" split_words:"true"`
}

// Load читает TOML-файл, затем применяет переменные окружения NETS_<SECTION>_<FIELD>
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: env overrides: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "nets_booking_service"
	}
	if c.UserService.Timeout == 0 {
		c.UserService.Timeout = 5
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "nets.bookings"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "booking.cancelled"
	}
	if c.Booking.BatchMode == "" {
		c.Booking.BatchMode = BatchModePerSlot
	}
	if c.Booking.MaxBatchSize == 0 {
		c.Booking.MaxBatchSize = 10
	}
}

// Validate проверяет обязательные поля и допустимые значения
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("%w: database host and dbname are required", ErrInvalidConfig)
	}
	if c.Booking.BatchMode != BatchModePerSlot && c.Booking.BatchMode != BatchModeAtomic {
		return fmt.Errorf("%w: booking.batch_mode must be %q or %q, got %q",
			ErrInvalidConfig, BatchModePerSlot, BatchModeAtomic, c.Booking.BatchMode)
	}
	if c.Booking.MaxBatchSize < 1 {
		return fmt.Errorf("%w: booking.max_batch_size must be positive", ErrInvalidConfig)
	}
	return nil
}
