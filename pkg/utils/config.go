package utils

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	Email    EmailConfig
	Link     LinkConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	Name          string
	Port          string
	Debug         bool
	LogPath       string
	PublicBaseURL string
}

type DatabaseConfig struct {
	Driver      string // postgres | memory
	Host        string
	Port        string
	Name        string
	User        string
	Password    string
	MaxConns    int32
	AutoMigrate bool
}

type RedisConfig struct {
	URL      string
	CacheTTL time.Duration
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// LinkConfig controls the signed accept/reject links sent to transfer recipients.
type LinkConfig struct {
	Secret string
	TTL    time.Duration
}

type WorkerConfig struct {
	NotifyWorkers  int
	NotifyBuffer   int
	SweepInterval  time.Duration
	DeliverTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "event-ticketing")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_AUTO_MIGRATE", false)
	viper.SetDefault("REDIS_CACHE_TTL", "5m")
	viper.SetDefault("AMQP_EXCHANGE", "ticketing.events")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("LINK_TTL", "168h")
	viper.SetDefault("NOTIFY_WORKERS", 4)
	viper.SetDefault("NOTIFY_BUFFER", 256)
	viper.SetDefault("SWEEP_INTERVAL", "15m")
	viper.SetDefault("NOTIFY_DELIVER_TIMEOUT", "30s")

	// .env is optional, the process environment always wins
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:          viper.GetString("APP_NAME"),
			Port:          viper.GetString("PORT"),
			Debug:         viper.GetBool("DEBUG"),
			LogPath:       viper.GetString("LOG_PATH"),
			PublicBaseURL: viper.GetString("PUBLIC_BASE_URL"),
		},
		Database: DatabaseConfig{
			Driver:      viper.GetString("DB_DRIVER"),
			Host:        viper.GetString("DB_HOST"),
			Port:        viper.GetString("DB_PORT"),
			Name:        viper.GetString("DB_NAME"),
			User:        viper.GetString("DB_USER"),
			Password:    viper.GetString("DB_PASS"),
			MaxConns:    viper.GetInt32("DB_MAX_CONNS"),
			AutoMigrate: viper.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			URL:      viper.GetString("REDIS_URL"),
			CacheTTL: viper.GetDuration("REDIS_CACHE_TTL"),
		},
		AMQP: AMQPConfig{
			URL:      viper.GetString("AMQP_URL"),
			Exchange: viper.GetString("AMQP_EXCHANGE"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		Link: LinkConfig{
			Secret: viper.GetString("LINK_SECRET"),
			TTL:    viper.GetDuration("LINK_TTL"),
		},
		Worker: WorkerConfig{
			NotifyWorkers:  viper.GetInt("NOTIFY_WORKERS"),
			NotifyBuffer:   viper.GetInt("NOTIFY_BUFFER"),
			SweepInterval:  viper.GetDuration("SWEEP_INTERVAL"),
			DeliverTimeout: viper.GetDuration("NOTIFY_DELIVER_TIMEOUT"),
		},
	}

	if config.Link.Secret == "" {
		return nil, errors.New("LINK_SECRET is required")
	}

	return config, nil
}
