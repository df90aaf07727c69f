package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP   HTTPConfig   `mapstructure:"http"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	Redis  RedisConfig  `mapstructure:"redis"`
	NATS   NATSConfig   `mapstructure:"nats"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Mailer MailerConfig `mapstructure:"mailer"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

type MongoConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxPoolSize    uint64        `mapstructure:"max_pool_size"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// MailerConfig selects and configures the outbound email transport.
// Provider is "smtp" or "mailersend"; anything else disables delivery
// (verification codes then only show up in the logs).
type MailerConfig struct {
	Provider         string `mapstructure:"provider"`
	SenderEmail      string `mapstructure:"sender_email"`
	SenderName       string `mapstructure:"sender_name"`
	SMTPHost         string `mapstructure:"smtp_host"`
	SMTPPort         int    `mapstructure:"smtp_port"`
	SMTPUsername     string `mapstructure:"smtp_username"`
	SMTPPassword     string `mapstructure:"smtp_password"`
	MailerSendAPIKey string `mapstructure:"mailersend_api_key"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("http.port", 5000)

	viper.SetDefault("mongo.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongo.database", "newsnet")
	viper.SetDefault("mongo.connect_timeout", "10s")
	viper.SetDefault("mongo.max_pool_size", 100)

	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.connect_timeout", "5s")

	// Empty defaults keep the keys visible to AutomaticEnv; viper only maps
	// environment variables onto keys it already knows about.
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("jwt.token_ttl", "24h")

	viper.SetDefault("mailer.provider", "smtp")
	viper.SetDefault("mailer.sender_email", "")
	viper.SetDefault("mailer.sender_name", "NewsNet")
	viper.SetDefault("mailer.smtp_host", "")
	viper.SetDefault("mailer.smtp_port", 587)
	viper.SetDefault("mailer.smtp_username", "")
	viper.SetDefault("mailer.smtp_password", "")
	viper.SetDefault("mailer.mailersend_api_key", "")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.SetEnvPrefix("NEWSNET")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Every token operation fails without a signing secret, so refuse to start.
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt.secret is required")
	}

	return &cfg, nil
}
