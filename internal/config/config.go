package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppName string `mapstructure:"app_name"`
	AppEnv  string `mapstructure:"app_env"`
	AppPort string `mapstructure:"app_port"`

	Log      LogConfig      `mapstructure:"log"`
	DB       DBConfig       `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Weather  WeatherConfig  `mapstructure:"weather"`
	Exchange ExchangeConfig `mapstructure:"exchange"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	RedisPassword string `mapstructure:"password"`
	RedisDB       string `mapstructure:"db"`
}

type RabbitMQConfig struct {
	URL       string `mapstructure:"url"`
	Queue     string `mapstructure:"queue"`
	Consumers int    `mapstructure:"consumers"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type AuthConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type WeatherConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ExchangeConfig struct {
	APIKey       string            `mapstructure:"api_key"`
	BaseURL      string            `mapstructure:"base_url"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	CacheTTL     time.Duration     `mapstructure:"cache_ttl"`
	CacheBackend string            `mapstructure:"cache_backend"`
	Countries    map[string]string `mapstructure:"countries"`
}

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Load reads configuration from defaults, an optional file and the environment.
// Nested keys map to environment variables with dots replaced by underscores,
// so db.host is read from DB_HOST.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "weather-gateway")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_port", "3000")

	v.SetDefault("log.level", "info")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "weather_gateway")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", "0")

	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.queue", "weather_log_queue")
	v.SetDefault("rabbitmq.consumers", 3)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", "1h")

	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("weather.api_key", "")
	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("weather.timeout", "5s")

	v.SetDefault("exchange.api_key", "")
	v.SetDefault("exchange.base_url", "https://v6.exchangerate-api.com/v6")
	v.SetDefault("exchange.timeout", "5s")
	v.SetDefault("exchange.cache_ttl", "1h")
	v.SetDefault("exchange.cache_backend", CacheBackendMemory)
	v.SetDefault("exchange.countries", map[string]string{})
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.JWT.TTL <= 0 {
		return errors.New("jwt.ttl must be positive")
	}
	// bcrypt accepts costs between 4 and 31
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("auth.bcrypt_cost %d out of range", c.Auth.BcryptCost)
	}
	if c.Exchange.CacheTTL <= 0 {
		return errors.New("exchange.cache_ttl must be positive")
	}
	switch c.Exchange.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown exchange.cache_backend %q", c.Exchange.CacheBackend)
	}
	return nil
}
