package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	Sessions  SessionsConfig
	Profiles  ProfilesConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	BodyLimit       int
	MaxMessageBytes int
	AllowedOrigins  []string
	Development     bool
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL time.Duration
}

type SessionsConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// ProfileConfig overrides the built-in latency and debounce of a chat profile.
// Zero values keep the profile defaults.
type ProfileConfig struct {
	MinLatency time.Duration
	MaxLatency time.Duration
	Debounce   time.Duration
	RulesFile  string
}

type ProfilesConfig struct {
	Assistant ProfileConfig
	Fast      ProfileConfig
}

type RateLimitConfig struct {
	Enabled              bool
	MaxRequestsPerMinute int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads configuration into v. Tests pass a fresh viper instance.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/chat-assistant")

	v.SetEnvPrefix("CHAT_ASSISTANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	for name, p := range map[string]ProfileConfig{"assistant": c.Profiles.Assistant, "fast": c.Profiles.Fast} {
		if p.MinLatency < 0 || p.MaxLatency < 0 || p.Debounce < 0 {
			return fmt.Errorf("profile %s: durations must not be negative", name)
		}
		if p.MaxLatency > 0 && p.MinLatency > p.MaxLatency {
			return fmt.Errorf("profile %s: minLatency %s exceeds maxLatency %s", name, p.MinLatency, p.MaxLatency)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.bodyLimit", 1048576)
	v.SetDefault("server.maxMessageBytes", 2000)
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.development", false)

	v.SetDefault("sqlite.path", "./data/chat.db")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cacheTTL", "10m")

	v.SetDefault("sessions.idleTTL", "30m")
	v.SetDefault("sessions.sweepInterval", "1m")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.maxRequestsPerMinute", 120)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputPath", "stdout")
}
