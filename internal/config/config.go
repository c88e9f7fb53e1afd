package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Mode     string `mapstructure:"mode"`
	Port     int    `mapstructure:"port"`
	Secret   string `mapstructure:"secret"`
	LogLevel string `mapstructure:"log_level"`

	Room      RoomConfig      `mapstructure:"room"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Rate      RateConfig      `mapstructure:"rate"`
}

type RoomConfig struct {
	Retention     time.Duration `mapstructure:"retention"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	CodeLength    int           `mapstructure:"code_length"`
}

type BroadcastConfig struct {
	Buffer           int    `mapstructure:"buffer"`
	SubscriberBuffer int    `mapstructure:"subscriber_buffer"`
	ReadLimit        int64  `mapstructure:"read_limit"`
	SlowSubscriber   string `mapstructure:"slow_subscriber"`
	NATSURL          string `mapstructure:"nats_url"`
	RedisAddr        string `mapstructure:"redis_addr"`
	RedisPassword    string `mapstructure:"redis_password"`
	RedisDB          int    `mapstructure:"redis_db"`
}

type RateConfig struct {
	Limit    int           `mapstructure:"limit"`
	Interval time.Duration `mapstructure:"interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")

	v.SetDefault("room.retention", "24h")
	v.SetDefault("room.sweep_interval", "1h")
	v.SetDefault("room.code_length", 6)

	v.SetDefault("broadcast.buffer", 256)
	v.SetDefault("broadcast.subscriber_buffer", 32)
	v.SetDefault("broadcast.read_limit", 4096)
	v.SetDefault("broadcast.slow_subscriber", "disconnect")
	v.SetDefault("broadcast.nats_url", "")
	v.SetDefault("broadcast.redis_addr", "")
	v.SetDefault("broadcast.redis_password", "")
	v.SetDefault("broadcast.redis_db", 0)

	v.SetDefault("rate.limit", 30)
	v.SetDefault("rate.interval", "10s")
}

// Load reads .env, then config/config.<CONFIG_ENV>.yaml, then JUKEBOX_*
// environment variables, each overriding the previous.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Info().Str("module", "config").Msg("loaded .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)
	v.SetConfigFile(fileName)

	v.SetEnvPrefix("jukebox")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Dur("retention", cfg.Room.Retention).Msg("config ready")
	return &cfg, nil
}
