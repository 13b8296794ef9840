// Package config loads the service configuration from defaults, an optional YAML
// file, a .env file and BLINDPAIR_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Telegram  TelegramConfig
	Pairing   PairingConfig
	Sweep     SweepConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Address string
	Mode    string
}

type DBConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     int
	SSLMode  string
}

// DSN builds the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

type TelegramConfig struct {
	BotToken string
}

type PairingConfig struct {
	PoolTTL          time.Duration
	ChatTTL          time.Duration
	GateTTL          time.Duration
	ClaimAttempts    int
	MoodCompanyLimit int
	RevealRule       string
	MatchRetention   time.Duration
	NotifyTimeout    time.Duration
}

type SweepConfig struct {
	Interval time.Duration
}

type RateLimitConfig struct {
	TryMatchPerSecond float64
	TryMatchBurst     int
}

type LogConfig struct {
	Level  string
	Format string
}

// DefaultPairing returns the pairing settings used when nothing is configured.
func DefaultPairing() PairingConfig {
	return PairingConfig{
		PoolTTL:          DefaultPoolTTL,
		ChatTTL:          DefaultChatTTL,
		GateTTL:          DefaultGateTTL,
		ClaimAttempts:    DefaultClaimAttempts,
		MoodCompanyLimit: DefaultMoodCompanyLimit,
		RevealRule:       RevealRuleAny,
		MatchRetention:   DefaultMatchRetention,
		NotifyTimeout:    DefaultNotifyTimeout,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.user", "user")
	v.SetDefault("db.password", "password")
	v.SetDefault("db.name", "blindpairdb")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.issuer", "blindpair-service")
	v.SetDefault("auth.tokenttl", 72*time.Hour)

	v.SetDefault("telegram.bottoken", "")

	p := DefaultPairing()
	v.SetDefault("pairing.poolttl", p.PoolTTL)
	v.SetDefault("pairing.chatttl", p.ChatTTL)
	v.SetDefault("pairing.gatettl", p.GateTTL)
	v.SetDefault("pairing.claimattempts", p.ClaimAttempts)
	v.SetDefault("pairing.moodcompanylimit", p.MoodCompanyLimit)
	v.SetDefault("pairing.revealrule", p.RevealRule)
	v.SetDefault("pairing.matchretention", p.MatchRetention)
	v.SetDefault("pairing.notifytimeout", p.NotifyTimeout)

	v.SetDefault("sweep.interval", DefaultSweepInterval)

	v.SetDefault("ratelimit.trymatchpersecond", 1.0)
	v.SetDefault("ratelimit.trymatchburst", 5)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads the configuration. path may be empty, in which case only defaults and
// the environment are used. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("BLINDPAIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	p := c.Pairing
	if p.PoolTTL <= 0 || p.ChatTTL <= 0 || p.GateTTL <= 0 {
		return errors.New("pairing TTLs must be positive")
	}
	if p.ClaimAttempts < 1 {
		return errors.New("pairing.claimattempts must be at least 1")
	}
	switch p.RevealRule {
	case RevealRuleUsername, RevealRuleRealName, RevealRuleAny:
	default:
		return fmt.Errorf("unknown pairing.revealrule %q", p.RevealRule)
	}
	if c.Sweep.Interval <= 0 {
		return errors.New("sweep.interval must be positive")
	}
	return nil
}
