package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Redemption triggers: how a user presents a code to the bot.
const (
	TriggerCommand   = "command"    // "/use ABCD123456"
	TriggerPlainText = "plain_text" // "ABCD123456"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	State        StateConfig        `mapstructure:"state"`
	Telegram     TelegramConfig     `mapstructure:"telegram"`
	Subscription SubscriptionConfig `mapstructure:"subscription"`
	Admin        AdminConfig        `mapstructure:"admin"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Log          LogConfig          `mapstructure:"log"`
}

type ServerConfig struct {
	Host                    string        `mapstructure:"host"`
	Port                    int           `mapstructure:"port"`
	Mode                    string        `mapstructure:"mode"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	DB              string        `mapstructure:"db"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	ConnectAttempts uint          `mapstructure:"connect_attempts"`
}

// DSN builds the PostgreSQL connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode,
	)
}

type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type StateConfig struct {
	Backend string `mapstructure:"backend"` // "redis" | "memory"
}

type TelegramConfig struct {
	BotToken          string        `mapstructure:"bot_token"`
	ChannelID         int64         `mapstructure:"channel_id"`
	AdminID           int64         `mapstructure:"admin_id"`
	RedemptionTrigger string        `mapstructure:"redemption_trigger"`
	PollTimeout       time.Duration `mapstructure:"poll_timeout"`
	Workers           int           `mapstructure:"workers"`
	Debug             bool          `mapstructure:"debug"`
}

type SubscriptionConfig struct {
	AllowedDurations []int         `mapstructure:"allowed_durations"`
	CodeLength       int           `mapstructure:"code_length"`
	SweepInterval    time.Duration `mapstructure:"sweep_interval"`
	LinkLabelPrefix  string        `mapstructure:"link_label_prefix"`
}

type AdminConfig struct {
	APIEnabled bool          `mapstructure:"api_enabled"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type JWTConfig struct {
	SigningKey     string        `mapstructure:"signing_key"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type CORSConfig struct {
	AllowedOrigins   []string      `mapstructure:"allowed_origins"`
	AllowedMethods   []string      `mapstructure:"allowed_methods"`
	AllowedHeaders   []string      `mapstructure:"allowed_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

type LogConfig struct {
	Level  string        `mapstructure:"level"`
	Format string        `mapstructure:"format"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig enables a rotated log file next to stderr output when Path is set.
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.graceful_shutdown_timeout", "15s")

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.db", "gatekeeper")
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.max_open_conns", 10)
	v.SetDefault("database.postgres.conn_max_lifetime", "1h")
	v.SetDefault("database.postgres.auto_migrate", true)
	v.SetDefault("database.postgres.connect_attempts", 5)

	v.SetDefault("database.redis.host", "localhost")
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("database.redis.pool_size", 10)
	v.SetDefault("database.redis.key_prefix", "gatekeeper:")

	v.SetDefault("state.backend", "memory")

	// Secrets and identities have no usable default; registering the keys lets env vars reach them.
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.channel_id", 0)
	v.SetDefault("telegram.admin_id", 0)
	v.SetDefault("telegram.debug", false)
	v.SetDefault("telegram.redemption_trigger", TriggerCommand)
	v.SetDefault("telegram.poll_timeout", "60s")
	v.SetDefault("telegram.workers", 4)

	v.SetDefault("subscription.allowed_durations", []int{15, 30, 60})
	v.SetDefault("subscription.code_length", 10)
	v.SetDefault("subscription.sweep_interval", "1h")
	v.SetDefault("subscription.link_label_prefix", "pass")

	v.SetDefault("admin.api_enabled", false)
	v.SetDefault("admin.session_ttl", "2m")

	v.SetDefault("jwt.signing_key", "")
	v.SetDefault("jwt.issuer", "gatekeeper")
	v.SetDefault("jwt.access_token_ttl", "24h")

	v.SetDefault("cors.allowed_origins", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST"})
	v.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type"})
	v.SetDefault("cors.max_age", "12h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.compress", false)
	v.SetDefault("log.file.max_size_mb", 50)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 30)
}

// DefaultPath is $GATEKEEPER_CONFIG when set, else config.yaml in the working directory.
func DefaultPath() string {
	if p, ok := os.LookupEnv("GATEKEEPER_CONFIG"); ok {
		return p
	}
	return "config.yaml"
}

// Load reads the YAML config at path (optional), overlays environment variables, and returns Config.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
	}

	// Environment variable override: TELEGRAM_BOT_TOKEN -> telegram.bot_token
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings the bot cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Telegram.BotToken == "" {
		errs = append(errs, errors.New("telegram.bot_token is required"))
	}
	if c.Telegram.ChannelID == 0 {
		errs = append(errs, errors.New("telegram.channel_id is required"))
	}
	if c.Telegram.AdminID == 0 {
		errs = append(errs, errors.New("telegram.admin_id is required"))
	}
	switch c.Telegram.RedemptionTrigger {
	case TriggerCommand, TriggerPlainText:
	default:
		errs = append(errs, fmt.Errorf("telegram.redemption_trigger must be %q or %q", TriggerCommand, TriggerPlainText))
	}
	if len(c.Subscription.AllowedDurations) == 0 {
		errs = append(errs, errors.New("subscription.allowed_durations must not be empty"))
	}
	for _, d := range c.Subscription.AllowedDurations {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("subscription.allowed_durations: %d is not a positive day count", d))
		}
	}
	if c.Subscription.CodeLength < 6 || c.Subscription.CodeLength > 16 {
		errs = append(errs, errors.New("subscription.code_length must be between 6 and 16"))
	}
	if c.Subscription.SweepInterval < time.Minute {
		errs = append(errs, errors.New("subscription.sweep_interval must be at least 1m"))
	}
	switch c.State.Backend {
	case "redis", "memory":
	default:
		errs = append(errs, fmt.Errorf("state.backend %q is not one of redis, memory", c.State.Backend))
	}
	if c.Admin.APIEnabled && len(c.JWT.SigningKey) < 16 {
		errs = append(errs, errors.New("jwt.signing_key must be at least 16 characters when admin.api_enabled"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
