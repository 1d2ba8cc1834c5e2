package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	ModeDirect   = "direct"
	ModeTemporal = "temporal"
)

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type TriggerConfig struct {
	Mode           string        `mapstructure:"mode"`
	Deduplicate    bool          `mapstructure:"deduplicate"`
	ScheduleOffset time.Duration `mapstructure:"schedule_offset"`
}

type ListenerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Channel      string        `mapstructure:"channel"`
	MinReconnect time.Duration `mapstructure:"min_reconnect"`
	MaxReconnect time.Duration `mapstructure:"max_reconnect"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
}

type TemporalConfig struct {
	HostPort    string `mapstructure:"host_port"`
	Namespace   string `mapstructure:"namespace"`
	TaskQueue   string `mapstructure:"task_queue"`
	MaxAttempts int32  `mapstructure:"max_attempts"`
}

type AuthConfig struct {
	PushSecret string `mapstructure:"push_secret"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	DatabaseURL string         `mapstructure:"database_url"`
	ServerPort  string         `mapstructure:"server_port"`
	Log         LogConfig      `mapstructure:"log"`
	Trigger     TriggerConfig  `mapstructure:"trigger"`
	Listener    ListenerConfig `mapstructure:"listener"`
	Temporal    TemporalConfig `mapstructure:"temporal"`
	Auth        AuthConfig     `mapstructure:"auth"`
	CORS        CORSConfig     `mapstructure:"cors"`
}

// Load reads config.yaml from the current directory or ./config. Every key
// can be overridden with a MEETINGS_ prefixed environment variable, so a
// missing file is not an error.
func Load() (*Config, error) {
	v := newViper()
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "read config file")
		}
	}
	return decode(v)
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", path)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MEETINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults double as the key registry AutomaticEnv needs for Unmarshal.
	v.SetDefault("database_url", "")
	v.SetDefault("server_port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("trigger.mode", ModeDirect)
	v.SetDefault("trigger.deduplicate", false)
	v.SetDefault("trigger.schedule_offset", 7*24*time.Hour)
	v.SetDefault("listener.enabled", true)
	v.SetDefault("listener.channel", "invitation_updates")
	v.SetDefault("listener.min_reconnect", 10*time.Second)
	v.SetDefault("listener.max_reconnect", time.Minute)
	v.SetDefault("listener.ping_interval", 90*time.Second)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "MEETING_TRIGGER")
	v.SetDefault("temporal.max_attempts", 10)
	v.SetDefault("auth.push_secret", "")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	if strings.TrimSpace(config.DatabaseURL) == "" {
		return nil, errors.New("database_url must be set")
	}

	config.Trigger.Mode = strings.ToLower(strings.TrimSpace(config.Trigger.Mode))
	switch config.Trigger.Mode {
	case ModeDirect, ModeTemporal:
	default:
		return nil, errors.Errorf("unknown trigger mode %q", config.Trigger.Mode)
	}

	if config.Trigger.ScheduleOffset <= 0 {
		return nil, errors.Errorf("trigger.schedule_offset must be positive, got %s", config.Trigger.ScheduleOffset)
	}

	// The notify trigger in the migrations publishes on this channel name.
	config.Listener.Channel = strings.TrimSpace(config.Listener.Channel)
	if config.Listener.Enabled && config.Listener.Channel == "" {
		return nil, errors.New("listener.channel must be set when the listener is enabled")
	}
	if config.Temporal.MaxAttempts < 0 {
		config.Temporal.MaxAttempts = 0
	}

	return &config, nil
}
