package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Mode   string `mapstructure:"mode"`
	Port   int    `mapstructure:"port"`
	Secret string `mapstructure:"secret"`

	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	Signaling        bool `mapstructure:"signaling"`
	SignalSendBuffer int  `mapstructure:"signal_send_buffer"`

	EventBuffer int `mapstructure:"event_buffer"`
	MaxDropped  int `mapstructure:"max_dropped"`

	JoinLimit  int           `mapstructure:"join_limit"`
	JoinWindow time.Duration `mapstructure:"join_window"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("secret", "rtcengine-dev-secret")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("write_timeout", "5s")
	v.SetDefault("signaling", true)
	v.SetDefault("signal_send_buffer", 32)
	v.SetDefault("event_buffer", 64)
	v.SetDefault("max_dropped", 16)
	v.SetDefault("join_limit", 5)
	v.SetDefault("join_window", "10s")
}

// Flags returns the command-line overrides understood by Load.
func Flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("rtcengine", pflag.ContinueOnError)
	fs.String("mode", "release", "gin mode: debug or release")
	fs.Int("port", 8080, "HTTP listen port")
	fs.Bool("signaling", true, "connect engines to the coordination server")
	fs.Int("event-buffer", 64, "frames buffered per event stream subscriber")
	fs.Int("max-dropped", 16, "frames a subscriber may miss before it is closed")
	return fs
}

// Load reads config/config.<CONFIG_ENV>.yaml, then applies flags parsed from
// args. A missing file is not an error.
func Load(args []string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	setDefaults(v)

	fs := Flags()
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	for key, flag := range map[string]string{
		"mode":         "mode",
		"port":         "port",
		"signaling":    "signaling",
		"event_buffer": "event-buffer",
		"max_dropped":  "max-dropped",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", flag, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Bool("signaling", cfg.Signaling).Msg("config ready")
	return &cfg, nil
}
