package orch

import (
	"bytes"
	"strings"
	"time"

	"github.com/dkeye/rtcengine/internal/core"
	"github.com/dkeye/rtcengine/internal/domain"
	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

const (
	EnvProduction  = "PRODUCTION"
	EnvDevelopment = "DEVELOPMENT"

	devSignalingURL  = "wss://dev-signaling.tasawwur-rtc.com/ws"
	prodSignalingURL = "wss://signaling.tasawwur-rtc.com/ws"
)

var defaultSTUNServers = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
	"stun:stun2.l.google.com:19302",
}

// Config is the engine configuration. It is immutable once an Orchestrator
// has been built from it.
type Config struct {
	AppID        string
	Environment  string
	SignalingURL string
	STUNServers  []string
	TURNServers  []domain.IceServerSpec

	AudioCodec                 string
	VideoCodec                 string
	EnableHardwareAcceleration bool
	EnableAudioProcessing      bool
	EnableMulticastDNS         bool

	ConnectionTimeout time.Duration
	EnableStats       bool
	StatsInterval     time.Duration
	PollInterval      time.Duration

	// LogLevel is 0 (trace) through 4 (error).
	LogLevel int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("appId", "")
	v.SetDefault("environment", EnvProduction)
	v.SetDefault("signalingServerUrl", "")
	v.SetDefault("audioCodec", "opus")
	v.SetDefault("videoCodec", "H264")
	v.SetDefault("enableHardwareAcceleration", true)
	v.SetDefault("enableAudioProcessing", true)
	v.SetDefault("enableMulticastDNS", false)
	v.SetDefault("connectionTimeoutMs", 10000)
	v.SetDefault("enableStats", false)
	v.SetDefault("statsIntervalMs", 5000)
	v.SetDefault("pollIntervalMs", 100)
	v.SetDefault("logLevel", 2)
}

// DefaultConfig is the configuration used for empty or unparseable text.
func DefaultConfig() Config {
	v := viper.New()
	setDefaults(v)
	return fromViper(v)
}

// FromConfigText parses the host's JSON configuration. Missing keys take
// their defaults; text that does not parse yields DefaultConfig.
func FromConfigText(text string) Config {
	if strings.TrimSpace(text) == "" {
		return DefaultConfig()
	}
	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v)
	if err := v.ReadConfig(bytes.NewBufferString(text)); err != nil {
		log.Error().Err(err).Str("module", "orch.config").Msg("parse engine config, using defaults")
		return DefaultConfig()
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	cfg := Config{
		AppID:                      v.GetString("appId"),
		Environment:                v.GetString("environment"),
		SignalingURL:               v.GetString("signalingServerUrl"),
		STUNServers:                v.GetStringSlice("stunServers"),
		TURNServers:                turnServers(v.Get("turnServers")),
		AudioCodec:                 v.GetString("audioCodec"),
		VideoCodec:                 v.GetString("videoCodec"),
		EnableHardwareAcceleration: v.GetBool("enableHardwareAcceleration"),
		EnableAudioProcessing:      v.GetBool("enableAudioProcessing"),
		EnableMulticastDNS:         v.GetBool("enableMulticastDNS"),
		ConnectionTimeout:          millis(v.GetInt("connectionTimeoutMs"), 10000),
		EnableStats:                v.GetBool("enableStats"),
		StatsInterval:              millis(v.GetInt("statsIntervalMs"), 5000),
		PollInterval:               millis(v.GetInt("pollIntervalMs"), 100),
		LogLevel:                   v.GetInt("logLevel"),
	}
	if cfg.SignalingURL == "" {
		if cfg.Environment == EnvDevelopment {
			cfg.SignalingURL = devSignalingURL
		} else {
			cfg.SignalingURL = prodSignalingURL
		}
	}
	if len(cfg.STUNServers) == 0 {
		cfg.STUNServers = append([]string(nil), defaultSTUNServers...)
	}
	return cfg
}

func millis(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Millisecond
}

// turnServers accepts both bare URL strings and {urls, username, credential}
// objects.
func turnServers(raw any) []domain.IceServerSpec {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]domain.IceServerSpec, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, domain.IceServerSpec{URLs: []string{s}})
			continue
		}
		var spec domain.IceServerSpec
		if err := mapstructure.WeakDecode(item, &spec); err != nil || len(spec.URLs) == 0 {
			log.Warn().Str("module", "orch.config").Str("entry", cast.ToString(item)).Msg("skip malformed turn server")
			continue
		}
		out = append(out, spec)
	}
	return out
}

// NegotiatorConfig derives the negotiator settings: one ICE server per STUN
// URL followed by the TURN entries as given.
func (c Config) NegotiatorConfig() core.NegotiatorConfig {
	servers := make([]domain.IceServerSpec, 0, len(c.STUNServers)+len(c.TURNServers))
	for _, url := range c.STUNServers {
		servers = append(servers, domain.IceServerSpec{URLs: []string{url}})
	}
	servers = append(servers, c.TURNServers...)
	return core.NegotiatorConfig{
		ICEServers:                 servers,
		AudioCodec:                 c.AudioCodec,
		VideoCodec:                 c.VideoCodec,
		EnableHardwareAcceleration: c.EnableHardwareAcceleration,
		EnableAudioProcessing:      c.EnableAudioProcessing,
		EnableMulticastDNS:         c.EnableMulticastDNS,
		ConnectionTimeout:          c.ConnectionTimeout,
	}
}

// Level maps LogLevel onto zerolog levels. Out of range values are clamped.
func (c Config) Level() zerolog.Level {
	switch {
	case c.LogLevel <= 0:
		return zerolog.TraceLevel
	case c.LogLevel == 1:
		return zerolog.DebugLevel
	case c.LogLevel == 2:
		return zerolog.InfoLevel
	case c.LogLevel == 3:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
