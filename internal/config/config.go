package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel      zapcore.Level
	Econet        EconetConfig  `mapstructure:"econet"`
	MQTT          MQTTConfig    `mapstructure:"mqtt"`
	MonitorConfig MonitorConfig `mapstructure:"monitor"`
	Port          uint          `mapstructure:"port"`
	HttpLog       bool          `mapstructure:"http_log"`
}

type EconetConfig struct {
	Host            string
	Username        string
	Password        string
	TimeoutMillis   uint32 `mapstructure:"timeout_millis"`
	AvailableMixers uint   `mapstructure:"available_mixers"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
}

type MQTTConfig struct {
	Host                        string
	Port                        int
	Username                    string
	Password                    string
	BaseTopic                   string `mapstructure:"base_topic"`
	HADiscoveryEnable           bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic            string `mapstructure:"ha_discovery_topic"`
	HADiscoveryRepublishSeconds uint32 `mapstructure:"ha_discovery_republish_seconds"`
}

var topicRegexp = regexp.MustCompile("^[a-z0-9_]+$")

func CheckMQTTTopic(baseTopic string) (string, error) {
	lowerBaseTopic := strings.ToLower(baseTopic)
	if !topicRegexp.MatchString(lowerBaseTopic) {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

// ParseLogLevel maps a config log level name to a zap level. Unknown names default to info.
func ParseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "trace", "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

// Validate checks bounds and normalizes MQTT topics in place.
func Validate(cfg *Config) error {
	if cfg.Econet.Host == "" {
		return errors.New("config param econet.host is required")
	}

	// check and fix base topic
	baseTopic, err := CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	// check bounds
	if cfg.Econet.TimeoutMillis < 500 {
		return errors.New("config param econet.timeout_millis should be >= 500")
	}
	if cfg.Econet.AvailableMixers > 10 {
		return errors.New("config param econet.available_mixers should be <= 10")
	}
	if cfg.MonitorConfig.PollIntervalMillis < 1000 {
		return errors.New("config param monitor.poll_interval_millis should be >= 1000")
	}
	return nil
}
