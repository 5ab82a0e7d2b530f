package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var ErrInvalidMode = errors.New("invalid tic mode")

type Config struct {
	SerialCfg   *SerialConfig
	MqttCfg     *MqttConfig
	DatabaseCfg *DatabaseConfig
	// EntryID identifies this meter in unique ids and topics.
	EntryID  string
	Title    string
	HTTPAddr string
	LogLevel string
}

type TICMode string

const (
	TICModeHistoric TICMode = "historic"
	TICModeStandard TICMode = "standard"
)

func ParseTICMode(s string) (TICMode, error) {
	switch TICMode(s) {
	case TICModeHistoric, TICModeStandard:
		return TICMode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m TICMode) BaudRate() int {
	if m == TICModeStandard {
		return 9600
	}
	return 1200
}

type SerialConfig struct {
	Port string
	Mode TICMode
	// RealTime is passed to subscribers on every notification.
	RealTime     bool
	PollInterval time.Duration
}

type MqttConfig struct {
	Host     string
	Username string
	Password string

	ClientID        string        `env:"MQTT_CLIENT_ID" envDefault:"linky-integration"`
	DiscoveryPrefix string        `env:"MQTT_DISCOVERY_PREFIX" envDefault:"homeassistant"`
	BaseTopic       string        `env:"MQTT_BASE_TOPIC" envDefault:"linky"`
	QoS             int           `env:"MQTT_QOS" envDefault:"1"`
	PublishTimeout  time.Duration `env:"MQTT_PUBLISH_TIMEOUT" envDefault:"5s"`
}

type DatabaseConfig struct {
	URL              string
	MigrationsFolder string
	CleanupSchedule  string        `env:"DATABASE_CLEANUP_SCHEDULE" envDefault:"0 3 * * *"`
	Retention        time.Duration `env:"DATABASE_RETENTION" envDefault:"192h"`
}

// LoadDotEnv loads an optional .env file into the process environment.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		return err
	}
	return nil
}

// ParseTunables fills the env tagged fields that have no command line flag.
func ParseTunables(cfg *Config) error {
	if cfg.MqttCfg != nil {
		if err := env.Parse(cfg.MqttCfg); err != nil {
			return err
		}
	}
	if cfg.DatabaseCfg != nil {
		if err := env.Parse(cfg.DatabaseCfg); err != nil {
			return err
		}
	}
	return nil
}
