package config

import (
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/relayops/identity-actions/pkg/action"
)

type Config struct {
	Logging LoggingConfig `json:"logging"`
	Server  ServerConfig  `json:"server"`
	Action  ActionConfig  `json:"action"`
	Secrets SecretsConfig `json:"secrets"`
}

type LoggingConfig struct {
	LogLevel       string        `json:"log_level"`
	LogLevelParsed zerolog.Level `json:"-"`
}

type ServerConfig struct {
	ListenAddress     string        `json:"listen_address"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
}

type ActionConfig struct {
	// DefaultRegion is applied by the runner when an invocation omits the
	// region parameter. Empty means no fallback; the action then rejects
	// the request.
	DefaultRegion string `json:"default_region"`
}

// SecretsConfig is the runner-side secret store. Values are injected via env
// (IDENTITY_ACTIONS_SECRETS_ACCESS_KEY_ID and
// IDENTITY_ACTIONS_SECRETS_SECRET_ACCESS_KEY) or a config file kept out of
// source control. They are never logged.
type SecretsConfig struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

// ActionSecrets converts the stored values to the action's secrets contract.
func (s SecretsConfig) ActionSecrets() action.Secrets {
	return action.Secrets{
		AccessKeyID:     s.AccessKeyID,
		SecretAccessKey: s.SecretAccessKey,
	}
}

func NewConfig(configPath string) (*Config, error) {
	file := "config.yaml"
	v := viper.New()

	if configPath != "" {
		exists, err := fileExists(configPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to determine if config file '%s' exists", configPath)
		}

		if !exists {
			return nil, errors.Errorf("config file '%s' doesn't exist", configPath)
		}

		file = configPath
	}

	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetConfigFile(file)
	v.SetEnvPrefix("IDENTITY_ACTIONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults.
	v.SetDefault("logging.log_level", "info")
	v.SetDefault("server.listen_address", ":8321")
	v.SetDefault("server.idle_timeout", time.Minute)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("action.default_region", "")

	// Allow setting via env vars.
	v.SetDefault("secrets.access_key_id", "")
	v.SetDefault("secrets.secret_access_key", "")

	configExists, err := fileExists(file)
	if err != nil {
		return nil, errors.Wrapf(err, "filesystem error")
	}

	if configExists {
		if err = v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file '%s'", file)
		}
	}
	v.AutomaticEnv()

	cfg := new(Config)

	err = v.UnmarshalExact(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config file")
	}

	cfg.Logging.LogLevelParsed, err = zerolog.ParseLevel(cfg.Logging.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "logging.log_level failed to parse")
	}

	return cfg, nil
}

func fileExists(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return true, nil
	} else if os.IsNotExist(err) {
		return false, nil
	} else {
		return false, errors.Wrapf(err, "failed to stat file '%s'", path)
	}
}
