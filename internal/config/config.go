// Package config loads runtime settings from an optional config file and
// AEGIS_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/mackim-3768/Aegis-AI-DAS/internal/state"
)

// EnvPrefix prefixes every environment override, e.g. AEGIS_LOG_LEVEL.
const EnvPrefix = "AEGIS"

// EnvConfig names the environment variable holding a config file path.
const EnvConfig = "AEGIS_CONFIG"

// Config holds application configuration.
type Config struct {
	Processor state.Processor
	Debug     bool
	Journal   JournalConfig
	Log       LogConfig
}

// JournalConfig holds session journal settings. An empty Path disables
// the journal.
type JournalConfig struct {
	Path string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// raw mirrors Config with the string forms viper produces.
type raw struct {
	Processor string `mapstructure:"processor"`
	Debug     bool   `mapstructure:"debug"`
	Journal   struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"journal"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Processor: state.CPU,
		Log:       LogConfig{Level: "info", Format: "console"},
	}
}

// Load reads configuration from path, or from $AEGIS_CONFIG when path is
// empty, then applies AEGIS_ environment overrides. A missing file is not
// an error; a file that exists but does not parse is.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("processor", def.Processor.String())
	v.SetDefault("debug", def.Debug)
	v.SetDefault("journal.path", def.Journal.Path)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	if path == "" {
		path = os.Getenv(EnvConfig)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !missing(err) {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var r raw
	if err := v.Unmarshal(&r); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return r.config()
}

func (r raw) config() (Config, error) {
	p, err := state.ParseProcessor(r.Processor)
	if err != nil {
		return Config{}, fmt.Errorf("processor: %w", err)
	}
	if _, err := zapcore.ParseLevel(r.Log.Level); err != nil {
		return Config{}, fmt.Errorf("log.level: %w", err)
	}
	format := strings.ToLower(r.Log.Format)
	switch format {
	case "json", "console":
	default:
		return Config{}, fmt.Errorf("log.format: unknown format %q (want json or console)", r.Log.Format)
	}
	return Config{
		Processor: p,
		Debug:     r.Debug,
		Journal:   JournalConfig{Path: r.Journal.Path},
		Log:       LogConfig{Level: strings.ToLower(r.Log.Level), Format: format},
	}, nil
}

// ZapLevel returns the configured log level, info when unparsable.
func (c LogConfig) ZapLevel() zapcore.Level {
	l, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

func missing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
