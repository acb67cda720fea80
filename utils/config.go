package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ruinedyourlife/tfm-unpacker/unpacker"
)

const (
	EnvPrefix    = "TFM_UNPACKER"
	DefaultInput = "https://www.transformice.com/Transformice.swf"
)

var ErrNoOutput = errors.New("no output given")

// Config holds the settings of one unpack run
type Config struct {
	Input     string `mapstructure:"input"`
	Output    string `mapstructure:"output"`
	Verbose   int    `mapstructure:"verbose"`
	Marker    string `mapstructure:"marker"`
	Separator string `mapstructure:"separator"`
	Report    string `mapstructure:"report"`
}

// IsURL reports whether the input has to be downloaded.
func (c *Config) IsURL() bool {
	return strings.HasPrefix(c.Input, "http://") || strings.HasPrefix(c.Input, "https://")
}

// IsStdin reports whether the movie is read from standard input.
func (c *Config) IsStdin() bool {
	return c.Input == "-"
}

// IsStdout reports whether the unpacked movie goes to standard output.
func (c *Config) IsStdout() bool {
	return c.Output == "-"
}

// NewViper returns a viper instance with the defaults and the environment
// bindings set. Environment variables are named TFM_UNPACKER_<KEY>.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("input", DefaultInput)
	v.SetDefault("marker", unpacker.DefaultMarker)
	v.SetDefault("separator", unpacker.DefaultSeparator)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig merges, from lowest to highest priority, the defaults, the
// optional config file, the environment and the flags that were set.
func LoadConfig(v *viper.Viper, flags *pflag.FlagSet, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("error binding flags: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.Output == "" {
		return nil, ErrNoOutput
	}
	if cfg.Marker == "" {
		return nil, errors.New("marker must not be empty")
	}
	if cfg.Separator == "" {
		return nil, errors.New("separator must not be empty")
	}
	return &cfg, nil
}
