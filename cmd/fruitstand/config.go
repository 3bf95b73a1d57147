package main

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileName = "fruitstand"
	configFileType = "yaml"
	envPrefix      = "FRUITSTAND"

	cfgKeyAddr            = "addr"
	cfgKeyEnvironment     = "environment"
	cfgKeyLogLevel        = "log-level"
	cfgKeyLogFormat       = "log-format"
	cfgKeyShutdownTimeout = "shutdown-timeout"
	cfgKeyStrict          = "strict"

	defaultAddr            = ":8080"
	defaultEnvironment     = "production"
	defaultShutdownTimeout = 10 * time.Second

	developmentEnvironment = "development"
)

// Config is the resolved configuration of the serve command.
// Precedence, highest first: flags, FRUITSTAND_* environment
// variables, the config file, defaults.
type Config struct {
	Addr            string        `mapstructure:"addr"`
	Environment     string        `mapstructure:"environment"`
	LogLevel        string        `mapstructure:"log-level"`
	LogFormat       string        `mapstructure:"log-format"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	Strict          bool          `mapstructure:"strict"`
}

// Development turns on detailed error bodies.
func (c Config) Development() bool {
	return strings.EqualFold(c.Environment, developmentEnvironment)
}

func addServeFlags(fs *pflag.FlagSet) {
	fs.String(cfgKeyAddr, defaultAddr, "address to listen on")
	fs.String(cfgKeyEnvironment, defaultEnvironment, "environment name; \"development\" exposes error details")
	fs.String(cfgKeyLogLevel, "info", "log level: debug, info, warn, or error")
	fs.String(cfgKeyLogFormat, string(formatText), "log format: text or json")
	fs.Duration(cfgKeyShutdownTimeout, defaultShutdownTimeout, "how long to wait for requests to drain on shutdown")
	fs.Bool(cfgKeyStrict, true, "validate the fruit id on every route, not just GET and POST")
}

// loadConfig merges flags, environment, and the optional config file.
// An explicitly named config file must exist.  The default one
// need not.
func loadConfig(fs *pflag.FlagSet, file string) (Config, error) {
	v := viper.New()
	v.SetDefault(cfgKeyAddr, defaultAddr)
	v.SetDefault(cfgKeyEnvironment, defaultEnvironment)
	v.SetDefault(cfgKeyLogLevel, "info")
	v.SetDefault(cfgKeyLogFormat, string(formatText))
	v.SetDefault(cfgKeyShutdownTimeout, defaultShutdownTimeout)
	v.SetDefault(cfgKeyStrict, true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, errors.Wrap(err, "bind flags")
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if c.Addr == "" {
		return Config{}, errors.New("addr must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return Config{}, errors.Errorf("shutdown-timeout must be positive, not %s", c.ShutdownTimeout)
	}
	return c, nil
}
