package config

import (
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/spf13/viper"
)

const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

type ServerConfig struct {
	Address     string `mapstructure:"address"`
	Environment string `mapstructure:"environment"`
}

type BreakerConfig struct {
	FailureThreshold int    `mapstructure:"failure_threshold"`
	FailureWindow    string `mapstructure:"failure_window"`
	Cooldown         string `mapstructure:"cooldown"`
}

type GatewayConfig struct {
	HandlerTimeout string        `mapstructure:"handler_timeout"`
	Breaker        BreakerConfig `mapstructure:"breaker"`
}

type ServiceConfig struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Gateway  GatewayConfig   `mapstructure:"gateway"`
	Services []ServiceConfig `mapstructure:"services"`
	Logging  LoggingConfig   `mapstructure:"logging"`
}

func Load() (*Config, error) {
	viper.SetDefault("server.environment", EnvDev)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("gateway.handler_timeout", "5s")
	viper.SetDefault("gateway.breaker.failure_threshold", 5)
	viper.SetDefault("gateway.breaker.failure_window", "1m")
	viper.SetDefault("gateway.breaker.cooldown", "30s")
	viper.SetDefault("logging.level", LogLevelInfo)

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Error("failed to read config file", slog.String("error", err.Error()))
			return nil, err
		}
		slog.Error("config file not found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", slog.String("file", viper.ConfigFileUsed()))
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Error("failed to unmarshal config", slog.String("error", err.Error()))
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Server,
			validation.Required,
			validation.By(func(value interface{}) error {
				sc, ok := value.(ServerConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a ServerConfig")
				}
				return validation.ValidateStruct(&sc,
					validation.Field(&sc.Environment,
						validation.Required,
						validation.In(EnvDev, EnvStaging, EnvProd),
					),
					validation.Field(&sc.Address,
						validation.Required,
						validation.By(validateHostPort),
					),
				)
			}),
		),
		validation.Field(&c.Logging,
			validation.Required,
			validation.By(func(value interface{}) error {
				lc, ok := value.(LoggingConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a LoggingConfig")
				}
				return validation.ValidateStruct(&lc,
					validation.Field(&lc.Level,
						validation.Required,
						validation.In(LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError),
					),
				)
			}),
		),
		validation.Field(&c.Gateway,
			validation.Required,
			validation.By(func(value interface{}) error {
				gc, ok := value.(GatewayConfig)
				if !ok {
					return validation.NewError("validation_invalid_type", "must be a GatewayConfig")
				}
				return validation.ValidateStruct(&gc,
					validation.Field(&gc.HandlerTimeout,
						validation.Required,
						validation.By(validateDuration),
					),
					validation.Field(&gc.Breaker,
						validation.Required,
						validation.By(validateBreakerConfig),
					),
				)
			}),
		),
		validation.Field(&c.Services,
			validation.Each(validation.By(validateServiceConfig)),
		),
	)
}

// BreakerThreshold returns the configured failure threshold.
func (c *Config) BreakerThreshold() int {
	return c.Gateway.Breaker.FailureThreshold
}

// Durations parses the configured duration strings. Call Validate first;
// invalid strings parse to zero here.
func (c *Config) Durations() (handlerTimeout, failureWindow, cooldown time.Duration) {
	handlerTimeout, _ = time.ParseDuration(c.Gateway.HandlerTimeout)
	failureWindow, _ = time.ParseDuration(c.Gateway.Breaker.FailureWindow)
	cooldown, _ = time.ParseDuration(c.Gateway.Breaker.Cooldown)
	return handlerTimeout, failureWindow, cooldown
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}

	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}

	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}

	return nil
}

func validateDuration(value interface{}) error {
	durationStr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	if _, err := time.ParseDuration(durationStr); err != nil {
		return validation.NewError("validation_invalid_duration", "must be a valid duration (e.g., 2s, 5m, 1h)")
	}

	return nil
}

func validateBreakerConfig(value interface{}) error {
	bc, ok := value.(BreakerConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a BreakerConfig")
	}

	return validation.ValidateStruct(&bc,
		validation.Field(&bc.FailureThreshold,
			validation.Required,
			validation.Min(1),
		),
		validation.Field(&bc.FailureWindow,
			validation.Required,
			validation.By(validateDuration),
		),
		validation.Field(&bc.Cooldown,
			validation.Required,
			validation.By(validateDuration),
		),
	)
}

func validateServiceConfig(value interface{}) error {
	svc, ok := value.(ServiceConfig)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a ServiceConfig")
	}

	if svc.Name == "" {
		return validation.NewError("validation_empty_name", "service name cannot be empty")
	}

	if svc.URL == "" {
		return validation.NewError("validation_empty_url", "service URL cannot be empty")
	}

	parsedURL, err := url.Parse(svc.URL)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}

	if parsedURL.Host == "" {
		return validation.NewError("validation_missing_host", "URL must have a host")
	}

	return nil
}
