package app

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/jeremywohl/flatten"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/model"
)

var (
	ErrConfig = errors.New("configuration error")
)

// Configuration holds application configuration read from a YAML or set by env variables.
//
// nolint:govet // prefer readability over field alignment optimization for this case.
type Configuration struct {
	// Ikuai is the router admin API configuration.
	Ikuai IkuaiOptions `mapstructure:"ikuai"`

	// Komari is the monitoring server configuration.
	Komari KomariOptions `mapstructure:"komari"`

	Log LogOptions `mapstructure:"log"`

	Metrics MetricsOptions `mapstructure:"metrics"`
}

// IkuaiOptions defines the router admin API parameters.
type IkuaiOptions struct {
	BaseURL        string  `mapstructure:"base_url"`
	Username       string  `mapstructure:"username"`
	Password       string  `mapstructure:"password"`
	TimeoutSeconds float64 `mapstructure:"timeout_seconds"`
}

// KomariOptions defines the monitoring server parameters.
type KomariOptions struct {
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"`
	// IntervalSeconds is the sample push cadence.
	IntervalSeconds float64 `mapstructure:"interval_seconds"`
	// BasicInfoIntervalMinutes is the inventory upload cadence.
	BasicInfoIntervalMinutes float64 `mapstructure:"basic_info_interval_minutes"`
	// IgnoreUnsafeCert disables TLS certificate verification on the upload and the stream.
	IgnoreUnsafeCert      bool    `mapstructure:"ignore_unsafe_cert"`
	UploadTimeoutSeconds  float64 `mapstructure:"upload_timeout_seconds"`
	ReconnectDelaySeconds float64 `mapstructure:"reconnect_delay_seconds"`
}

// LogOptions defines the log level and the optional rotated log file.
type LogOptions struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// MetricsOptions defines the prometheus listener, an empty address disables it.
type MetricsOptions struct {
	ListenAddress string `mapstructure:"listen_address"`
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Timeout returns the device request timeout.
func (o *IkuaiOptions) Timeout() time.Duration { return seconds(o.TimeoutSeconds) }

// Interval returns the sample push cadence.
func (o *KomariOptions) Interval() time.Duration { return seconds(o.IntervalSeconds) }

// BasicInfoInterval returns the inventory upload cadence.
func (o *KomariOptions) BasicInfoInterval() time.Duration {
	return time.Duration(o.BasicInfoIntervalMinutes * float64(time.Minute))
}

// UploadTimeout returns the inventory upload timeout.
func (o *KomariOptions) UploadTimeout() time.Duration { return seconds(o.UploadTimeoutSeconds) }

// ReconnectDelay returns the fixed delay between stream reconnect attempts.
func (o *KomariOptions) ReconnectDelay() time.Duration { return seconds(o.ReconnectDelaySeconds) }

func (a *App) setDefaults() {
	a.v.SetDefault("ikuai.base_url", "http://192.168.1.1")
	a.v.SetDefault("ikuai.timeout_seconds", 10)
	a.v.SetDefault("komari.interval_seconds", 1.0)
	a.v.SetDefault("komari.basic_info_interval_minutes", 5)
	a.v.SetDefault("komari.ignore_unsafe_cert", false)
	a.v.SetDefault("komari.upload_timeout_seconds", 30)
	a.v.SetDefault("komari.reconnect_delay_seconds", 5)
	a.v.SetDefault("log.level", model.LogLevelInfo)
	a.v.SetDefault("log.max_size_mb", 10)
	a.v.SetDefault("log.max_backups", 3)
}

// LoadConfiguration loads application configuration
//
// Reads in the cfgFile when available and overrides from environment variables.
func (a *App) LoadConfiguration(cfgFile string) error {
	a.v.SetConfigType("yaml")
	a.v.SetEnvPrefix(model.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	if cfgFile != "" {
		fh, err := os.Open(cfgFile)
		if err != nil {
			return errors.Wrap(ErrConfig, err.Error())
		}

		defer fh.Close()

		if err = a.v.ReadConfig(fh); err != nil {
			return errors.Wrap(ErrConfig, "ReadConfig error:"+err.Error())
		}
	}

	a.setDefaults()

	if err := a.envBindVars(); err != nil {
		return errors.Wrap(ErrConfig, "env var bind error:"+err.Error())
	}

	if err := a.v.Unmarshal(a.Config); err != nil {
		return errors.Wrap(ErrConfig, "Unmarshal error: "+err.Error())
	}

	return a.Config.validate(a.Kind)
}

// envBindVars binds environment variables to the struct
// without a configuration file being unmarshalled,
// this is a workaround for a viper bug,
//
// This can be replaced by the solution in https://github.com/spf13/viper/pull/1429
// once that PR is merged.
func (a *App) envBindVars() error {
	envKeysMap := map[string]interface{}{}
	if err := mapstructure.Decode(a.Config, &envKeysMap); err != nil {
		return err
	}

	// Flatten nested conf map
	flat, err := flatten.Flatten(envKeysMap, "", flatten.DotStyle)
	if err != nil {
		return errors.Wrap(err, "Unable to flatten config")
	}

	for k := range flat {
		if err := a.v.BindEnv(k); err != nil {
			return errors.Wrap(ErrConfig, "env var bind error: "+err.Error())
		}
	}

	return nil
}

// nolint:gocyclo // parameter validation is cyclomatic
func (c *Configuration) validate(kind model.AppKind) error {
	if err := validateURL("ikuai.base_url", c.Ikuai.BaseURL); err != nil {
		return err
	}

	if c.Ikuai.Username == "" {
		return errors.Wrap(ErrConfig, "ikuai.username not defined")
	}

	if c.Ikuai.Password == "" {
		return errors.Wrap(ErrConfig, "ikuai.password not defined")
	}

	if c.Ikuai.TimeoutSeconds <= 0 {
		return errors.Wrap(ErrConfig, "ikuai.timeout_seconds must be greater than zero")
	}

	// the one-shot collect mode never talks to the monitoring server.
	if kind == model.AppKindCollect {
		return nil
	}

	if err := validateURL("komari.endpoint", c.Komari.Endpoint); err != nil {
		return err
	}

	if c.Komari.Token == "" {
		return errors.Wrap(ErrConfig, "komari.token not defined")
	}

	if c.Komari.IntervalSeconds <= 0 {
		return errors.Wrap(ErrConfig, "komari.interval_seconds must be greater than zero")
	}

	if c.Komari.BasicInfoIntervalMinutes <= 0 {
		return errors.Wrap(ErrConfig, "komari.basic_info_interval_minutes must be greater than zero")
	}

	if c.Komari.UploadTimeoutSeconds <= 0 {
		return errors.Wrap(ErrConfig, "komari.upload_timeout_seconds must be greater than zero")
	}

	if c.Komari.ReconnectDelaySeconds <= 0 {
		return errors.Wrap(ErrConfig, "komari.reconnect_delay_seconds must be greater than zero")
	}

	return nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return errors.Wrap(ErrConfig, key+" not defined")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errors.Wrap(ErrConfig, key+" URL error: "+err.Error())
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Wrap(ErrConfig, key+" scheme must be http or https")
	}

	if u.Host == "" {
		return errors.Wrap(ErrConfig, key+" host not defined")
	}

	return nil
}
