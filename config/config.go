// Package config loads the settings shared by the ipsae commands from
// defaults, an optional config file, IPSAE_* environment variables and
// command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/BurntSushi/ipsae/ipsae"
	"github.com/BurntSushi/ipsae/logger"
	"github.com/BurntSushi/ipsae/pae"
)

// Config holds all settings of a scoring run.
type Config struct {
	PAECutoff      float64  `mapstructure:"pae_cutoff" validate:"gt=0"`
	DistanceCutoff float64  `mapstructure:"distance_cutoff" validate:"gt=0"`
	PAEKeys        []string `mapstructure:"pae_keys" validate:"min=1,dive,required"`
	Workers        int      `mapstructure:"workers" validate:"min=1"`
	OutputDir      string   `mapstructure:"output_dir" validate:"required"`
	Log            LogConfig
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"log_format" validate:"oneof=console json"`
}

// Cutoffs returns the scoring cutoffs.
func (c *Config) Cutoffs() ipsae.Cutoffs {
	return ipsae.Cutoffs{PAE: c.PAECutoff, Distance: c.DistanceCutoff}
}

// Logger returns the logger configuration.
func (c *Config) Logger() logger.Config {
	return logger.Config{Level: c.Log.Level, Format: c.Log.Format}
}

// Load reads the configuration through v. If configFile is empty, an
// optional "ipsae" config file is searched for in ".", "./config" and
// "$HOME/.config/ipsae"; otherwise configFile must exist.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("ipsae")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config file '%s': %w",
				configFile, err)
		}
	} else {
		v.SetConfigName("ipsae")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.config/ipsae")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("could not read config file: %w", err)
			}
		}
	}

	var cfg Config
	cfg.PAECutoff = v.GetFloat64("pae_cutoff")
	cfg.DistanceCutoff = v.GetFloat64("distance_cutoff")
	cfg.PAEKeys = v.GetStringSlice("pae_keys")
	cfg.Workers = v.GetInt("workers")
	cfg.OutputDir = v.GetString("output_dir")
	cfg.Log.Level = strings.ToLower(v.GetString("log_level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log_format"))

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pae_cutoff", ipsae.DefaultCutoffs.PAE)
	v.SetDefault("distance_cutoff", ipsae.DefaultCutoffs.Distance)
	v.SetDefault("pae_keys", pae.DefaultKeys)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("output_dir", ".")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

var validate = validator.New()

// Validate checks every field of cfg and reports all problems at once.
func Validate(cfg *Config) error {
	var problems []string
	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return err
		}
		for _, e := range errs {
			problems = append(problems, message(e))
		}
	}
	if err := cfg.Cutoffs().Validate(); err != nil && len(problems) == 0 {
		return err
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s",
			strings.Join(problems, "; "))
	}
	return nil
}

// message returns a human-readable description of a failed validation,
// naming the setting by its config key.
func message(e validator.FieldError) string {
	field := e.Field()
	if f, ok := fieldKeys[e.StructField()]; ok {
		field = f
	}
	switch e.Tag() {
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	}
	return fmt.Sprintf("%s failed the '%s' check", field, e.Tag())
}

var fieldKeys = map[string]string{
	"PAECutoff":      "pae_cutoff",
	"DistanceCutoff": "distance_cutoff",
	"PAEKeys":        "pae_keys",
	"Workers":        "workers",
	"OutputDir":      "output_dir",
	"Level":          "log_level",
	"Format":         "log_format",
}
