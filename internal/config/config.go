// Package config loads the ambient application configuration: debug
// logging, the policy document path, and the option defaults read from the
// RAR_DEFAULTS_* environment variables (spec §6.3). The resolver's Default
// option layer does not read these defaults: it is built from
// optstack.DefaultOpt's built-in values. Precedence follows the teacher's convention: environment
// variables override the config file, which overrides built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// RarConfigPathEnvVar points at this package's own config file.
	RarConfigPathEnvVar = "RAR_CONFIG_PATH"
	// RarPolicyPathEnvVar overrides the policy document path read by
	// internal/store; its default lives in DefaultPolicyPath.
	RarPolicyPathEnvVar = "RAR_POLICY_PATH"

	// DefaultPolicyPath is the policy document location when neither the
	// config file nor RAR_POLICY_PATH overrides it (spec §6.1).
	DefaultPolicyPath = "/etc/security/rootasrole.yaml"

	// RbacOpsConfigPathEnvVar is the teacher's name for
	// RarConfigPathEnvVar; nothing in this module references it.
	RbacOpsConfigPathEnvVar = RarConfigPathEnvVar
)

// PathDefaults holds the PATH option defaults (RAR_DEFAULTS_PATH_DEFAULT,
// RAR_DEFAULTS_PATH_ADD).
type PathDefaults struct {
	Behavior string   `mapstructure:"default"`
	Add      []string `mapstructure:"add"`
}

// EnvDefaults holds the env option defaults (RAR_DEFAULTS_ENV_KEEP,
// RAR_DEFAULTS_ENV_CHECK, RAR_DEFAULTS_ENV_DELETE).
type EnvDefaults struct {
	Keep   []string `mapstructure:"keep"`
	Check  []string `mapstructure:"check"`
	Delete []string `mapstructure:"delete"`
}

// TimeoutDefaults holds the credential cache lifetime defaults
// (RAR_DEFAULTS_TIMEOUT_TYPE, RAR_DEFAULTS_TIMEOUT_DURATION).
type TimeoutDefaults struct {
	Type     string        `mapstructure:"type"`
	Duration time.Duration `mapstructure:"duration"`
}

// Defaults holds every option default under the "defaults" key
// (environment: RAR_DEFAULTS_*). The resolver's Default option layer
// (optstack.DefaultOpt) does not read it.
type Defaults struct {
	Path           PathDefaults    `mapstructure:"path"`
	Env            EnvDefaults     `mapstructure:"env"`
	Timeout        TimeoutDefaults `mapstructure:"timeout"`
	Bounding       string          `mapstructure:"bounding"`
	Root           string          `mapstructure:"root"`
	Authentication string          `mapstructure:"authentication"`
}

// Config holds all ambient configuration for sr/chsr.
type Config struct {
	// Debug enables verbose logging and additional debug information.
	Debug bool `mapstructure:"debug"`
	// PolicyPath is the YAML policy document location (internal/store).
	PolicyPath string `mapstructure:"policy_path"`
	// Defaults holds the loaded option defaults; see Defaults.
	Defaults Defaults `mapstructure:"defaults"`

	// Server configuration, kept for the teacher's request-scoped debug
	// endpoint style: a log level knob, not a network listener (spec
	// Non-goals exclude transport). Neither sr nor chsr reads it.
	Server struct {
		LogLevel string `mapstructure:"log_level"`
	} `mapstructure:"server"`
}

// Load initializes and returns the configuration from all sources:
// 1. Environment variables (RAR_*, highest priority)
// 2. Configuration file
// 3. Built-in defaults (lowest priority)
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		if envPath := os.Getenv(RarConfigPathEnvVar); envPath != "" {
			if _, err := os.Stat(envPath); os.IsNotExist(err) {
				return nil, fmt.Errorf("config file specified in %s not found: %s", RarConfigPathEnvVar, envPath)
			}
			configPath = envPath
		}
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("RAR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		} else if configPath != "" {
			return nil, fmt.Errorf("specified config file not found: %s", configPath)
		}
	}

	if envPolicy := os.Getenv(RarPolicyPathEnvVar); envPolicy != "" {
		v.Set("policy_path", envPolicy)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets built-in default values for every option, the same
// values optstack.DefaultOpt uses for the resolver's Default layer.
func setDefaults(v *viper.Viper) {
	v.SetDefault("policy_path", DefaultPolicyPath)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("defaults.path.default", "delete")
	v.SetDefault("defaults.path.add", []string{
		"/usr/local/sbin", "/usr/local/bin", "/usr/sbin",
		"/usr/bin", "/sbin", "/bin", "/snap/bin",
	})

	v.SetDefault("defaults.env.keep", []string{})
	v.SetDefault("defaults.env.check", []string{})
	v.SetDefault("defaults.env.delete", []string{})

	v.SetDefault("defaults.timeout.type", "ppid")
	v.SetDefault("defaults.timeout.duration", "5m")

	v.SetDefault("defaults.bounding", "strict")
	v.SetDefault("defaults.root", "user")
	v.SetDefault("defaults.authentication", "perform")
}
