package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName = ".locdiff"
	configType = "yaml"
	envPrefix  = "LOCDIFF"
)

// LoadConfig merges defaults, the config file and LOCDIFF_* environment
// variables, then validates the result. An explicit configPath must exist;
// otherwise .locdiff.yaml is looked up in the working directory and $HOME,
// and its absence is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// defaults maps every config key to its default value. Keys must be listed
// here for LOCDIFF_* environment overrides to apply.
var defaults = map[string]any{
	"filter.ignore_patterns":    []string{},
	"filter.no_default_ignores": DefaultNoDefaultIgnores,
	"filter.max_file_size":      DefaultMaxFileSize,
	"filter.skip_vendored":      DefaultSkipVendored,

	"languages.overrides": map[string]string{},
	"languages.include":   []string{},

	"analysis.workers":   DefaultWorkers,
	"analysis.timeout":   DefaultTimeout,
	"analysis.fail_fast": DefaultFailFast,
	"analysis.churn":     DefaultChurn,

	"output.format":     DefaultOutputFormat,
	"output.show_files": DefaultShowFiles,

	"log.level": DefaultLogLevel,
	"log.json":  DefaultLogJSON,
}

func applyDefaults(viperCfg *viper.Viper) {
	for key, value := range defaults {
		viperCfg.SetDefault(key, value)
	}
}
