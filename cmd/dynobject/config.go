package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/dynobject/internal/paths"
	"github.com/mesh-intelligence/dynobject/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "DYNOBJECT"

	// Config keys.
	cfgKeyDataDir  = "data_dir"
	cfgKeyLogLevel = "log_level"
	cfgKeyCounter1 = "processor.counter1"
	cfgKeyCounter2 = "processor.counter2"
	cfgKeyLimit    = "processor.limit"
	cfgKeyStep     = "processor.step"
	cfgKeyMaxSteps = "processor.max_steps"
	cfgKeyJournal  = "journal.enabled"
)

// loadConfig reads config.yaml from configDir using Viper. Every key has a
// default and may be overridden by a DYNOBJECT_* environment variable
// (dots become underscores). A missing config.yaml is not an error.
func loadConfig(configDir string) (types.Config, error) {
	def := types.DefaultConfig()

	v := viper.New()
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeyCounter1, def.Processor.Counter1)
	v.SetDefault(cfgKeyCounter2, def.Processor.Counter2)
	v.SetDefault(cfgKeyLimit, def.Processor.Limit)
	v.SetDefault(cfgKeyStep, def.Processor.Step)
	v.SetDefault(cfgKeyMaxSteps, def.Processor.MaxSteps)
	v.SetDefault(cfgKeyJournal, def.Journal.Enabled)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. It reports whether a file was written.
func writeConfigIfMissing(configDir, dataDir string) (bool, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := types.DefaultConfig()
	cfg.DataDir = dataDir

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# dynobject configuration\n")
	return true, os.WriteFile(path, append(header, data...), 0o644)
}
