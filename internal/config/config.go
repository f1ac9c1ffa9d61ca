// Package config loads toolkit configuration from a TOML file and the
// environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mwxkit/mwx/internal/store"
)

// Config holds application configuration.
type Config struct {
	Store StoreConfig
	Write WriteConfig
	Log   LogConfig
}

// StoreConfig locates the backup database.
type StoreConfig struct {
	Path string
}

// WriteConfig controls write-back targets.
type WriteConfig struct {
	Pattern   string
	Overwrite bool
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string
}

// Load reads configuration from file and env. Env var overrides use
// prefix MWX_; the config file location can be forced with MWX_CONFIG.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("store.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "mwx", "wallet.sqlite"))
	v.SetDefault("write.pattern", store.DefaultNamePattern)
	v.SetDefault("write.overwrite", false)
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MWX_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "mwx"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MWX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}
