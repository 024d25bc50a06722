package config

// Package config provides a reusable loader for the AMM engine's
// configuration files and environment variables. It is versioned so
// that applications can depend on a stable API contract.
//
// Version: v0.1.0

import (
	"fmt"

	"github.com/spf13/viper"

	"ammengine/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config is the unified configuration for an AMM engine host. It
// mirrors the structure of the YAML files under cmd/config, trimmed
// from the teacher's Network/Consensus/VM/Storage sections (out of
// scope per spec §1 — no P2P, no consensus, no VM here) down to the
// settings this engine actually consumes.
type Config struct {
	AMM struct {
		CPFeeTiers            []uint64 `mapstructure:"cp_fee_tiers" json:"cp_fee_tiers"`
		DefaultSlippageBps    uint64   `mapstructure:"default_slippage_bps" json:"default_slippage_bps"`
		DefaultPriceImpactBps uint64   `mapstructure:"default_price_impact_bps" json:"default_price_impact_bps"`
		SSDefaultAmp          uint64   `mapstructure:"ss_default_amp" json:"ss_default_amp"`
		SSDefaultFeeBps       uint64   `mapstructure:"ss_default_fee_bps" json:"ss_default_fee_bps"`
		MaxAmp                uint64   `mapstructure:"max_amp" json:"max_amp"`
		FeeRecipient          string   `mapstructure:"fee_recipient" json:"fee_recipient"`
	} `mapstructure:"amm" json:"amm"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
		File  string `mapstructure:"file" json:"file"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("cmd/config")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the AMM_ENV environment variable.
func LoadFromEnv() (*Config, error) {
	return Load(utils.EnvOrDefault("AMM_ENV", ""))
}
