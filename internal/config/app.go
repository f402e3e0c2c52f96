package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/led-inventory/internal/classify"
	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	DefaultDatabasePath  = "$HOME/.local/share/ledinv/ledinv.db"
	DefaultServerAddress = ":8080"
)

// AppConfig holds the resolved application settings.
type AppConfig struct {
	DatabasePath      string
	ServerAddress     string
	Rules             []model.ClassificationRule
	CleanupCheckpoint bool
	CleanupRetries    int
}

// RuleConfig is one classification rule as written in the config file.
type RuleConfig struct {
	Label       string  `mapstructure:"label"`
	Description string  `mapstructure:"description"`
	MinRatio    float64 `mapstructure:"min_ratio"`
	MaxRatio    float64 `mapstructure:"max_ratio"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("server.address", DefaultServerAddress)
	v.SetDefault("cleanup.checkpoint", true)
	v.SetDefault("cleanup.retries", 3)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load resolves the application configuration from v.
// It follows this precedence:
// 1. Viper configuration (from config file or LEDINV_ env vars)
// 2. Direct environment variables (LEDINV_DB)
// 3. Default values
func Load(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		DatabasePath:      v.GetString("database.path"),
		ServerAddress:     v.GetString("server.address"),
		CleanupCheckpoint: v.GetBool("cleanup.checkpoint"),
		CleanupRetries:    v.GetInt("cleanup.retries"),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = os.Getenv("LEDINV_DB")
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = DefaultDatabasePath
	}
	cfg.DatabasePath = ExpandPath(cfg.DatabasePath)

	if cfg.ServerAddress == "" {
		cfg.ServerAddress = DefaultServerAddress
	}
	if cfg.CleanupRetries < 1 {
		cfg.CleanupRetries = 1
	}

	rules, err := LoadRules(v)
	if err != nil {
		return nil, err
	}
	cfg.Rules = rules

	return cfg, nil
}

// LoadRules reads classification.rules from v, falling back to the built-in set.
// Configured rules are all active and must not overlap.
func LoadRules(v *viper.Viper) ([]model.ClassificationRule, error) {
	if !v.IsSet("classification.rules") {
		return classify.DefaultRules(), nil
	}

	var raw []RuleConfig
	if err := v.UnmarshalKey("classification.rules", &raw); err != nil {
		return nil, fmt.Errorf("%w: classification.rules: %w", common.ErrInvalidConfig, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: classification.rules is empty", common.ErrMissingConfig)
	}

	rules := make([]model.ClassificationRule, 0, len(raw))
	for _, r := range raw {
		rules = append(rules, model.ClassificationRule{
			Label:       strings.TrimSpace(r.Label),
			Description: r.Description,
			MinRatio:    r.MinRatio,
			MaxRatio:    r.MaxRatio,
			IsActive:    true,
		})
	}

	if err := classify.ValidateRuleSet(rules); err != nil {
		return nil, fmt.Errorf("%w: classification.rules: %w", common.ErrInvalidConfig, err)
	}

	return rules, nil
}
