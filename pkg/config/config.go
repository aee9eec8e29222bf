/*
Package config manages TOML config for ngramserve services.
*/
package config

import (
	"os"
	"path/filepath"

	"github.com/bastiangx/ngramserve/internal/utils"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure
type Config struct {
	Model  ModelConfig  `toml:"model"`
	Server ServerConfig `toml:"server"`
	CLI    CliConfig    `toml:"cli"`
}

// ModelConfig holds training options.
type ModelConfig struct {
	MaxOrder      int   `toml:"max_order"`
	Seed          int64 `toml:"seed"`
	WrapSentences bool  `toml:"wrap_sentences"`
}

// ServerConfig has server related options.
type ServerConfig struct {
	MaxHistory int `toml:"max_history"`
	MaxTokens  int `toml:"max_tokens"`
	DistLimit  int `toml:"dist_limit"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultOrder int  `toml:"default_order"`
	MaxTokens    int  `toml:"max_tokens"`
	ShowDist     bool `toml:"show_dist"`
	DistLimit    int  `toml:"dist_limit"`
}

// GetConfigDir returns the config directory with fallback priority:
// 1. ~/.config/
// 2. ~/Library/Application Support/ (macOS)
// 3. Current executable dir
// 4. builtin defaults
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Errorf("Failed to get home directory: %v", err)
		execDir, execErr := utils.GetExecutableDir()
		if execErr != nil {
			return "", execErr
		}
		return execDir, nil
	}
	primaryPath := filepath.Join(homeDir, ".config", "ngramserve")
	if result := utils.CheckDirStatus(primaryPath); result.Writable {
		return primaryPath, nil
	}
	// Not conventional, fallback from ~/.config if not writable
	macOSPath := filepath.Join(homeDir, "Library", "Application Support", "ngramserve")
	if result := utils.CheckDirStatus(macOSPath); result.Writable {
		return macOSPath, nil
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/ngramserve/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	var config *Config
	var err error

	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err = LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err = InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			MaxOrder:      3,
			Seed:          0,
			WrapSentences: false,
		},
		Server: ServerConfig{
			MaxHistory: 64,
			MaxTokens:  256,
			DistLimit:  16,
		},
		CLI: CliConfig{
			DefaultOrder: 0,
			MaxTokens:    0,
			ShowDist:     false,
			DistLimit:    10,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if modelSection, ok := utils.ExtractSection(tempConfig, "model"); ok {
		extractModelConfig(modelSection, &config.Model)
	}
	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	return config, nil
}

// extractModelConfig extracts training configuration from a map
func extractModelConfig(data map[string]any, model *ModelConfig) {
	if val, ok := utils.ExtractInt(data, "max_order"); ok {
		model.MaxOrder = val
	}
	if val, ok := utils.ExtractInt64(data, "seed"); ok {
		model.Seed = val
	}
	if val, ok := utils.ExtractBool(data, "wrap_sentences"); ok {
		model.WrapSentences = val
	}
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractInt(data, "max_history"); ok {
		server.MaxHistory = val
	}
	if val, ok := utils.ExtractInt(data, "max_tokens"); ok {
		server.MaxTokens = val
	}
	if val, ok := utils.ExtractInt(data, "dist_limit"); ok {
		server.DistLimit = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt(data, "default_order"); ok {
		cli.DefaultOrder = val
	}
	if val, ok := utils.ExtractInt(data, "max_tokens"); ok {
		cli.MaxTokens = val
	}
	if val, ok := utils.ExtractBool(data, "show_dist"); ok {
		cli.ShowDist = val
	}
	if val, ok := utils.ExtractInt(data, "dist_limit"); ok {
		cli.DistLimit = val
	}
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	configDir := filepath.Dir(defaultPath)
	if err := utils.EnsureDir(configDir); err != nil {
		return err
	}
	config := DefaultConfig()
	return utils.SaveTOMLFile(config, defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server config values and saves to file
func (c *Config) Update(configPath string, maxHistory, maxTokens, distLimit *int) error {
	server := &c.Server
	if maxHistory != nil {
		server.MaxHistory = *maxHistory
	}
	if maxTokens != nil {
		server.MaxTokens = *maxTokens
	}
	if distLimit != nil {
		server.DistLimit = *distLimit
	}
	return SaveConfig(c, configPath)
}
