package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the application configuration. The erasure coding
// parameters (k, m) are deliberately not configurable; they are
// process-wide constants in the service package.
type Config struct {
	LogLevel   string `yaml:"log_level"`
	ListenPort int    `yaml:"listen_port"`
	OutputDir  string `yaml:"output_dir"`
	Quiet      bool   `yaml:"quiet"`
}

// LoadConfig loads configuration from config.yaml, environment variables, or CLI flags
// Priority: CLI flags > Environment variables > config.yaml > defaults
func LoadConfig(configPath string, rootCmd *cobra.Command) (*Config, error) {
	if err := setupViper(configPath, rootCmd); err != nil {
		return nil, err
	}

	return &Config{
		LogLevel:   viper.GetString("log_level"),
		ListenPort: viper.GetInt("listen_port"),
		OutputDir:  viper.GetString("output_dir"),
		Quiet:      viper.GetBool("quiet"),
	}, nil
}

// setupViper configures Viper with defaults, paths, and bindings
func setupViper(configPath string, rootCmd *cobra.Command) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("listen_port", 8080)
	viper.SetDefault("output_dir", ".")
	viper.SetDefault("quiet", false)
}
