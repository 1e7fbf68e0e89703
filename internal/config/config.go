package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/aadamk/OpenPedCan-analysis/internal/domain"
)

// Manager loads and validates application configuration using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/mb-subtype-report/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("OPC_MB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	// Unmarshal configuration into struct
	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// Input defaults follow the OpenPedCan data-release layout
	viper.SetDefault("inputs.expected_path", "input/pathology_subtypes.tsv")
	viper.SetDefault("inputs.clinical_path", "input/clinical_subset.tsv")
	viper.SetDefault("inputs.classifiers", []map[string]string{
		{"name": "medulloPackage", "path": "input/medulloPackage_results.tsv"},
		{"name": "medullo-classifier", "path": "input/medullo-classifier_results.tsv"},
	})

	// Report defaults
	viper.SetDefault("report.output_dir", "results")
	viper.SetDefault("report.export_file", "MB_molecular_subtype.tsv")
	viper.SetDefault("report.html_file", "MB_subtype_concordance.html")
	viper.SetDefault("report.primary_classifier", "medulloPackage")
	viper.SetDefault("report.page_size", 5)

	// Archive defaults
	viper.SetDefault("archive.enabled", true)
	viper.SetDefault("archive.path", "results/run_archive.db")

	// Server defaults
	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.rate_limit", 20)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.output", "stderr")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns the report server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetReportConfig returns the report output configuration
func (m *Manager) GetReportConfig() *domain.ReportConfig {
	return &m.config.Report
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Inputs.ExpectedPath == "" {
		return fmt.Errorf("expected-subtype input path is required")
	}
	if config.Inputs.ClinicalPath == "" {
		return fmt.Errorf("clinical input path is required")
	}
	if len(config.Inputs.Classifiers) == 0 {
		return fmt.Errorf("at least one classifier input is required")
	}
	names := make(map[string]bool, len(config.Inputs.Classifiers))
	for _, c := range config.Inputs.Classifiers {
		if c.Name == "" || c.Path == "" {
			return fmt.Errorf("classifier inputs require both name and path")
		}
		if names[c.Name] {
			return fmt.Errorf("duplicate classifier name: %s", c.Name)
		}
		names[c.Name] = true
	}

	if !names[config.Report.PrimaryClassifier] {
		return fmt.Errorf("primary classifier %q is not among the configured classifiers", config.Report.PrimaryClassifier)
	}
	if config.Report.OutputDir == "" {
		return fmt.Errorf("report output directory is required")
	}
	if config.Report.PageSize <= 0 {
		return fmt.Errorf("invalid report page size: %d", config.Report.PageSize)
	}

	if config.Archive.Enabled && config.Archive.Path == "" {
		return fmt.Errorf("archive path is required when the archive is enabled")
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimit <= 0 {
		return fmt.Errorf("invalid server rate limit: %d", config.Server.RateLimit)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}
