package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Inputs  InputConfig   `mapstructure:"inputs"`
	Report  ReportConfig  `mapstructure:"report"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ClassifierInput names one prediction table on disk.
type ClassifierInput struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

// InputConfig locates the three input tables.
type InputConfig struct {
	ExpectedPath string            `mapstructure:"expected_path"`
	ClinicalPath string            `mapstructure:"clinical_path"`
	Classifiers  []ClassifierInput `mapstructure:"classifiers"`
}

// ReportConfig controls the generated outputs.
type ReportConfig struct {
	OutputDir         string `mapstructure:"output_dir"`
	ExportFile        string `mapstructure:"export_file"`
	HTMLFile          string `mapstructure:"html_file"`
	PrimaryClassifier string `mapstructure:"primary_classifier"`
	PageSize          int    `mapstructure:"page_size"`
}

// ArchiveConfig locates the run archive database.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ServerConfig represents the report server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	RateLimit    int           `mapstructure:"rate_limit"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
