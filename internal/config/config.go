package config

import (
	yamlenv "github.com/ifuryst/go-yaml-env"

	"newsnexus/pkg/logger"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logger   logger.Config  `yaml:"logger"`
	Auth     AuthConfig     `yaml:"auth"`
	Reports  ReportsConfig  `yaml:"reports"`
	Admin    AdminConfig    `yaml:"admin"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	Host     string `yaml:"host"`
	Mode     string `yaml:"mode"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	TimeZone string `yaml:"timezone"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	TokenTTL  string `yaml:"token_ttl"`
}

// ReportsConfig drives the report-compilation pipeline. Dir is required;
// report generation refuses to run without it.
type ReportsConfig struct {
	Dir          string `yaml:"dir"`
	ExportFormat string `yaml:"export_format"`
	Timezone     string `yaml:"timezone"`

	// ExcludePreviouslyReported drops articles that already belong to an
	// earlier report from the selection. Off by default.
	ExcludePreviouslyReported bool `yaml:"exclude_previously_reported"`
}

type AdminConfig struct {
	BootstrapEmails []string `yaml:"bootstrap_emails"`
	DefaultPassword string   `yaml:"default_password"`
}

func LoadConfig(configPath string) (*Config, error) {
	cfg, err := yamlenv.LoadConfig[Config](configPath)
	if err != nil {
		return nil, err
	}

	// Set default values
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "debug"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.TimeZone == "" {
		cfg.Database.TimeZone = "UTC"
	}
	if cfg.Auth.TokenTTL == "" {
		cfg.Auth.TokenTTL = "24h"
	}
	if cfg.Reports.ExportFormat == "" {
		cfg.Reports.ExportFormat = "xlsx"
	}
	if cfg.Reports.Timezone == "" {
		cfg.Reports.Timezone = "America/New_York"
	}
	if cfg.Admin.DefaultPassword == "" {
		cfg.Admin.DefaultPassword = "test"
	}

	return cfg, nil
}
