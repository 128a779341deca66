package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/hcm-console/project-factory/internal/db"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig
	Database   db.Config
	Processing ProcessingConfig
	Downstream DownstreamConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// ProcessingConfig tunes the reconciliation and creation engines.
type ProcessingConfig struct {
	BatchSize        int
	SettleFloor      time.Duration
	SettlePerRow     time.Duration
	CacheTTL         time.Duration
	HTTPTimeout      time.Duration
	EncryptionSecret string
}

// DownstreamConfig holds the sibling microservice endpoints.
type DownstreamConfig struct {
	CampaignSearchURL       string
	BoundaryRelationshipURL string
	MDMSSearchURL           string
	ProjectCreateURL        string
	ProjectUpdateURL        string
	ProjectSearchURL        string
	FacilityCreateURL       string
	EmployeeCreateURL       string
}

// Default returns the configuration used when no file or env override is
// present.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: db.DefaultConfig(),
		Processing: ProcessingConfig{
			BatchSize:    100,
			SettleFloor:  5 * time.Second,
			SettlePerRow: 8 * time.Millisecond,
			CacheTTL:     5 * time.Minute,
			HTTPTimeout:  30 * time.Second,
		},
	}
}

// Load reads config.yaml from configPath, applying PF_-prefixed environment
// overrides on top of defaults.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("PF")

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("processing.encryption_secret")

	if err := v.ReadInConfig(); err != nil {
		// Config file not found? Just log it, use defaults + env
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("processing.batch_size") {
		cfg.Processing.BatchSize = v.GetInt("processing.batch_size")
	}
	if v.IsSet("processing.settle_floor_ms") {
		cfg.Processing.SettleFloor = time.Duration(v.GetInt("processing.settle_floor_ms")) * time.Millisecond
	}
	if v.IsSet("processing.settle_per_row_ms") {
		cfg.Processing.SettlePerRow = time.Duration(v.GetInt("processing.settle_per_row_ms")) * time.Millisecond
	}
	if v.IsSet("processing.cache_ttl_seconds") {
		cfg.Processing.CacheTTL = time.Duration(v.GetInt("processing.cache_ttl_seconds")) * time.Second
	}
	if v.IsSet("processing.http_timeout_seconds") {
		cfg.Processing.HTTPTimeout = time.Duration(v.GetInt("processing.http_timeout_seconds")) * time.Second
	}
	if v.IsSet("processing.encryption_secret") {
		cfg.Processing.EncryptionSecret = v.GetString("processing.encryption_secret")
	}

	if v.IsSet("downstream.campaign_search_url") {
		cfg.Downstream.CampaignSearchURL = v.GetString("downstream.campaign_search_url")
	}
	if v.IsSet("downstream.boundary_relationship_url") {
		cfg.Downstream.BoundaryRelationshipURL = v.GetString("downstream.boundary_relationship_url")
	}
	if v.IsSet("downstream.mdms_search_url") {
		cfg.Downstream.MDMSSearchURL = v.GetString("downstream.mdms_search_url")
	}
	if v.IsSet("downstream.project_create_url") {
		cfg.Downstream.ProjectCreateURL = v.GetString("downstream.project_create_url")
	}
	if v.IsSet("downstream.project_update_url") {
		cfg.Downstream.ProjectUpdateURL = v.GetString("downstream.project_update_url")
	}
	if v.IsSet("downstream.project_search_url") {
		cfg.Downstream.ProjectSearchURL = v.GetString("downstream.project_search_url")
	}
	if v.IsSet("downstream.facility_create_url") {
		cfg.Downstream.FacilityCreateURL = v.GetString("downstream.facility_create_url")
	}
	if v.IsSet("downstream.employee_create_url") {
		cfg.Downstream.EmployeeCreateURL = v.GetString("downstream.employee_create_url")
	}

	return cfg, nil
}
