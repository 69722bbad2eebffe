package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// AnalyticsBackend identifies where search popularity is recorded
type AnalyticsBackend string

const (
	AnalyticsSQLite   AnalyticsBackend = "sqlite"
	AnalyticsAppwrite AnalyticsBackend = "appwrite"
	AnalyticsNone     AnalyticsBackend = "none"
)

// Config holds all application configuration
type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Search    SearchConfig    `mapstructure:"search"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Launcher  LauncherConfig  `mapstructure:"launcher"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// CatalogConfig holds movie catalog configuration
type CatalogConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Token        string `mapstructure:"token"`          // TMDB read access token
	ImageBaseURL string `mapstructure:"image_base_url"` // Prefix for poster paths
	Language     string `mapstructure:"language"`
	IncludeAdult bool   `mapstructure:"include_adult"`
}

// AnalyticsConfig holds search popularity store configuration
type AnalyticsConfig struct {
	Backend      AnalyticsBackend `mapstructure:"backend"` // "sqlite", "appwrite" or "none"
	DBPath       string           `mapstructure:"db_path"` // sqlite only
	Endpoint     string           `mapstructure:"endpoint"`
	ProjectID    string           `mapstructure:"project_id"`
	DatabaseID   string           `mapstructure:"database_id"`
	CollectionID string           `mapstructure:"collection_id"`
	APIKey       string           `mapstructure:"api_key"`
}

// SearchConfig holds search screen behaviour
type SearchConfig struct {
	DebounceMS   int  `mapstructure:"debounce_ms"`
	RankResults  bool `mapstructure:"rank_results"`
	PopularLimit int  `mapstructure:"popular_limit"`
}

// StorageConfig holds local persistence configuration
type StorageConfig struct {
	Path string `mapstructure:"path"` // Directory for the local data file; empty keeps data in memory
}

// LauncherConfig holds the program used to open catalog pages
type LauncherConfig struct {
	Command string   `mapstructure:"command"` // empty uses open/xdg-open/start
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p/w500",
			Language:     "en-US",
		},
		Analytics: AnalyticsConfig{
			Backend:  AnalyticsSQLite,
			DBPath:   filepath.Join(defaultDataPath(), "analytics.db"),
			Endpoint: "https://cloud.appwrite.io/v1",
		},
		Search: SearchConfig{
			DebounceMS:   500,
			RankResults:  true,
			PopularLimit: 10,
		},
		Storage: StorageConfig{
			Path: defaultDataPath(),
		},
		Launcher: LauncherConfig{
			Args: []string{},
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "marquee.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marquee")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper(), defaultConfigPath(), ".")
}

// LoadConfigFrom loads configuration into v, searching the given directories
// for config.yaml. MARQUEE_* environment variables override file values
// (MARQUEE_CATALOG_TOKEN sets catalog.token).
func LoadConfigFrom(v *viper.Viper, dirs ...string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Env lookups only apply to keys viper knows about
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so env overrides and Unmarshal see them
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range configValues(cfg) {
		v.SetDefault(key, value)
	}
}

// configValues flattens cfg into snake_case viper keys
func configValues(cfg *Config) map[string]any {
	return map[string]any{
		"catalog.base_url":        cfg.Catalog.BaseURL,
		"catalog.token":           cfg.Catalog.Token,
		"catalog.image_base_url":  cfg.Catalog.ImageBaseURL,
		"catalog.language":        cfg.Catalog.Language,
		"catalog.include_adult":   cfg.Catalog.IncludeAdult,
		"analytics.backend":       string(cfg.Analytics.Backend),
		"analytics.db_path":       cfg.Analytics.DBPath,
		"analytics.endpoint":      cfg.Analytics.Endpoint,
		"analytics.project_id":    cfg.Analytics.ProjectID,
		"analytics.database_id":   cfg.Analytics.DatabaseID,
		"analytics.collection_id": cfg.Analytics.CollectionID,
		"analytics.api_key":       cfg.Analytics.APIKey,
		"search.debounce_ms":      cfg.Search.DebounceMS,
		"search.rank_results":     cfg.Search.RankResults,
		"search.popular_limit":    cfg.Search.PopularLimit,
		"storage.path":            cfg.Storage.Path,
		"launcher.command":        cfg.Launcher.Command,
		"launcher.args":           cfg.Launcher.Args,
		"logging.file":            cfg.Logging.File,
		"logging.level":           cfg.Logging.Level,
	}
}

// SaveConfig saves the configuration to the default config file
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(viper.GetViper(), cfg, defaultConfigPath())
}

// SaveConfigTo writes cfg to dir/config.yaml through v
func SaveConfigTo(v *viper.Viper, cfg *Config, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to keep snake_case key names
	for key, value := range configValues(cfg) {
		v.Set(key, value)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ClearCatalogCredentials removes the stored catalog token while preserving
// other settings
func ClearCatalogCredentials(cfg *Config) error {
	cfg.Catalog.Token = ""
	return SaveConfig(cfg)
}

// IsConfigured returns true if a catalog token is set
func (c *Config) IsConfigured() bool {
	return c.Catalog.Token != ""
}

// Validate checks the analytics backend settings
func (c *Config) Validate() error {
	switch c.Analytics.Backend {
	case AnalyticsSQLite, AnalyticsNone:
		return nil
	case AnalyticsAppwrite:
		if c.Analytics.ProjectID == "" || c.Analytics.DatabaseID == "" || c.Analytics.CollectionID == "" {
			return fmt.Errorf("appwrite analytics requires project_id, database_id and collection_id")
		}
		return nil
	default:
		return fmt.Errorf("unknown analytics backend: %s", c.Analytics.Backend)
	}
}

// ExpandPath expands a leading ~ to the user's home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
