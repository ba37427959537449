// Package config loads service configuration from defaults, an optional
// YAML file, .env and BUTIN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Paths     PathsConfig     `mapstructure:"paths"`
	Tracker   TrackerConfig   `mapstructure:"tracker"`
	TMDB      TMDBConfig      `mapstructure:"tmdb"`
	MediaInfo MediaInfoConfig `mapstructure:"mediainfo"`
	Security  SecurityConfig  `mapstructure:"security"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// PathsConfig holds filesystem locations.
type PathsConfig struct {
	DataDir     string `mapstructure:"data_dir"`
	HardlinkDir string `mapstructure:"hardlink_dir"`
	OutputDir   string `mapstructure:"output_dir"`
}

// TemplateDir is where user presentation templates are stored.
func (p PathsConfig) TemplateDir() string {
	return filepath.Join(p.DataDir, "templates")
}

// TrackerConfig holds La Cale tracker settings.
type TrackerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	UploadURL      string `mapstructure:"upload_url"`
	AnnounceURL    string `mapstructure:"announce_url"`
	APIKey         string `mapstructure:"api_key"`
	Timeout        int    `mapstructure:"timeout"` // seconds
	RequestsPerMin int    `mapstructure:"requests_per_min"`
}

// TMDBConfig holds TMDB API settings.
type TMDBConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ImageBaseURL string `mapstructure:"image_base_url"`
	Language     string `mapstructure:"language"`
	Timeout      int    `mapstructure:"timeout"` // seconds
}

// MediaInfoConfig holds probe tool locations.
type MediaInfoConfig struct {
	MediaInfoPath string `mapstructure:"mediainfo_path"`
	FFprobePath   string `mapstructure:"ffprobe_path"`
}

// SecurityConfig holds the secret used to encrypt stored API keys.
type SecurityConfig struct {
	Secret string `mapstructure:"secret"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Database: DatabaseConfig{
			Path: "./data/butinmaker.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Paths: PathsConfig{
			DataDir:     "./data",
			HardlinkDir: "/data",
			OutputDir:   "./output",
		},
		Tracker: TrackerConfig{
			BaseURL:        "https://la-cale.space",
			UploadURL:      "https://la-cale.space/upload",
			Timeout:        30,
			RequestsPerMin: 30,
		},
		TMDB: TMDBConfig{
			APIKey:       EmbeddedTMDBKey,
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Language:     "fr-FR",
			Timeout:      10,
		},
	}
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults. A .env file in
// the working directory is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.butinmaker")
	}

	v.SetEnvPrefix("BUTIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults mirrors Default() into viper so env vars can override
// keys that no config file mentions.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)

	v.SetDefault("database.path", d.Database.Path)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("paths.data_dir", d.Paths.DataDir)
	v.SetDefault("paths.hardlink_dir", d.Paths.HardlinkDir)
	v.SetDefault("paths.output_dir", d.Paths.OutputDir)

	v.SetDefault("tracker.base_url", d.Tracker.BaseURL)
	v.SetDefault("tracker.upload_url", d.Tracker.UploadURL)
	v.SetDefault("tracker.announce_url", "")
	v.SetDefault("tracker.api_key", "")
	v.SetDefault("tracker.timeout", d.Tracker.Timeout)
	v.SetDefault("tracker.requests_per_min", d.Tracker.RequestsPerMin)

	v.SetDefault("tmdb.api_key", d.TMDB.APIKey)
	v.SetDefault("tmdb.base_url", d.TMDB.BaseURL)
	v.SetDefault("tmdb.image_base_url", d.TMDB.ImageBaseURL)
	v.SetDefault("tmdb.language", d.TMDB.Language)
	v.SetDefault("tmdb.timeout", d.TMDB.Timeout)

	v.SetDefault("mediainfo.mediainfo_path", "")
	v.SetDefault("mediainfo.ffprobe_path", "")

	v.SetDefault("security.secret", "")
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
