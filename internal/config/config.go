package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Feed     FeedConfig     `mapstructure:"feed"`
	List     ListConfig     `mapstructure:"list"`
	UI       UIConfig       `mapstructure:"ui"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type FeedConfig struct {
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	RefreshInterval   time.Duration `mapstructure:"refresh_interval"`
	DefaultRetryAfter time.Duration `mapstructure:"default_retry_after"`
	UserAgent         string        `mapstructure:"user_agent"`
	MaxConcurrent     int           `mapstructure:"max_concurrent"`
}

// ListConfig drives the infinite list component.
type ListConfig struct {
	PageSize             int           `mapstructure:"page_size"`
	Throttle             time.Duration `mapstructure:"throttle"`
	EndReachedThreshold  float64       `mapstructure:"end_reached_threshold"`
	DisablePullToRefresh bool          `mapstructure:"disable_pull_to_refresh"`
	DisableLoadMore      bool          `mapstructure:"disable_load_more"`
	DisableFillPage      bool          `mapstructure:"disable_fill_page"`
	EmptyText            string        `mapstructure:"empty_text"`
	LoadingText          string        `mapstructure:"loading_text"`
	NoMoreText           string        `mapstructure:"no_more_text"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit       string `mapstructure:"quit"`
	Search     string `mapstructure:"search"`
	Refresh    string `mapstructure:"refresh"`
	ToggleRead string `mapstructure:"toggle_read"`
	Back       string `mapstructure:"back"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Path:        filepath.Join(homeDir, ".pullfeed.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(homeDir, ".pullfeed", "index.bleve"),
		},
		Feed: FeedConfig{
			HTTPTimeout:       30 * time.Second,
			RefreshInterval:   5 * time.Minute,
			DefaultRetryAfter: 15 * time.Minute,
			UserAgent:         "pullfeed/1.0 (https://github.com/pders01/pullfeed)",
			MaxConcurrent:     5,
		},
		List: ListConfig{
			PageSize:            20,
			Throttle:            100 * time.Millisecond,
			EndReachedThreshold: 0.1,
			EmptyText:           "No articles yet",
			LoadingText:         "Loading...",
			NoMoreText:          "No more data",
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#EF4444",
				Success:   "#10B981",
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:       "q",
				Search:     "s",
				Refresh:    "r",
				ToggleRead: "m",
				Back:       "esc",
			},
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}

// flatten lists every leaf key with its value. Defaults are registered per
// leaf so a file that sets one key in a section keeps the others.
func flatten(cfg *Config) map[string]any {
	return map[string]any{
		"database.path":         cfg.Database.Path,
		"database.timeout":      cfg.Database.Timeout,
		"database.search_index": cfg.Database.SearchIndex,

		"feed.http_timeout":        cfg.Feed.HTTPTimeout,
		"feed.refresh_interval":    cfg.Feed.RefreshInterval,
		"feed.default_retry_after": cfg.Feed.DefaultRetryAfter,
		"feed.user_agent":          cfg.Feed.UserAgent,
		"feed.max_concurrent":      cfg.Feed.MaxConcurrent,

		"list.page_size":               cfg.List.PageSize,
		"list.throttle":                cfg.List.Throttle,
		"list.end_reached_threshold":   cfg.List.EndReachedThreshold,
		"list.disable_pull_to_refresh": cfg.List.DisablePullToRefresh,
		"list.disable_load_more":       cfg.List.DisableLoadMore,
		"list.disable_fill_page":       cfg.List.DisableFillPage,
		"list.empty_text":              cfg.List.EmptyText,
		"list.loading_text":            cfg.List.LoadingText,
		"list.no_more_text":            cfg.List.NoMoreText,

		"ui.colors.primary":   cfg.UI.Colors.Primary,
		"ui.colors.secondary": cfg.UI.Colors.Secondary,
		"ui.colors.accent":    cfg.UI.Colors.Accent,
		"ui.colors.text":      cfg.UI.Colors.Text,
		"ui.colors.muted":     cfg.UI.Colors.Muted,
		"ui.colors.error":     cfg.UI.Colors.Error,
		"ui.colors.success":   cfg.UI.Colors.Success,

		"keys.modifier":             cfg.Keys.Modifier,
		"keys.bindings.quit":        cfg.Keys.Bindings.Quit,
		"keys.bindings.search":      cfg.Keys.Bindings.Search,
		"keys.bindings.refresh":     cfg.Keys.Bindings.Refresh,
		"keys.bindings.toggle_read": cfg.Keys.Bindings.ToggleRead,
		"keys.bindings.back":        cfg.Keys.Bindings.Back,

		"log.level": cfg.Log.Level,
		"log.file":  cfg.Log.File,
	}
}

// DefaultPath is the config file location used when none is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "pullfeed", "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, value := range flatten(defaultConfig()) {
		v.SetDefault(key, value)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PULLFEED")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	expandPaths(&config)

	return &config, nil
}

// Validate rejects settings the list component cannot work with.
func (c *Config) Validate() error {
	if c.List.PageSize <= 0 {
		return fmt.Errorf("list.page_size must be positive, got %d", c.List.PageSize)
	}
	if c.List.Throttle < 0 {
		return fmt.Errorf("list.throttle must not be negative, got %s", c.List.Throttle)
	}
	if c.List.EndReachedThreshold < 0 || c.List.EndReachedThreshold > 1 {
		return fmt.Errorf("list.end_reached_threshold must be within [0,1], got %v", c.List.EndReachedThreshold)
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Log.File = expandPath(cfg.Log.File)
}

func Save(config *Config, path string) error {
	v := viper.New()

	for key, value := range flatten(config) {
		// Durations are written as strings so the TOML stays readable.
		if d, ok := value.(time.Duration); ok {
			value = d.String()
		}
		v.Set(key, value)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
