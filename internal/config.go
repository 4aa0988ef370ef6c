package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/docpages/internal/markdown"
	"github.com/starford/docpages/internal/models"
	"github.com/starford/docpages/internal/sitemap"
)

// StaticDir is the directory under the content root served at /static/.
const StaticDir = "wwwroot"

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig       `yaml:"app"`
	Site       SiteConfig              `yaml:"site"`
	Content    ContentConfig           `yaml:"content"`
	Markdown   MarkdownConfig          `yaml:"markdown"`
	Cache      CacheConfig             `yaml:"cache"`
	LiveReload LiveReloadConfig        `yaml:"live_reload"`
	SiteMap    []models.PageDescriptor `yaml:"sitemap"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Markdown.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.LiveReload.Validate(); err != nil {
		return err
	}
	if err := sitemap.ValidatePages(c.SiteMap); err != nil {
		return fmt.Errorf("sitemap: %w", err)
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig holds presentation settings for the page shell.
type SiteConfig struct {
	Title string `yaml:"title"`
}

// ContentConfig points at the content root holding markdown/ and wwwroot/.
type ContentConfig struct {
	Root string `yaml:"root"`
}

// StaticPath returns the static file directory under the content root.
func (c *ContentConfig) StaticPath() string {
	return filepath.Join(c.Root, StaticDir)
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Root, validation.Required),
	)
}

// MarkdownConfig holds renderer settings.
type MarkdownConfig struct {
	// HighlightStyle is a chroma style name, e.g. "github" or "monokai".
	HighlightStyle string `yaml:"highlight_style"`
}

// Validate validates the markdown configuration.
func (c *MarkdownConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.HighlightStyle, validation.By(func(v any) error {
			if s, _ := v.(string); s != "" && !markdown.HasStyle(s) {
				return fmt.Errorf("unknown highlight style %q", s)
			}
			return nil
		})),
	)
}

// CacheConfig holds response cache lifetimes.
type CacheConfig struct {
	PageMaxAge   time.Duration `yaml:"page_max_age"`
	StaticMaxAge time.Duration `yaml:"static_max_age"`
}

// Validate validates the cache configuration.
func (c *CacheConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.PageMaxAge, validation.Min(time.Duration(0))),
		validation.Field(&c.StaticMaxAge, validation.Min(time.Duration(0))),
	)
}

// LiveReloadConfig controls the content watcher and browser reload events.
type LiveReloadConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the live reload configuration.
func (c *LiveReloadConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.Required, validation.Min(100*time.Millisecond)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Content: ContentConfig{
			Root: ".",
		},
		Markdown: MarkdownConfig{
			HighlightStyle: markdown.DefaultHighlightStyle,
		},
		Cache: CacheConfig{
			PageMaxAge:   6 * time.Minute,
			StaticMaxAge: time.Hour,
		},
		LiveReload: LiveReloadConfig{
			Enabled:  false,
			Throttle: 2 * time.Second,
		},
	}
}
