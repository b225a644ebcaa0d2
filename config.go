package showcase

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// ExtendBehavior selects what extend mode does.
type ExtendBehavior string

const (
	ExtendFullscreen ExtendBehavior = "fullscreen" // player covers the viewport
	ExtendModal      ExtendBehavior = "modal"      // enlarged overlay inside the page
	ExtendDisabled   ExtendBehavior = "disabled"   // extend mode cannot be entered
)

// Config is the configuration surface of a Viewer. It is read from TOML
// by LoadConfig; zero numeric fields are replaced by DefaultConfig values.
type Config struct {
	EventPrefix    string         `toml:"event_prefix"`
	LoadStrategy   LoadStrategy   `toml:"load_strategy"`
	MinMediaWidth  float64        `toml:"min_media_width"`
	MaxMediaWidth  float64        `toml:"max_media_width"` // 0 = unbounded
	PreloadRange   int            `toml:"preload_range"`
	VisibleItems   int            `toml:"visible_items"`
	Infinite       bool           `toml:"infinite_carousel"`
	CategoryFilter string         `toml:"category_filter"`
	ExtendBehavior ExtendBehavior `toml:"extend_behavior"`
	ReverseSpin    bool           `toml:"reverse_spin"`
	AutoSpin       bool           `toml:"auto_spin"`
	MaxItemsShown  int            `toml:"max_items_shown"`
	MaxZoom        float64        `toml:"max_zoom"`
	SlideDuration  time.Duration  `toml:"slide_duration"`
	FetchAttempts  int            `toml:"fetch_attempts"`
	Debug          bool           `toml:"debug"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		EventPrefix:    DefaultEventPrefix,
		LoadStrategy:   StrategyBalanced,
		PreloadRange:   1,
		VisibleItems:   1,
		ExtendBehavior: ExtendFullscreen,
		MaxZoom:        DefaultMaxZoom,
		SlideDuration:  DefaultSlideDuration,
		FetchAttempts:  DefaultFetchAttempts,
	}
}

// LoadConfig reads a TOML file over DefaultConfig. A missing file is not
// an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PreloadRange <= 0 {
		c.PreloadRange = d.PreloadRange
	}
	if c.VisibleItems <= 0 {
		c.VisibleItems = d.VisibleItems
	}
	if c.ExtendBehavior == "" {
		c.ExtendBehavior = d.ExtendBehavior
	}
	if c.MaxZoom == 0 {
		c.MaxZoom = d.MaxZoom
	}
	if c.SlideDuration <= 0 {
		c.SlideDuration = d.SlideDuration
	}
	if c.FetchAttempts <= 0 {
		c.FetchAttempts = d.FetchAttempts
	}
	return c
}

// Validate reports configuration values no component could honor.
func (c Config) Validate() error {
	var errs []error
	if c.MinMediaWidth < 0 {
		errs = append(errs, fmt.Errorf("min_media_width %v is negative", c.MinMediaWidth))
	}
	if c.MaxMediaWidth != 0 && c.MaxMediaWidth < c.MinMediaWidth {
		errs = append(errs, fmt.Errorf("max_media_width %v below min_media_width %v", c.MaxMediaWidth, c.MinMediaWidth))
	}
	if c.MaxZoom < 1 {
		errs = append(errs, fmt.Errorf("max_zoom %v below 1", c.MaxZoom))
	}
	if c.MaxItemsShown < 0 {
		errs = append(errs, fmt.Errorf("max_items_shown %d is negative", c.MaxItemsShown))
	}
	switch c.ExtendBehavior {
	case ExtendFullscreen, ExtendModal, ExtendDisabled:
	default:
		errs = append(errs, fmt.Errorf("unknown extend_behavior %q", c.ExtendBehavior))
	}
	if _, err := CompileCategoryFilter(c.CategoryFilter); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) catalogOptions(custom []CustomItem) CatalogOptions {
	return CatalogOptions{
		CategoryFilter: c.CategoryFilter,
		CustomItems:    custom,
		MaxItemsShown:  c.MaxItemsShown,
	}
}

func (c Config) carouselOptions() CarouselOptions {
	return CarouselOptions{
		Infinite:         c.Infinite,
		PreloadRange:     c.PreloadRange,
		VisibleItemCount: c.VisibleItems,
		SlideDuration:    c.SlideDuration,
	}
}
