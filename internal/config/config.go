package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Gesture  GestureConfig  `mapstructure:"gesture"`
	Triage   TriageConfig   `mapstructure:"triage"`
	Haptics  HapticsConfig  `mapstructure:"haptics"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// GestureConfig holds swipe distances in pixels. Terminal mouse events arrive
// in cells, so CellWidth and CellHeight scale them to pixels.
type GestureConfig struct {
	ShortThreshold float64 `mapstructure:"short_threshold" validate:"gt=0"`
	LongThreshold  float64 `mapstructure:"long_threshold" validate:"gtfield=ShortThreshold"`
	SnapZone       float64 `mapstructure:"snap_zone" validate:"gte=0"`
	SnapOvershoot  float64 `mapstructure:"snap_overshoot" validate:"gte=0"`
	CellWidth      float64 `mapstructure:"cell_width" validate:"gt=0"`
	CellHeight     float64 `mapstructure:"cell_height" validate:"gt=0"`
}

// TriageConfig holds the triage loop's timings and heuristics.
type TriageConfig struct {
	UndoWindow         time.Duration `mapstructure:"undo_window" validate:"gt=0"`
	AdvanceDelay       time.Duration `mapstructure:"advance_delay" validate:"gt=0"`
	DefaultSnoozeHours float64       `mapstructure:"default_snooze_hours" validate:"gt=0,lte=12"`
	SkipThreshold      int           `mapstructure:"skip_threshold" validate:"gte=1"`
	PromoKeywords      []string      `mapstructure:"promo_keywords" validate:"dive,required"`
	PromoMaxDistance   int           `mapstructure:"promo_max_distance" validate:"gte=0,lte=3"`
}

type HapticsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Bell rings the terminal bell for every pulse.
	Bell bool `mapstructure:"bell"`
}

type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the server.
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// Path returns the config file location. TRIAGE_CONFIG overrides the default
// under ~/.config/triage.
func Path() string {
	if p := os.Getenv("TRIAGE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "triage", "config.toml")
}

func setDefaults(v *viper.Viper) {
	home := os.Getenv("HOME")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "triage", "triage.db"))
	v.SetDefault("gesture.short_threshold", 100.0)
	v.SetDefault("gesture.long_threshold", 200.0)
	v.SetDefault("gesture.snap_zone", 20.0)
	v.SetDefault("gesture.snap_overshoot", 10.0)
	v.SetDefault("gesture.cell_width", 10.0)
	v.SetDefault("gesture.cell_height", 20.0)
	v.SetDefault("triage.undo_window", 3*time.Second)
	v.SetDefault("triage.advance_delay", 300*time.Millisecond)
	v.SetDefault("triage.default_snooze_hours", 1.0)
	v.SetDefault("triage.skip_threshold", 3)
	v.SetDefault("triage.promo_keywords", []string{"deals", "offers", "sale", "promo", "marketing", "newsletter", "noreply"})
	v.SetDefault("triage.promo_max_distance", 1)
	v.SetDefault("haptics.enabled", true)
	v.SetDefault("haptics.bell", false)
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "triage", "triage.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", "")
}

// Load reads configuration from file and env. Env var overrides use prefix
// TRIAGE_, so gesture.long_threshold is TRIAGE_GESTURE_LONG_THRESHOLD.
func Load() (Config, error) {
	return load(Path())
}

func load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	v.SetConfigFile(path)

	v.SetEnvPrefix("TRIAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine; a broken one is not
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

var validate = validator.New()

// Validate checks field ranges and the relations between gesture distances.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(e.Namespace()), e.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	g := c.Gesture
	if g.SnapZone >= g.LongThreshold-g.ShortThreshold {
		return fmt.Errorf("invalid config: gesture.snap_zone %.0f must be smaller than the gap between thresholds", g.SnapZone)
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if
// needed.
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("gesture.short_threshold", cfg.Gesture.ShortThreshold)
	v.Set("gesture.long_threshold", cfg.Gesture.LongThreshold)
	v.Set("gesture.snap_zone", cfg.Gesture.SnapZone)
	v.Set("gesture.snap_overshoot", cfg.Gesture.SnapOvershoot)
	v.Set("gesture.cell_width", cfg.Gesture.CellWidth)
	v.Set("gesture.cell_height", cfg.Gesture.CellHeight)
	v.Set("triage.undo_window", cfg.Triage.UndoWindow.String())
	v.Set("triage.advance_delay", cfg.Triage.AdvanceDelay.String())
	v.Set("triage.default_snooze_hours", cfg.Triage.DefaultSnoozeHours)
	v.Set("triage.skip_threshold", cfg.Triage.SkipThreshold)
	v.Set("triage.promo_keywords", cfg.Triage.PromoKeywords)
	v.Set("triage.promo_max_distance", cfg.Triage.PromoMaxDistance)
	v.Set("haptics.enabled", cfg.Haptics.Enabled)
	v.Set("haptics.bell", cfg.Haptics.Bell)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("metrics.addr", cfg.Metrics.Addr)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
