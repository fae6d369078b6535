// Package settings holds the command-line configuration shared by the
// lazy14 tools: a TOML file overridden by flags.
package settings

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"lazy14/pkg/lazyload"
)

type Settings struct {
	Container   string `toml:"container"`
	Placeholder string `toml:"placeholder"`
	Threshold   int    `toml:"threshold"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	LogLevel    string `toml:"log_level"`
}

// Default returns the settings used when neither a file nor a flag sets a
// value.
func Default() Settings {
	return Settings{
		Width:    800,
		Height:   600,
		LogLevel: "info",
	}
}

// LoadFile decodes the TOML file at path over s. Unknown keys are an error.
func LoadFile(path string, s *Settings) error {
	md, err := toml.DecodeFile(path, s)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Flag names understood by Override.
const (
	FlagContainer   = "container"
	FlagPlaceholder = "placeholder"
	FlagThreshold   = "threshold"
	FlagWidth       = "width"
	FlagHeight      = "height"
	FlagLogLevel    = "log-level"
)

// Override copies into s every field of flags whose flag was set on the
// command line, as reported by changed.
func Override(s *Settings, flags Settings, changed func(name string) bool) {
	if changed(FlagContainer) {
		s.Container = flags.Container
	}
	if changed(FlagPlaceholder) {
		s.Placeholder = flags.Placeholder
	}
	if changed(FlagThreshold) {
		s.Threshold = flags.Threshold
	}
	if changed(FlagWidth) {
		s.Width = flags.Width
	}
	if changed(FlagHeight) {
		s.Height = flags.Height
	}
	if changed(FlagLogLevel) {
		s.LogLevel = flags.LogLevel
	}
}

func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("viewport %dx%d must be positive", s.Width, s.Height)
	}
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// LazyOptions returns the lazy loader options for the container.
func (s Settings) LazyOptions() []lazyload.Option {
	return []lazyload.Option{
		lazyload.WithPlaceholder(s.Placeholder),
		lazyload.WithThreshold(s.Threshold),
	}
}

// InitLog parses and sets the log level.
func InitLog(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Errorf("Failed parsing log-level %s: %s", level, err)
		return err
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(lvl)
	return nil
}

// AddFlags registers the flags that map onto s, plus --config naming a
// TOML file.
func AddFlags(flags *pflag.FlagSet, s *Settings, config *string) {
	flags.StringVarP(&s.Container, FlagContainer, "c", s.Container, "scroll container: CSS selector or element id")
	flags.StringVar(&s.Placeholder, FlagPlaceholder, s.Placeholder, "placeholder image URL for images not loaded yet")
	flags.IntVarP(&s.Threshold, FlagThreshold, "t", s.Threshold, "preload threshold in pixels")
	flags.IntVar(&s.Width, FlagWidth, s.Width, "viewport width in pixels")
	flags.IntVar(&s.Height, FlagHeight, s.Height, "viewport height in pixels")
	flags.StringVar(&s.LogLevel, FlagLogLevel, s.LogLevel, "log level (panic, fatal, error, warn, info, debug, trace)")
	flags.StringVar(config, "config", "", "TOML config file; flags override its values")
}

// Resolve merges defaults, the config file and the flags that were set on
// the command line, in that order, validates the result and applies its
// log level.
func Resolve(flags *pflag.FlagSet, fromFlags Settings, config string) (Settings, error) {
	s := Default()
	if config != "" {
		if err := LoadFile(config, &s); err != nil {
			return s, err
		}
	}
	Override(&s, fromFlags, flags.Changed)
	if err := s.Validate(); err != nil {
		return s, err
	}
	if err := InitLog(s.LogLevel); err != nil {
		return s, err
	}
	return s, nil
}
