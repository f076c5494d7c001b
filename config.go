package morph

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/tanema/gween/ease"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownEase is returned when an easing name has no gween function.
	ErrUnknownEase = errors.New("morph: unknown ease")
	// ErrInvalidConfig is returned for config values outside their range.
	ErrInvalidConfig = errors.New("morph: invalid config")
)

// TransitionConfig tunes the animator of one root. Durations are seconds.
//
// A zero field built in code means "use the default". Keys written in YAML
// keep their value even when it is zero, so backdrop_alpha: 0 or
// open_duration: 0 survive merging.
type TransitionConfig struct {
	OpenDuration  float32 `yaml:"open_duration"`
	CloseDuration float32 `yaml:"close_duration"`
	Ease          string  `yaml:"ease"`
	BackdropAlpha float64 `yaml:"backdrop_alpha"`

	set transitionFields
}

// transitionFields records which TransitionConfig keys a YAML document set.
type transitionFields uint8

const (
	fieldOpenDuration transitionFields = 1 << iota
	fieldCloseDuration
	fieldEase
	fieldBackdropAlpha
)

func (f transitionFields) has(bit transitionFields) bool { return f&bit != 0 }

// UnmarshalYAML decodes the keys present in value over c and marks them
// set. Unknown keys are rejected here because a custom unmarshaler does not
// inherit the decoder's KnownFields setting.
func (c *TransitionConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: expected a mapping", ErrInvalidConfig, value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		var err error
		switch key.Value {
		case "open_duration":
			err = val.Decode(&c.OpenDuration)
			c.set |= fieldOpenDuration
		case "close_duration":
			err = val.Decode(&c.CloseDuration)
			c.set |= fieldCloseDuration
		case "ease":
			err = val.Decode(&c.Ease)
			c.set |= fieldEase
		case "backdrop_alpha":
			err = val.Decode(&c.BackdropAlpha)
			c.set |= fieldBackdropAlpha
		default:
			return fmt.Errorf("%w: line %d: unknown field %q", ErrInvalidConfig, key.Line, key.Value)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key.Value, err)
		}
	}
	return nil
}

// DefaultTransitionConfig returns the settings used when none are given.
func DefaultTransitionConfig() TransitionConfig {
	return TransitionConfig{
		OpenDuration:  0.35,
		CloseDuration: 0.3,
		Ease:          "InOutCubic",
		BackdropAlpha: 0.6,
	}
}

// Validate checks durations, backdrop alpha and the easing name.
func (c TransitionConfig) Validate() error {
	if c.OpenDuration < 0 || c.CloseDuration < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	if c.BackdropAlpha < 0 || c.BackdropAlpha > 1 {
		return fmt.Errorf("%w: backdrop_alpha %v outside [0, 1]", ErrInvalidConfig, c.BackdropAlpha)
	}
	if _, err := EaseFunc(c.Ease); err != nil {
		return err
	}
	return nil
}

// merge fills the fields of c that are zero and were not set explicitly
// from base.
func (c TransitionConfig) merge(base TransitionConfig) TransitionConfig {
	if c.OpenDuration == 0 && !c.set.has(fieldOpenDuration) {
		c.OpenDuration = base.OpenDuration
	}
	if c.CloseDuration == 0 && !c.set.has(fieldCloseDuration) {
		c.CloseDuration = base.CloseDuration
	}
	if c.Ease == "" && !c.set.has(fieldEase) {
		c.Ease = base.Ease
	}
	if c.BackdropAlpha == 0 && !c.set.has(fieldBackdropAlpha) {
		c.BackdropAlpha = base.BackdropAlpha
	}
	c.set |= base.set
	return c
}

// easeFuncs maps config names to gween easing functions.
var easeFuncs = map[string]ease.TweenFunc{
	"Linear":       ease.Linear,
	"InQuad":       ease.InQuad,
	"OutQuad":      ease.OutQuad,
	"InOutQuad":    ease.InOutQuad,
	"InCubic":      ease.InCubic,
	"OutCubic":     ease.OutCubic,
	"InOutCubic":   ease.InOutCubic,
	"InQuart":      ease.InQuart,
	"OutQuart":     ease.OutQuart,
	"InOutQuart":   ease.InOutQuart,
	"InSine":       ease.InSine,
	"OutSine":      ease.OutSine,
	"InOutSine":    ease.InOutSine,
	"InExpo":       ease.InExpo,
	"OutExpo":      ease.OutExpo,
	"InOutExpo":    ease.InOutExpo,
	"OutBack":      ease.OutBack,
	"InOutBack":    ease.InOutBack,
	"OutElastic":   ease.OutElastic,
	"OutBounce":    ease.OutBounce,
	"InOutBounce":  ease.InOutBounce,
	"InOutCirc":    ease.InOutCirc,
	"OutCirc":      ease.OutCirc,
	"InOutElastic": ease.InOutElastic,
}

// EaseFunc resolves an easing name. The empty name means Linear.
func EaseFunc(name string) (ease.TweenFunc, error) {
	if name == "" {
		return ease.Linear, nil
	}
	fn, ok := easeFuncs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEase, name)
	}
	return fn, nil
}

// EaseNames lists the accepted easing names in sorted order.
func EaseNames() []string {
	names := make([]string, 0, len(easeFuncs))
	for name := range easeFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config is the YAML document read by LoadConfig.
//
//	viewport: {width: 640, height: 480}
//	debug: false
//	transition: {open_duration: 0.35, ease: InOutCubic}
//	roots:
//	  work: {close_duration: 0.2}
type Config struct {
	Viewport   ViewportConfig              `yaml:"viewport"`
	Debug      bool                        `yaml:"debug"`
	Transition TransitionConfig            `yaml:"transition"`
	Roots      map[string]TransitionConfig `yaml:"roots"`
}

// ViewportConfig is the logical screen size in pixels.
type ViewportConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultConfig returns a 640x480 viewport with default transitions.
func DefaultConfig() Config {
	return Config{
		Viewport:   ViewportConfig{Width: 640, Height: 480},
		Transition: DefaultTransitionConfig(),
	}
}

// LoadConfig parses a YAML config. Missing values take their defaults and
// unknown keys are rejected.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Transition = cfg.Transition.merge(DefaultTransitionConfig())
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		return Config{}, fmt.Errorf("%w: viewport %dx%d", ErrInvalidConfig, cfg.Viewport.Width, cfg.Viewport.Height)
	}
	if err := cfg.Transition.Validate(); err != nil {
		return Config{}, fmt.Errorf("transition: %w", err)
	}
	for id, rc := range cfg.Roots {
		if err := rc.merge(cfg.Transition).Validate(); err != nil {
			return Config{}, fmt.Errorf("root %q: %w", id, err)
		}
	}
	return cfg, nil
}

// LoadConfigFile reads and parses the YAML config at path.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return LoadConfig(data)
}

// ForRoot returns the settings for rootID: its override merged over the
// document-wide transition block.
func (c Config) ForRoot(rootID string) TransitionConfig {
	base := c.Transition.merge(DefaultTransitionConfig())
	if rc, ok := c.Roots[rootID]; ok {
		return rc.merge(base)
	}
	return base
}
