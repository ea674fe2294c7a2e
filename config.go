package rtree

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
)

// SplitStrategy selects the algorithm used to partition an overflowing node.
// The numeric values are stored in persisted trees and must not change.
type SplitStrategy uint8

const (
	// Linear picks seeds by normalised separation along a single axis. It is
	// the cheapest strategy.
	Linear SplitStrategy = 1
	// Quadratic picks the pair of seeds that would waste the most area if
	// grouped together.
	Quadratic SplitStrategy = 2
	// RStar applies forced reinsertion before splitting, and splits along the
	// axis with the smallest margin.
	RStar SplitStrategy = 3
	// Hilbert keeps node entries ordered by the Hilbert value of their
	// centers and splits at the midpoint of that order.
	Hilbert SplitStrategy = 4
	// Exhaustive tries every bipartition and keeps the one with the smallest
	// combined area. Only usable for small nodes.
	Exhaustive SplitStrategy = 5
)

const maxExhaustiveEntries = 16

var strategyNames = map[SplitStrategy]string{
	Linear:     "linear",
	Quadratic:  "quadratic",
	RStar:      "rstar",
	Hilbert:    "hilbert",
	Exhaustive: "exhaustive",
}

func (s SplitStrategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SplitStrategy(%d)", uint8(s))
}

// Valid reports whether s names a known strategy.
func (s SplitStrategy) Valid() bool {
	_, ok := strategyNames[s]
	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (s SplitStrategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: unknown split strategy %d", ErrInvalidConfig, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SplitStrategy) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for k, v := range strategyNames {
		if v == name {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("%w: unknown split strategy %q", ErrInvalidConfig, string(text))
}

// Config holds the construction parameters of a Tree.
type Config struct {
	// Dims is the number of dimensions of every box stored in the tree.
	Dims int `mapstructure:"dims"`
	// MinEntries (m) and MaxEntries (M) bound the number of children of every
	// non-root node. MinEntries must not exceed MaxEntries/2.
	MinEntries int `mapstructure:"min_entries"`
	MaxEntries int `mapstructure:"max_entries"`

	Split SplitStrategy `mapstructure:"split"`

	// ReinsertFraction is the share of MaxEntries removed and reinserted on
	// the first overflow of a level. RStar only.
	ReinsertFraction float64 `mapstructure:"reinsert_fraction"`

	// HilbertBits is the grid precision per axis used to compute Hilbert
	// values. Zero picks the largest precision that fits in 64 bits.
	HilbertBits int `mapstructure:"hilbert_bits"`
	// ExtentMin and ExtentMax describe the expected coordinate range used to
	// discretise centers onto the Hilbert grid. When unset, an order
	// preserving mapping of the whole float64 range is used instead.
	ExtentMin []float64 `mapstructure:"extent_min"`
	ExtentMax []float64 `mapstructure:"extent_max"`

	Logger zerolog.Logger `mapstructure:"-"`

	// Equal compares stored objects when deleting. When nil, comparable
	// values are compared with == and others with reflect.DeepEqual.
	Equal func(a, b any) bool `mapstructure:"-"`
}

// DefaultConfig returns a quadratic-split configuration for the given number
// of dimensions.
func DefaultConfig(dims int) Config {
	return Config{
		Dims:             dims,
		MinEntries:       6,
		MaxEntries:       16,
		Split:            Quadratic,
		ReinsertFraction: 0.3,
		Logger:           zerolog.Nop(),
	}
}

// Validate checks that the configuration describes a usable tree.
func (c Config) Validate() error {
	if c.Dims < 1 {
		return fmt.Errorf("%w: dims must be at least 1, got %d", ErrInvalidConfig, c.Dims)
	}
	if c.MaxEntries < 2 {
		return fmt.Errorf("%w: max entries must be at least 2, got %d", ErrInvalidConfig, c.MaxEntries)
	}
	if c.MinEntries < 1 || c.MinEntries > c.MaxEntries/2 {
		return fmt.Errorf("%w: min entries must be between 1 and half of the max entries, got %d", ErrInvalidConfig, c.MinEntries)
	}
	if !c.Split.Valid() {
		return fmt.Errorf("%w: unknown split strategy %d", ErrInvalidConfig, uint8(c.Split))
	}
	if c.Split == Exhaustive && c.MaxEntries > maxExhaustiveEntries {
		return fmt.Errorf("%w: exhaustive split supports at most %d max entries", ErrInvalidConfig, maxExhaustiveEntries)
	}
	if c.Split == RStar && (c.ReinsertFraction <= 0 || c.ReinsertFraction > 0.5) {
		return fmt.Errorf("%w: reinsert fraction must be in (0, 0.5], got %v", ErrInvalidConfig, c.ReinsertFraction)
	}
	if c.Split == Hilbert && (c.HilbertBits < 0 || c.HilbertBits > 64/c.Dims || c.Dims > 64) {
		return fmt.Errorf("%w: hilbert bits must be between 1 and %d", ErrInvalidConfig, 64/c.Dims)
	}
	if len(c.ExtentMin) != 0 || len(c.ExtentMax) != 0 {
		if len(c.ExtentMin) != c.Dims || len(c.ExtentMax) != c.Dims {
			return fmt.Errorf("%w: extent must have %d coordinates", ErrInvalidConfig, c.Dims)
		}
		for i := range c.ExtentMin {
			if !(c.ExtentMin[i] < c.ExtentMax[i]) {
				return fmt.Errorf("%w: extent min must be below extent max on axis %d", ErrInvalidConfig, i)
			}
		}
	}
	return nil
}

func (c Config) hilbertBits() int {
	if c.HilbertBits > 0 {
		return c.HilbertBits
	}
	b := 64 / c.Dims
	if b > 32 {
		b = 32
	}
	return b
}

func (c Config) reinsertCount() int {
	p := int(c.ReinsertFraction * float64(c.MaxEntries))
	if p < 1 {
		p = 1
	}
	return p
}

// DecodeConfig builds a Config from loosely typed key/value pairs, such as a
// decoded JSON document. Keys use the snake_case names of the mapstructure
// tags. Missing keys keep the DefaultConfig values.
func DecodeConfig(raw map[string]any) (Config, error) {
	dims := 2
	if v, ok := raw["dims"]; ok {
		if err := mapstructure.WeakDecode(v, &dims); err != nil {
			return Config{}, fmt.Errorf("%w: dims: %v", ErrInvalidConfig, err)
		}
	}
	cfg := DefaultConfig(dims)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			splitStrategyHook,
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &cfg,
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// splitStrategyHook accepts numeric strategy tags as well as names.
func splitStrategyHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(SplitStrategy(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return SplitStrategy(v), nil
	case int64:
		return SplitStrategy(v), nil
	case float64:
		return SplitStrategy(v), nil
	}
	return data, nil
}
