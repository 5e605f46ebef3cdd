// Package config collects the per-algorithm option structs and the
// aggregate Config the runner threads through a pipeline (spec.md §6),
// built with the functional-options pattern.
package config

import (
	"github.com/katalvlaran/synchro/algo/brute"
	"github.com/katalvlaran/synchro/concurrency"
)

// PresortMode controls Beam's optional state relabeling before search.
type PresortMode int

const (
	PresortNone PresortMode = iota
	PresortIndeg
)

// BeamConfig holds Beam's tunables (spec.md §6).
type BeamConfig struct {
	BeamSize      int
	Dynamic       bool
	MinBeamSize   int
	MaxBeamSize   int
	BeamExactRatio float64
	MaxIter       int
	Presort       PresortMode
}

// BeamOption mutates a BeamConfig.
type BeamOption func(*BeamConfig)

// DefaultBeamConfig returns Beam's defaults; beamSize defaults to
// floor(log2(n)) when n >= 2, and to 1 for smaller n.
func DefaultBeamConfig(n int) BeamConfig {
	size := 1
	for (1 << uint(size+1)) <= n {
		size++
	}
	if n <= 1 {
		size = 1
	}

	return BeamConfig{
		BeamSize:       size,
		BeamExactRatio: 0.01,
		MaxIter:        -1,
		Presort:        PresortNone,
	}
}

func WithBeamSize(size int) BeamOption { return func(c *BeamConfig) { c.BeamSize = size } }
func WithDynamicBeam(min, max int) BeamOption {
	return func(c *BeamConfig) {
		c.Dynamic = true
		c.MinBeamSize = min
		c.MaxBeamSize = max
	}
}
func WithBeamExactRatio(ratio float64) BeamOption {
	return func(c *BeamConfig) { c.BeamExactRatio = ratio }
}
func WithMaxIter(iter int) BeamOption   { return func(c *BeamConfig) { c.MaxIter = iter } }
func WithPresort(p PresortMode) BeamOption { return func(c *BeamConfig) { c.Presort = p } }

// NewBeamConfig applies opts over the n-derived defaults.
func NewBeamConfig(n int, opts ...BeamOption) BeamConfig {
	c := DefaultBeamConfig(n)
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// BruteConfig holds Brute's tunables.
type BruteConfig struct {
	MaxN int
}

type BruteOption func(*BruteConfig)

func DefaultBruteConfig() BruteConfig { return BruteConfig{MaxN: 20} }

// WithMaxN sets Brute's state-count ceiling, clamped to
// brute.MaxSupportedN — a caller asking for more would silently overflow
// Brute's uint64 mask rather than failing the way spec.md §7 requires for
// out-of-range configuration, so the clamp is enforced here instead of
// trusting the caller.
func WithMaxN(maxN int) BruteOption {
	return func(c *BruteConfig) {
		if maxN > brute.MaxSupportedN {
			maxN = brute.MaxSupportedN
		}
		c.MaxN = maxN
	}
}

func NewBruteConfig(opts ...BruteOption) BruteConfig {
	c := DefaultBruteConfig()
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// EppsteinConfig holds Eppstein's tunables.
type EppsteinConfig struct {
	TransitionTables bool
	FindWord         bool
}

type EppsteinOption func(*EppsteinConfig)

func DefaultEppsteinConfig() EppsteinConfig { return EppsteinConfig{} }

func WithTransitionTables(v bool) EppsteinOption {
	return func(c *EppsteinConfig) { c.TransitionTables = v }
}
func WithFindWord(v bool) EppsteinOption { return func(c *EppsteinConfig) { c.FindWord = v } }

func NewEppsteinConfig(opts ...EppsteinOption) EppsteinConfig {
	c := DefaultEppsteinConfig()
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// ExactConfig holds Exact's tunables.
type ExactConfig struct {
	DFS               bool
	DFSShortcut       bool
	StrictMemoryLimit bool
	MaxMemoryMB       int
	DFSMinListSize    int
	BFSSmallListSize  func(n int) int
}

type ExactOption func(*ExactConfig)

func DefaultExactConfig() ExactConfig {
	return ExactConfig{
		DFS:              true,
		DFSShortcut:      true,
		MaxMemoryMB:      2048,
		DFSMinListSize:   10000,
		BFSSmallListSize: func(n int) int { return 16 * n },
	}
}

func WithStrictMemoryLimit(v bool) ExactOption {
	return func(c *ExactConfig) { c.StrictMemoryLimit = v }
}
func WithMaxMemoryMB(mb int) ExactOption { return func(c *ExactConfig) { c.MaxMemoryMB = mb } }
func WithDFS(v bool) ExactOption         { return func(c *ExactConfig) { c.DFS = v } }
func WithDFSShortcut(v bool) ExactOption { return func(c *ExactConfig) { c.DFSShortcut = v } }
func WithDFSMinListSize(size int) ExactOption {
	return func(c *ExactConfig) { c.DFSMinListSize = size }
}

func NewExactConfig(opts ...ExactOption) ExactConfig {
	c := DefaultExactConfig()
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// ReduceConfig holds Reduce's tunables.
type ReduceConfig struct {
	MinN              int
	ListSizeThreshold func(n int) int
}

type ReduceOption func(*ReduceConfig)

func DefaultReduceConfig() ReduceConfig {
	return ReduceConfig{
		MinN:              80,
		ListSizeThreshold: func(n int) int { return 16 * n },
	}
}

func WithMinN(minN int) ReduceOption { return func(c *ReduceConfig) { c.MinN = minN } }
func WithListSizeThreshold(f func(n int) int) ReduceOption {
	return func(c *ReduceConfig) { c.ListSizeThreshold = f }
}

func NewReduceConfig(opts ...ReduceOption) ReduceConfig {
	c := DefaultReduceConfig()
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

// Config is the aggregate pipeline configuration (spec.md §6).
type Config struct {
	UpperBound     int
	Threads        int
	GPU            bool
	GPUMaxMemoryMB int
	Beam           BeamConfig
	Brute          BruteConfig
	Eppstein       EppsteinConfig
	Exact          ExactConfig
	Reduce         ReduceConfig
}

// Option mutates a Config.
type Option func(*Config)

// New builds a Config from n-derived defaults plus opts.
func New(n int, opts ...Option) Config {
	c := Config{
		Threads:        concurrency.DefaultWorkers(),
		GPUMaxMemoryMB: 2048,
		Beam:           DefaultBeamConfig(n),
		Brute:          DefaultBruteConfig(),
		Eppstein:       DefaultEppsteinConfig(),
		Exact:          DefaultExactConfig(),
		Reduce:         DefaultReduceConfig(),
	}
	for _, opt := range opts {
		opt(&c)
	}

	return c
}

func WithUpperBound(u int) Option  { return func(c *Config) { c.UpperBound = u } }
func WithThreads(t int) Option     { return func(c *Config) { c.Threads = t } }
func WithGPU(enabled bool, maxMemoryMB int) Option {
	return func(c *Config) {
		c.GPU = enabled
		c.GPUMaxMemoryMB = maxMemoryMB
	}
}
