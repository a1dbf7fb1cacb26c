// Package utils holds configuration and small numeric helpers shared by the
// executor and the machine.
package utils

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ErrInvalidOpts is returned by Validate for out-of-range options.
var ErrInvalidOpts = errors.New("invalid options")

// SplitOpts bounds the size of deferred shards.
type SplitOpts struct {
	// Generic threshold for fixed-cost precompiles (events per shard)
	Deferred int `mapstructure:"deferred"`

	// Keccak sponge threshold, counted in absorbed blocks
	Keccak int `mapstructure:"keccak"`

	// SHA-256 extend threshold (events per shard)
	ShaExtend int `mapstructure:"sha_extend"`

	// SHA-256 compress threshold (events per shard)
	ShaCompress int `mapstructure:"sha_compress"`

	// Global memory initialize/finalize events per shard
	Memory int `mapstructure:"memory"`
}

// NewSplitOpts derives every threshold from the generic deferred threshold,
// scaled by the relative row cost of each precompile.
func NewSplitOpts(deferredThreshold int) SplitOpts {
	return SplitOpts{
		Deferred:    deferredThreshold,
		Keccak:      8 * deferredThreshold / 24,
		ShaExtend:   32 * deferredThreshold / 48,
		ShaCompress: 32 * deferredThreshold / 80,
		Memory:      64 * deferredThreshold,
	}
}

// Validate checks that every threshold is positive
func (o SplitOpts) Validate() error {
	checks := []struct {
		name  string
		value int
	}{
		{"deferred", o.Deferred},
		{"keccak", o.Keccak},
		{"sha_extend", o.ShaExtend},
		{"sha_compress", o.ShaCompress},
		{"memory", o.Memory},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return fmt.Errorf("%w: %s threshold must be positive, got %d", ErrInvalidOpts, c.name, c.value)
		}
	}
	return nil
}

const (
	// DefaultShardSize is the number of cycles in an execution shard
	DefaultShardSize = 1 << 22
	// DefaultShardBatchSize is the number of shards handed to trace generation at once
	DefaultShardBatchSize = 16
	// DefaultDeferredSplitThreshold is the generic deferred threshold
	DefaultDeferredSplitThreshold = 1 << 15
)

// CoreOpts configures sharding for a whole run.
type CoreOpts struct {
	ShardSize      int       `mapstructure:"shard_size"`
	ShardBatchSize int       `mapstructure:"shard_batch_size"`
	Split          SplitOpts `mapstructure:"split"`

	// Number of trace generation workers, 0 means one per CPU
	Workers int `mapstructure:"workers"`
}

// DefaultCoreOpts returns the default sharding configuration
func DefaultCoreOpts() *CoreOpts {
	return &CoreOpts{
		ShardSize:      DefaultShardSize,
		ShardBatchSize: DefaultShardBatchSize,
		Split:          NewSplitOpts(DefaultDeferredSplitThreshold),
	}
}

// Validate checks if the configuration is valid
func (c *CoreOpts) Validate() error {
	if c.ShardSize <= 0 || !IsPowerOfTwo(c.ShardSize) {
		return fmt.Errorf("%w: shard size must be a positive power of two, got %d", ErrInvalidOpts, c.ShardSize)
	}

	if c.ShardBatchSize <= 0 {
		return fmt.Errorf("%w: shard batch size must be positive, got %d", ErrInvalidOpts, c.ShardBatchSize)
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalidOpts, c.Workers)
	}

	return c.Split.Validate()
}

// WithShardSize sets the shard size
func (c *CoreOpts) WithShardSize(size int) *CoreOpts {
	c.ShardSize = size
	return c
}

// WithShardBatchSize sets the shard batch size
func (c *CoreOpts) WithShardBatchSize(size int) *CoreOpts {
	c.ShardBatchSize = size
	return c
}

// WithSplitOpts sets the deferred split thresholds
func (c *CoreOpts) WithSplitOpts(opts SplitOpts) *CoreOpts {
	c.Split = opts
	return c
}

// WithWorkers sets the number of trace generation workers
func (c *CoreOpts) WithWorkers(n int) *CoreOpts {
	c.Workers = n
	return c
}

// Clone creates a copy of the configuration
func (c *CoreOpts) Clone() *CoreOpts {
	clone := *c
	return &clone
}

// Environment variables overriding the options file.
const (
	EnvShardSize              = "SHARD_SIZE"
	EnvShardBatchSize         = "SHARD_BATCH_SIZE"
	EnvDeferredSplitThreshold = "DEFERRED_SPLIT_THRESHOLD"
)

func newOptsViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("shard_size", DefaultShardSize)
	v.SetDefault("shard_batch_size", DefaultShardBatchSize)
	v.SetDefault("split.deferred", DefaultDeferredSplitThreshold)
	v.SetDefault("workers", 0)
	return v
}

// decodeCoreOpts unmarshals the merged settings. A per-precompile threshold
// that no source sets is derived from the resolved deferred threshold, so
// DEFERRED_SPLIT_THRESHOLD rescales only the thresholds the file leaves out.
func decodeCoreOpts(v *viper.Viper) (*CoreOpts, error) {
	opts := &CoreOpts{}
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOpts, err)
	}

	derived := NewSplitOpts(opts.Split.Deferred)
	for _, t := range []struct {
		key   string
		field *int
		value int
	}{
		{"split.keccak", &opts.Split.Keccak, derived.Keccak},
		{"split.sha_extend", &opts.Split.ShaExtend, derived.ShaExtend},
		{"split.sha_compress", &opts.Split.ShaCompress, derived.ShaCompress},
		{"split.memory", &opts.Split.Memory, derived.Memory},
	} {
		if !v.IsSet(t.key) {
			*t.field = t.value
		}
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// ParseCoreOpts decodes YAML options on top of the defaults. The environment
// is not consulted.
func ParseCoreOpts(data []byte) (*CoreOpts, error) {
	v := newOptsViper()
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to parse options: %w", err)
	}
	return decodeCoreOpts(v)
}

// LoadCoreOpts resolves options from the defaults, the YAML file at path
// (skipped when path is empty) and then SHARD_SIZE, SHARD_BATCH_SIZE and
// DEFERRED_SPLIT_THRESHOLD, each layer overriding the previous one.
func LoadCoreOpts(path string) (*CoreOpts, error) {
	v := newOptsViper()
	for key, env := range map[string]string{
		"shard_size":       EnvShardSize,
		"shard_batch_size": EnvShardBatchSize,
		"split.deferred":   EnvDeferredSplitThreshold,
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read options file: %w", err)
		}
	}
	return decodeCoreOpts(v)
}
