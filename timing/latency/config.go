// Package latency holds the simulation's configurable timing assumptions:
// the run-length bound, the trace destination, and the cache geometry and
// latencies replayed by post-hoc analysis. The pipeline itself executes
// every instruction in a single cycle; these knobs never change that.
package latency

import (
	"encoding/json"
	"fmt"
	"os"
)

// SimConfig holds the simulator run parameters and the memory-hierarchy
// model used by the trace analyzer.
type SimConfig struct {
	// MaxCycles bounds a timing run. Zero means run until halt.
	MaxCycles uint64 `json:"max_cycles"`

	// TracePath, when non-empty, streams the per-cycle trace CSV there.
	TracePath string `json:"trace_path"`

	// ICacheSize is the instruction cache capacity in bytes.
	// Default: 2KB.
	ICacheSize int `json:"icache_size"`

	// ICacheAssociativity is the instruction cache way count.
	// Default: 2-way.
	ICacheAssociativity int `json:"icache_associativity"`

	// ICacheBlockSize is the instruction cache line size in bytes.
	// Default: 16 bytes (four instruction words).
	ICacheBlockSize int `json:"icache_block_size"`

	// ICacheHitLatency is the modeled instruction fetch hit cost in
	// cycles. Default: 1 cycle.
	ICacheHitLatency uint64 `json:"icache_hit_latency"`

	// ICacheMissLatency is the modeled instruction fetch miss cost in
	// cycles. Default: 20 cycles.
	ICacheMissLatency uint64 `json:"icache_miss_latency"`

	// DCacheSize is the data cache capacity in bytes. Default: 2KB.
	DCacheSize int `json:"dcache_size"`

	// DCacheAssociativity is the data cache way count. Default: 4-way.
	DCacheAssociativity int `json:"dcache_associativity"`

	// DCacheBlockSize is the data cache line size in bytes.
	// Default: 16 bytes.
	DCacheBlockSize int `json:"dcache_block_size"`

	// DCacheHitLatency is the modeled data access hit cost in cycles.
	// Default: 1 cycle.
	DCacheHitLatency uint64 `json:"dcache_hit_latency"`

	// DCacheMissLatency is the modeled data access miss cost in cycles.
	// Default: 20 cycles.
	DCacheMissLatency uint64 `json:"dcache_miss_latency"`
}

// DefaultSimConfig returns a SimConfig with the default values: an
// unbounded run, no trace, and small split caches sized for the kind of
// embedded core this pipeline models.
func DefaultSimConfig() *SimConfig {
	return &SimConfig{
		MaxCycles:           0,
		TracePath:           "",
		ICacheSize:          2 * 1024,
		ICacheAssociativity: 2,
		ICacheBlockSize:     16,
		ICacheHitLatency:    1,
		ICacheMissLatency:   20,
		DCacheSize:          2 * 1024,
		DCacheAssociativity: 4,
		DCacheBlockSize:     16,
		DCacheHitLatency:    1,
		DCacheMissLatency:   20,
	}
}

// LoadConfig loads a SimConfig from a JSON file. Fields absent from the
// file keep their default values.
func LoadConfig(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sim config file: %w", err)
	}

	config := DefaultSimConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse sim config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a SimConfig to a JSON file.
func (c *SimConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize sim config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sim config file: %w", err)
	}

	return nil
}

// Validate checks the cache geometry and latency values.
func (c *SimConfig) Validate() error {
	if err := validateCache("icache",
		c.ICacheSize, c.ICacheAssociativity, c.ICacheBlockSize,
		c.ICacheHitLatency, c.ICacheMissLatency); err != nil {
		return err
	}
	return validateCache("dcache",
		c.DCacheSize, c.DCacheAssociativity, c.DCacheBlockSize,
		c.DCacheHitLatency, c.DCacheMissLatency)
}

func validateCache(name string, size, assoc, block int, hit, miss uint64) error {
	if size <= 0 {
		return fmt.Errorf("%s_size must be > 0", name)
	}
	if assoc <= 0 {
		return fmt.Errorf("%s_associativity must be > 0", name)
	}
	if block <= 0 || block%4 != 0 {
		return fmt.Errorf("%s_block_size must be a positive multiple of 4", name)
	}
	if size%(assoc*block) != 0 {
		return fmt.Errorf("%s_size must be a multiple of associativity * block size", name)
	}
	if hit == 0 {
		return fmt.Errorf("%s_hit_latency must be > 0", name)
	}
	if hit > miss {
		return fmt.Errorf("%s_hit_latency must be <= %s_miss_latency", name, name)
	}
	return nil
}

// Clone returns a deep copy of the SimConfig.
func (c *SimConfig) Clone() *SimConfig {
	clone := *c
	return &clone
}
