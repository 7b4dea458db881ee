package recorder

import "time"

const (
	// NumHashesPerBatch is the number of hashes the PohService applies per
	// lock acquisition. Larger batches raise the hash rate, smaller ones
	// shorten the wait of concurrent Record calls.
	NumHashesPerBatch uint64 = 128

	// DefaultTickCacheSize ...
	DefaultTickCacheSize = 1024

	// DefaultEntryChannelSize ...
	DefaultEntryChannelSize = 4096
)

// PohConfig controls the pace of the chain.
type PohConfig struct {
	// HashesPerTick is the number of hashes between two ticks. Zero disables
	// hashing: ticks are then paced by TargetTickDuration alone.
	HashesPerTick uint64

	// TargetTickDuration is the expected time between two ticks.
	TargetTickDuration time.Duration
}

// NewDefaultPohConfig returns a PohConfig of 160 ticks per second.
func NewDefaultPohConfig() PohConfig {
	return PohConfig{
		HashesPerTick:      12500,
		TargetTickDuration: 6250 * time.Microsecond,
	}
}

// Config holds the Recorder's buffer sizes.
type Config struct {
	// TickCacheSize bounds the number of ticks held while no block can
	// receive them. The oldest ticks are dropped first.
	TickCacheSize int

	// EntryChannelSize is the capacity of the entry channel.
	EntryChannelSize int
}

// NewDefaultConfig ...
func NewDefaultConfig() Config {
	return Config{
		TickCacheSize:    DefaultTickCacheSize,
		EntryChannelSize: DefaultEntryChannelSize,
	}
}
