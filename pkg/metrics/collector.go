package metrics

import (
	"sync"
)

// Collector collects viterbi-decoder operational metrics: one process can
// run several decoders concurrently (one per trellis profile, or one per
// input file), so every counter here is aggregated across all of them.
type Collector struct {
	mu sync.RWMutex

	activeDecoders map[string]bool // key: decoder instance label

	blocksDecoded    uint64
	blocksTerminated uint64
	blocksSpilled    uint64 // blocks whose OUTPUT phase overflowed into the save buffer

	symbolsConsumed uint64
	bitsProduced    uint64

	decodeErrors uint64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		activeDecoders: make(map[string]bool),
	}
}

// DecoderStarted records a decoder instance coming online.
func (c *Collector) DecoderStarted(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeDecoders[label] = true
}

// DecoderStopped records a decoder instance going offline.
func (c *Collector) DecoderStopped(label string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.activeDecoders, label)
}

// BlockDecoded records one completed OUTPUT phase (spec.md §4.E).
func (c *Collector) BlockDecoded(terminated bool, spilled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocksDecoded++
	if terminated {
		c.blocksTerminated++
	}
	if spilled {
		c.blocksSpilled++
	}
}

// SymbolsConsumed accumulates per-call symbols_consumed.
func (c *Collector) SymbolsConsumed(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.symbolsConsumed += uint64(n)
}

// BitsProduced accumulates per-call bits_produced.
func (c *Collector) BitsProduced(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bitsProduced += uint64(n)
}

// DecodeError records a construction or argument error (spec.md §7).
func (c *Collector) DecodeError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decodeErrors++
}

// Reset resets the gauge-like metrics (useful for testing). Cumulative
// counters are left untouched.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activeDecoders = make(map[string]bool)
}

// Getters for metrics

func (c *Collector) GetActiveDecoders() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.activeDecoders)
}

func (c *Collector) GetBlocksDecoded() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocksDecoded
}

func (c *Collector) GetBlocksTerminated() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocksTerminated
}

func (c *Collector) GetBlocksSpilled() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocksSpilled
}

func (c *Collector) GetSymbolsConsumed() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.symbolsConsumed
}

func (c *Collector) GetBitsProduced() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bitsProduced
}

func (c *Collector) GetDecodeErrors() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decodeErrors
}
