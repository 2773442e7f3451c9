package metrics

import "testing"

func TestNewCollector(t *testing.T) {
	collector := NewCollector()
	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
}

func TestCollector_DecoderLifecycle(t *testing.T) {
	collector := NewCollector()

	collector.DecoderStarted("trellis-a")
	if active := collector.GetActiveDecoders(); active != 1 {
		t.Errorf("expected 1 active decoder, got %d", active)
	}

	collector.DecoderStopped("trellis-a")
	if active := collector.GetActiveDecoders(); active != 0 {
		t.Errorf("expected 0 active decoders after stop, got %d", active)
	}
}

func TestCollector_BlockMetrics(t *testing.T) {
	collector := NewCollector()

	collector.BlockDecoded(true, false)
	collector.BlockDecoded(false, true)

	if got := collector.GetBlocksDecoded(); got != 2 {
		t.Errorf("GetBlocksDecoded() = %d, want 2", got)
	}
	if got := collector.GetBlocksTerminated(); got != 1 {
		t.Errorf("GetBlocksTerminated() = %d, want 1", got)
	}
	if got := collector.GetBlocksSpilled(); got != 1 {
		t.Errorf("GetBlocksSpilled() = %d, want 1", got)
	}
}

func TestCollector_ThroughputMetrics(t *testing.T) {
	collector := NewCollector()

	collector.SymbolsConsumed(12)
	collector.SymbolsConsumed(8)
	collector.BitsProduced(4)

	if got := collector.GetSymbolsConsumed(); got != 20 {
		t.Errorf("GetSymbolsConsumed() = %d, want 20", got)
	}
	if got := collector.GetBitsProduced(); got != 4 {
		t.Errorf("GetBitsProduced() = %d, want 4", got)
	}
}

func TestCollector_DecodeErrors(t *testing.T) {
	collector := NewCollector()
	collector.DecodeError()
	collector.DecodeError()
	if got := collector.GetDecodeErrors(); got != 2 {
		t.Errorf("GetDecodeErrors() = %d, want 2", got)
	}
}

func TestCollector_Reset(t *testing.T) {
	collector := NewCollector()

	collector.DecoderStarted("trellis-a")
	collector.BlockDecoded(true, false)

	collector.Reset()

	if collector.GetActiveDecoders() != 0 {
		t.Error("expected active decoders to be 0 after reset")
	}
	// Cumulative counters are not reset.
	if collector.GetBlocksDecoded() != 1 {
		t.Error("expected blocks decoded to survive reset")
	}
}

func TestCollector_Concurrent(t *testing.T) {
	collector := NewCollector()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(id int) {
			collector.DecoderStarted("trellis-a")
			collector.BlockDecoded(true, false)
			collector.SymbolsConsumed(100)
			done <- true
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if collector.GetBlocksDecoded() < 10 {
		t.Error("expected at least 10 blocks decoded")
	}
}
