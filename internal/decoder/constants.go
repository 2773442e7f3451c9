package decoder

// Limits from spec.md §6.
const (
	MaxBlockSizeBits = 10_000_000
	MaxStreams       = 10
	BitsPerByte      = 8
)
