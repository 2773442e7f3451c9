package database

import (
	"time"

	"gorm.io/gorm"
)

// BlockRecord represents one completed block decode (the OUTPUT phase of
// spec.md §4.E), kept for the dashboard's recent-activity view and for
// offline inspection of decode quality.
type BlockRecord struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	TrellisName     string    `gorm:"index;size:64" json:"trellis_name"`
	BlockBits       int       `gorm:"not null" json:"block_bits"`
	Terminated      bool      `gorm:"not null" json:"terminated"`
	Spilled         bool      `gorm:"not null" json:"spilled"`
	SymbolsConsumed int       `gorm:"not null" json:"symbols_consumed"`
	BitsProduced    int       `gorm:"not null" json:"bits_produced"`
	TerminalMetric  float64   `json:"terminal_metric"`
	DecodedAt       time.Time `gorm:"index;not null" json:"decoded_at"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies the table name for BlockRecord.
func (BlockRecord) TableName() string {
	return "block_records"
}

// BeforeCreate hook to ensure timestamps are set.
func (b *BlockRecord) BeforeCreate(tx *gorm.DB) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now()
	}
	if b.DecodedAt.IsZero() {
		b.DecodedAt = time.Now()
	}
	return nil
}
