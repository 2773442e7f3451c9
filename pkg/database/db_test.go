package database

import (
	"os"
	"testing"
	"time"

	"github.com/dbehnke/viterbi-decoder/pkg/logger"
)

func TestNewDB(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_viterbi_decoder.db"
	defer func() { _ = os.Remove(dbPath) }()

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if db.db == nil {
		t.Error("Expected non-nil database connection")
	}
	if !db.db.Migrator().HasTable(&BlockRecord{}) {
		t.Error("Expected block_records table to be migrated")
	}
}

func TestNewDB_DefaultPath(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	defer func() { _ = os.Remove("viterbi-decoder.db") }()

	cfg := Config{}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database with default path: %v", err)
	}
	defer func() { _ = db.Close() }()

	if db.db == nil {
		t.Error("Expected non-nil database connection")
	}
}

func TestBlockRecord_BeforeCreate(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_block_record_create.db"
	defer func() { _ = os.Remove(dbPath) }()

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Create block record without timestamps.
	rec := &BlockRecord{
		TrellisName:     "rate-1-2-k3",
		BlockBits:       1024,
		Terminated:      true,
		SymbolsConsumed: 2054,
		BitsProduced:    128,
		TerminalMetric:  41.25,
	}

	repo := NewBlockRepository(db.GetDB())
	if err := repo.Create(rec); err != nil {
		t.Fatalf("Failed to create block record: %v", err)
	}

	if rec.ID == 0 {
		t.Error("Expected non-zero ID after creation")
	}
	if rec.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set by hook")
	}
	if rec.DecodedAt.IsZero() {
		t.Error("Expected DecodedAt to be set by hook")
	}
}

func TestBlockRepository_Create(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_repo_create.db"
	defer func() { _ = os.Remove(dbPath) }()

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewBlockRepository(db.GetDB())

	now := time.Now()
	rec := &BlockRecord{
		TrellisName:     "rate-1-2-k3",
		BlockBits:       1024,
		Terminated:      true,
		SymbolsConsumed: 2054,
		BitsProduced:    128,
		DecodedAt:       now,
	}

	if err := repo.Create(rec); err != nil {
		t.Fatalf("Failed to create block record: %v", err)
	}

	if rec.ID == 0 {
		t.Error("Expected non-zero ID after creation")
	}
}

func TestBlockRepository_GetRecent(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_get_recent.db"
	defer os.Remove(dbPath)

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := NewBlockRepository(db.GetDB())

	now := time.Now()
	for i := 0; i < 5; i++ {
		rec := &BlockRecord{
			TrellisName:     "rate-1-2-k3",
			BlockBits:       1024,
			Terminated:      true,
			SymbolsConsumed: 2054,
			BitsProduced:    128,
			DecodedAt:       now.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(rec); err != nil {
			t.Fatalf("Failed to create block record %d: %v", i, err)
		}
	}

	records, err := repo.GetRecent(3)
	if err != nil {
		t.Fatalf("Failed to get recent block records: %v", err)
	}

	if len(records) != 3 {
		t.Errorf("Expected 3 block records, got %d", len(records))
	}

	if len(records) >= 2 {
		if records[0].DecodedAt.Before(records[1].DecodedAt) {
			t.Error("Expected block records to be ordered by decoded_at DESC")
		}
	}
}

func TestBlockRepository_GetByTrellis(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_by_trellis.db"
	defer os.Remove(dbPath)

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := NewBlockRepository(db.GetDB())

	now := time.Now()
	targetTrellis := "rate-1-2-k3"

	for i := 0; i < 3; i++ {
		rec := &BlockRecord{
			TrellisName:     targetTrellis,
			BlockBits:       1024,
			Terminated:      true,
			SymbolsConsumed: 2054,
			BitsProduced:    128,
			DecodedAt:       now.Add(time.Duration(i) * time.Minute),
		}
		if err := repo.Create(rec); err != nil {
			t.Fatalf("Failed to create block record %d: %v", i, err)
		}
	}

	otherRec := &BlockRecord{
		TrellisName:     "rate-1-3-k7",
		BlockBits:       1024,
		Terminated:      true,
		SymbolsConsumed: 3072,
		BitsProduced:    128,
		DecodedAt:       now,
	}
	if err := repo.Create(otherRec); err != nil {
		t.Fatalf("Failed to create other block record: %v", err)
	}

	records, err := repo.GetByTrellis(targetTrellis, 10)
	if err != nil {
		t.Fatalf("Failed to get block records by trellis: %v", err)
	}

	if len(records) != 3 {
		t.Errorf("Expected 3 block records for trellis %q, got %d", targetTrellis, len(records))
	}

	for _, r := range records {
		if r.TrellisName != targetTrellis {
			t.Errorf("Expected trellis_name %q, got %q", targetTrellis, r.TrellisName)
		}
	}
}

func TestBlockRepository_DeleteOlderThan(t *testing.T) {
	log := logger.New(logger.Config{Level: "error"})
	dbPath := "/tmp/test_delete_old.db"
	defer os.Remove(dbPath)

	cfg := Config{Path: dbPath}
	db, err := NewDB(cfg, log)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	repo := NewBlockRepository(db.GetDB())

	now := time.Now()

	oldRec := &BlockRecord{
		TrellisName:     "rate-1-2-k3",
		BlockBits:       1024,
		Terminated:      true,
		SymbolsConsumed: 2054,
		BitsProduced:    128,
		DecodedAt:       now.Add(-48 * time.Hour),
	}
	if err := repo.Create(oldRec); err != nil {
		t.Fatalf("Failed to create old block record: %v", err)
	}

	recentRec := &BlockRecord{
		TrellisName:     "rate-1-2-k3",
		BlockBits:       1024,
		Terminated:      true,
		SymbolsConsumed: 2054,
		BitsProduced:    128,
		DecodedAt:       now.Add(-1 * time.Hour),
	}
	if err := repo.Create(recentRec); err != nil {
		t.Fatalf("Failed to create recent block record: %v", err)
	}

	deleted, err := repo.DeleteOlderThan(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Failed to delete old block records: %v", err)
	}

	if deleted != 1 {
		t.Errorf("Expected 1 deletion, got %d", deleted)
	}

	records, err := repo.GetRecent(10)
	if err != nil {
		t.Fatalf("Failed to get remaining block records: %v", err)
	}

	if len(records) != 1 {
		t.Errorf("Expected 1 remaining block record, got %d", len(records))
	}
}
