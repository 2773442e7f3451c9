package database

import (
	"time"

	"gorm.io/gorm"
)

// BlockRepository handles BlockRecord database operations.
type BlockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new block repository.
func NewBlockRepository(db *gorm.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// Create adds a new block record.
func (r *BlockRepository) Create(b *BlockRecord) error {
	return r.db.Create(b).Error
}

// GetRecent retrieves the most recent N block records across all trellises.
func (r *BlockRepository) GetRecent(limit int) ([]BlockRecord, error) {
	var records []BlockRecord
	err := r.db.Order("decoded_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// GetRecentPaginated retrieves a page of block records ordered by most
// recent first, along with the total record count.
func (r *BlockRepository) GetRecentPaginated(page, perPage int) ([]BlockRecord, int64, error) {
	var records []BlockRecord
	var total int64

	if err := r.db.Model(&BlockRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * perPage
	err := r.db.Order("decoded_at DESC").Offset(offset).Limit(perPage).Find(&records).Error
	return records, total, err
}

// GetByTrellis retrieves the most recent N block records for one trellis.
func (r *BlockRepository) GetByTrellis(trellisName string, limit int) ([]BlockRecord, error) {
	var records []BlockRecord
	err := r.db.Where("trellis_name = ?", trellisName).
		Order("decoded_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// DeleteOlderThan deletes block records older than the given time.
func (r *BlockRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("decoded_at < ?", before).Delete(&BlockRecord{})
	return result.RowsAffected, result.Error
}
