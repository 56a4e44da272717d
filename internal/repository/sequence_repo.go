package repository

import (
	"context"

	"acqplan/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository hands out gap-free numbers per named counter.
type SequenceRepository interface {
	// Next increments the counter and returns the new value. The row is
	// created with seed on first use. Call it inside the transaction that
	// consumes the number so concurrent callers serialize on the row.
	Next(ctx context.Context, name string, seed int64) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, name string, seed int64) (int64, error) {
	db := GetDB(ctx, r.db)

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Sequence{Name: name, Value: seed}).Error; err != nil {
		return 0, err
	}

	if err := db.Model(&model.Sequence{}).Where("name = ?", name).
		Update("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, err
	}

	var seq model.Sequence
	if err := db.First(&seq, "name = ?", name).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}
