package repository

import (
	"context"

	"acqplan/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRepository is append-only: rows are never updated.
type HistoryRepository interface {
	Append(ctx context.Context, h *model.RequestHistory) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.RequestHistory, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, h *model.RequestHistory) error {
	return GetDB(ctx, r.db).Omit("CreatedBy").Create(h).Error
}

func (r *historyRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.RequestHistory, error) {
	var rows []model.RequestHistory
	if err := GetDB(ctx, r.db).
		Preload("CreatedBy").
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
