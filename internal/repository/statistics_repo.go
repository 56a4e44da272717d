package repository

import (
	"context"
	"fmt"

	"acqplan/internal/access"
	"acqplan/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatisticsRepository aggregates requests for the dashboard. Every query
// is restricted by the caller's visibility scope.
type StatisticsRepository interface {
	StatusCounts(ctx context.Context, scope access.Filter) ([]model.StatusCount, error)
	SumValue(ctx context.Context, scope access.Filter, statuses ...string) (decimal.Decimal, error)
	CountInStatus(ctx context.Context, scope access.Filter, statuses ...string) (int64, error)
	Recent(ctx context.Context, scope access.Filter, limit int) ([]model.Request, error)
	TopDepartments(ctx context.Context, scope access.Filter, limit int) ([]model.DepartmentRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) scoped(ctx context.Context, scope access.Filter) *gorm.DB {
	return scope.Apply(GetDB(ctx, r.db).Model(&model.Request{}))
}

func (r *statisticsRepository) StatusCounts(ctx context.Context, scope access.Filter) ([]model.StatusCount, error) {
	var counts []model.StatusCount
	if err := r.scoped(ctx, scope).
		Select("requests.status AS status, COUNT(*) AS count").
		Group("requests.status").
		Order("requests.status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count requests by status: %w", err)
	}
	return counts, nil
}

// SumValue totals request values, optionally only for the given statuses.
func (r *statisticsRepository) SumValue(ctx context.Context, scope access.Filter, statuses ...string) (decimal.Decimal, error) {
	var result struct {
		Value decimal.Decimal
	}
	query := r.scoped(ctx, scope)
	if len(statuses) > 0 {
		query = query.Where("requests.status IN ?", statuses)
	}
	if err := query.Select("COALESCE(SUM(requests.total_value), 0) AS value").Scan(&result).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum request values: %w", err)
	}
	return result.Value, nil
}

func (r *statisticsRepository) CountInStatus(ctx context.Context, scope access.Filter, statuses ...string) (int64, error) {
	var n int64
	err := r.scoped(ctx, scope).Where("requests.status IN ?", statuses).Count(&n).Error
	return n, err
}

func (r *statisticsRepository) Recent(ctx context.Context, scope access.Filter, limit int) ([]model.Request, error) {
	var requests []model.Request
	if err := r.scoped(ctx, scope).
		Preload("User").
		Preload("Department").
		Order("requests.created_at DESC").
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *statisticsRepository) TopDepartments(ctx context.Context, scope access.Filter, limit int) ([]model.DepartmentRanking, error) {
	var rankings []model.DepartmentRanking
	if err := r.scoped(ctx, scope).
		Select("departments.id AS department_id, departments.name AS department_name, COUNT(requests.id) AS request_count, COALESCE(SUM(requests.total_value), 0) AS total_value").
		Joins("JOIN departments ON departments.id = requests.department_id").
		Group("departments.id, departments.name").
		Order("total_value DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top departments: %w", err)
	}
	return rankings, nil
}
