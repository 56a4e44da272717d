package service

import (
	"context"
	"fmt"
	"strings"

	"acqplan/internal/access"
	"acqplan/internal/apperr"
	"acqplan/internal/model"
	"acqplan/internal/repository"
)

type SettingDTO struct {
	Key         string `json:"key" binding:"required,max=100"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

type UpdateSettingsDTO struct {
	Settings []SettingDTO `json:"settings" binding:"required,min=1,dive"`
}

type SettingService interface {
	List(ctx context.Context) ([]model.Setting, error)
	Update(ctx context.Context, actor access.Actor, dto UpdateSettingsDTO) ([]model.Setting, error)
}

type settingService struct {
	tx    repository.TransactionManager
	repo  repository.SettingRepository
	audit AuditService
}

func NewSettingService(tx repository.TransactionManager, repo repository.SettingRepository, audit AuditService) SettingService {
	return &settingService{tx: tx, repo: repo, audit: audit}
}

func (s *settingService) List(ctx context.Context) ([]model.Setting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	return settings, nil
}

// Update upserts every setting of the batch in one transaction.
func (s *settingService) Update(ctx context.Context, actor access.Actor, dto UpdateSettingsDTO) ([]model.Setting, error) {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		for _, in := range dto.Settings {
			key := strings.TrimSpace(in.Key)
			if key == "" {
				return apperr.Validation("setting key is required")
			}
			if err := s.repo.Upsert(ctx, &model.Setting{Key: key, Value: in.Value, Description: in.Description}); err != nil {
				return fmt.Errorf("failed to save setting %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, in := range dto.Settings {
		s.audit.Record(ctx, actor.ID, model.ActionUpdateSetting, strings.TrimSpace(in.Key), strings.TrimSpace(in.Key), in)
	}
	return s.List(ctx)
}
