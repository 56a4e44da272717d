package service

import (
	"errors"
	"fmt"
	"time"

	"acqplan/internal/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

func formatTime(t time.Time) string { return t.Format(timeLayout) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(timeLayout)
	return &s
}

func idPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// lookupErr turns gorm's not-found into a NotFound error for the named entity.
func lookupErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("%s not found", entity)
	}
	return fmt.Errorf("failed to load %s: %w", entity, err)
}

// ParseID parses a path or body id, reporting a validation error on bad input.
func ParseID(raw, entity string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid %s id", entity)
	}
	return id, nil
}

// parseOptionalID parses an optional id; empty input yields nil.
func parseOptionalID(raw *string, entity string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := ParseID(*raw, entity)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return page, limit
}
