package repository

import (
	"context"
	"errors"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdviceTraceRepository interface {
	Create(ctx context.Context, trace *domain.AdviceTrace) error
	// GetByID only finds traces issued to userID.
	GetByID(ctx context.Context, userID uuid.UUID, traceID string) (*domain.AdviceTrace, error)
}

type adviceTraceRepository struct {
	db *gorm.DB
}

func NewAdviceTraceRepository(db *gorm.DB) AdviceTraceRepository {
	return &adviceTraceRepository{db: db}
}

func (r *adviceTraceRepository) Create(ctx context.Context, trace *domain.AdviceTrace) error {
	return r.db.WithContext(ctx).Create(trace).Error
}

func (r *adviceTraceRepository) GetByID(ctx context.Context, userID uuid.UUID, traceID string) (*domain.AdviceTrace, error) {
	var trace domain.AdviceTrace
	err := r.db.WithContext(ctx).First(&trace, "trace_id = ? AND user_id = ?", traceID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &trace, nil
}
