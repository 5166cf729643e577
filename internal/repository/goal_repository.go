package repository

import (
	"context"
	"errors"

	"github.com/blaisecz/sleep-ai/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GoalRepository interface {
	Create(ctx context.Context, goal *domain.SleepGoal) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.SleepGoal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SleepGoal, error)
	Update(ctx context.Context, goal *domain.SleepGoal) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type goalRepository struct {
	db *gorm.DB
}

func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *domain.SleepGoal) error {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(goal).Error
}

// GetByID only finds goals owned by userID.
func (r *goalRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.SleepGoal, error) {
	var goal domain.SleepGoal
	err := r.db.WithContext(ctx).First(&goal, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &goal, nil
}

func (r *goalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SleepGoal, error) {
	var goals []domain.SleepGoal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (r *goalRepository) Update(ctx context.Context, goal *domain.SleepGoal) error {
	return r.db.WithContext(ctx).Save(goal).Error
}

func (r *goalRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.SleepGoal{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
