package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GoalStatus is the lifecycle state of a sleep goal.
type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusPaused    GoalStatus = "paused"
)

type SleepGoal struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	TargetHours     float64        `gorm:"not null" json:"targetHours"`
	Bedtime         string         `gorm:"type:varchar(5)" json:"bedtime,omitempty"`
	WakeTime        string         `gorm:"type:varchar(5)" json:"wakeTime,omitempty"`
	ConsistencyDays int            `gorm:"type:smallint;not null" json:"consistencyDays"`
	StartDate       datatypes.Date `gorm:"not null" json:"startDate"`
	Status          GoalStatus     `gorm:"type:varchar(16);not null;default:'active'" json:"status"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (SleepGoal) TableName() string {
	return "sleep_goals"
}

// CreateGoalRequest is the request body for creating a sleep goal.
// @Description Request payload for a new sleep goal.
type CreateGoalRequest struct {
	// Target nightly sleep in hours
	TargetHours float64 `json:"targetHours" validate:"required,gte=1,lte=14" example:"8"`
	// Planned bedtime (HH:MM)
	Bedtime string `json:"bedtime,omitempty" validate:"omitempty,clock" example:"22:00"`
	// Planned wake time (HH:MM)
	WakeTime string `json:"wakeTime,omitempty" validate:"omitempty,clock" example:"06:00"`
	// Number of recent nights the goal is evaluated over
	ConsistencyDays int `json:"consistencyDays" validate:"required,gte=1,lte=60" example:"7"`
	// First day the goal applies to
	StartDate time.Time `json:"startDate" validate:"required" example:"2025-12-01T00:00:00Z"`
}

// UpdateGoalRequest is the request body for updating a sleep goal.
// All fields are optional.
type UpdateGoalRequest struct {
	TargetHours     *float64    `json:"targetHours,omitempty" validate:"omitempty,gte=1,lte=14"`
	Bedtime         *string     `json:"bedtime,omitempty" validate:"omitempty,clock"`
	WakeTime        *string     `json:"wakeTime,omitempty" validate:"omitempty,clock"`
	ConsistencyDays *int        `json:"consistencyDays,omitempty" validate:"omitempty,gte=1,lte=60"`
	Status          *GoalStatus `json:"status,omitempty" validate:"omitempty,oneof=active completed paused"`
}

// GoalResponse is a goal with its computed progress.
// @Description Sleep goal with progress against recent logs.
type GoalResponse struct {
	SleepGoal
	// Percentage of evaluated nights meeting the target (0-100)
	Progress float64 `json:"progress" example:"65"`
	// Consecutive most recent nights meeting the target
	Streak int `json:"streak" example:"3"`
}
