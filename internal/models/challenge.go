package models

import (
	"time"
)

type Challenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Pid         string    `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Not database columns, filled at query time
	SolutionCount int   `gorm:"-" json:"solution_count"`
	Tags          []Tag `gorm:"-" json:"tags"`
}
