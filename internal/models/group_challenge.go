package models

import (
	"time"
)

// GroupChallenge is a challenge visible only to members of its group.
type GroupChallenge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Pid         string    `gorm:"uniqueIndex;size:8;not null" json:"pid"`
	GroupID     uint      `gorm:"not null;index" json:"group_id"`
	Group       Group     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"group"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	SolutionCount int `gorm:"-" json:"solution_count"`
}

// GroupSolution mirrors Solution for group challenges.
type GroupSolution struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Sid              string         `gorm:"uniqueIndex;size:8;not null" json:"sid"`
	GroupChallengeID uint           `gorm:"not null;index" json:"group_challenge_id"`
	GroupChallenge   GroupChallenge `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"group_challenge"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	User             User           `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID         *uint          `gorm:"index" json:"parent_id"`
	Parent           *GroupSolution `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`
	Content          string         `gorm:"type:text;not null" json:"content"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
