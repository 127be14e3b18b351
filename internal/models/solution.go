package models

import (
	"time"
)

// Solution answers a site challenge. A non-nil ParentID makes it a reply to
// another solution of the same challenge; replies are limited to one level.
type Solution struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Sid         string    `gorm:"uniqueIndex;size:8;not null" json:"sid"`
	ChallengeID uint      `gorm:"not null;index" json:"challenge_id"`
	Challenge   Challenge `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"challenge"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ParentID    *uint     `gorm:"index" json:"parent_id"` // Nullable for top-level solutions
	Parent      *Solution `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"parent"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
