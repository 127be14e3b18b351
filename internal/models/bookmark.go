package models

import (
	"time"
)

// Bookmark saves a challenge for a user
type Bookmark struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index;uniqueIndex:idx_user_challenge" json:"user_id"`
	ChallengeID uint      `gorm:"not null;index;uniqueIndex:idx_user_challenge" json:"challenge_id"`
	Challenge   Challenge `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"challenge"`
	CreatedAt   time.Time `json:"created_at"`
}
