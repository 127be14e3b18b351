package models

import (
	"time"
)

// Tag names are matched exactly; "Mobility" and "mobility" are distinct rows.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;unique" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type ChallengeTag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChallengeID uint      `gorm:"not null;index;uniqueIndex:idx_challenge_tag" json:"challenge_id"`
	Challenge   Challenge `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"challenge"`
	TagID       uint      `gorm:"not null;index;uniqueIndex:idx_challenge_tag" json:"tag_id"`
	Tag         Tag       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"tag"`
	CreatedAt   time.Time `json:"created_at"`
}
