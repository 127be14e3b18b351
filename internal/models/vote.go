package models

import (
	"time"
)

// SubjectType identifies which entity a vote targets. One ledger table
// serves all four kinds so the toggle/switch rules cannot drift between them.
type SubjectType string

const (
	SubjectChallenge      SubjectType = "challenge"
	SubjectSolution       SubjectType = "solution"
	SubjectGroupChallenge SubjectType = "group_challenge"
	SubjectGroupSolution  SubjectType = "group_solution"
)

func (s SubjectType) Valid() bool {
	switch s {
	case SubjectChallenge, SubjectSolution, SubjectGroupChallenge, SubjectGroupSolution:
		return true
	}
	return false
}

// Vote holds at most one row per (subject_type, subject_id, user_id).
// The composite unique index is what the cast transaction relies on.
type Vote struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	SubjectType SubjectType `gorm:"type:varchar(20);not null;uniqueIndex:idx_subject_voter" json:"subject_type"`
	SubjectID   uint        `gorm:"not null;uniqueIndex:idx_subject_voter;index" json:"subject_id"`
	UserID      uint        `gorm:"not null;uniqueIndex:idx_subject_voter;index" json:"user_id"`
	IsUpvote    bool        `gorm:"not null" json:"is_upvote"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
