package models

import (
	"time"
)

// Group is a private space. CreatedBy is the group admin.
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Gid         string    `gorm:"uniqueIndex;size:8;not null" json:"gid"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	CreatedBy   uint      `gorm:"not null;index" json:"created_by"`
	Creator     User      `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"creator"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	MemberCount int `gorm:"-" json:"member_count"`
}

type GroupMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   uint      `gorm:"not null;index;uniqueIndex:idx_group_member" json:"group_id"`
	Group     Group     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"group"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_group_member" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

type GroupInvitation struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	GroupID   uint             `gorm:"not null;index;uniqueIndex:idx_group_invitee" json:"group_id"`
	Group     Group            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"group"`
	InviteeID uint             `gorm:"not null;index;uniqueIndex:idx_group_invitee" json:"invitee_id"`
	Invitee   User             `gorm:"foreignKey:InviteeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"invitee"`
	InviterID uint             `gorm:"not null;index" json:"inviter_id"`
	Inviter   User             `gorm:"foreignKey:InviterID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"inviter"`
	Status    InvitationStatus `gorm:"type:varchar(10);default:'pending';not null" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
