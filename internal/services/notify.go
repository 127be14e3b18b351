package services

import (
	"fmt"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"

	"gorm.io/gorm"
)

// NotificationService writes in-app notification rows and manages their
// read/delete lifecycle. Creation helpers never fail the caller's
// operation; a lost notification is logged by GORM, not propagated.
type NotificationService struct {
	db   *gorm.DB
	mail *MailService
}

func NewNotificationService(gdb *gorm.DB, mail *MailService) *NotificationService {
	return &NotificationService{db: gdb, mail: mail}
}

// NotifySolution tells a challenge owner their challenge got a solution.
func (s *NotificationService) NotifySolution(ownerID, actorID uint, challengeTitle, link string) {
	if ownerID == actorID {
		return
	}
	s.db.Create(&models.Notification{
		UserID:  ownerID,
		ActorID: &actorID,
		Type:    models.NotificationTypeSolution,
		Reason:  fmt.Sprintf("posted a solution on your challenge “%s” (%s)", challengeTitle, link),
	})
}

// NotifyReply tells a solution author someone replied, in-app and by mail.
func (s *NotificationService) NotifyReply(parentAuthorID, actorID uint, parentAuthorEmail, actorName, challengeTitle, replyText, link string) {
	if parentAuthorID == actorID {
		return
	}
	s.db.Create(&models.Notification{
		UserID:  parentAuthorID,
		ActorID: &actorID,
		Type:    models.NotificationTypeReply,
		Reason:  fmt.Sprintf("replied to your solution on “%s” (%s)", challengeTitle, link),
	})
	s.mail.SendReplyNotification(parentAuthorEmail, actorName, challengeTitle, replyText, link)
}

// NotifyInvite tells a user they were invited to a group, in-app and by mail.
func (s *NotificationService) NotifyInvite(inviteeID, inviterID uint, inviteeEmail, inviterName, groupName string) {
	s.db.Create(&models.Notification{
		UserID:  inviteeID,
		ActorID: &inviterID,
		Type:    models.NotificationTypeGroupInvite,
		Reason:  fmt.Sprintf("invited you to join the group “%s”", groupName),
	})
	s.mail.SendInvitationEmail(inviteeEmail, inviterName, groupName)
}

// List returns the user's notifications, newest first.
func (s *NotificationService) List(userID uint) ([]models.Notification, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	var notifications []models.Notification
	err := s.db.Preload("Actor").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Find(&notifications).Error
	if err != nil {
		return nil, persistencef(err)
	}
	return notifications, nil
}

// UnreadCount returns how many notifications the user has not read.
func (s *NotificationService) UnreadCount(userID uint) int64 {
	var count int64
	s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).Count(&count)
	return count
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(id, userID uint) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return persistencef(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFoundf("notification %d", id)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(userID uint) error {
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
	if err != nil {
		return persistencef(err)
	}
	return nil
}

// Delete removes one of the user's notifications.
func (s *NotificationService) Delete(id, userID uint) error {
	result := s.db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Notification{})
	if result.Error != nil {
		return persistencef(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFoundf("notification %d", id)
	}
	return nil
}
