package services

import (
	"errors"
	"strings"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"gorm.io/gorm"
)

// GroupService manages private groups, membership, and invitations. The
// group's creator is its admin.
type GroupService struct {
	db *gorm.DB
}

func NewGroupService(gdb *gorm.DB) *GroupService {
	return &GroupService{db: gdb}
}

// Create makes a group and enrolls the creator as its first member.
func (s *GroupService) Create(creatorID uint, name, description string) (*models.Group, error) {
	if creatorID == 0 {
		return nil, ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("group name must not be empty")
	}

	group := models.Group{
		Gid:         utils.RandStringBytesMaskImpr(8),
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&group).Error; err != nil {
			return persistencef(err)
		}
		member := models.GroupMember{GroupID: group.ID, UserID: creatorID}
		if err := tx.Create(&member).Error; err != nil {
			return persistencef(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GetByGid loads a group for a member.
func (s *GroupService) GetByGid(gid string, viewerID uint) (*models.Group, error) {
	var group models.Group
	err := s.db.Preload("Creator").Where("gid = ?", gid).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("group %q", gid)
	}
	if err != nil {
		return nil, persistencef(err)
	}
	if err := s.RequireMember(group.ID, viewerID); err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.GroupMember{}).Where("group_id = ?", group.ID).Count(&count)
	group.MemberCount = int(count)
	return &group, nil
}

// ListForUser returns the groups the user belongs to.
func (s *GroupService) ListForUser(userID uint) ([]models.Group, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	var groups []models.Group
	err := s.db.Model(&models.Group{}).
		Joins("JOIN group_members ON group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Order("groups.created_at DESC").
		Find(&groups).Error
	if err != nil {
		return nil, persistencef(err)
	}
	return groups, nil
}

// Members lists a group's members for a member.
func (s *GroupService) Members(groupID, viewerID uint) ([]models.GroupMember, error) {
	if err := s.RequireMember(groupID, viewerID); err != nil {
		return nil, err
	}
	var members []models.GroupMember
	err := s.db.Preload("User").Where("group_id = ?", groupID).Order("created_at ASC").Find(&members).Error
	if err != nil {
		return nil, persistencef(err)
	}
	return members, nil
}

// IsMember reports whether the user belongs to the group.
func (s *GroupService) IsMember(groupID, userID uint) bool {
	if userID == 0 {
		return false
	}
	var count int64
	s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count)
	return count > 0
}

// IsAdmin reports whether the user created the group.
func (s *GroupService) IsAdmin(groupID, userID uint) bool {
	if userID == 0 {
		return false
	}
	var count int64
	s.db.Model(&models.Group{}).
		Where("id = ? AND created_by = ?", groupID, userID).Count(&count)
	return count > 0
}

// RequireMember converts a membership check into the error taxonomy.
func (s *GroupService) RequireMember(groupID, userID uint) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	if !s.IsMember(groupID, userID) {
		return ErrForbidden
	}
	return nil
}

// Invite creates a pending invitation; the inviter must be a member, the
// invitee must exist, not be a member, and not already hold a pending
// invitation.
func (s *GroupService) Invite(groupID, inviterID, inviteeID uint) (*models.GroupInvitation, error) {
	if err := s.RequireMember(groupID, inviterID); err != nil {
		return nil, err
	}

	var invitee models.User
	if err := s.db.First(&invitee, inviteeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("user %d", inviteeID)
		}
		return nil, persistencef(err)
	}
	if s.IsMember(groupID, inviteeID) {
		return nil, validationf("user %d is already a member", inviteeID)
	}

	invitation := models.GroupInvitation{
		GroupID:   groupID,
		InviteeID: inviteeID,
		InviterID: inviterID,
		Status:    models.InvitationPending,
	}
	if err := s.db.Create(&invitation).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationf("user %d was already invited", inviteeID)
		}
		return nil, persistencef(err)
	}
	return &invitation, nil
}

// Respond lets the invitee accept or decline a pending invitation;
// accepting creates the membership in the same transaction.
func (s *GroupService) Respond(invitationID, userID uint, accept bool) (*models.GroupInvitation, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}

	var invitation models.GroupInvitation
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Group").First(&invitation, invitationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("invitation %d", invitationID)
			}
			return persistencef(err)
		}
		if invitation.InviteeID != userID {
			return ErrForbidden
		}
		if invitation.Status != models.InvitationPending {
			return validationf("invitation already %s", invitation.Status)
		}

		status := models.InvitationDeclined
		if accept {
			status = models.InvitationAccepted
			member := models.GroupMember{GroupID: invitation.GroupID, UserID: userID}
			if err := tx.Create(&member).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
				return persistencef(err)
			}
		}
		if err := tx.Model(&invitation).Update("status", status).Error; err != nil {
			return persistencef(err)
		}
		invitation.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ListInvitations returns the user's pending invitations.
func (s *GroupService) ListInvitations(userID uint) ([]models.GroupInvitation, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	var invitations []models.GroupInvitation
	err := s.db.Preload("Group").Preload("Inviter").
		Where("invitee_id = ? AND status = ?", userID, models.InvitationPending).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, persistencef(err)
	}
	return invitations, nil
}

// Leave removes the user's membership. The admin cannot leave; they delete
// the group instead.
func (s *GroupService) Leave(groupID, userID uint) error {
	if userID == 0 {
		return ErrUnauthenticated
	}
	if s.IsAdmin(groupID, userID) {
		return validationf("the group admin cannot leave; delete the group instead")
	}
	result := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&models.GroupMember{})
	if result.Error != nil {
		return persistencef(result.Error)
	}
	if result.RowsAffected == 0 {
		return notFoundf("membership of user %d in group %d", userID, groupID)
	}
	return nil
}

// Delete removes a group and everything inside it; admin only.
func (s *GroupService) Delete(groupID, actorID uint) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var group models.Group
		if err := tx.First(&group, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("group %d", groupID)
			}
			return persistencef(err)
		}
		if group.CreatedBy != actorID {
			return ErrForbidden
		}

		var challengeIDs []uint
		if err := tx.Model(&models.GroupChallenge{}).Where("group_id = ?", groupID).
			Pluck("id", &challengeIDs).Error; err != nil {
			return persistencef(err)
		}
		if len(challengeIDs) > 0 {
			var solutionIDs []uint
			if err := tx.Model(&models.GroupSolution{}).Where("group_challenge_id IN ?", challengeIDs).
				Pluck("id", &solutionIDs).Error; err != nil {
				return persistencef(err)
			}
			if err := removeForSubject(tx, models.SubjectGroupSolution, solutionIDs...); err != nil {
				return persistencef(err)
			}
			if err := removeForSubject(tx, models.SubjectGroupChallenge, challengeIDs...); err != nil {
				return persistencef(err)
			}
			if err := tx.Where("group_challenge_id IN ?", challengeIDs).Delete(&models.GroupSolution{}).Error; err != nil {
				return persistencef(err)
			}
		}

		for _, m := range []interface{}{&models.GroupChallenge{}, &models.GroupMessage{}, &models.GroupInvitation{}, &models.GroupMember{}} {
			if err := tx.Where("group_id = ?", groupID).Delete(m).Error; err != nil {
				return persistencef(err)
			}
		}
		if err := tx.Delete(&group).Error; err != nil {
			return persistencef(err)
		}
		return nil
	})
}
