package services

import (
	"errors"
	"strings"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"gorm.io/gorm"
)

// ChallengeService owns site and group challenges: creation, the ownership
// gates on edit/delete, and the cascades that keep the ledger and the
// solution tables consistent on hard delete.
type ChallengeService struct {
	db     *gorm.DB
	tags   *TagService
	groups *GroupService
}

func NewChallengeService(gdb *gorm.DB, tags *TagService, groups *GroupService) *ChallengeService {
	return &ChallengeService{db: gdb, tags: tags, groups: groups}
}

// ChallengeInput carries user-supplied challenge fields.
type ChallengeInput struct {
	Title       string
	Description string
	Tags        []string
}

func (in *ChallengeInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return validationf("challenge title must not be empty")
	}
	return nil
}

// Create publishes a site challenge.
func (s *ChallengeService) Create(ownerID uint, in ChallengeInput) (*models.Challenge, error) {
	if ownerID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	challenge := models.Challenge{
		Pid:         utils.RandStringBytesMaskImpr(8),
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
	}
	if err := s.db.Create(&challenge).Error; err != nil {
		return nil, persistencef(err)
	}

	if len(in.Tags) > 0 {
		if err := s.tags.ReplaceForChallenge(challenge.ID, in.Tags); err != nil {
			return nil, err
		}
		tags, err := s.tags.ListForChallenge(challenge.ID)
		if err != nil {
			return nil, err
		}
		challenge.Tags = tags
	}
	return &challenge, nil
}

// Update edits a site challenge; only the owner may do this.
func (s *ChallengeService) Update(id, editorID uint, in ChallengeInput) (*models.Challenge, error) {
	if editorID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var challenge models.Challenge
	if err := s.db.First(&challenge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("challenge %d", id)
		}
		return nil, persistencef(err)
	}
	if challenge.UserID != editorID {
		return nil, ErrForbidden
	}

	challenge.Title = in.Title
	challenge.Description = in.Description
	if err := s.db.Save(&challenge).Error; err != nil {
		return nil, persistencef(err)
	}

	if in.Tags != nil {
		if err := s.tags.ReplaceForChallenge(challenge.ID, in.Tags); err != nil {
			return nil, err
		}
	}
	tags, err := s.tags.ListForChallenge(challenge.ID)
	if err != nil {
		return nil, err
	}
	challenge.Tags = tags
	return &challenge, nil
}

// Delete removes a site challenge with its solutions, votes, tags links
// and bookmarks. Only the owner may delete.
func (s *ChallengeService) Delete(id, actorID uint) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var challenge models.Challenge
		if err := tx.First(&challenge, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("challenge %d", id)
			}
			return persistencef(err)
		}
		if challenge.UserID != actorID {
			return ErrForbidden
		}

		var solutionIDs []uint
		if err := tx.Model(&models.Solution{}).Where("challenge_id = ?", id).
			Pluck("id", &solutionIDs).Error; err != nil {
			return persistencef(err)
		}

		if err := removeForSubject(tx, models.SubjectSolution, solutionIDs...); err != nil {
			return persistencef(err)
		}
		if err := removeForSubject(tx, models.SubjectChallenge, id); err != nil {
			return persistencef(err)
		}
		for _, m := range []interface{}{&models.Solution{}, &models.Bookmark{}, &models.ChallengeTag{}} {
			if err := tx.Where("challenge_id = ?", id).Delete(m).Error; err != nil {
				return persistencef(err)
			}
		}
		if err := tx.Delete(&challenge).Error; err != nil {
			return persistencef(err)
		}
		return nil
	})
}

// GetByPid loads one challenge with owner and tags.
func (s *ChallengeService) GetByPid(pid string) (*models.Challenge, error) {
	var challenge models.Challenge
	err := s.db.Preload("User").Where("pid = ?", pid).First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("challenge %q", pid)
	}
	if err != nil {
		return nil, persistencef(err)
	}
	challenge.Tags, err = s.tags.ListForChallenge(challenge.ID)
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ListOptions narrows and pages challenge lists.
type ListOptions struct {
	Page    int
	PerPage int
	Tag     string
	Query   string
	UserID  uint // only challenges by this user
}

// List returns a page of site challenges, newest first, with solution
// counts and tags batch-filled.
func (s *ChallengeService) List(opts ListOptions) ([]models.Challenge, int64, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage < 1 || opts.PerPage > 100 {
		opts.PerPage = 30
	}

	query := s.db.Model(&models.Challenge{})
	if opts.Query != "" {
		pattern := "%" + opts.Query + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if opts.UserID != 0 {
		query = query.Where("user_id = ?", opts.UserID)
	}
	if opts.Tag != "" {
		ids, err := s.tags.ChallengeIDsForTag(opts.Tag)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return []models.Challenge{}, 0, nil
			}
			return nil, 0, err
		}
		if len(ids) == 0 {
			return []models.Challenge{}, 0, nil
		}
		query = query.Where("id IN ?", ids)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, persistencef(err)
	}

	var challenges []models.Challenge
	err := query.Preload("User").
		Order("created_at DESC").
		Limit(opts.PerPage).
		Offset((opts.Page - 1) * opts.PerPage).
		Find(&challenges).Error
	if err != nil {
		return nil, 0, persistencef(err)
	}

	if err := s.fill(challenges); err != nil {
		return nil, 0, err
	}
	return challenges, total, nil
}

// fill batch-loads solution counts and tags for a page of challenges.
func (s *ChallengeService) fill(challenges []models.Challenge) error {
	if len(challenges) == 0 {
		return nil
	}
	ids := make([]uint, len(challenges))
	for i, c := range challenges {
		ids[i] = c.ID
	}

	counts, err := NewSolutionService(s.db).CountForChallenges(SiteSolution, ids)
	if err != nil {
		return err
	}
	tagMap, err := s.tags.ListForChallenges(ids)
	if err != nil {
		return err
	}
	for i := range challenges {
		challenges[i].SolutionCount = counts[challenges[i].ID]
		challenges[i].Tags = tagMap[challenges[i].ID]
	}
	return nil
}

// --- group challenges ---

// CreateGroup publishes a challenge inside a group; the author must be a
// member.
func (s *ChallengeService) CreateGroup(groupID, ownerID uint, in ChallengeInput) (*models.GroupChallenge, error) {
	if ownerID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.groups.RequireMember(groupID, ownerID); err != nil {
		return nil, err
	}

	challenge := models.GroupChallenge{
		Pid:         utils.RandStringBytesMaskImpr(8),
		GroupID:     groupID,
		UserID:      ownerID,
		Title:       in.Title,
		Description: in.Description,
	}
	if err := s.db.Create(&challenge).Error; err != nil {
		return nil, persistencef(err)
	}
	return &challenge, nil
}

// UpdateGroup edits a group challenge; permitted for the owner and for the
// group admin.
func (s *ChallengeService) UpdateGroup(id, editorID uint, in ChallengeInput) (*models.GroupChallenge, error) {
	if editorID == 0 {
		return nil, ErrUnauthenticated
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var challenge models.GroupChallenge
	if err := s.db.First(&challenge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundf("group challenge %d", id)
		}
		return nil, persistencef(err)
	}
	if challenge.UserID != editorID && !s.groups.IsAdmin(challenge.GroupID, editorID) {
		return nil, ErrForbidden
	}

	challenge.Title = in.Title
	challenge.Description = in.Description
	if err := s.db.Save(&challenge).Error; err != nil {
		return nil, persistencef(err)
	}
	return &challenge, nil
}

// DeleteGroup removes a group challenge plus its solutions and ledger
// rows; permitted for the owner and for the group admin.
func (s *ChallengeService) DeleteGroup(id, actorID uint) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var challenge models.GroupChallenge
		if err := tx.First(&challenge, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundf("group challenge %d", id)
			}
			return persistencef(err)
		}
		if challenge.UserID != actorID && !s.groups.IsAdmin(challenge.GroupID, actorID) {
			return ErrForbidden
		}

		var solutionIDs []uint
		if err := tx.Model(&models.GroupSolution{}).Where("group_challenge_id = ?", id).
			Pluck("id", &solutionIDs).Error; err != nil {
			return persistencef(err)
		}
		if err := removeForSubject(tx, models.SubjectGroupSolution, solutionIDs...); err != nil {
			return persistencef(err)
		}
		if err := removeForSubject(tx, models.SubjectGroupChallenge, id); err != nil {
			return persistencef(err)
		}
		if err := tx.Where("group_challenge_id = ?", id).Delete(&models.GroupSolution{}).Error; err != nil {
			return persistencef(err)
		}
		if err := tx.Delete(&challenge).Error; err != nil {
			return persistencef(err)
		}
		return nil
	})
}

// GetGroupByPid loads one group challenge for a member.
func (s *ChallengeService) GetGroupByPid(pid string, viewerID uint) (*models.GroupChallenge, error) {
	var challenge models.GroupChallenge
	err := s.db.Preload("User").Preload("Group").Where("pid = ?", pid).First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("group challenge %q", pid)
	}
	if err != nil {
		return nil, persistencef(err)
	}
	if err := s.groups.RequireMember(challenge.GroupID, viewerID); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ListGroup returns a group's challenges, newest first, for a member.
func (s *ChallengeService) ListGroup(groupID, viewerID uint) ([]models.GroupChallenge, error) {
	if err := s.groups.RequireMember(groupID, viewerID); err != nil {
		return nil, err
	}

	var challenges []models.GroupChallenge
	err := s.db.Preload("User").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&challenges).Error
	if err != nil {
		return nil, persistencef(err)
	}

	ids := make([]uint, len(challenges))
	for i, c := range challenges {
		ids[i] = c.ID
	}
	counts, err := NewSolutionService(s.db).CountForChallenges(GroupSolution, ids)
	if err != nil {
		return nil, err
	}
	for i := range challenges {
		challenges[i].SolutionCount = counts[challenges[i].ID]
	}
	return challenges, nil
}
