package services

import (
	"errors"
	"html/template"
	"strings"
	"time"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"gorm.io/gorm"
)

// SolutionKind selects which of the two solution tables an operation
// targets. Site and group solutions share all threading rules.
type SolutionKind string

const (
	SiteSolution  SolutionKind = "solution"
	GroupSolution SolutionKind = "group_solution"
)

// Subject maps a solution kind to its vote-ledger subject.
func (k SolutionKind) Subject() models.SubjectType {
	if k == GroupSolution {
		return models.SubjectGroupSolution
	}
	return models.SubjectSolution
}

// ChallengeSubject maps a solution kind to its parent challenge's subject.
func (k SolutionKind) ChallengeSubject() models.SubjectType {
	if k == GroupSolution {
		return models.SubjectGroupChallenge
	}
	return models.SubjectChallenge
}

// SolutionRecord is the kind-neutral view handed to handlers, covering
// rows from both solution tables.
type SolutionRecord struct {
	ID          uint          `json:"id"`
	Sid         string        `json:"sid"`
	ChallengeID uint          `json:"challenge_id"`
	UserID      uint          `json:"user_id"`
	Username    string        `json:"username"`
	Avatar      string        `json:"avatar"`
	ParentID    *uint         `json:"parent_id"`
	Content     string        `json:"content"`
	ContentHTML template.HTML `json:"content_html"`
	CreatedAt   time.Time     `json:"created_at"`

	Replies []SolutionRecord `json:"replies,omitempty"`
}

// SolutionService is the threaded store for challenge and group-challenge
// solutions. Threading is one level deep: a reply's parent must itself be
// top-level, which the store enforces at write time.
type SolutionService struct {
	db *gorm.DB
}

func NewSolutionService(gdb *gorm.DB) *SolutionService {
	return &SolutionService{db: gdb}
}

// Add creates a solution or, when parentID is set, a reply.
func (s *SolutionService) Add(kind SolutionKind, challengeID, authorID uint, text string, parentID *uint) (SolutionRecord, error) {
	if authorID == 0 {
		return SolutionRecord{}, ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return SolutionRecord{}, validationf("solution text must not be empty")
	}

	var record SolutionRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		exists, err := subjectExists(tx, kind.ChallengeSubject(), challengeID)
		if err != nil {
			return persistencef(err)
		}
		if !exists {
			return notFoundf("%s %d", kind.ChallengeSubject(), challengeID)
		}

		if parentID != nil {
			parent, err := s.fetch(tx, kind, *parentID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return validationf("parent solution %d does not exist", *parentID)
			}
			if err != nil {
				return persistencef(err)
			}
			if parent.ChallengeID != challengeID {
				return validationf("parent solution %d belongs to another challenge", *parentID)
			}
			if parent.ParentID != nil {
				return validationf("replies to replies are not allowed")
			}
		}

		record, err = s.create(tx, kind, challengeID, authorID, text, parentID)
		return err
	})
	if err != nil {
		return SolutionRecord{}, err
	}
	return record, nil
}

// ListTopLevel returns the challenge's direct solutions, newest first.
func (s *SolutionService) ListTopLevel(kind SolutionKind, challengeID uint) ([]SolutionRecord, error) {
	return s.list(kind, "challenge_id = ? AND parent_id IS NULL", "created_at DESC, id DESC", challengeID)
}

// ListReplies returns the replies under one solution, oldest first.
func (s *SolutionService) ListReplies(kind SolutionKind, parentID uint) ([]SolutionRecord, error) {
	return s.list(kind, "parent_id = ?", "created_at ASC, id ASC", parentID)
}

// ListThread loads every solution of a challenge in one query and
// partitions it into top-level records with their replies nested.
func (s *SolutionService) ListThread(kind SolutionKind, challengeID uint) ([]SolutionRecord, error) {
	all, err := s.list(kind, "challenge_id = ?", "created_at ASC, id ASC", challengeID)
	if err != nil {
		return nil, err
	}

	byParent := make(map[uint][]SolutionRecord)
	var tops []SolutionRecord
	for _, rec := range all {
		if rec.ParentID == nil {
			tops = append(tops, rec)
			continue
		}
		byParent[*rec.ParentID] = append(byParent[*rec.ParentID], rec)
	}

	// Newest-first for top-level, oldest-first within a reply list
	for i, j := 0, len(tops)-1; i < j; i, j = i+1, j-1 {
		tops[i], tops[j] = tops[j], tops[i]
	}
	for i := range tops {
		tops[i].Replies = byParent[tops[i].ID]
	}
	return tops, nil
}

// Update edits the text of the author's own solution.
func (s *SolutionService) Update(kind SolutionKind, id, editorID uint, text string) (SolutionRecord, error) {
	if editorID == 0 {
		return SolutionRecord{}, ErrUnauthenticated
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return SolutionRecord{}, validationf("solution text must not be empty")
	}

	rec, err := s.fetch(s.db, kind, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return SolutionRecord{}, notFoundf("%s %d", kind, id)
	}
	if err != nil {
		return SolutionRecord{}, persistencef(err)
	}
	if rec.UserID != editorID {
		return SolutionRecord{}, ErrForbidden
	}

	if err := s.updateContent(kind, id, text); err != nil {
		return SolutionRecord{}, persistencef(err)
	}
	rec.Content = text
	rec.ContentHTML = utils.RenderMarkdown(text)
	return rec, nil
}

// Delete hard-deletes the author's own solution along with its direct
// replies and every ledger row pointing at them.
func (s *SolutionService) Delete(kind SolutionKind, id, actorID uint) error {
	if actorID == 0 {
		return ErrUnauthenticated
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		rec, err := s.fetch(tx, kind, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("%s %d", kind, id)
		}
		if err != nil {
			return persistencef(err)
		}
		if rec.UserID != actorID {
			return ErrForbidden
		}

		replies, err := s.list2(tx, kind, "parent_id = ?", "created_at ASC, id ASC", id)
		if err != nil {
			return persistencef(err)
		}
		ids := make([]uint, 0, len(replies)+1)
		ids = append(ids, id)
		for _, r := range replies {
			ids = append(ids, r.ID)
		}

		if err := removeForSubject(tx, kind.Subject(), ids...); err != nil {
			return persistencef(err)
		}
		if err := s.deleteRows(tx, kind, ids); err != nil {
			return persistencef(err)
		}
		return nil
	})
}

// CountForChallenges batch-fills solution counts for list pages.
func (s *SolutionService) CountForChallenges(kind SolutionKind, challengeIDs []uint) (map[uint]int, error) {
	countMap := make(map[uint]int, len(challengeIDs))
	if len(challengeIDs) == 0 {
		return countMap, nil
	}

	type countResult struct {
		ChallengeID uint
		Count       int
	}
	var results []countResult

	query := s.db.Model(&models.Solution{}).
		Select("challenge_id, COUNT(*) as count").
		Where("challenge_id IN ?", challengeIDs).
		Group("challenge_id")
	if kind == GroupSolution {
		query = s.db.Model(&models.GroupSolution{}).
			Select("group_challenge_id as challenge_id, COUNT(*) as count").
			Where("group_challenge_id IN ?", challengeIDs).
			Group("group_challenge_id")
	}
	if err := query.Scan(&results).Error; err != nil {
		return nil, persistencef(err)
	}

	for _, r := range results {
		countMap[r.ChallengeID] = r.Count
	}
	return countMap, nil
}

// --- kind-specific plumbing ---

func (s *SolutionService) fetch(tx *gorm.DB, kind SolutionKind, id uint) (SolutionRecord, error) {
	if kind == GroupSolution {
		var sol models.GroupSolution
		if err := tx.First(&sol, id).Error; err != nil {
			return SolutionRecord{}, err
		}
		return groupSolutionRecord(sol), nil
	}
	var sol models.Solution
	if err := tx.First(&sol, id).Error; err != nil {
		return SolutionRecord{}, err
	}
	return solutionRecord(sol), nil
}

func (s *SolutionService) create(tx *gorm.DB, kind SolutionKind, challengeID, authorID uint, text string, parentID *uint) (SolutionRecord, error) {
	if kind == GroupSolution {
		sol := models.GroupSolution{
			Sid:              utils.RandStringBytesMaskImpr(8),
			GroupChallengeID: challengeID,
			UserID:           authorID,
			ParentID:         parentID,
			Content:          text,
		}
		if err := tx.Create(&sol).Error; err != nil {
			return SolutionRecord{}, persistencef(err)
		}
		tx.Preload("User").First(&sol, sol.ID)
		return groupSolutionRecord(sol), nil
	}

	sol := models.Solution{
		Sid:         utils.RandStringBytesMaskImpr(8),
		ChallengeID: challengeID,
		UserID:      authorID,
		ParentID:    parentID,
		Content:     text,
	}
	if err := tx.Create(&sol).Error; err != nil {
		return SolutionRecord{}, persistencef(err)
	}
	tx.Preload("User").First(&sol, sol.ID)
	return solutionRecord(sol), nil
}

func (s *SolutionService) list(kind SolutionKind, cond, order string, arg interface{}) ([]SolutionRecord, error) {
	return s.list2(s.db, kind, cond, order, arg)
}

func (s *SolutionService) list2(tx *gorm.DB, kind SolutionKind, cond, order string, arg interface{}) ([]SolutionRecord, error) {
	if kind == GroupSolution {
		cond = strings.Replace(cond, "challenge_id", "group_challenge_id", 1)
		var sols []models.GroupSolution
		if err := tx.Preload("User").Where(cond, arg).Order(order).Find(&sols).Error; err != nil {
			return nil, persistencef(err)
		}
		records := make([]SolutionRecord, len(sols))
		for i, sol := range sols {
			records[i] = groupSolutionRecord(sol)
		}
		return records, nil
	}

	var sols []models.Solution
	if err := tx.Preload("User").Where(cond, arg).Order(order).Find(&sols).Error; err != nil {
		return nil, persistencef(err)
	}
	records := make([]SolutionRecord, len(sols))
	for i, sol := range sols {
		records[i] = solutionRecord(sol)
	}
	return records, nil
}

func (s *SolutionService) updateContent(kind SolutionKind, id uint, text string) error {
	if kind == GroupSolution {
		return s.db.Model(&models.GroupSolution{}).Where("id = ?", id).Update("content", text).Error
	}
	return s.db.Model(&models.Solution{}).Where("id = ?", id).Update("content", text).Error
}

func (s *SolutionService) deleteRows(tx *gorm.DB, kind SolutionKind, ids []uint) error {
	if kind == GroupSolution {
		return tx.Where("id IN ?", ids).Delete(&models.GroupSolution{}).Error
	}
	return tx.Where("id IN ?", ids).Delete(&models.Solution{}).Error
}

func solutionRecord(sol models.Solution) SolutionRecord {
	return SolutionRecord{
		ID:          sol.ID,
		Sid:         sol.Sid,
		ChallengeID: sol.ChallengeID,
		UserID:      sol.UserID,
		Username:    sol.User.Username,
		Avatar:      sol.User.Avatar,
		ParentID:    sol.ParentID,
		Content:     sol.Content,
		ContentHTML: utils.RenderMarkdown(sol.Content),
		CreatedAt:   sol.CreatedAt,
	}
}

func groupSolutionRecord(sol models.GroupSolution) SolutionRecord {
	return SolutionRecord{
		ID:          sol.ID,
		Sid:         sol.Sid,
		ChallengeID: sol.GroupChallengeID,
		UserID:      sol.UserID,
		Username:    sol.User.Username,
		Avatar:      sol.User.Avatar,
		ParentID:    sol.ParentID,
		Content:     sol.Content,
		ContentHTML: utils.RenderMarkdown(sol.Content),
		CreatedAt:   sol.CreatedAt,
	}
}
