package services

import (
	"errors"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"

	"gorm.io/gorm"
)

// BookmarkService saves challenges per user with toggle semantics.
type BookmarkService struct {
	db *gorm.DB
}

func NewBookmarkService(gdb *gorm.DB) *BookmarkService {
	return &BookmarkService{db: gdb}
}

// Toggle saves or unsaves a challenge and returns the new state plus the
// challenge's bookmark count.
func (s *BookmarkService) Toggle(userID, challengeID uint) (bookmarked bool, count int64, err error) {
	if userID == 0 {
		return false, 0, ErrUnauthenticated
	}

	var challenge models.Challenge
	if err := s.db.First(&challenge, challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, notFoundf("challenge %d", challengeID)
		}
		return false, 0, persistencef(err)
	}

	var existing models.Bookmark
	err = s.db.Where("user_id = ? AND challenge_id = ?", userID, challengeID).First(&existing).Error
	switch {
	case err == nil:
		if err := s.db.Delete(&existing).Error; err != nil {
			return false, 0, persistencef(err)
		}
		bookmarked = false
	case errors.Is(err, gorm.ErrRecordNotFound):
		bookmark := models.Bookmark{UserID: userID, ChallengeID: challengeID}
		if err := s.db.Create(&bookmark).Error; err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, 0, persistencef(err)
		}
		bookmarked = true
	default:
		return false, 0, persistencef(err)
	}

	s.db.Model(&models.Bookmark{}).Where("challenge_id = ?", challengeID).Count(&count)
	return bookmarked, count, nil
}

// IsBookmarked checks whether the user saved the challenge.
func (s *BookmarkService) IsBookmarked(userID, challengeID uint) bool {
	if userID == 0 {
		return false
	}
	var count int64
	s.db.Model(&models.Bookmark{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).Count(&count)
	return count > 0
}

// Count returns the challenge's bookmark count.
func (s *BookmarkService) Count(challengeID uint) int64 {
	var count int64
	s.db.Model(&models.Bookmark{}).Where("challenge_id = ?", challengeID).Count(&count)
	return count
}

// ListForUser returns the user's saved challenges, newest save first.
func (s *BookmarkService) ListForUser(userID uint) ([]models.Challenge, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	var challenges []models.Challenge
	err := s.db.Model(&models.Challenge{}).
		Joins("JOIN bookmarks ON bookmarks.challenge_id = challenges.id").
		Where("bookmarks.user_id = ?", userID).
		Order("bookmarks.created_at DESC").
		Preload("User").
		Find(&challenges).Error
	if err != nil {
		return nil, persistencef(err)
	}
	return challenges, nil
}
