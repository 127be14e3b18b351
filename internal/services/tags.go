package services

import (
	"errors"
	"strings"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"

	"gorm.io/gorm"
)

// TagService manages name-keyed tags and their challenge links. Lookup is
// exact-match: names differing only by case are distinct tags.
type TagService struct {
	db *gorm.DB
}

func NewTagService(gdb *gorm.DB) *TagService {
	return &TagService{db: gdb}
}

// FindOrCreate returns the tag with exactly this name, creating it if
// absent. A concurrent create is absorbed via the unique index.
func (s *TagService) FindOrCreate(name string) (models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Tag{}, validationf("tag name must not be empty")
	}

	var tag models.Tag
	err := s.db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Tag{}, persistencef(err)
	}

	tag = models.Tag{Name: name}
	if err := s.db.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race, the row exists now
			if err := s.db.Where("name = ?", name).First(&tag).Error; err != nil {
				return models.Tag{}, persistencef(err)
			}
			return tag, nil
		}
		return models.Tag{}, persistencef(err)
	}
	return tag, nil
}

// ReplaceForChallenge sets the challenge's tag list to exactly names.
func (s *TagService) ReplaceForChallenge(challengeID uint, names []string) error {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tag, err := s.FindOrCreate(name)
		if err != nil {
			return err
		}
		tags = append(tags, tag)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("challenge_id = ?", challengeID).Delete(&models.ChallengeTag{}).Error; err != nil {
			return persistencef(err)
		}
		for _, tag := range tags {
			link := models.ChallengeTag{ChallengeID: challengeID, TagID: tag.ID}
			if err := tx.Create(&link).Error; err != nil {
				return persistencef(err)
			}
		}
		return nil
	})
}

// ListForChallenge returns the challenge's tags by name.
func (s *TagService) ListForChallenge(challengeID uint) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.Model(&models.Tag{}).
		Joins("JOIN challenge_tags ON challenge_tags.tag_id = tags.id").
		Where("challenge_tags.challenge_id = ?", challengeID).
		Order("tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, persistencef(err)
	}
	return tags, nil
}

// ListForChallenges batch-loads tags for a page of challenges.
func (s *TagService) ListForChallenges(challengeIDs []uint) (map[uint][]models.Tag, error) {
	result := make(map[uint][]models.Tag)
	if len(challengeIDs) == 0 {
		return result, nil
	}

	var links []models.ChallengeTag
	err := s.db.Preload("Tag").Where("challenge_id IN ?", challengeIDs).Find(&links).Error
	if err != nil {
		return nil, persistencef(err)
	}
	for _, link := range links {
		result[link.ChallengeID] = append(result[link.ChallengeID], link.Tag)
	}
	return result, nil
}

// ListAll returns every tag, most used first.
func (s *TagService) ListAll() ([]models.Tag, error) {
	var tags []models.Tag
	err := s.db.Model(&models.Tag{}).
		Select("tags.*, COUNT(challenge_tags.id) AS usage").
		Joins("LEFT JOIN challenge_tags ON challenge_tags.tag_id = tags.id").
		Group("tags.id").
		Order("usage DESC, tags.name ASC").
		Find(&tags).Error
	if err != nil {
		return nil, persistencef(err)
	}
	return tags, nil
}

// ChallengeIDsForTag resolves a tag-name filter to challenge ids.
func (s *TagService) ChallengeIDsForTag(name string) ([]uint, error) {
	var tag models.Tag
	err := s.db.Where("name = ?", name).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("tag %q", name)
	}
	if err != nil {
		return nil, persistencef(err)
	}

	var ids []uint
	err = s.db.Model(&models.ChallengeTag{}).Where("tag_id = ?", tag.ID).Pluck("challenge_id", &ids).Error
	if err != nil {
		return nil, persistencef(err)
	}
	return ids, nil
}
