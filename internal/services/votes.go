package services

import (
	"errors"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"

	"gorm.io/gorm"
)

// VoteState is the voter's relationship to a subject after an operation.
type VoteState int

const (
	NoVote VoteState = iota
	Upvoted
	Downvoted
)

func (s VoteState) String() string {
	switch s {
	case Upvoted:
		return "up"
	case Downvoted:
		return "down"
	}
	return "none"
}

// Aggregate is the derived counter for one subject.
type Aggregate struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
	Net      int64 `json:"net"`
}

// VoteService is the ledger for all four votable subject kinds.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(gdb *gorm.DB) *VoteService {
	return &VoteService{db: gdb}
}

// Cast records a vote for (subject, subjectID, voterID) and returns the
// voter's new state:
//   - no prior vote: insert (net ±1)
//   - same direction: delete, toggle-off (net ∓1)
//   - opposite direction: update (net ±2)
//
// The whole transition runs in one transaction. If a concurrent cast wins
// an insert race, the unique index rejects ours with gorm.ErrDuplicatedKey
// and the transaction is retried once, now seeing the existing row.
func (s *VoteService) Cast(subject models.SubjectType, subjectID, voterID uint, isUpvote bool) (VoteState, error) {
	if voterID == 0 {
		return NoVote, ErrUnauthenticated
	}
	if !subject.Valid() {
		return NoVote, validationf("unknown subject type %q", subject)
	}

	state, err := s.castOnce(subject, subjectID, voterID, isUpvote)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		state, err = s.castOnce(subject, subjectID, voterID, isUpvote)
	}
	return state, err
}

func (s *VoteService) castOnce(subject models.SubjectType, subjectID, voterID uint, isUpvote bool) (VoteState, error) {
	state := NoVote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		exists, err := subjectExists(tx, subject, subjectID)
		if err != nil {
			return persistencef(err)
		}
		if !exists {
			return notFoundf("%s %d", subject, subjectID)
		}

		var existing models.Vote
		err = tx.Where("subject_type = ? AND subject_id = ? AND user_id = ?",
			subject, subjectID, voterID).First(&existing).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			vote := models.Vote{
				SubjectType: subject,
				SubjectID:   subjectID,
				UserID:      voterID,
				IsUpvote:    isUpvote,
			}
			if err := tx.Create(&vote).Error; err != nil {
				// Let duplicated-key through untranslated so Cast can retry
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return err
				}
				return persistencef(err)
			}
			state = stateFor(isUpvote)
			return nil
		case err != nil:
			return persistencef(err)
		}

		if existing.IsUpvote == isUpvote {
			// Toggle-off
			if err := tx.Delete(&existing).Error; err != nil {
				return persistencef(err)
			}
			state = NoVote
			return nil
		}

		// Switch direction
		if err := tx.Model(&existing).Update("is_upvote", isUpvote).Error; err != nil {
			return persistencef(err)
		}
		state = stateFor(isUpvote)
		return nil
	})
	if err != nil {
		return NoVote, err
	}
	return state, nil
}

// Get is a side-effect-free point lookup of the voter's state.
func (s *VoteService) Get(subject models.SubjectType, subjectID, voterID uint) (VoteState, error) {
	if voterID == 0 {
		return NoVote, nil
	}
	var vote models.Vote
	err := s.db.Where("subject_type = ? AND subject_id = ? AND user_id = ?",
		subject, subjectID, voterID).First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NoVote, nil
	}
	if err != nil {
		return NoVote, persistencef(err)
	}
	return stateFor(vote.IsUpvote), nil
}

// Aggregate scans the ledger for one subject.
func (s *VoteService) Aggregate(subject models.SubjectType, subjectID uint) (Aggregate, error) {
	var agg Aggregate
	err := s.db.Model(&models.Vote{}).
		Where("subject_type = ? AND subject_id = ?", subject, subjectID).
		Select("COALESCE(SUM(CASE WHEN is_upvote THEN 1 ELSE 0 END), 0) AS likes, " +
			"COALESCE(SUM(CASE WHEN is_upvote THEN 0 ELSE 1 END), 0) AS dislikes").
		Scan(&agg).Error
	if err != nil {
		return Aggregate{}, persistencef(err)
	}
	agg.Net = agg.Likes - agg.Dislikes
	return agg, nil
}

// AggregateMany batches aggregates for list pages. Subjects with no votes
// are present in the result with zero counts.
func (s *VoteService) AggregateMany(subject models.SubjectType, subjectIDs []uint) (map[uint]Aggregate, error) {
	result := make(map[uint]Aggregate, len(subjectIDs))
	for _, id := range subjectIDs {
		result[id] = Aggregate{}
	}
	if len(subjectIDs) == 0 {
		return result, nil
	}

	type row struct {
		SubjectID uint
		Likes     int64
		Dislikes  int64
	}
	var rows []row
	err := s.db.Model(&models.Vote{}).
		Where("subject_type = ? AND subject_id IN ?", subject, subjectIDs).
		Select("subject_id, " +
			"SUM(CASE WHEN is_upvote THEN 1 ELSE 0 END) AS likes, " +
			"SUM(CASE WHEN is_upvote THEN 0 ELSE 1 END) AS dislikes").
		Group("subject_id").
		Scan(&rows).Error
	if err != nil {
		return nil, persistencef(err)
	}

	for _, r := range rows {
		result[r.SubjectID] = Aggregate{Likes: r.Likes, Dislikes: r.Dislikes, Net: r.Likes - r.Dislikes}
	}
	return result, nil
}

// removeForSubject clears ledger rows when a subject is hard-deleted.
// Runs inside the caller's transaction.
func removeForSubject(tx *gorm.DB, subject models.SubjectType, subjectIDs ...uint) error {
	if len(subjectIDs) == 0 {
		return nil
	}
	return tx.Where("subject_type = ? AND subject_id IN ?", subject, subjectIDs).
		Delete(&models.Vote{}).Error
}

func stateFor(isUpvote bool) VoteState {
	if isUpvote {
		return Upvoted
	}
	return Downvoted
}

// subjectExists checks the subject row so a vote can never be created for
// a concurrently deleted subject.
func subjectExists(tx *gorm.DB, subject models.SubjectType, subjectID uint) (bool, error) {
	var count int64
	var err error
	switch subject {
	case models.SubjectChallenge:
		err = tx.Model(&models.Challenge{}).Where("id = ?", subjectID).Count(&count).Error
	case models.SubjectSolution:
		err = tx.Model(&models.Solution{}).Where("id = ?", subjectID).Count(&count).Error
	case models.SubjectGroupChallenge:
		err = tx.Model(&models.GroupChallenge{}).Where("id = ?", subjectID).Count(&count).Error
	case models.SubjectGroupSolution:
		err = tx.Model(&models.GroupSolution{}).Where("id = ?", subjectID).Count(&count).Error
	}
	return count > 0, err
}
