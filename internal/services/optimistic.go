package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"
)

// SubjectView is what a vote widget needs: the viewer's own state plus the
// subject's counters.
type SubjectView struct {
	State    VoteState `json:"-"`
	Likes    int64     `json:"likes"`
	Dislikes int64     `json:"dislikes"`
	Net      int64     `json:"net"`
}

// viewTTL bounds how long a provisional view can outlive its last
// reconciliation with the ledger.
const viewTTL = 5 * time.Minute

// OptimisticStats keeps a per-viewer cached view of vote state and
// aggregates, mutates it synchronously on a cast, and persists through the
// ledger in the background. A failed persistence call is compensated by
// subtracting the pending delta and evicting the entry, so the cached view
// never diverges permanently from the ledger.
type OptimisticStats struct {
	ledger *VoteService
	cache  *utils.Cache
	mu     sync.Mutex
}

func NewOptimisticStats(ledger *VoteService) *OptimisticStats {
	return &OptimisticStats{
		ledger: ledger,
		cache:  utils.NewCache(2000),
	}
}

func viewKey(subject models.SubjectType, subjectID, viewerID uint) string {
	return fmt.Sprintf("view:%s:%d:%d", subject, subjectID, viewerID)
}

// View returns the cached view for (subject, viewer), loading it from the
// ledger on a miss.
func (o *OptimisticStats) View(subject models.SubjectType, subjectID, viewerID uint) (SubjectView, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked(subject, subjectID, viewerID)
}

func (o *OptimisticStats) viewLocked(subject models.SubjectType, subjectID, viewerID uint) (SubjectView, error) {
	key := viewKey(subject, subjectID, viewerID)
	if cached := o.cache.Get(key); cached != nil {
		if view, ok := cached.(SubjectView); ok {
			return view, nil
		}
	}

	state, err := o.ledger.Get(subject, subjectID, viewerID)
	if err != nil {
		return SubjectView{}, err
	}
	agg, err := o.ledger.Aggregate(subject, subjectID)
	if err != nil {
		return SubjectView{}, err
	}

	view := SubjectView{State: state, Likes: agg.Likes, Dislikes: agg.Dislikes, Net: agg.Net}
	o.cache.Set(key, view, viewTTL)
	return view, nil
}

// Apply performs an optimistic cast: the returned view already includes the
// three-way delta computed from the cached prior state, and the ledger write
// happens in the background. The returned channel reports the persistence
// outcome; callers that only care about the provisional view may ignore it.
func (o *OptimisticStats) Apply(subject models.SubjectType, subjectID, viewerID uint, isUpvote bool) (SubjectView, <-chan error, error) {
	if viewerID == 0 {
		return SubjectView{}, nil, ErrUnauthenticated
	}
	if !subject.Valid() {
		return SubjectView{}, nil, validationf("unknown subject type %q", subject)
	}

	o.mu.Lock()
	prior, err := o.viewLocked(subject, subjectID, viewerID)
	if err != nil {
		o.mu.Unlock()
		return SubjectView{}, nil, err
	}

	provisional := ApplyVoteDelta(prior, isUpvote)
	key := viewKey(subject, subjectID, viewerID)
	o.cache.Set(key, provisional, viewTTL)
	o.mu.Unlock()

	done := make(chan error, 1)
	go o.persist(subject, subjectID, viewerID, isUpvote, prior, provisional, done)

	return provisional, done, nil
}

func (o *OptimisticStats) persist(subject models.SubjectType, subjectID, viewerID uint, isUpvote bool, prior, provisional SubjectView, done chan<- error) {
	state, err := o.ledger.Cast(subject, subjectID, viewerID, isUpvote)
	key := viewKey(subject, subjectID, viewerID)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		// Compensate: subtract exactly the pending delta from whatever
		// the entry holds now, and restore the prior state.
		if cached := o.cache.Get(key); cached != nil {
			if view, ok := cached.(SubjectView); ok {
				view.Likes -= provisional.Likes - prior.Likes
				view.Dislikes -= provisional.Dislikes - prior.Dislikes
				view.Net = view.Likes - view.Dislikes
				view.State = prior.State
				o.cache.Set(key, view, viewTTL)
			}
		}
		log.Printf("vote persist failed (%s %d by %d): %v", subject, subjectID, viewerID, err)
		done <- err
		return
	}

	// Reconcile the cached state with the ledger's answer. Counts are left
	// as computed; they agree whenever no concurrent cast raced this one.
	if cached := o.cache.Get(key); cached != nil {
		if view, ok := cached.(SubjectView); ok {
			view.State = state
			o.cache.Set(key, view, viewTTL)
		}
	}
	done <- nil
}

// Invalidate drops cached views for a subject after out-of-band changes
// (subject deleted, bulk recount).
func (o *OptimisticStats) Invalidate(subject models.SubjectType, subjectID, viewerID uint) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cache.Delete(viewKey(subject, subjectID, viewerID))
}

// ApplyVoteDelta computes the optimistic transition from a prior view. It
// mirrors the ledger's three cases exactly: new vote, toggle-off, switch.
func ApplyVoteDelta(prior SubjectView, isUpvote bool) SubjectView {
	next := prior
	switch prior.State {
	case NoVote:
		if isUpvote {
			next.Likes++
			next.State = Upvoted
		} else {
			next.Dislikes++
			next.State = Downvoted
		}
	case Upvoted:
		if isUpvote {
			// Toggle-off
			next.Likes--
			next.State = NoVote
		} else {
			next.Likes--
			next.Dislikes++
			next.State = Downvoted
		}
	case Downvoted:
		if isUpvote {
			next.Dislikes--
			next.Likes++
			next.State = Upvoted
		} else {
			// Toggle-off
			next.Dislikes--
			next.State = NoVote
		}
	}
	next.Net = next.Likes - next.Dislikes
	return next
}
