package services

import (
	"testing"
	"time"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyVoteDelta(t *testing.T) {
	base := SubjectView{Likes: 3, Dislikes: 1, Net: 2}

	tests := []struct {
		name     string
		prior    SubjectView
		isUpvote bool
		want     SubjectView
	}{
		{
			name:     "new upvote",
			prior:    withState(base, NoVote),
			isUpvote: true,
			want:     SubjectView{State: Upvoted, Likes: 4, Dislikes: 1, Net: 3},
		},
		{
			name:     "new downvote",
			prior:    withState(base, NoVote),
			isUpvote: false,
			want:     SubjectView{State: Downvoted, Likes: 3, Dislikes: 2, Net: 1},
		},
		{
			name:     "toggle upvote off",
			prior:    withState(base, Upvoted),
			isUpvote: true,
			want:     SubjectView{State: NoVote, Likes: 2, Dislikes: 1, Net: 1},
		},
		{
			name:     "toggle downvote off",
			prior:    withState(base, Downvoted),
			isUpvote: false,
			want:     SubjectView{State: NoVote, Likes: 3, Dislikes: 0, Net: 3},
		},
		{
			name:     "switch up to down",
			prior:    withState(base, Upvoted),
			isUpvote: false,
			want:     SubjectView{State: Downvoted, Likes: 2, Dislikes: 2, Net: 0},
		},
		{
			name:     "switch down to up",
			prior:    withState(base, Downvoted),
			isUpvote: true,
			want:     SubjectView{State: Upvoted, Likes: 4, Dislikes: 0, Net: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyVoteDelta(tt.prior, tt.isUpvote))
		})
	}
}

func withState(view SubjectView, state VoteState) SubjectView {
	view.State = state
	return view
}

func TestApplyOptimisticThenSettled(t *testing.T) {
	gdb := newTestDB(t)
	stats := NewOptimisticStats(NewVoteService(gdb))
	owner := createUser(t, gdb, "owner")
	viewer := createUser(t, gdb, "viewer")
	challenge := createChallenge(t, gdb, owner.ID, "Hospital discharge paperwork")

	view, done, err := stats.Apply(models.SubjectChallenge, challenge.ID, viewer.ID, true)
	require.NoError(t, err)
	assert.Equal(t, Upvoted, view.State)
	assert.EqualValues(t, 1, view.Likes)
	assert.EqualValues(t, 1, view.Net)

	require.NoError(t, waitDone(t, done))

	// The ledger agrees with the provisional view once settled
	state, err := NewVoteService(gdb).Get(models.SubjectChallenge, challenge.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, Upvoted, state)

	settled, err := stats.View(models.SubjectChallenge, challenge.ID, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, view.Likes, settled.Likes)
	assert.Equal(t, Upvoted, settled.State)
}

func TestApplyToggleSequence(t *testing.T) {
	gdb := newTestDB(t)
	ledger := NewVoteService(gdb)
	stats := NewOptimisticStats(ledger)
	owner := createUser(t, gdb, "owner")
	viewer := createUser(t, gdb, "viewer")
	challenge := createChallenge(t, gdb, owner.ID, "Driving retirement talk")

	// Seed three likes and one dislike from other users
	for i, up := range []bool{true, true, true, false} {
		voter := createUser(t, gdb, "crowd"+string(rune('a'+i)))
		_, err := ledger.Cast(models.SubjectChallenge, challenge.ID, voter.ID, up)
		require.NoError(t, err)
	}

	view, done, err := stats.Apply(models.SubjectChallenge, challenge.ID, viewer.ID, true)
	require.NoError(t, err)
	assert.Equal(t, SubjectView{State: Upvoted, Likes: 4, Dislikes: 1, Net: 3}, view)
	require.NoError(t, waitDone(t, done))

	view, done, err = stats.Apply(models.SubjectChallenge, challenge.ID, viewer.ID, true)
	require.NoError(t, err)
	assert.Equal(t, SubjectView{State: NoVote, Likes: 3, Dislikes: 1, Net: 2}, view)
	require.NoError(t, waitDone(t, done))

	agg, err := ledger.Aggregate(models.SubjectChallenge, challenge.ID)
	require.NoError(t, err)
	assert.Equal(t, Aggregate{Likes: 3, Dislikes: 1, Net: 2}, agg)
}

func TestApplyRollsBackOnPersistFailure(t *testing.T) {
	gdb := newTestDB(t)
	stats := NewOptimisticStats(NewVoteService(gdb))
	viewer := createUser(t, gdb, "viewer")

	// Subject 9999 does not exist, so the background cast must fail
	view, done, err := stats.Apply(models.SubjectChallenge, 9999, viewer.ID, true)
	require.NoError(t, err)
	assert.EqualValues(t, 1, view.Likes)

	err = waitDone(t, done)
	assert.ErrorIs(t, err, ErrNotFound)

	// The compensating delta restored the prior view
	after, err := stats.View(models.SubjectChallenge, 9999, viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, SubjectView{State: NoVote, Likes: 0, Dislikes: 0, Net: 0}, after)
}

func TestApplyRequiresAuthentication(t *testing.T) {
	gdb := newTestDB(t)
	stats := NewOptimisticStats(NewVoteService(gdb))

	_, _, err := stats.Apply(models.SubjectChallenge, 1, 0, true)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestApplyRejectsUnknownSubject(t *testing.T) {
	gdb := newTestDB(t)
	stats := NewOptimisticStats(NewVoteService(gdb))
	viewer := createUser(t, gdb, "viewer")

	_, _, err := stats.Apply("recipe", 1, viewer.ID, true)
	assert.ErrorIs(t, err, ErrValidation)
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("persistence did not settle in time")
		return nil
	}
}
