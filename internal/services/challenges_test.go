package services

import (
	"testing"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateChallenge(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewChallengeService(gdb, NewTagService(gdb), NewGroupService(gdb))
	owner := createUser(t, gdb, "owner")

	challenge, err := svc.Create(owner.ID, ChallengeInput{
		Title:       "Mom keeps firing the cleaners",
		Description: "Third agency this year.",
		Tags:        []string{"Boundaries", "Caregiving"},
	})
	require.NoError(t, err)
	assert.Len(t, challenge.Pid, 8)
	require.Len(t, challenge.Tags, 2)

	t.Run("empty title", func(t *testing.T) {
		_, err := svc.Create(owner.ID, ChallengeInput{Title: "   "})
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("signed out", func(t *testing.T) {
		_, err := svc.Create(0, ChallengeInput{Title: "anonymous"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestUpdateChallengeOwnership(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewChallengeService(gdb, NewTagService(gdb), NewGroupService(gdb))
	owner := createUser(t, gdb, "owner")
	intruder := createUser(t, gdb, "intruder")

	challenge, err := svc.Create(owner.ID, ChallengeInput{Title: "original"})
	require.NoError(t, err)

	_, err = svc.Update(challenge.ID, intruder.ID, ChallengeInput{Title: "hijacked"})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.Update(challenge.ID, owner.ID, ChallengeInput{Title: "clarified", Tags: []string{"Health"}})
	require.NoError(t, err)
	assert.Equal(t, "clarified", updated.Title)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, "Health", updated.Tags[0].Name)
}

func TestDeleteChallengeCascades(t *testing.T) {
	gdb := newTestDB(t)
	tags := NewTagService(gdb)
	svc := NewChallengeService(gdb, tags, NewGroupService(gdb))
	solutions := NewSolutionService(gdb)
	ledger := NewVoteService(gdb)
	bookmarks := NewBookmarkService(gdb)
	owner := createUser(t, gdb, "owner")
	voter := createUser(t, gdb, "voter")

	challenge, err := svc.Create(owner.ID, ChallengeInput{Title: "to be removed", Tags: []string{"Finances"}})
	require.NoError(t, err)
	sol, err := solutions.Add(SiteSolution, challenge.ID, voter.ID, "an answer", nil)
	require.NoError(t, err)
	_, err = ledger.Cast(models.SubjectChallenge, challenge.ID, voter.ID, true)
	require.NoError(t, err)
	_, err = ledger.Cast(models.SubjectSolution, sol.ID, owner.ID, true)
	require.NoError(t, err)
	_, _, err = bookmarks.Toggle(voter.ID, challenge.ID)
	require.NoError(t, err)

	err = svc.Delete(challenge.ID, voter.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(challenge.ID, owner.ID))

	_, err = svc.GetByPid(challenge.Pid)
	assert.ErrorIs(t, err, ErrNotFound)

	var votes, sols, marks, links int64
	gdb.Model(&models.Vote{}).Count(&votes)
	gdb.Model(&models.Solution{}).Count(&sols)
	gdb.Model(&models.Bookmark{}).Count(&marks)
	gdb.Model(&models.ChallengeTag{}).Count(&links)
	assert.Zero(t, votes)
	assert.Zero(t, sols)
	assert.Zero(t, marks)
	assert.Zero(t, links)
}

func TestListChallenges(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewChallengeService(gdb, NewTagService(gdb), NewGroupService(gdb))
	solutions := NewSolutionService(gdb)
	alice := createUser(t, gdb, "alice")
	bob := createUser(t, gdb, "bob")

	mobility, err := svc.Create(alice.ID, ChallengeInput{Title: "Stairs are getting risky", Tags: []string{"Mobility"}})
	require.NoError(t, err)
	_, err = svc.Create(bob.ID, ChallengeInput{Title: "Budgeting for assisted living"})
	require.NoError(t, err)
	_, err = solutions.Add(SiteSolution, mobility.ID, bob.ID, "grab bars first", nil)
	require.NoError(t, err)

	t.Run("all", func(t *testing.T) {
		challenges, total, err := svc.List(ListOptions{})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		require.Len(t, challenges, 2)
	})

	t.Run("text search", func(t *testing.T) {
		challenges, total, err := svc.List(ListOptions{Query: "assisted"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "Budgeting for assisted living", challenges[0].Title)
	})

	t.Run("tag filter", func(t *testing.T) {
		challenges, total, err := svc.List(ListOptions{Tag: "Mobility"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, mobility.ID, challenges[0].ID)
		assert.Equal(t, 1, challenges[0].SolutionCount)
		require.Len(t, challenges[0].Tags, 1)
	})

	t.Run("unknown tag", func(t *testing.T) {
		challenges, total, err := svc.List(ListOptions{Tag: "mobility"})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, challenges)
	})

	t.Run("by author", func(t *testing.T) {
		_, total, err := svc.List(ListOptions{UserID: alice.ID})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})
}

func TestGroupChallengeGates(t *testing.T) {
	gdb := newTestDB(t)
	groups := NewGroupService(gdb)
	svc := NewChallengeService(gdb, NewTagService(gdb), groups)
	admin := createUser(t, gdb, "admin")
	member := createUser(t, gdb, "member")
	outsider := createUser(t, gdb, "outsider")

	group, err := groups.Create(admin.ID, "siblings", "")
	require.NoError(t, err)
	require.NoError(t, gdb.Create(&models.GroupMember{GroupID: group.ID, UserID: member.ID}).Error)

	_, err = svc.CreateGroup(group.ID, outsider.ID, ChallengeInput{Title: "not yours"})
	assert.ErrorIs(t, err, ErrForbidden)

	challenge, err := svc.CreateGroup(group.ID, member.ID, ChallengeInput{Title: "Holiday coverage"})
	require.NoError(t, err)

	_, err = svc.GetGroupByPid(challenge.Pid, outsider.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.GetGroupByPid(challenge.Pid, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, challenge.ID, got.ID)

	// The admin may edit and delete another member's group challenge
	updated, err := svc.UpdateGroup(challenge.ID, admin.ID, ChallengeInput{Title: "December coverage"})
	require.NoError(t, err)
	assert.Equal(t, "December coverage", updated.Title)

	err = svc.DeleteGroup(challenge.ID, outsider.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	require.NoError(t, svc.DeleteGroup(challenge.ID, member.ID))
}

func TestGetByPidSurfacesTagLoadError(t *testing.T) {
	gdb := newTestDB(t)
	svc := NewChallengeService(gdb, NewTagService(gdb), NewGroupService(gdb))
	owner := createUser(t, gdb, "owner")

	challenge, err := svc.Create(owner.ID, ChallengeInput{
		Title: "Sister stopped answering calls",
		Tags:  []string{"Communication"},
	})
	require.NoError(t, err)

	require.NoError(t, gdb.Migrator().DropTable(&models.ChallengeTag{}))

	_, err = svc.GetByPid(challenge.Pid)
	assert.ErrorIs(t, err, ErrPersistence)
}
