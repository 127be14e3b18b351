package services

import (
	"testing"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddSolutionAndReply(t *testing.T) {
	gdb := newTestDB(t)
	solutions := NewSolutionService(gdb)
	owner := createUser(t, gdb, "owner")
	helper := createUser(t, gdb, "helper")
	replier := createUser(t, gdb, "replier")
	challenge := createChallenge(t, gdb, owner.ID, "Mom forgets her appointments")

	top, err := solutions.Add(SiteSolution, challenge.ID, helper.ID, "a shared family calendar worked for us", nil)
	require.NoError(t, err)
	assert.Nil(t, top.ParentID)
	assert.Equal(t, "helper", top.Username)
	assert.NotEmpty(t, top.Sid)

	reply, err := solutions.Add(SiteSolution, challenge.ID, replier.ID, "try weekly check-ins", &top.ID)
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, top.ID, *reply.ParentID)
}

func TestListThreadPartition(t *testing.T) {
	gdb := newTestDB(t)
	solutions := NewSolutionService(gdb)
	owner := createUser(t, gdb, "owner")
	author := createUser(t, gdb, "author")
	challenge := createChallenge(t, gdb, owner.ID, "Dad will not accept in-home help")

	first, err := solutions.Add(SiteSolution, challenge.ID, author.ID, "introduce the aide as a friend first", nil)
	require.NoError(t, err)
	second, err := solutions.Add(SiteSolution, challenge.ID, author.ID, "start with short visits", nil)
	require.NoError(t, err)
	replyA, err := solutions.Add(SiteSolution, challenge.ID, owner.ID, "that worked for us too", &first.ID)
	require.NoError(t, err)
	replyB, err := solutions.Add(SiteSolution, challenge.ID, author.ID, "an hour at a time", &first.ID)
	require.NoError(t, err)

	thread, err := solutions.ListThread(SiteSolution, challenge.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)

	// Top-level newest first, replies oldest first under their parent
	assert.Equal(t, second.ID, thread[0].ID)
	assert.Empty(t, thread[0].Replies)
	assert.Equal(t, first.ID, thread[1].ID)
	require.Len(t, thread[1].Replies, 2)
	assert.Equal(t, replyA.ID, thread[1].Replies[0].ID)
	assert.Equal(t, replyB.ID, thread[1].Replies[1].ID)
}

func TestAddReplyValidation(t *testing.T) {
	gdb := newTestDB(t)
	solutions := NewSolutionService(gdb)
	owner := createUser(t, gdb, "owner")
	author := createUser(t, gdb, "author")
	challenge := createChallenge(t, gdb, owner.ID, "challenge one")
	other := createChallenge(t, gdb, owner.ID, "challenge two")

	top, err := solutions.Add(SiteSolution, challenge.ID, author.ID, "top level", nil)
	require.NoError(t, err)
	reply, err := solutions.Add(SiteSolution, challenge.ID, author.ID, "a reply", &top.ID)
	require.NoError(t, err)

	t.Run("reply to a reply", func(t *testing.T) {
		_, err := solutions.Add(SiteSolution, challenge.ID, author.ID, "too deep", &reply.ID)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("parent on another challenge", func(t *testing.T) {
		_, err := solutions.Add(SiteSolution, other.ID, author.ID, "wrong thread", &top.ID)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("missing parent", func(t *testing.T) {
		missing := uint(9999)
		_, err := solutions.Add(SiteSolution, challenge.ID, author.ID, "orphan", &missing)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := solutions.Add(SiteSolution, challenge.ID, author.ID, "   ", nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("signed out", func(t *testing.T) {
		_, err := solutions.Add(SiteSolution, challenge.ID, 0, "anonymous", nil)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("missing challenge", func(t *testing.T) {
		_, err := solutions.Add(SiteSolution, 9999, author.ID, "lost", nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateSolutionOwnership(t *testing.T) {
	gdb := newTestDB(t)
	solutions := NewSolutionService(gdb)
	owner := createUser(t, gdb, "owner")
	author := createUser(t, gdb, "author")
	intruder := createUser(t, gdb, "intruder")
	challenge := createChallenge(t, gdb, owner.ID, "Splitting pharmacy runs")

	sol, err := solutions.Add(SiteSolution, challenge.ID, author.ID, "original text", nil)
	require.NoError(t, err)

	_, err = solutions.Update(SiteSolution, sol.ID, intruder.ID, "hijacked")
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := solutions.Update(SiteSolution, sol.ID, author.ID, "clearer text")
	require.NoError(t, err)
	assert.Equal(t, "clearer text", updated.Content)
}

func TestDeleteSolutionCascades(t *testing.T) {
	gdb := newTestDB(t)
	solutions := NewSolutionService(gdb)
	ledger := NewVoteService(gdb)
	owner := createUser(t, gdb, "owner")
	author := createUser(t, gdb, "author")
	voter := createUser(t, gdb, "voter")
	challenge := createChallenge(t, gdb, owner.ID, "Night wandering")

	top, err := solutions.Add(SiteSolution, challenge.ID, author.ID, "door sensors", nil)
	require.NoError(t, err)
	reply, err := solutions.Add(SiteSolution, challenge.ID, owner.ID, "which brand?", &top.ID)
	require.NoError(t, err)

	_, err = ledger.Cast(models.SubjectSolution, top.ID, voter.ID, true)
	require.NoError(t, err)
	_, err = ledger.Cast(models.SubjectSolution, reply.ID, voter.ID, false)
	require.NoError(t, err)

	err = solutions.Delete(SiteSolution, top.ID, voter.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, solutions.Delete(SiteSolution, top.ID, author.ID))

	thread, err := solutions.ListThread(SiteSolution, challenge.ID)
	require.NoError(t, err)
	assert.Empty(t, thread)

	var voteRows int64
	gdb.Model(&models.Vote{}).Where("subject_type = ?", models.SubjectSolution).Count(&voteRows)
	assert.EqualValues(t, 0, voteRows)
}

func TestGroupSolutionsUseOwnTable(t *testing.T) {
	gdb := newTestDB(t)
	solutions := NewSolutionService(gdb)
	admin := createUser(t, gdb, "admin")
	group := createGroup(t, gdb, admin.ID, "siblings")
	gc := models.GroupChallenge{
		Pid:     utils.RandStringBytesMaskImpr(8),
		GroupID: group.ID,
		UserID:  admin.ID,
		Title:   "Who takes December?",
	}
	require.NoError(t, gdb.Create(&gc).Error)

	top, err := solutions.Add(GroupSolution, gc.ID, admin.ID, "I can do the first two weeks", nil)
	require.NoError(t, err)
	reply, err := solutions.Add(GroupSolution, gc.ID, admin.ID, "I will cover the rest", &top.ID)
	require.NoError(t, err)

	thread, err := solutions.ListThread(GroupSolution, gc.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	require.Len(t, thread[0].Replies, 1)
	assert.Equal(t, reply.ID, thread[0].Replies[0].ID)

	// Nothing leaked into the site table
	var siteRows int64
	gdb.Model(&models.Solution{}).Count(&siteRows)
	assert.EqualValues(t, 0, siteRows)
}

func TestCountForChallenges(t *testing.T) {
	gdb := newTestDB(t)
	solutions := NewSolutionService(gdb)
	owner := createUser(t, gdb, "owner")
	busy := createChallenge(t, gdb, owner.ID, "busy")
	quiet := createChallenge(t, gdb, owner.ID, "quiet")

	top, err := solutions.Add(SiteSolution, busy.ID, owner.ID, "one", nil)
	require.NoError(t, err)
	_, err = solutions.Add(SiteSolution, busy.ID, owner.ID, "two", &top.ID)
	require.NoError(t, err)

	counts, err := solutions.CountForChallenges(SiteSolution, []uint{busy.ID, quiet.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, counts[busy.ID])
	assert.Equal(t, 0, counts[quiet.ID])
}
