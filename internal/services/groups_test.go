package services

import (
	"testing"

	"github.com/manankohlii/manage-my-parents-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupEnrollsCreator(t *testing.T) {
	gdb := newTestDB(t)
	groups := NewGroupService(gdb)
	admin := createUser(t, gdb, "admin")

	group, err := groups.Create(admin.ID, "siblings", "the three of us")
	require.NoError(t, err)
	assert.Len(t, group.Gid, 8)
	assert.True(t, groups.IsMember(group.ID, admin.ID))
	assert.True(t, groups.IsAdmin(group.ID, admin.ID))

	_, err = groups.Create(admin.ID, "  ", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGetByGidMembersOnly(t *testing.T) {
	gdb := newTestDB(t)
	groups := NewGroupService(gdb)
	admin := createUser(t, gdb, "admin")
	outsider := createUser(t, gdb, "outsider")

	group, err := groups.Create(admin.ID, "siblings", "")
	require.NoError(t, err)

	_, err = groups.GetByGid(group.Gid, outsider.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = groups.GetByGid(group.Gid, 0)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	got, err := groups.GetByGid(group.Gid, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.MemberCount)

	_, err = groups.GetByGid("missing!", admin.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvitationLifecycle(t *testing.T) {
	gdb := newTestDB(t)
	groups := NewGroupService(gdb)
	admin := createUser(t, gdb, "admin")
	invitee := createUser(t, gdb, "invitee")
	outsider := createUser(t, gdb, "outsider")

	group, err := groups.Create(admin.ID, "siblings", "")
	require.NoError(t, err)

	_, err = groups.Invite(group.ID, outsider.ID, invitee.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = groups.Invite(group.ID, admin.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	invitation, err := groups.Invite(group.ID, admin.ID, invitee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationPending, invitation.Status)

	_, err = groups.Invite(group.ID, admin.ID, invitee.ID)
	assert.ErrorIs(t, err, ErrValidation)

	pending, err := groups.ListInvitations(invitee.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	// Only the invitee may respond
	_, err = groups.Respond(invitation.ID, outsider.ID, true)
	assert.ErrorIs(t, err, ErrForbidden)

	accepted, err := groups.Respond(invitation.ID, invitee.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationAccepted, accepted.Status)
	assert.True(t, groups.IsMember(group.ID, invitee.ID))

	// A settled invitation cannot be responded to again
	_, err = groups.Respond(invitation.ID, invitee.ID, false)
	assert.ErrorIs(t, err, ErrValidation)

	pending, err = groups.ListInvitations(invitee.ID)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestDeclineDoesNotEnroll(t *testing.T) {
	gdb := newTestDB(t)
	groups := NewGroupService(gdb)
	admin := createUser(t, gdb, "admin")
	invitee := createUser(t, gdb, "invitee")

	group, err := groups.Create(admin.ID, "siblings", "")
	require.NoError(t, err)
	invitation, err := groups.Invite(group.ID, admin.ID, invitee.ID)
	require.NoError(t, err)

	declined, err := groups.Respond(invitation.ID, invitee.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.InvitationDeclined, declined.Status)
	assert.False(t, groups.IsMember(group.ID, invitee.ID))
}

func TestLeaveGroup(t *testing.T) {
	gdb := newTestDB(t)
	groups := NewGroupService(gdb)
	admin := createUser(t, gdb, "admin")
	member := createUser(t, gdb, "member")

	group, err := groups.Create(admin.ID, "siblings", "")
	require.NoError(t, err)
	require.NoError(t, gdb.Create(&models.GroupMember{GroupID: group.ID, UserID: member.ID}).Error)

	err = groups.Leave(group.ID, admin.ID)
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, groups.Leave(group.ID, member.ID))
	assert.False(t, groups.IsMember(group.ID, member.ID))

	err = groups.Leave(group.ID, member.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteGroupCascades(t *testing.T) {
	gdb := newTestDB(t)
	groups := NewGroupService(gdb)
	challenges := NewChallengeService(gdb, NewTagService(gdb), groups)
	solutions := NewSolutionService(gdb)
	ledger := NewVoteService(gdb)
	chat := NewChatService(gdb, groups)
	admin := createUser(t, gdb, "admin")
	member := createUser(t, gdb, "member")

	group, err := groups.Create(admin.ID, "siblings", "")
	require.NoError(t, err)
	require.NoError(t, gdb.Create(&models.GroupMember{GroupID: group.ID, UserID: member.ID}).Error)

	challenge, err := challenges.CreateGroup(group.ID, member.ID, ChallengeInput{Title: "Care budget"})
	require.NoError(t, err)
	sol, err := solutions.Add(GroupSolution, challenge.ID, admin.ID, "split it evenly", nil)
	require.NoError(t, err)
	_, err = ledger.Cast(models.SubjectGroupChallenge, challenge.ID, member.ID, true)
	require.NoError(t, err)
	_, err = ledger.Cast(models.SubjectGroupSolution, sol.ID, member.ID, true)
	require.NoError(t, err)
	_, err = chat.Post(group.ID, member.ID, "see the new thread")
	require.NoError(t, err)

	err = groups.Delete(group.ID, member.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, groups.Delete(group.ID, admin.ID))

	var rows int64
	gdb.Model(&models.GroupChallenge{}).Count(&rows)
	assert.Zero(t, rows)
	gdb.Model(&models.GroupSolution{}).Count(&rows)
	assert.Zero(t, rows)
	gdb.Model(&models.GroupMessage{}).Count(&rows)
	assert.Zero(t, rows)
	gdb.Model(&models.GroupMember{}).Count(&rows)
	assert.Zero(t, rows)
	gdb.Model(&models.Vote{}).Count(&rows)
	assert.Zero(t, rows)
}
