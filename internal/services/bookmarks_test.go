package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookmarkToggle(t *testing.T) {
	gdb := newTestDB(t)
	bookmarks := NewBookmarkService(gdb)
	owner := createUser(t, gdb, "owner")
	reader := createUser(t, gdb, "reader")
	challenge := createChallenge(t, gdb, owner.ID, "worth keeping")

	bookmarked, count, err := bookmarks.Toggle(reader.ID, challenge.ID)
	require.NoError(t, err)
	assert.True(t, bookmarked)
	assert.EqualValues(t, 1, count)
	assert.True(t, bookmarks.IsBookmarked(reader.ID, challenge.ID))

	bookmarked, count, err = bookmarks.Toggle(reader.ID, challenge.ID)
	require.NoError(t, err)
	assert.False(t, bookmarked)
	assert.EqualValues(t, 0, count)
	assert.False(t, bookmarks.IsBookmarked(reader.ID, challenge.ID))

	_, _, err = bookmarks.Toggle(0, challenge.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, _, err = bookmarks.Toggle(reader.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookmarkListForUser(t *testing.T) {
	gdb := newTestDB(t)
	bookmarks := NewBookmarkService(gdb)
	owner := createUser(t, gdb, "owner")
	reader := createUser(t, gdb, "reader")
	first := createChallenge(t, gdb, owner.ID, "saved first")
	second := createChallenge(t, gdb, owner.ID, "saved second")

	_, _, err := bookmarks.Toggle(reader.ID, first.ID)
	require.NoError(t, err)
	_, _, err = bookmarks.Toggle(reader.ID, second.ID)
	require.NoError(t, err)

	saved, err := bookmarks.ListForUser(reader.ID)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	// Another user's saves are invisible
	saved, err = bookmarks.ListForUser(owner.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)
}
