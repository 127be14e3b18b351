package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/manankohlii/manage-my-parents-sub000/internal/db"
	"github.com/manankohlii/manage-my-parents-sub000/internal/models"
	"github.com/manankohlii/manage-my-parents-sub000/internal/utils"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestDB opens a fresh in-memory database named after the test, so
// tests never share state, and builds the full schema on it.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func createUser(t *testing.T, gdb *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
	}
	require.NoError(t, gdb.Create(&user).Error)
	return user
}

func createChallenge(t *testing.T, gdb *gorm.DB, userID uint, title string) models.Challenge {
	t.Helper()
	challenge := models.Challenge{
		Pid:    utils.RandStringBytesMaskImpr(8),
		UserID: userID,
		Title:  title,
	}
	require.NoError(t, gdb.Create(&challenge).Error)
	return challenge
}

func createGroup(t *testing.T, gdb *gorm.DB, creatorID uint, name string) models.Group {
	t.Helper()
	group := models.Group{
		Gid:       utils.RandStringBytesMaskImpr(8),
		Name:      name,
		CreatedBy: creatorID,
	}
	require.NoError(t, gdb.Create(&group).Error)
	member := models.GroupMember{GroupID: group.ID, UserID: creatorID}
	require.NoError(t, gdb.Create(&member).Error)
	return group
}
