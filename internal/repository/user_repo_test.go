package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phSch08/EvaP/internal/models"
)

func TestUserRepositoryLoginKeyLookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	key := 12345
	validUntil := time.Date(2012, 10, 28, 0, 0, 0, 0, time.UTC)
	user := models.UserProfile{Username: "guest", Email: "guest@example.net", LoginKey: &key, LoginKeyValidUntil: &validUntil}
	require.NoError(t, db.Create(&user).Error)

	exists, err := repo.LoginKeyExists(context.Background(), key)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.LoginKeyExists(context.Background(), 99999)
	require.NoError(t, err)
	require.False(t, exists)

	found, err := repo.GetByLoginKey(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, user.ID, found.ID)

	_, err = repo.GetByLoginKey(context.Background(), 99999)
	require.Error(t, err)
}

func TestUserRepositoryGetPreloadsRelations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	delegate := models.UserProfile{Username: "assistant"}
	require.NoError(t, db.Create(&delegate).Error)
	cc := models.UserProfile{Username: "secretary"}
	require.NoError(t, db.Create(&cc).Error)

	prof := models.UserProfile{
		Username:  "prof",
		Delegates: []models.UserProfile{delegate},
		CCUsers:   []models.UserProfile{cc},
	}
	require.NoError(t, db.Create(&prof).Error)

	byID, err := repo.GetByID(context.Background(), prof.ID)
	require.NoError(t, err)
	require.Len(t, byID.Delegates, 1)
	require.Len(t, byID.CCUsers, 1)

	byName, err := repo.GetByUsername(context.Background(), "prof")
	require.NoError(t, err)
	require.Equal(t, prof.ID, byName.ID)
	require.Len(t, byName.Delegates, 1)
}

func TestUserRepositoryUpdatePersistsLoginKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user := models.UserProfile{Username: "guest"}
	require.NoError(t, db.Create(&user).Error)

	key := 4242
	validUntil := time.Date(2012, 10, 28, 0, 0, 0, 0, time.UTC)
	user.LoginKey = &key
	user.LoginKeyValidUntil = &validUntil
	require.NoError(t, repo.Update(context.Background(), &user))

	stored, err := repo.GetByLoginKey(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, user.ID, stored.ID)
	require.NotNil(t, stored.LoginKeyValidUntil)
}
