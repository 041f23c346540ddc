package users

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dkravchenko/polyclinic-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	users := `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  login TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  middle_name TEXT NOT NULL DEFAULT '',
  police TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'User',
  photo_url TEXT,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	admins := `
CREATE TABLE IF NOT EXISTS admins (
  id INTEGER PRIMARY KEY,
  created_at DATETIME
);`
	for _, stmt := range []string{users, admins} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return db
}

func seedUser(t *testing.T, repo *Repository, login, first, last string, role enums.Role) int {
	t.Helper()

	user, err := repo.Create(context.Background(), CreateUserDTO{
		Login:        login,
		PasswordHash: "hash",
		FirstName:    first,
		LastName:     last,
		Role:         role,
	})
	require.NoError(t, err)
	return user.ID
}

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	id := seedUser(t, repo, "ivanov", "Ivan", "Ivanov", enums.RolePatient)
	require.Positive(t, id)

	byLogin, err := repo.FindByLogin(ctx, "ivanov")
	require.NoError(t, err)
	assert.Equal(t, id, byLogin.ID)
	assert.Equal(t, enums.RolePatient, byLogin.Role)

	byID, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ivanov", byID.Login)

	_, err = repo.FindByLogin(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryUpdateProfile(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	id := seedUser(t, repo, "ivanov", "Ivan", "Ivanov", enums.RolePatient)

	require.NoError(t, repo.UpdateProfile(ctx, id, UpdateProfileDTO{
		Login:      "ivanov2",
		FirstName:  "Ivan",
		LastName:   "Petrov",
		MiddleName: "Sergeevich",
		Police:     "111-222",
	}))

	updated, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ivanov2", updated.Login)
	assert.Equal(t, "Petrov", updated.LastName)
	assert.Equal(t, "Sergeevich", updated.MiddleName)
	assert.Equal(t, "111-222", updated.Police)
}

func TestRepositoryUpdateRoleAndLastLogin(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	id := seedUser(t, repo, "ivanov", "Ivan", "Ivanov", enums.RolePatient)

	require.NoError(t, repo.UpdateRole(ctx, id, enums.RoleDoctor))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, id, at))

	updated, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, enums.RoleDoctor, updated.Role)
	require.NotNil(t, updated.LastLoginAt)
	assert.True(t, updated.LastLoginAt.Equal(at))
}

func TestRepositoryListFilters(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	seedUser(t, repo, "ivanov", "Ivan", "Ivanov", enums.RolePatient)
	seedUser(t, repo, "petrova", "Anna", "Petrova", enums.RoleDoctor)
	seedUser(t, repo, "sidorov", "Pavel", "Sidorov", enums.RoleAdmin)

	all, err := repo.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ivanov", all[0].Login)

	doctors, err := repo.List(ctx, ListFilter{Role: enums.RoleDoctor})
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, "petrova", doctors[0].Login)

	// Search is case-insensitive and matches any name part.
	found, err := repo.List(ctx, ListFilter{Search: "petro"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Anna", found[0].FirstName)

	none, err := repo.List(ctx, ListFilter{Search: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRepositoryAdminRows(t *testing.T) {
	repo := NewRepository(setupUsersTestDB(t))
	ctx := context.Background()

	id := seedUser(t, repo, "sidorov", "Pavel", "Sidorov", enums.RoleAdmin)

	created, err := repo.CreateAdmin(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)

	admin, err := repo.FindAdminByUserID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, admin.ID)

	byIDs, err := repo.ListAdminsByUserIDs(ctx, []int{id, 999})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Contains(t, byIDs, id)

	empty, err := repo.ListAdminsByUserIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
