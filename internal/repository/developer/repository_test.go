package developer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/timeclock/internal/audit"
	"github.com/Additional-Code/timeclock/internal/database/dbtest"
	"github.com/Additional-Code/timeclock/internal/entity"
	"github.com/Additional-Code/timeclock/internal/persistence"
	"github.com/Additional-Code/timeclock/internal/repository/developer"
	"github.com/Additional-Code/timeclock/internal/repository/workinghours"
)

func newSession(t *testing.T) *persistence.Session {
	t.Helper()
	return persistence.NewSession(dbtest.Open(t), audit.New(), nil)
}

func megan() *entity.Developer {
	return entity.NewDeveloperBuilder().
		DeveloperID(100).
		Forename("Megan").
		LastName("Fox").
		Address(entity.NewAddressBuilder().Country("US").City("Rockwood").Build()).
		Build()
}

func TestRepository_UpdateLastname(t *testing.T) {
	repo := developer.NewRepository(newSession(t))
	ctx := context.Background()

	_, err := repo.Save(ctx, megan())
	require.NoError(t, err)

	got, err := repo.GetByDeveloperID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.DeveloperID)
	assert.Equal(t, "Megan", got.Forename)
	assert.Equal(t, "Fox", got.LastName)
	assert.Equal(t, 0, got.Version)

	_, err = repo.UpdateLastnameByDeveloperID(ctx, 100, "Updated")
	require.NoError(t, err)

	repo.Clear()
	got, err = repo.GetByDeveloperID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.LastName)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, audit.SystemActor(), got.UpdatedBy)
	assert.Equal(t, audit.SystemActor(), got.CreatedBy)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestRepository_DeveloperIDSurvivesUpdate(t *testing.T) {
	repo := developer.NewRepository(newSession(t))
	ctx := context.Background()

	saved, err := repo.Save(ctx, megan())
	require.NoError(t, err)

	updated, err := repo.Update(ctx, entity.DeveloperBuilderFrom(saved).DeveloperID(555).Build())
	require.NoError(t, err)
	assert.Equal(t, int64(100), updated.DeveloperID)
	assert.Equal(t, 1, updated.Version)

	got, err := repo.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got.DeveloperID)

	byKey, err := repo.GetByDeveloperID(ctx, 100)
	require.NoError(t, err)
	assert.Same(t, updated, byKey)
	assert.Equal(t, int64(100), byKey.DeveloperID)

	_, err = repo.GetByDeveloperID(ctx, 555)
	assert.ErrorIs(t, err, persistence.ErrEmptyResult)
}

func TestRepository_GetByDeveloperIDMiss(t *testing.T) {
	repo := developer.NewRepository(newSession(t))

	_, err := repo.GetByDeveloperID(context.Background(), 9999)
	assert.ErrorIs(t, err, persistence.ErrEmptyResult)

	ok, err := repo.IsExistWithDeveloperID(context.Background(), 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepository_GetAllByForename(t *testing.T) {
	repo := developer.NewRepository(newSession(t))
	ctx := context.Background()

	for id, forename := range map[int64]string{100: "Megan", 101: "Megan", 102: "Brad"} {
		_, err := repo.Save(ctx, entity.NewDeveloperBuilder().DeveloperID(id).Forename(forename).Build())
		require.NoError(t, err)
	}

	got, err := repo.GetAllByForename(ctx, "Megan")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(100), got[0].DeveloperID)
	assert.Equal(t, int64(101), got[1].DeveloperID)

	ok, err := repo.IsExistWithDeveloperID(ctx, 102)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRepository_RemoveWithLoggedHours(t *testing.T) {
	session := newSession(t)
	repo := developer.NewRepository(session)
	hours := workinghours.NewRepository(session)
	ctx := context.Background()

	d, err := repo.Save(ctx, megan())
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	wh, err := hours.Save(ctx, entity.NewWorkingHoursBuilder().
		Day(start.Truncate(24*time.Hour)).WorkStart(start).Developer(d).Build())
	require.NoError(t, err)

	err = repo.RemoveByDeveloperID(ctx, 100)
	require.ErrorIs(t, err, persistence.ErrConstraintViolation)

	require.NoError(t, hours.Remove(ctx, wh))
	require.NoError(t, repo.RemoveByDeveloperID(ctx, 100))

	_, err = repo.GetByDeveloperID(ctx, 100)
	assert.ErrorIs(t, err, persistence.ErrEmptyResult)
}
