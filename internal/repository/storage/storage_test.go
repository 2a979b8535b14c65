package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/innometrics/innometrics-backend/internal/domain/account"
	"github.com/innometrics/innometrics-backend/internal/domain/activity"
)

func openStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "db", "innometrics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func createUser(t *testing.T, store *Store, id, email string) {
	t.Helper()

	require.NoError(t, store.CreateUser(context.Background(), &account.User{
		ID:           id,
		Email:        email,
		PasswordHash: "hash",
		Name:         "Ivan",
		Surname:      "Ivanov",
		CreatedAt:    time.Now(),
	}))
}

func sample(id, userID string, start time.Time, executable string) *activity.Activity {
	return &activity.Activity{
		ID:             id,
		UserID:         userID,
		StartTime:      start,
		EndTime:        start.Add(time.Minute),
		ExecutableName: executable,
		IPAddress:      "10.90.0.1",
		MACAddress:     "00:1A:2B:3C:4D:5E",
		ActivityType:   activity.DefaultType,
	}
}

// TestUsers covers create, lookup, uniqueness and deletion.
func TestUsers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openStore(t)

	createUser(t, store, "u1", "a@innometrics.guru")

	user, err := store.UserByEmail(ctx, "a@innometrics.guru")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
	require.Equal(t, "Ivan", user.Name)

	user, err = store.UserByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "a@innometrics.guru", user.Email)

	err = store.CreateUser(ctx, &account.User{ID: "u2", Email: "a@innometrics.guru", CreatedAt: time.Now()})
	require.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, store.CreateActivity(ctx, sample("a1", "u1", time.Now(), "code")))
	require.NoError(t, store.DeleteUser(ctx, "u1"))

	_, err = store.UserByID(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	found, err := store.FindActivities(ctx, &activity.Query{UserID: "u1", Limit: 10})
	require.NoError(t, err)
	require.Empty(t, found)

	require.ErrorIs(t, store.DeleteUser(ctx, "u1"), ErrNotFound)
}

// TestFindActivities covers ownership, filters, time bounds and paging.
func TestFindActivities(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openStore(t)
	base := time.Date(2019, 10, 1, 9, 0, 0, 0, time.UTC)

	createUser(t, store, "u1", "a@innometrics.guru")
	createUser(t, store, "u2", "b@innometrics.guru")

	idle := sample("a3", "u1", base.Add(2*time.Hour), "code")
	idle.IdleActivity = true

	for _, a := range []*activity.Activity{
		sample("a1", "u1", base, "code"),
		sample("a2", "u1", base.Add(time.Hour), "firefox"),
		idle,
		sample("b1", "u2", base, "code"),
	} {
		require.NoError(t, store.CreateActivity(ctx, a))
	}

	ids := func(q *activity.Query) []string {
		found, err := store.FindActivities(ctx, q)
		require.NoError(t, err)

		var out []string
		for _, a := range found {
			require.Equal(t, "u1", a.UserID)
			out = append(out, a.ID)
		}

		return out
	}

	require.Equal(t, []string{"a1", "a2", "a3"}, ids(&activity.Query{UserID: "u1", Limit: 10}))
	require.Equal(t, []string{"a2"}, ids(&activity.Query{UserID: "u1", Offset: 1, Limit: 1}))
	require.Equal(t, []string{"a1", "a3"}, ids(&activity.Query{
		UserID:  "u1",
		Limit:   10,
		Filters: map[activity.Field]any{activity.FieldExecutableName: "code"},
	}))
	require.Equal(t, []string{"a3"}, ids(&activity.Query{
		UserID:  "u1",
		Limit:   10,
		Filters: map[activity.Field]any{activity.FieldIdleActivity: true},
	}))

	from := base.Add(30 * time.Minute)
	until := base.Add(90 * time.Minute)
	require.Equal(t, []string{"a2"}, ids(&activity.Query{UserID: "u1", Limit: 10, StartFrom: &from, EndUntil: &until}))

	found, err := store.FindActivities(ctx, &activity.Query{UserID: "u1", Limit: 1})
	require.NoError(t, err)
	require.True(t, base.Equal(found[0].StartTime))
	require.Equal(t, activity.DefaultType, found[0].ActivityType)
}

// TestDeleteActivity only deletes activities of the owner.
func TestDeleteActivity(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := openStore(t)

	createUser(t, store, "u1", "a@innometrics.guru")
	require.NoError(t, store.CreateActivity(ctx, sample("a1", "u1", time.Now(), "code")))

	require.ErrorIs(t, store.DeleteActivity(ctx, "u2", "a1"), ErrNotFound)
	require.NoError(t, store.DeleteActivity(ctx, "u1", "a1"))
	require.ErrorIs(t, store.DeleteActivity(ctx, "u1", "a1"), ErrNotFound)
}
