package activity

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/innometrics/innometrics-backend/internal/domain/activity"
	"github.com/innometrics/innometrics-backend/internal/repository/storage"
)

var errBroken = errors.New("broken")

// memoryRepository keeps activities in a map and fails inserts of a chosen executable.
type memoryRepository struct {
	mu      sync.Mutex
	items   map[string]*activity.Activity
	failFor string
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{items: make(map[string]*activity.Activity)}
}

func (r *memoryRepository) CreateActivity(_ context.Context, a *activity.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ExecutableName == r.failFor {
		return errBroken
	}

	r.items[a.ID] = a

	return nil
}

func (r *memoryRepository) DeleteActivity(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok || a.UserID != userID {
		return storage.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *memoryRepository) FindActivities(_ context.Context, q *activity.Query) ([]*activity.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var found []*activity.Activity

	for _, a := range r.items {
		if a.UserID == q.UserID {
			found = append(found, a)
		}
	}

	return found, nil
}

func (r *memoryRepository) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.items)
}

func sample(executable string) *activity.Activity {
	start := time.Date(2019, 10, 1, 9, 0, 0, 0, time.UTC)

	return &activity.Activity{
		StartTime:      start,
		EndTime:        start.Add(time.Minute),
		ExecutableName: executable,
		IPAddress:      "10.90.0.1",
		MACAddress:     "00:1A:2B:3C:4D:5E",
	}
}

// TestAdd stores a validated activity with a fresh id.
func TestAdd(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepository()
	svc := NewService(repo)

	id, err := svc.Add(context.Background(), "u1", sample("code"))
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, 1, repo.len())

	_, err = svc.Add(context.Background(), "u1", &activity.Activity{})
	require.ErrorIs(t, err, activity.ErrInvalid)
}

// TestAddBatch returns ids in input order.
func TestAddBatch(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepository()
	svc := NewService(repo)

	items := []*activity.Activity{sample("code"), sample("firefox"), sample("slack")}

	ids, err := svc.AddBatch(context.Background(), "u1", items)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	for i, a := range items {
		require.Equal(t, a.ID, ids[i])
	}

	require.Equal(t, 3, repo.len())
}

// TestAddBatchRollback removes stored items when one insert fails.
func TestAddBatchRollback(t *testing.T) {
	t.Parallel()

	repo := newMemoryRepository()
	repo.failFor = "broken"
	svc := NewService(repo)

	items := []*activity.Activity{sample("code"), sample("broken"), sample("slack"), sample("vim")}

	_, err := svc.AddBatch(context.Background(), "u1", items)
	require.ErrorIs(t, err, errBroken)
	require.Zero(t, repo.len())

	_, err = svc.AddBatch(context.Background(), "u1", []*activity.Activity{sample("code"), {}})
	require.ErrorIs(t, err, activity.ErrInvalid)
	require.Zero(t, repo.len())
}

// TestDeleteAndFind maps missing results to ErrNotFound.
func TestDeleteAndFind(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(newMemoryRepository())

	_, err := svc.Find(ctx, &activity.Query{UserID: "u1"})
	require.ErrorIs(t, err, ErrNotFound)

	id, err := svc.Add(ctx, "u1", sample("code"))
	require.NoError(t, err)

	found, err := svc.Find(ctx, &activity.Query{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	require.ErrorIs(t, svc.Delete(ctx, "u2", id), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, "u1", id))
}
