package activity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/innometrics/innometrics-backend/internal/domain/activity"
	"github.com/innometrics/innometrics-backend/internal/logger"
	"github.com/innometrics/innometrics-backend/internal/repository/storage"
)

// ErrNotFound is returned when no activity matches.
var ErrNotFound = errors.New("activity not found")

// batchWorkers bounds concurrent inserts of one batch.
const batchWorkers = 8

type (
	// Repository stores activities.
	Repository interface {
		CreateActivity(ctx context.Context, a *activity.Activity) error
		DeleteActivity(ctx context.Context, userID, id string) error
		FindActivities(ctx context.Context, q *activity.Query) ([]*activity.Activity, error)
	}

	// Service implements activity operations.
	Service struct {
		activities Repository
	}
)

// NewService wires a Service.
func NewService(activities Repository) *Service {
	return &Service{activities: activities}
}

// Add validates a and stores it for userID. It returns the new id.
func (s *Service) Add(ctx context.Context, userID string, a *activity.Activity) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}

	a.ID = uuid.NewString()
	a.UserID = userID

	if err := s.activities.CreateActivity(ctx, a); err != nil {
		return "", fmt.Errorf("failed to add activity: %w", err)
	}

	return a.ID, nil
}

// AddBatch stores all items in parallel. If any of them fails, the ones
// already stored are deleted and the first error is returned.
func (s *Service) AddBatch(ctx context.Context, userID string, items []*activity.Activity) ([]string, error) {
	for i, a := range items {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("activity %d: %w", i, err)
		}
	}

	var (
		mu    sync.Mutex
		added []string
		ids   = make([]string, len(items))
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(batchWorkers)

	for i, a := range items {
		group.Go(func() error {
			id, err := s.Add(groupCtx, userID, a)
			if err != nil {
				return err
			}

			mu.Lock()
			added = append(added, id)
			mu.Unlock()

			ids[i] = id

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		s.rollback(context.WithoutCancel(ctx), userID, added)

		return nil, err
	}

	return ids, nil
}

func (s *Service) rollback(ctx context.Context, userID string, ids []string) {
	for _, id := range ids {
		if err := s.activities.DeleteActivity(ctx, userID, id); err != nil {
			logger.ErrorKV(ctx, "failed to roll back activity", "activity_id", id, "error", err)
		}
	}

	logger.WarnKV(ctx, "batch rolled back", "user_id", userID, "removed", len(ids))
}

// Delete removes the activity id of userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	err := s.activities.DeleteActivity(ctx, userID, id)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	return nil
}

// Find returns activities matching q. An empty result is ErrNotFound.
func (s *Service) Find(ctx context.Context, q *activity.Query) ([]*activity.Activity, error) {
	q.Normalize()

	found, err := s.activities.FindActivities(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to find activities: %w", err)
	}

	if len(found) == 0 {
		return nil, ErrNotFound
	}

	return found, nil
}
