package storage

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/innometrics/innometrics-backend/internal/domain/activity"
)

const activityColumns = `id, user_id, start_time, end_time, executable_name, browser_url,
	browser_title, ip_address, mac_address, idle_activity, activity_type`

// CreateActivity inserts a.
func (s *Store) CreateActivity(ctx context.Context, a *activity.Activity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (`+activityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.StartTime.UnixMicro(), a.EndTime.UnixMicro(), a.ExecutableName,
		a.BrowserURL, a.BrowserTitle, a.IPAddress, a.MACAddress, a.IdleActivity, a.ActivityType,
	)

	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("activity %s: %w", a.ID, ErrDuplicate)
	case err != nil:
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	return nil
}

// DeleteActivity removes the activity id owned by userID.
func (s *Store) DeleteActivity(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM activities WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return fmt.Errorf("activity %s: %w", id, ErrNotFound)
	}

	return nil
}

// FindActivities returns activities matching q ordered by start time.
func (s *Store) FindActivities(ctx context.Context, q *activity.Query) ([]*activity.Activity, error) {
	var (
		query strings.Builder
		args  = []any{q.UserID}
	)

	query.WriteString(`SELECT ` + activityColumns + ` FROM activities WHERE user_id = ?`)

	// Filter fields are validated against a closed set, so column names are safe.
	fields := make([]string, 0, len(q.Filters))
	for field := range q.Filters {
		fields = append(fields, string(field))
	}

	slices.Sort(fields)

	for _, field := range fields {
		query.WriteString(` AND ` + field + ` = ?`)
		args = append(args, q.Filters[activity.Field(field)])
	}

	if q.StartFrom != nil {
		query.WriteString(` AND start_time >= ?`)
		args = append(args, q.StartFrom.UnixMicro())
	}

	if q.EndUntil != nil {
		query.WriteString(` AND end_time <= ?`)
		args = append(args, q.EndUntil.UnixMicro())
	}

	query.WriteString(` ORDER BY start_time, id LIMIT ? OFFSET ?`)
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	var found []*activity.Activity

	for rows.Next() {
		var (
			a          activity.Activity
			start, end int64
		)

		if err = rows.Scan(&a.ID, &a.UserID, &start, &end, &a.ExecutableName, &a.BrowserURL,
			&a.BrowserTitle, &a.IPAddress, &a.MACAddress, &a.IdleActivity, &a.ActivityType); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		a.StartTime = time.UnixMicro(start).UTC()
		a.EndTime = time.UnixMicro(end).UTC()
		found = append(found, &a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read activities: %w", err)
	}

	return found, nil
}
