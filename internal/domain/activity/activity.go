package activity

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultType is used when a collector does not report an activity type.
const DefaultType = "os"

// ErrInvalid is returned for activities missing required data.
var ErrInvalid = errors.New("invalid activity")

// Activity is a single tracked activity of a user.
type Activity struct {
	// ID is a generated UUID.
	ID string
	// UserID is the owner.
	UserID string
	// StartTime and EndTime bound the activity.
	StartTime time.Time
	EndTime   time.Time
	// ExecutableName is the foreground executable.
	ExecutableName string
	// BrowserURL and BrowserTitle describe the browser tab, if any.
	BrowserURL   string
	BrowserTitle string
	// IPAddress and MACAddress identify the reporting machine.
	IPAddress  string
	MACAddress string
	// IdleActivity marks idle time.
	IdleActivity bool
	// ActivityType is the collector kind, e.g. "os" or "eclipse tab".
	ActivityType string
}

// Validate checks required fields and fills the default type.
func (a *Activity) Validate() error {
	var missing []string

	if a.StartTime.IsZero() {
		missing = append(missing, string(FieldStartTime))
	}

	if a.EndTime.IsZero() {
		missing = append(missing, string(FieldEndTime))
	}

	if a.ExecutableName == "" {
		missing = append(missing, string(FieldExecutableName))
	}

	if a.IPAddress == "" {
		missing = append(missing, string(FieldIPAddress))
	}

	if a.MACAddress == "" {
		missing = append(missing, string(FieldMACAddress))
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalid, strings.Join(missing, ", "))
	}

	if a.EndTime.Before(a.StartTime) {
		return fmt.Errorf("%w: end_time is before start_time", ErrInvalid)
	}

	if a.ActivityType == "" {
		a.ActivityType = DefaultType
	}

	return nil
}

// timeLayouts are accepted for start and end times, tried in order.
//
//nolint:gochecknoglobals // Read-only table.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTime parses a timestamp sent by a collector. Values without a zone are UTC.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unrecognized time %q", ErrInvalid, value)
}
