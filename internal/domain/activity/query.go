package activity

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Field names an activity attribute in requests, responses and filters.
type Field string

// Activity fields as named on the wire.
const (
	FieldID             Field = "id"
	FieldUser           Field = "user"
	FieldStartTime      Field = "start_time"
	FieldEndTime        Field = "end_time"
	FieldExecutableName Field = "executable_name"
	FieldBrowserURL     Field = "browser_url"
	FieldBrowserTitle   Field = "browser_title"
	FieldIPAddress      Field = "ip_address"
	FieldMACAddress     Field = "mac_address"
	FieldIdleActivity   Field = "idle_activity"
	FieldActivityType   Field = "activity_type"
)

const (
	// DefaultLimit is the number of activities returned when none is requested.
	DefaultLimit = 100
	// MaxLimit caps the number of activities returned by one query.
	MaxLimit = 1000
)

// ErrInvalidFilter is returned for filters on unknown fields or with unusable values.
var ErrInvalidFilter = errors.New("invalid filter")

// Query selects activities of one user.
type Query struct {
	// UserID restricts results to the owner.
	UserID string
	// Offset skips that many matches.
	Offset int
	// Limit bounds the number of results, clamped to MaxLimit.
	Limit int
	// Filters are equality conditions; values are string or bool.
	Filters map[Field]any
	// StartFrom is the minimum start time, if set.
	StartFrom *time.Time
	// EndUntil is the maximum end time, if set.
	EndUntil *time.Time
}

// Normalize clamps offset and limit.
func (q *Query) Normalize() {
	if q.Offset < 0 {
		q.Offset = 0
	}

	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}

	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
}

// ParseFilters validates decoded JSON filters. Only textual fields and
// idle_activity can be filtered on.
func ParseFilters(raw map[string]any) (map[Field]any, error) {
	filters := make(map[Field]any, len(raw))

	for key, value := range raw {
		field := Field(key)

		switch field {
		case FieldExecutableName, FieldBrowserURL, FieldBrowserTitle,
			FieldIPAddress, FieldMACAddress, FieldActivityType:
			text, ok := value.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidFilter, key)
			}

			filters[field] = text
		case FieldIdleActivity:
			flag, err := toBool(value)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFilter, key, err)
			}

			filters[field] = flag
		default:
			return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, key)
		}
	}

	return filters, nil
}

func toBool(value any) (bool, error) {
	switch typed := value.(type) {
	case bool:
		return typed, nil
	case string:
		return strconv.ParseBool(typed)
	default:
		return false, fmt.Errorf("unsupported value %v", value)
	}
}
