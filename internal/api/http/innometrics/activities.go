package innometrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/innometrics/innometrics-backend/internal/domain/activity"
	"github.com/innometrics/innometrics-backend/internal/logger"
	activitysvc "github.com/innometrics/innometrics-backend/internal/service/activity"
)

const (
	activityKey   = "activity"
	activitiesKey = "activities"
	activityIDKey = "activity_id"
)

var errWrongFormat = errors.New("wrong format")

func (s *Server) addActivity(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUser(c).ID

	data, err := requestData(c)
	if err != nil {
		respond(c, http.StatusBadRequest, "Wrong format")

		return
	}

	payload, err := jsonObject(data[activityKey])
	if err != nil {
		respond(c, http.StatusBadRequest, "Wrong format")

		return
	}

	var result any

	if batch, ok := payload[activitiesKey]; ok {
		items, decodeErr := decodeActivities(batch)
		if decodeErr != nil {
			respond(c, http.StatusBadRequest, "Wrong format")

			return
		}

		result, err = s.activities.AddBatch(ctx, userID, items)
	} else {
		item, decodeErr := decodeActivity(payload)
		if decodeErr != nil {
			respond(c, http.StatusBadRequest, "Wrong format")

			return
		}

		result, err = s.activities.Add(ctx, userID, item)
	}

	switch {
	case errors.Is(err, activity.ErrInvalid):
		respond(c, http.StatusBadRequest, "Wrong format")
	case err != nil:
		logger.ErrorKV(ctx, "failed to create activity", "error", err)
		respond(c, http.StatusInternalServerError, "Failed to create activity")
	default:
		c.JSON(http.StatusCreated, gin.H{messageKey: "Success", activityIDKey: result})
	}
}

func (s *Server) deleteActivity(c *gin.Context) {
	ctx := c.Request.Context()

	data, err := requestData(c)
	if err != nil {
		respond(c, http.StatusBadRequest, "Empty data")

		return
	}

	id := text(data, activityIDKey)
	if id == "" {
		respond(c, http.StatusBadRequest, "Empty data")

		return
	}

	err = s.activities.Delete(ctx, currentUser(c).ID, id)

	switch {
	case errors.Is(err, activitysvc.ErrNotFound):
		respond(c, http.StatusNotFound, "Activity with this id was not found")
	case err != nil:
		logger.ErrorKV(ctx, "failed to delete activity", "error", err)
		respond(c, http.StatusInternalServerError, "Failed to delete activity")
	default:
		respond(c, http.StatusOK, "Success")
	}
}

func (s *Server) findActivities(c *gin.Context) {
	ctx := c.Request.Context()

	query, err := parseQuery(c)
	if errors.Is(err, activity.ErrInvalidFilter) {
		respond(c, http.StatusBadRequest, "Wrong format for filters")

		return
	}

	if err != nil {
		respond(c, http.StatusBadRequest, "Wrong format")

		return
	}

	query.UserID = currentUser(c).ID

	found, err := s.activities.Find(ctx, query)

	switch {
	case errors.Is(err, activitysvc.ErrNotFound):
		respond(c, http.StatusNotFound, "Activities of current user were not found")
	case err != nil:
		logger.ErrorKV(ctx, "failed to fetch activities", "error", err)
		respond(c, http.StatusInternalServerError, "Failed to fetch activities")
	default:
		encoded := make([]map[string]string, 0, len(found))
		for _, a := range found {
			encoded = append(encoded, encodeActivity(a))
		}

		c.JSON(http.StatusOK, gin.H{messageKey: "Success", activitiesKey: encoded})
	}
}

func parseQuery(c *gin.Context) (*activity.Query, error) {
	query := &activity.Query{Limit: activity.DefaultLimit}

	var err error

	if raw := c.Query("offset"); raw != "" {
		if query.Offset, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("%w: offset: %w", errWrongFormat, err)
		}
	}

	if raw := c.Query("amount_to_return"); raw != "" {
		if query.Limit, err = strconv.Atoi(raw); err != nil {
			return nil, fmt.Errorf("%w: amount_to_return: %w", errWrongFormat, err)
		}
	}

	if raw := c.Query("filters"); raw != "" {
		var filters map[string]any
		if err = json.Unmarshal([]byte(raw), &filters); err != nil {
			return nil, fmt.Errorf("%w: filters: %w", errWrongFormat, err)
		}

		if query.Filters, err = activity.ParseFilters(filters); err != nil {
			return nil, err
		}
	}

	if raw := c.Query("start_time"); raw != "" {
		start, parseErr := activity.ParseTime(raw)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %w", errWrongFormat, parseErr)
		}

		query.StartFrom = &start
	}

	if raw := c.Query("end_time"); raw != "" {
		end, parseErr := activity.ParseTime(raw)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %w", errWrongFormat, parseErr)
		}

		query.EndUntil = &end
	}

	return query, nil
}

// jsonObject accepts an object or its JSON-encoded string form.
func jsonObject(value any) (map[string]any, error) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, nil
	case string:
		var object map[string]any
		if err := json.Unmarshal([]byte(typed), &object); err != nil {
			return nil, fmt.Errorf("%w: %w", errWrongFormat, err)
		}

		if object == nil {
			return nil, errWrongFormat
		}

		return object, nil
	default:
		return nil, errWrongFormat
	}
}

func decodeActivities(value any) ([]*activity.Activity, error) {
	list, ok := value.([]any)
	if !ok || len(list) == 0 {
		return nil, errWrongFormat
	}

	items := make([]*activity.Activity, 0, len(list))

	for _, raw := range list {
		object, isObject := raw.(map[string]any)
		if !isObject {
			return nil, errWrongFormat
		}

		item, err := decodeActivity(object)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

func decodeActivity(object map[string]any) (*activity.Activity, error) {
	a := new(activity.Activity)

	textFields := map[activity.Field]*string{
		activity.FieldExecutableName: &a.ExecutableName,
		activity.FieldBrowserURL:     &a.BrowserURL,
		activity.FieldBrowserTitle:   &a.BrowserTitle,
		activity.FieldIPAddress:      &a.IPAddress,
		activity.FieldMACAddress:     &a.MACAddress,
		activity.FieldActivityType:   &a.ActivityType,
	}

	for field, target := range textFields {
		value, ok := object[string(field)]
		if !ok || value == nil {
			continue
		}

		str, isString := value.(string)
		if !isString {
			return nil, fmt.Errorf("%w: %s must be a string", errWrongFormat, field)
		}

		*target = str
	}

	timeFields := map[activity.Field]*time.Time{
		activity.FieldStartTime: &a.StartTime,
		activity.FieldEndTime:   &a.EndTime,
	}

	for field, target := range timeFields {
		raw, ok := object[string(field)].(string)
		if !ok {
			continue
		}

		parsed, err := activity.ParseTime(raw)
		if err != nil {
			return nil, err
		}

		*target = parsed
	}

	switch idle := object[string(activity.FieldIdleActivity)].(type) {
	case nil:
	case bool:
		a.IdleActivity = idle
	case string:
		flag, err := strconv.ParseBool(idle)
		if err != nil {
			return nil, fmt.Errorf("%w: idle_activity: %w", errWrongFormat, err)
		}

		a.IdleActivity = flag
	default:
		return nil, fmt.Errorf("%w: idle_activity must be a boolean", errWrongFormat)
	}

	return a, nil
}

func encodeActivity(a *activity.Activity) map[string]string {
	return map[string]string{
		string(activity.FieldID):             a.ID,
		string(activity.FieldUser):           a.UserID,
		string(activity.FieldStartTime):      a.StartTime.Format(time.RFC3339Nano),
		string(activity.FieldEndTime):        a.EndTime.Format(time.RFC3339Nano),
		string(activity.FieldExecutableName): a.ExecutableName,
		string(activity.FieldBrowserURL):     a.BrowserURL,
		string(activity.FieldBrowserTitle):   a.BrowserTitle,
		string(activity.FieldIPAddress):      a.IPAddress,
		string(activity.FieldMACAddress):     a.MACAddress,
		string(activity.FieldIdleActivity):   strconv.FormatBool(a.IdleActivity),
		string(activity.FieldActivityType):   a.ActivityType,
	}
}
