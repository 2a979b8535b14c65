package innometrics

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type (
	// parameter describes one request parameter in the API document.
	parameter struct {
		In          string `yaml:"in"`
		Name        string `yaml:"name"`
		Description string `yaml:"description,omitempty"`
		Required    bool   `yaml:"required"`
		Type        string `yaml:"type"`
	}

	// endpoint binds a route to its handler and documentation.
	endpoint struct {
		methods       []string
		path          string
		summary       string
		description   string
		authenticated bool
		parameters    []parameter
		responses     map[int]string
		handle        func(*Server, *gin.Context)
	}
)

//nolint:gochecknoglobals // Read-only route table shared by the router and the API document.
var endpoints = []endpoint{
	{
		methods:     []string{http.MethodGet, http.MethodPost},
		path:        "/login",
		summary:     "Login endpoint.",
		description: "Login a user with email.",
		parameters: []parameter{
			{In: "formData", Name: "email", Description: "an email of the user", Required: true, Type: "string"},
			{In: "formData", Name: "password", Description: "a password of the user", Required: true, Type: "string"},
		},
		responses: map[int]string{
			http.StatusBadRequest:   "Parameters are not correct",
			http.StatusNotFound:     "User was not found",
			http.StatusUnauthorized: "Credentials provided are incorrect",
			http.StatusOK:           "User was logged in",
		},
		handle: (*Server).login,
	},
	{
		methods:     []string{http.MethodPost},
		path:        "/user",
		summary:     "User registration endpoint.",
		description: "Register a user.",
		parameters: []parameter{
			{In: "formData", Name: "email", Description: "an email of the user", Required: true, Type: "string"},
			{In: "formData", Name: "password", Description: "a password of the user", Required: true, Type: "string"},
			{In: "formData", Name: "name", Description: "a name of the user", Required: true, Type: "string"},
			{In: "formData", Name: "surname", Description: "a surname of the user", Required: true, Type: "string"},
		},
		responses: map[int]string{
			http.StatusBadRequest:          "Parameters are not correct",
			http.StatusConflict:            "User with this email already exists",
			http.StatusInternalServerError: "Failed to create the user",
			http.StatusOK:                  "User was registered",
		},
		handle: (*Server).register,
	},
	{
		methods:       []string{http.MethodDelete},
		path:          "/user",
		summary:       "User deletion endpoint.",
		description:   "Delete the current user and all of its activities.",
		authenticated: true,
		responses: map[int]string{
			http.StatusInternalServerError: "Failed to delete the user",
			http.StatusOK:                  "User was deleted",
		},
		handle: (*Server).deleteUser,
	},
	{
		methods:       []string{http.MethodPost},
		path:          "/logout",
		summary:       "Logout endpoint.",
		description:   "Logout the current user.",
		authenticated: true,
		responses: map[int]string{
			http.StatusOK: "User was logged out",
		},
		handle: (*Server).logout,
	},
	{
		methods:       []string{http.MethodPost},
		path:          "/activity",
		summary:       "Add activity endpoint.",
		description:   "Add one activity, or several under the activities key.",
		authenticated: true,
		parameters: []parameter{
			{In: "formData", Name: "activity", Description: "an activity or {\"activities\": [...]}", Required: true, Type: "string"},
		},
		responses: map[int]string{
			http.StatusBadRequest:          "Parameters are not correct",
			http.StatusInternalServerError: "Failed to create the activity",
			http.StatusCreated:             "Activity was added",
		},
		handle: (*Server).addActivity,
	},
	{
		methods:       []string{http.MethodDelete},
		path:          "/activity",
		summary:       "Delete activity endpoint.",
		description:   "Delete an activity of the current user.",
		authenticated: true,
		parameters: []parameter{
			{In: "formData", Name: "activity_id", Description: "an id of the activity", Required: true, Type: "string"},
		},
		responses: map[int]string{
			http.StatusBadRequest: "Parameters are not correct",
			http.StatusNotFound:   "Activity with this id was not found",
			http.StatusOK:         "Activity was deleted",
		},
		handle: (*Server).deleteActivity,
	},
	{
		methods:       []string{http.MethodGet},
		path:          "/activity",
		summary:       "Find activities endpoint.",
		description:   "Find activities of the current user.",
		authenticated: true,
		parameters: []parameter{
			{In: "query", Name: "offset", Description: "number of activities to skip", Type: "integer"},
			{In: "query", Name: "amount_to_return", Description: "number of activities to return, at most 1000", Type: "integer"},
			{In: "query", Name: "filters", Description: "a JSON object of field values to match", Type: "string"},
			{In: "query", Name: "start_time", Description: "minimum start time", Type: "string"},
			{In: "query", Name: "end_time", Description: "maximum end time", Type: "string"},
		},
		responses: map[int]string{
			http.StatusBadRequest: "Wrong format",
			http.StatusNotFound:   "No activities were found",
			http.StatusOK:         "A list of activities was returned",
		},
		handle: (*Server).findActivities,
	},
}
