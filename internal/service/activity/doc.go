// Package activity adds, deletes and finds the activities of a user.
package activity
