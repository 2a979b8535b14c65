// Package activity contains the activity model of the Innometrics API:
// a span of time spent in an executable, reported by a collector, together
// with the query and filter types used to look activities up.
package activity
