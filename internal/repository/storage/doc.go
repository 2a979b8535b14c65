// Package storage keeps Innometrics users and activities in SQLite.
package storage
