// Package account registers users, logs them in with access tokens and
// resolves tokens back to users.
package account
