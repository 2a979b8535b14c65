// Package auth hashes passwords with bcrypt and issues HS256 JWT access
// tokens carrying the user id as subject.
package auth
