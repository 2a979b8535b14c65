// Package account contains the user model of the Innometrics API.
package account
