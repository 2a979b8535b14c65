// Package innometrics implements the HTTP transport of the Innometrics API.
//
// It maps JSON and form requests onto the account and activity services,
// authenticates callers by token, exposes Prometheus metrics and describes
// its routes in a Swagger document written at startup.
package innometrics
