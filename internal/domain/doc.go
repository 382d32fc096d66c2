// Package domain defines the core domain types and interfaces.
//
// Player records, credentials, session bindings and the contracts of the
// upstream Play Games collaborators. Only value-type helpers live here; the
// orchestration is in package app.
package domain
