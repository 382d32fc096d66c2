// Package app provides the application service layer.
//
// Orchestrates the player use cases: fetching a record, redeeming an auth code
// (exchange, verify, reconcile, save) and touching a record for a code-less
// submission. Sits between HTTP handlers and domain repositories. Depends on
// domain interfaces, not concrete implementations.
package app
