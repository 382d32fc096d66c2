// Package playgames talks to Google: the OAuth token endpoint for auth code
// exchange, and the Play Games API for verifying the resulting token.
//
// Every outbound call goes through a shared circuit breaker and is timed.
// Client errors (4xx) from Google do not count against the breaker because
// they are caused by the caller's auth code, not by an unhealthy upstream.
package playgames
