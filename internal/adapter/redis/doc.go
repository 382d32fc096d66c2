// Package redis implements the player and session repositories on Redis.
//
// Players are stored as one JSON document per key so that CreateIfAbsent is a
// single SETNX. OAuth tokens inside the document go through crypto.Service
// before they are written.
package redis
