// Package session persists authenticated browser sessions in Redis, keyed by
// the binding hash that ties a client cookie to the low-level session ID and,
// optionally, the client IP.
//
// At most one record exists per binding hash at any instant: Create replaces
// whatever record held the same binding, and the Redis TTL performs the stale
// sweep.
package session
