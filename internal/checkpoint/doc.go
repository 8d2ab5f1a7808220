// Package checkpoint persists conversation state in SQLite.
//
// Each thread's full state (transcript, rolling summary, and any pending
// interrupted tool call) is serialized as a single JSON row keyed by thread
// ID, replaced atomically on every save. A fresh process that loads the row
// sees exactly what the previous one saved, which is what makes resuming an
// interrupted turn across restarts possible.
//
// The Manager hands out one Store per thread and refcounts open handles so
// concurrent sessions on the same thread share a connection.
package checkpoint
