// Package store provides SQLite-backed durable storage for transcription
// records.
//
// The store is an append-only table keyed by a store-assigned integer id with
// a UNIQUE constraint on the audio file name:
//   - Insert is the only write path; uniqueness is enforced by SQLite inside a
//     single immediate transaction, so two concurrent inserts of the same file
//     name can never both succeed.
//   - Reads are ordered by id (insertion order).
//   - Ids are never reused (AUTOINCREMENT).
//
// # Connection Discipline
//
// Every operation checks out its own connection from the pool and returns it
// before the call completes. Acquisition and lock waits are bounded by the
// configured timeout; expiry surfaces as ErrStoreTimeout.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during a write
//   - _txlock=immediate: writers take the RESERVED lock at BEGIN
//   - busy_timeout: equal to the acquisition timeout
package store
