// Package service provides the application-level services for boards,
// lists, tasks, activity, and users. Every mutation follows the same
// pipeline: authorize against the owning board, validate the input,
// apply the row change and any sibling position shifts in one
// transaction, then broadcast the event to the board room and append an
// activity record. Broadcast and activity are best-effort: their failure
// never rolls back or fails the committed mutation.
package service
