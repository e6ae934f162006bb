// Package domain contains the core entities of the board system: boards,
// lists, tasks, task assignments, activity records, users, and the realtime
// event envelope. Entities validate themselves; persistence and transport
// concerns live in the store and realtime packages.
package domain
