// Package realtime implements the board room model: a registry of live
// websocket connections per board, best-effort event fan-out to room
// members, and the connection gateway that authenticates sockets and
// bridges their control messages to the registry.
//
// Fan-out is fire-and-forget. A slow or dead connection never blocks the
// mutation path; clients that miss events resynchronize by re-fetching
// board state.
package realtime
