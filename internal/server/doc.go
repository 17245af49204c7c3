// Package server implements the GoChat relay: a TCP chat server that binds
// each connection to the name it sends first and relays every later read
// to all other connected clients, announcing joins and departures with
// ">>> " notices.
//
// The implementation is organized into specialized files for configuration,
// the connection registry, the hub loop and its session handling, the
// broadcaster, and the TCP and WebSocket transports.
package server
