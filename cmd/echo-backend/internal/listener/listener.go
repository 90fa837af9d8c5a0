// Package listener binds the echo backend's TCP socket.
package listener

// DefaultBacklog is the pending-connection queue length of the echo listener.
const DefaultBacklog = 5
