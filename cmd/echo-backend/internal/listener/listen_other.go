//go:build !unix

package listener

import (
	"net"
	"strconv"
)

// Listen falls back to the runtime's listener. The backlog argument is
// ignored on this platform and the OS default applies.
func Listen(host string, port, _ int) (net.Listener, error) {
	return net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
}
