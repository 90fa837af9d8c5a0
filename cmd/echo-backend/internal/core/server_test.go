package core

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeDispatchesWithoutWaiting(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	release := make(chan struct{})
	accepted := make(chan string, 2)

	srv := &Server{
		Listener: ln,
		ConnectionHandler: ConnectionHandlerFunc(func(conn net.Conn) {
			defer conn.Close()
			accepted <- conn.RemoteAddr().String()
			<-release
		}),
	}

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	first, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer first.Close()
	second, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer second.Close()

	// both handlers run even though the first one is still blocked
	for i := 0; i < 2; i++ {
		select {
		case <-accepted:
		case <-time.After(2 * time.Second):
			t.Fatal("handler was not started")
		}
	}
	close(release)

	require.NoError(t, ln.Close())
	select {
	case err := <-done:
		assert.ErrorIs(t, err, net.ErrClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after listener close")
	}
}

func TestServeHandlerOwnsConnection(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	srv := &Server{
		Listener: ln,
		ConnectionHandler: ConnectionHandlerFunc(func(conn net.Conn) {
			defer conn.Close()
			conn.Write([]byte("hi\n"))
		}),
	}
	go srv.Serve()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "hi\n", line)
}
