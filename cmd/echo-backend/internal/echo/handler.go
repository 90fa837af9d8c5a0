package echo

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/logger"
)

// ReadBufferSize is the most bytes taken from the peer per read.
const ReadBufferSize = 1024

// ErrInvalidText is returned when a read does not decode as UTF-8.
var ErrInvalidText = errors.New("received bytes are not valid UTF-8")

// Handler sends the identity banner and then echoes every read back,
// tagged with the backend id.
type Handler struct {
	Identity Identity
}

// NewHandler returns a handler for the given identity.
func NewHandler(id Identity) *Handler {
	return &Handler{Identity: id}
}

// HandleConnection implements core.ConnectionHandler.
// It takes full ownership of the connection lifecycle.
func (h *Handler) HandleConnection(conn net.Conn) {
	log := logger.With(
		"backend_id", h.Identity.BackendID,
		"conn_id", uuid.NewString(),
		"remote_addr", conn.RemoteAddr().String(),
	)
	log.Info("Connection accepted")

	defer func() {
		conn.Close()
		log.Info("Client disconnected")
	}()

	if err := h.serve(conn, log); err != nil {
		log.Warn("Connection error", "error", err)
	}
}

// serve returns nil when the peer closes the stream.
func (h *Handler) serve(conn net.Conn, log *slog.Logger) error {
	peerIP, peerPort, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return fmt.Errorf("peer address: %w", err)
	}

	err = writeFrame(conn, func(dst []byte) []byte {
		return AppendBanner(dst, h.Identity, peerIP, peerPort)
	})
	if err != nil {
		return fmt.Errorf("write banner: %w", err)
	}

	buf := make([]byte, ReadBufferSize)
	for {
		n, readErr := conn.Read(buf)

		// Echo whatever arrived before looking at the read error
		if n > 0 {
			data := buf[:n]
			if !utf8.Valid(data) {
				return ErrInvalidText
			}
			log.Debug("Echoing", "bytes", n)

			err := writeFrame(conn, func(dst []byte) []byte {
				return AppendEcho(dst, h.Identity.BackendID, data)
			})
			if err != nil {
				return fmt.Errorf("write echo: %w", err)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return fmt.Errorf("read: %w", readErr)
		}
	}
}
