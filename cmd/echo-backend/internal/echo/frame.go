package echo

import (
	"bytes"
	"io"

	"github.com/valyala/bytebufferpool"
)

// Identity is the read-only label pair every handler reports.
type Identity struct {
	BackendID string
	Region    string
}

// AppendBanner appends
// "Backend: <id> | Region: <region> | Your IP: <ip>:<port>\n" to dst.
func AppendBanner(dst []byte, id Identity, peerIP, peerPort string) []byte {
	dst = append(dst, "Backend: "...)
	dst = append(dst, id.BackendID...)
	dst = append(dst, " | Region: "...)
	dst = append(dst, id.Region...)
	dst = append(dst, " | Your IP: "...)
	dst = append(dst, peerIP...)
	dst = append(dst, ':')
	dst = append(dst, peerPort...)
	return append(dst, '\n')
}

// AppendEcho appends "[<id>] Echo: <content>\n" to dst, with leading and
// trailing whitespace removed from content.
func AppendEcho(dst []byte, backendID string, content []byte) []byte {
	dst = append(dst, '[')
	dst = append(dst, backendID...)
	dst = append(dst, "] Echo: "...)
	dst = append(dst, bytes.TrimSpace(content)...)
	return append(dst, '\n')
}

// writeFrame builds a frame in a pooled buffer and sends it in one Write.
func writeFrame(w io.Writer, build func(dst []byte) []byte) error {
	bb := bytebufferpool.Get()
	defer bytebufferpool.Put(bb)

	bb.B = build(bb.B[:0])
	_, err := w.Write(bb.B)
	return err
}
