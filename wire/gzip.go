package wire

import (
	"bytes"
	"compress/gzip"
	"io"
)

// Inflate decompresses a gzip-binary WebSocket payload, used by venues
// (HTX) that send every frame — including heartbeats — as gzip binary.
func Inflate(payload []byte) ([]byte, error) {
	reader, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}
