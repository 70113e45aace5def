package ragbase

import (
	"io"
)

// Pipe returns a connected reader/writer pair backed by io.Pipe. Flows
// use one pair per stage boundary; closing the writer signals EOF to the
// downstream stage.
func Pipe() (*PipeReader, *PipeWriter) {
	r, w := io.Pipe()
	return &PipeReader{PipeReader: r}, &PipeWriter{PipeWriter: w}
}

// PipeReader is the read side of a stage boundary. CloseWithError
// propagates a stage failure upstream so blocked writers unwind.
type PipeReader struct {
	*io.PipeReader
}

// PipeWriter is the write side of a stage boundary.
type PipeWriter struct {
	*io.PipeWriter
}
