package store

import (
	"github.com/segmentio/ksuid"

	"github.com/aleksaelezovic/jelly/internal/metrics"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// DefaultMaxRows is the frame size used when a FrameWriter is given none.
const DefaultMaxRows = 256

// FrameWriter is a jelly.RowSink that appends rows to a stored stream,
// one frame every maxRows rows. Call Flush when the encoder is done.
type FrameWriter struct {
	store *FrameStore
	id    ksuid.KSUID
	buf   *jelly.FrameBuffer
}

// NewFrameWriter creates a new frame writer
func (s *FrameStore) NewFrameWriter(id ksuid.KSUID, maxRows int) *FrameWriter {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	w := &FrameWriter{store: s, id: id}
	w.buf = jelly.NewFrameBuffer(maxRows, func(frame jelly.Frame) error {
		return s.AppendFrame(id, frame)
	})
	return w
}

// Append implements jelly.RowSink
func (w *FrameWriter) Append(row jelly.Row) {
	w.store.metrics.RecordRow(metrics.DirectionOut, jelly.RowKind(row))
	w.buf.Append(row)
}

// Flush stores the buffered rows as a final short frame and reports the
// first append error, if any.
func (w *FrameWriter) Flush() error {
	return w.buf.Flush()
}

// StreamID returns the target stream
func (w *FrameWriter) StreamID() ksuid.KSUID {
	return w.id
}
