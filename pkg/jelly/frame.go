package jelly

// Frame is a bounded batch of rows with optional free-form metadata.
type Frame struct {
	Rows     []Row
	Metadata map[string][]byte
}

// FrameBuffer is a RowSink that groups rows into frames of at most maxRows
// rows. Completed frames are handed to the flush function in order.
//
// Rows are retained until their frame is flushed, so a FrameBuffer must only
// be fed by encoders that allocate a fresh row per Append (all encoders in
// this module do).
type FrameBuffer struct {
	maxRows int
	rows    []Row
	flush   func(Frame) error
	err     error
}

// NewFrameBuffer creates a buffer that calls flush for every full frame.
// A maxRows below 1 is treated as 1.
func NewFrameBuffer(maxRows int, flush func(Frame) error) *FrameBuffer {
	if maxRows < 1 {
		maxRows = 1
	}
	return &FrameBuffer{
		maxRows: maxRows,
		rows:    make([]Row, 0, maxRows),
		flush:   flush,
	}
}

// Append buffers row and flushes when the frame is full. A flush error is
// kept and returned by the next Flush; later rows are dropped.
func (b *FrameBuffer) Append(row Row) {
	if b.err != nil {
		return
	}
	b.rows = append(b.rows, row)
	if len(b.rows) >= b.maxRows {
		b.err = b.emit()
	}
}

// Len returns the number of buffered rows.
func (b *FrameBuffer) Len() int {
	return len(b.rows)
}

// Flush emits the buffered rows as a (possibly short) frame.
func (b *FrameBuffer) Flush() error {
	if b.err != nil {
		return b.err
	}
	if len(b.rows) == 0 {
		return nil
	}
	b.err = b.emit()
	return b.err
}

func (b *FrameBuffer) emit() error {
	frame := Frame{Rows: b.rows}
	b.rows = make([]Row, 0, b.maxRows)
	return b.flush(frame)
}
