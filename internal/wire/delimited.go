package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// MaxDelimitedFrameSize bounds the length prefix accepted by ReadDelimited.
const MaxDelimitedFrameSize = 64 << 20

// MarshalDelimited encodes frame with a varint length prefix, the layout of
// a delimited Jelly file.
func MarshalDelimited(frame jelly.Frame) ([]byte, error) {
	msg, err := MarshalFrame(frame)
	if err != nil {
		return nil, err
	}
	return protowire.AppendBytes(nil, msg), nil
}

// WriteDelimited writes one length-prefixed frame to w.
func WriteDelimited(w io.Writer, frame jelly.Frame) error {
	b, err := MarshalDelimited(frame)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadDelimited reads one length-prefixed frame from r. It returns io.EOF
// when r is exhausted at a frame boundary.
func ReadDelimited(r *bufio.Reader) (jelly.Frame, error) {
	size, err := binary.ReadUvarint(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return jelly.Frame{}, io.EOF
		}
		return jelly.Frame{}, fmt.Errorf("%w: reading frame length: %v", jelly.ErrDeserialization, err)
	}
	if size > MaxDelimitedFrameSize {
		return jelly.Frame{}, jelly.Deserializationf("frame of %d bytes exceeds the %d byte limit", size, MaxDelimitedFrameSize)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return jelly.Frame{}, fmt.Errorf("%w: truncated frame: %v", jelly.ErrDeserialization, err)
	}
	return UnmarshalFrame(buf)
}
