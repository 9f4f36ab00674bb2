// Package store persists Jelly streams as ordered sequences of frames on top
// of a transactional key-value Storage.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/ksuid"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"github.com/aleksaelezovic/jelly/internal/metrics"
	"github.com/aleksaelezovic/jelly/internal/wire"
	"github.com/aleksaelezovic/jelly/pkg/jelly"
)

// Compression selects how frame payloads are stored.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

// ParseCompression validates a compression name. The empty string means none.
func ParseCompression(s string) (Compression, error) {
	switch Compression(s) {
	case "", CompressionNone:
		return CompressionNone, nil
	case CompressionZstd:
		return CompressionZstd, nil
	}
	return "", fmt.Errorf("unknown compression %q", s)
}

// codec byte stored in front of every frame payload
const (
	codecNone byte = 0
	codecZstd byte = 1
)

const (
	checksumSize = 8
	headerSize   = checksumSize + 1
	seqSize      = 8

	// deleteBatch bounds the number of keys removed per transaction.
	deleteBatch = 1000
)

// StreamMeta describes a stream when it is created.
type StreamMeta struct {
	Name         string            `json:"name,omitempty"`
	PhysicalType string            `json:"physical_type,omitempty"`
	LogicalType  string            `json:"logical_type,omitempty"`
	Labels       map[string]string `json:"labels,omitempty"`
}

// StreamInfo is the stored record of a stream.
type StreamInfo struct {
	StreamMeta
	ID        ksuid.KSUID `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Frames    uint64      `json:"frames"`
	Rows      uint64      `json:"rows"`
	Bytes     uint64      `json:"bytes"`
}

// Options holds frame store configuration
type Options struct {
	Compression Compression
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// FrameStore stores frames of many streams. Appends are serialized; reads
// run on their own snapshot.
type FrameStore struct {
	storage     Storage
	compression Compression
	log         *zap.Logger
	metrics     *metrics.Metrics

	enc *zstd.Encoder
	dec *zstd.Decoder

	mu sync.Mutex
}

// NewFrameStore creates a new frame store
func NewFrameStore(storage Storage, opts Options) (*FrameStore, error) {
	compression, err := ParseCompression(string(opts.Compression))
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &FrameStore{
		storage:     storage,
		compression: compression,
		log:         log.Named("store"),
		metrics:     opts.Metrics,
		enc:         enc,
		dec:         dec,
	}, nil
}

// Close closes the store and its storage
func (s *FrameStore) Close() error {
	s.dec.Close()
	if err := s.enc.Close(); err != nil {
		return err
	}
	return s.storage.Close()
}

// CreateStream registers a new empty stream
func (s *FrameStore) CreateStream(meta StreamMeta) (ksuid.KSUID, error) {
	info := StreamInfo{
		StreamMeta: meta,
		ID:         ksuid.New(),
		CreatedAt:  time.Now().UTC(),
	}

	txn, err := s.storage.Begin(true)
	if err != nil {
		return ksuid.Nil, err
	}
	defer txn.Rollback()

	if err := putInfo(txn, &info); err != nil {
		return ksuid.Nil, err
	}
	if err := txn.Commit(); err != nil {
		return ksuid.Nil, err
	}

	s.metrics.RecordStream()
	s.log.Info("stream created", zap.Stringer("stream", info.ID), zap.String("name", meta.Name))
	return info.ID, nil
}

// AppendFrame stores frame as the next frame of stream id.
func (s *FrameStore) AppendFrame(id ksuid.KSUID, frame jelly.Frame) error {
	payload, err := wire.MarshalFrame(frame)
	if err != nil {
		return err
	}
	value := s.seal(payload)

	s.mu.Lock()
	defer s.mu.Unlock()

	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	info, err := getInfo(txn, id)
	if err != nil {
		return err
	}
	if err := txn.Set(TableFrames, frameKey(id, info.Frames), value); err != nil {
		return fmt.Errorf("failed to store frame %d of stream %s: %w", info.Frames, id, err)
	}
	info.Frames++
	info.Rows += uint64(len(frame.Rows))
	info.Bytes += uint64(len(value))
	if err := putInfo(txn, info); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	s.metrics.RecordFrame(metrics.OpAppend, len(value))
	s.log.Debug("frame appended",
		zap.Stringer("stream", id),
		zap.Uint64("seq", info.Frames-1),
		zap.Int("rows", len(frame.Rows)),
		zap.Int("bytes", len(value)))
	return nil
}

// Stream returns the record of a stream
func (s *FrameStore) Stream(id ksuid.KSUID) (StreamInfo, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return StreamInfo{}, err
	}
	defer txn.Rollback()

	info, err := getInfo(txn, id)
	if err != nil {
		return StreamInfo{}, err
	}
	return *info, nil
}

// Streams lists all streams, oldest first.
func (s *FrameStore) Streams() ([]StreamInfo, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(TableStreams, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var streams []StreamInfo
	for it.Next() {
		value, err := it.Value()
		if err != nil {
			return nil, err
		}
		var info StreamInfo
		if err := gojson.Unmarshal(value, &info); err != nil {
			return nil, fmt.Errorf("corrupt stream record %x: %w", it.Key(), err)
		}
		streams = append(streams, info)
	}
	return streams, nil
}

// DeleteStream removes a stream and its frames
func (s *FrameStore) DeleteStream(id ksuid.KSUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.Stream(id); err != nil {
		return err
	}

	var deleted int
	for {
		n, err := s.deleteFrames(id)
		if err != nil {
			return err
		}
		deleted += n
		if n < deleteBatch {
			break
		}
	}

	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback()
	if err := txn.Delete(TableStreams, id.Bytes()); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		return err
	}

	s.metrics.RecordFrame(metrics.OpDelete, 0)
	s.log.Info("stream deleted", zap.Stringer("stream", id), zap.Int("frames", deleted))
	return nil
}

// deleteFrames removes up to deleteBatch frames of stream id.
func (s *FrameStore) deleteFrames(id ksuid.KSUID) (int, error) {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback()

	it, err := txn.Scan(TableFrames, id.Bytes())
	if err != nil {
		return 0, err
	}
	var keys [][]byte
	for len(keys) < deleteBatch && it.Next() {
		keys = append(keys, it.Key())
	}
	if err := it.Close(); err != nil {
		return 0, err
	}

	for _, key := range keys {
		if err := txn.Delete(TableFrames, key); err != nil {
			return 0, err
		}
	}
	return len(keys), txn.Commit()
}

// Frames returns an iterator over the frames of stream id in append order.
// The iterator reads a consistent snapshot and must be closed.
func (s *FrameStore) Frames(id ksuid.KSUID) (*FrameIterator, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	if _, err := getInfo(txn, id); err != nil {
		_ = txn.Rollback()
		return nil, err
	}
	it, err := txn.Scan(TableFrames, id.Bytes())
	if err != nil {
		_ = txn.Rollback()
		return nil, err
	}
	return &FrameIterator{store: s, txn: txn, it: it}, nil
}

// ForEachFrame calls fn for every frame of stream id in order.
func (s *FrameStore) ForEachFrame(id ksuid.KSUID, fn func(jelly.Frame) error) error {
	it, err := s.Frames(id)
	if err != nil {
		return err
	}
	defer it.Close()

	for it.Next() {
		frame, err := it.Frame()
		if err != nil {
			return err
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
	return nil
}

// seal compresses payload according to the store settings and prefixes it
// with the codec byte and a checksum over codec and payload.
func (s *FrameStore) seal(payload []byte) []byte {
	codec := codecNone
	if s.compression == CompressionZstd {
		codec = codecZstd
		payload = s.enc.EncodeAll(payload, nil)
	}
	value := make([]byte, headerSize, headerSize+len(payload))
	value[checksumSize] = codec
	value = append(value, payload...)
	binary.BigEndian.PutUint64(value, xxh3.Hash(value[checksumSize:]))
	return value
}

// open verifies and decompresses a stored frame value.
func (s *FrameStore) open(value []byte) ([]byte, error) {
	if len(value) < headerSize {
		return nil, jelly.Deserializationf("stored frame of %d bytes is too short", len(value))
	}
	if binary.BigEndian.Uint64(value) != xxh3.Hash(value[checksumSize:]) {
		return nil, jelly.Deserializationf("stored frame checksum mismatch")
	}
	payload := value[headerSize:]
	switch value[checksumSize] {
	case codecNone:
		return payload, nil
	case codecZstd:
		out, err := s.dec.DecodeAll(payload, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", jelly.ErrDeserialization, err)
		}
		return out, nil
	default:
		return nil, jelly.Deserializationf("unknown frame codec %d", value[checksumSize])
	}
}

// FrameIterator iterates over the stored frames of one stream.
type FrameIterator struct {
	store *FrameStore
	txn   Transaction
	it    Iterator
}

// Next advances to the next frame
func (i *FrameIterator) Next() bool {
	return i.it.Next()
}

// Seq returns the current sequence number
func (i *FrameIterator) Seq() uint64 {
	key := i.it.Key()
	if len(key) < seqSize {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(key)-seqSize:])
}

// Frame decodes the current frame
func (i *FrameIterator) Frame() (jelly.Frame, error) {
	value, err := i.it.Value()
	if err != nil {
		return jelly.Frame{}, err
	}
	payload, err := i.store.open(value)
	if err != nil {
		return jelly.Frame{}, fmt.Errorf("frame %d: %w", i.Seq(), err)
	}
	i.store.metrics.RecordFrame(metrics.OpRead, len(value))
	return wire.UnmarshalFrame(payload)
}

// Close closes the iterator
func (i *FrameIterator) Close() error {
	err := i.it.Close()
	if rerr := i.txn.Rollback(); err == nil {
		err = rerr
	}
	return err
}

func frameKey(id ksuid.KSUID, seq uint64) []byte {
	key := make([]byte, 0, ksuid.ByteLength+seqSize)
	key = append(key, id.Bytes()...)
	return binary.BigEndian.AppendUint64(key, seq)
}

func getInfo(txn Transaction, id ksuid.KSUID) (*StreamInfo, error) {
	value, err := txn.Get(TableStreams, id.Bytes())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("stream %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	var info StreamInfo
	if err := gojson.Unmarshal(value, &info); err != nil {
		return nil, fmt.Errorf("corrupt record of stream %s: %w", id, err)
	}
	return &info, nil
}

func putInfo(txn Transaction, info *StreamInfo) error {
	value, err := gojson.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode stream record: %w", err)
	}
	return txn.Set(TableStreams, info.ID.Bytes(), value)
}
