package recorder

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"main/internal/codec"
	"main/internal/schema"

	"github.com/yanun0323/errors"
)

var (
	ErrClosed          = errors.New("journal writer closed")
	ErrPayloadTooLarge = errors.New("journal payload too large")
)

const maxPayloadLen = uint64(^uint32(0))

// Writer appends tick records to journal segments. It is synchronous:
// callers own the pacing, which keeps conversion runs deterministic.
// Not safe for concurrent use.
type Writer struct {
	cfg    Config
	seg    *segmentWriter
	segID  uint64
	seq    uint64
	closed bool

	headerBuf   []byte
	payloadBuf  []byte
	checksumBuf [recordChecksumSize]byte
}

// NewWriter creates a journal writer and ensures the target directory exists.
func NewWriter(cfg Config) (*Writer, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}
	return &Writer{
		cfg:       cfg,
		headerBuf: make([]byte, recordHeaderSize),
	}, nil
}

// AppendTick encodes and appends one tick. Sequence numbers are assigned
// in append order starting at 1.
func (w *Writer) AppendTick(t schema.Tick, source uint16, recvNano int64) error {
	if w.closed {
		return ErrClosed
	}
	w.seq++
	w.payloadBuf = codec.EncodeTick(w.payloadBuf, t)
	header := schema.NewHeader(schema.EventTick, source, w.seq, t.TsEventNano, recvNano)
	return w.append(header, w.payloadBuf)
}

// Append appends one raw record.
func (w *Writer) Append(header schema.EventHeader, payload []byte) error {
	if w.closed {
		return ErrClosed
	}
	if header.Version == 0 {
		header.Version = schema.SchemaVersion
	}
	return w.append(header, payload)
}

// Flush forces buffered data onto the current segment file.
func (w *Writer) Flush() error {
	if w.seg == nil {
		return nil
	}
	return w.seg.buf.Flush()
}

// Close flushes, syncs and closes the current segment.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.closeSegment()
}

func (w *Writer) append(header schema.EventHeader, payload []byte) error {
	if uint64(len(payload)) > maxPayloadLen {
		return ErrPayloadTooLarge
	}

	recordSize := int64(recordHeaderSize + len(payload) + recordChecksumSize)
	if w.seg == nil || (w.cfg.SegmentMaxBytes > 0 && w.seg.size+recordSize > w.cfg.SegmentMaxBytes) {
		if err := w.rotate(); err != nil {
			return err
		}
	}

	encodeHeader(w.headerBuf, header, len(payload))
	binary.LittleEndian.PutUint32(w.checksumBuf[:], checksum(w.headerBuf, payload))

	if _, err := w.seg.buf.Write(w.headerBuf); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.seg.buf.Write(payload); err != nil {
			return err
		}
	}
	if _, err := w.seg.buf.Write(w.checksumBuf[:]); err != nil {
		return err
	}

	w.seg.size += recordSize
	return nil
}

func (w *Writer) rotate() error {
	if err := w.closeSegment(); err != nil {
		return err
	}

	ts := time.Now().UTC().Format("20060102-150405")
	for {
		w.segID++
		name := fmt.Sprintf("%s-%s-%06d.wal", w.cfg.FilePrefix, ts, w.segID)
		path := filepath.Join(w.cfg.Dir, name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, os.ErrExist) {
				continue
			}
			return err
		}
		w.seg = &segmentWriter{
			file: file,
			buf:  bufio.NewWriterSize(file, w.cfg.BufferSize),
		}
		return nil
	}
}

func (w *Writer) closeSegment() error {
	if w.seg == nil {
		return nil
	}
	seg := w.seg
	w.seg = nil
	if err := seg.buf.Flush(); err != nil {
		_ = seg.file.Close()
		return err
	}
	if w.cfg.SyncOnRotate {
		if err := seg.file.Sync(); err != nil {
			_ = seg.file.Close()
			return err
		}
	}
	return seg.file.Close()
}

type segmentWriter struct {
	file *os.File
	buf  *bufio.Writer
	size int64
}
