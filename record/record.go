// Package record implements the on-disk encoding for a single WAL entry:
// a fixed 18-byte header followed by the key and (optionally compressed)
// value bytes. Records are self-delimiting and forward-only — nothing in
// this package ever seeks backward to decode a record.
package record

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"
)

// Kind identifies whether a record is a Put or a Delete.
type Kind uint8

const (
	KindPut Kind = 0
	KindDelete Kind = 1
)

// flags bits within the header's flags byte.
const (
	flagCompressed = 1 << 0
	flagsReserved  = ^uint8(flagCompressed) // every other bit must be zero
)

// HeaderSize is the fixed width of a record header, in bytes.
const HeaderSize = 1 + 1 + 4 + 4 + 8 // kind, flags, key_len, value_len, expires_at

var (
	// ErrInvalidInput is returned for structurally invalid records: empty
	// keys, non-zero value_len on a Delete, or oversize key/value.
	ErrInvalidInput = errors.New("record: invalid input")
	// ErrCorruption is returned when a header or payload fails to decode.
	ErrCorruption = errors.New("record: corrupt data")
)

// MaxLen bounds key and value length, matching the 32-bit on-disk width.
const MaxLen = 1<<32 - 1

// Record is one decoded WAL entry.
type Record struct {
	Kind      Kind
	Key       []byte
	Value     []byte // empty for Delete
	ExpiresAt uint64 // unix seconds, 0 = never

	// Compressed reports whether Value was stored compressed on disk; set
	// by Decode (engine recovery copies it into the index pointer). Value
	// itself is always the logical (decompressed) value.
	Compressed bool
}

// EncodeOptions controls how Encode renders a record to bytes.
type EncodeOptions struct {
	// Compress requests Snappy compression of the value payload. Ignored
	// for Delete records (whose value is always empty).
	Compress bool
}

// Validate checks the structural invariants spec.md §4.2 requires before a
// record is encoded.
func (r *Record) Validate() error {
	if len(r.Key) == 0 {
		return fmt.Errorf("%w: empty key", ErrInvalidInput)
	}
	if len(r.Key) > MaxLen || len(r.Value) > MaxLen {
		return fmt.Errorf("%w: key or value exceeds %d bytes", ErrInvalidInput, MaxLen)
	}
	if r.Kind == KindDelete && len(r.Value) != 0 {
		return fmt.Errorf("%w: delete record carries a value", ErrInvalidInput)
	}
	if r.Kind != KindPut && r.Kind != KindDelete {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidInput, r.Kind)
	}
	return nil
}

// Encode renders r to its on-disk byte representation.
func Encode(r *Record, opts EncodeOptions) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	value := r.Value
	compressed := false
	if opts.Compress && r.Kind == KindPut && len(value) > 0 {
		value = snappy.Encode(nil, r.Value)
		compressed = true
	}
	if len(value) > MaxLen {
		return nil, fmt.Errorf("%w: compressed value exceeds %d bytes", ErrInvalidInput, MaxLen)
	}

	buf := make([]byte, HeaderSize+len(r.Key)+len(value))
	buf[0] = byte(r.Kind)
	if compressed {
		buf[1] = flagCompressed
	}
	binary.LittleEndian.PutUint32(buf[2:6], uint32(len(r.Key)))
	binary.LittleEndian.PutUint32(buf[6:10], uint32(len(value)))
	binary.LittleEndian.PutUint64(buf[10:18], r.ExpiresAt)
	copy(buf[HeaderSize:], r.Key)
	copy(buf[HeaderSize+len(r.Key):], value)
	return buf, nil
}

// Header is the decoded, fixed-width portion of a record, before the key
// and value bytes are read. Decode uses it to size the key and value reads
// before allocating them.
type Header struct {
	Kind       Kind
	Compressed bool
	KeyLen     uint32
	ValueLen   uint32
	ExpiresAt  uint64
}

// Size returns the total on-disk size of the record this header describes.
func (h Header) Size() int64 {
	return int64(HeaderSize) + int64(h.KeyLen) + int64(h.ValueLen)
}

// DecodeHeader parses exactly HeaderSize bytes. It does not validate
// key/value lengths against MaxLen (the wire width already bounds them);
// it does validate kind, reserved flag bits, and the Delete/value_len
// relationship required by spec.md §4.2.
func DecodeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: short header", ErrCorruption)
	}
	kind := Kind(b[0])
	flags := b[1]
	if kind != KindPut && kind != KindDelete {
		return Header{}, fmt.Errorf("%w: unknown kind %d", ErrCorruption, kind)
	}
	if flags&flagsReserved != 0 {
		return Header{}, fmt.Errorf("%w: reserved flag bits set", ErrCorruption)
	}
	h := Header{
		Kind:       kind,
		Compressed: flags&flagCompressed != 0,
		KeyLen:     binary.LittleEndian.Uint32(b[2:6]),
		ValueLen:   binary.LittleEndian.Uint32(b[6:10]),
		ExpiresAt:  binary.LittleEndian.Uint64(b[10:18]),
	}
	if h.KeyLen == 0 {
		return Header{}, fmt.Errorf("%w: zero-length key", ErrCorruption)
	}
	if h.Kind == KindDelete && h.ValueLen != 0 {
		return Header{}, fmt.Errorf("%w: delete record carries value_len %d", ErrCorruption, h.ValueLen)
	}
	return h, nil
}

// Decode reads one full record (header + key + value) from r, decompressing
// the value payload if the compressed flag is set. It returns io.EOF only
// when r is exhausted before any bytes of a new record are read; any other
// short read is reported as ErrCorruption so callers can distinguish a
// clean end-of-file from a truncated trailing record.
func Decode(r io.Reader) (*Record, int64, error) {
	hdrBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hdrBuf); err != nil {
		if err == io.EOF {
			return nil, 0, io.EOF
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrCorruption, err)
	}
	h, err := DecodeHeader(hdrBuf)
	if err != nil {
		return nil, 0, err
	}

	key := make([]byte, h.KeyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, 0, fmt.Errorf("%w: truncated key: %v", ErrCorruption, err)
	}

	raw := make([]byte, h.ValueLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, 0, fmt.Errorf("%w: truncated value: %v", ErrCorruption, err)
	}

	value := raw
	if h.Compressed {
		value, err = snappy.Decode(nil, raw)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: snappy decode: %v", ErrCorruption, err)
		}
	}

	rec := &Record{
		Kind:       h.Kind,
		Key:        key,
		Value:      value,
		ExpiresAt:  h.ExpiresAt,
		Compressed: h.Compressed,
	}
	return rec, h.Size(), nil
}

// Expired reports whether a record with the given absolute expiry has
// expired as of now (unix seconds). expiresAt == 0 means "never expires".
func Expired(expiresAt uint64, now uint64) bool {
	return expiresAt != 0 && expiresAt <= now
}
