package record

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		rec     Record
		compress bool
	}{
		{"put with value", Record{Kind: KindPut, Key: []byte("a"), Value: []byte("hello")}, false},
		{"put empty value", Record{Kind: KindPut, Key: []byte("a"), Value: nil}, false},
		{"put with ttl", Record{Kind: KindPut, Key: []byte("k"), Value: []byte("v"), ExpiresAt: 12345}, false},
		{"delete", Record{Kind: KindDelete, Key: []byte("gone")}, false},
		{"compressed value", Record{Kind: KindPut, Key: []byte("k"), Value: bytes.Repeat([]byte("ab"), 100)}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf, err := Encode(&tc.rec, EncodeOptions{Compress: tc.compress})
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, n, err := Decode(bytes.NewReader(buf))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if n != int64(len(buf)) {
				t.Fatalf("decoded size %d, want %d", n, len(buf))
			}
			if got.Kind != tc.rec.Kind {
				t.Fatalf("kind = %v, want %v", got.Kind, tc.rec.Kind)
			}
			if !bytes.Equal(got.Key, tc.rec.Key) {
				t.Fatalf("key = %q, want %q", got.Key, tc.rec.Key)
			}
			if !bytes.Equal(got.Value, tc.rec.Value) {
				t.Fatalf("value = %q, want %q", got.Value, tc.rec.Value)
			}
			if got.ExpiresAt != tc.rec.ExpiresAt {
				t.Fatalf("expiresAt = %d, want %d", got.ExpiresAt, tc.rec.ExpiresAt)
			}
			if got.Compressed != tc.compress {
				t.Fatalf("compressed = %v, want %v", got.Compressed, tc.compress)
			}
		})
	}
}

func TestValidateRejectsEmptyKey(t *testing.T) {
	r := Record{Kind: KindPut, Key: nil, Value: []byte("v")}
	if _, err := Encode(&r, EncodeOptions{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestValidateRejectsDeleteWithValue(t *testing.T) {
	r := Record{Kind: KindDelete, Key: []byte("k"), Value: []byte("v")}
	if _, err := Encode(&r, EncodeOptions{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDecodeHeaderRejectsUnknownKind(t *testing.T) {
	hdr := make([]byte, HeaderSize)
	hdr[0] = 9 // invalid kind
	if _, err := DecodeHeader(hdr); !errors.Is(err, ErrCorruption) {
		t.Fatalf("expected ErrCorruption, got %v", err)
	}
}

func TestDecodeHeaderRejectsReservedFlags(t *testing.T) {
	hdr := make([]byte, HeaderSize)
	hdr[0] = byte(KindPut)
	hdr[1] = 0x80 // reserved bit
	hdr[2] = 1    // key_len = 1 so we don't hit the zero-key check first
	if _, err := DecodeHeader(hdr); !errors.Is(err, ErrCorruption) {
		t.Fatalf("expected ErrCorruption, got %v", err)
	}
}

func TestDecodeTruncatedRecordIsCorruption(t *testing.T) {
	r := Record{Kind: KindPut, Key: []byte("k"), Value: []byte("hello world")}
	buf, err := Encode(&r, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	truncated := buf[:len(buf)-3]
	if _, _, err := Decode(bytes.NewReader(truncated)); !errors.Is(err, ErrCorruption) {
		t.Fatalf("expected ErrCorruption, got %v", err)
	}
}

func TestDecodeEmptyReaderIsEOF(t *testing.T) {
	if _, _, err := Decode(bytes.NewReader(nil)); err != io.EOF {
		t.Fatalf("expected io.EOF for empty input, got %v", err)
	}
}

func TestExpired(t *testing.T) {
	if Expired(0, 1000) {
		t.Fatal("expiresAt=0 must never expire")
	}
	if !Expired(100, 100) {
		t.Fatal("expiresAt == now must be expired")
	}
	if Expired(101, 100) {
		t.Fatal("expiresAt in the future must not be expired")
	}
}
