package engine

import (
	"github.com/AntoineB0/CrabKV/index"
	"github.com/AntoineB0/CrabKV/record"
)

// indexPointerFor builds the index.Pointer for a record that was just
// appended at offset with the given on-disk size, given the plaintext key
// length and whether its value was stored compressed.
func indexPointerFor(offset, size int64, expiresAt uint64, keyLen int, compressed bool) index.Pointer {
	valueLen := size - int64(record.HeaderSize) - int64(keyLen)
	return index.Pointer{
		Offset:     offset,
		Length:     size,
		ExpiresAt:  expiresAt,
		ValueLen:   uint32(valueLen),
		Compressed: compressed,
	}
}
