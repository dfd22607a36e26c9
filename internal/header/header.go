// Package header encodes and parses the fixed-prefix, variable-tail header
// block that begins every container file.
package header

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic identifies a container file. A file that does not begin with this
// sequence is not a valid container.
const Magic = "APF"

// FormatMajor and FormatMinor are written into every header. They are not
// consulted on read; an implementation may reject an incompatible major, but
// this one accepts any.
const (
	FormatMajor int32 = 1
	FormatMinor int32 = 0
)

// Unknown is the sentinel stored for a boundary position/size that has not
// been determined yet.
const Unknown int32 = -1

// fixedSize is the length of the fixed-width prefix, before the three
// length-prefixed strings.
const fixedSize = 3 + 4 + 4 + 8 + 4 + 4 + 4 + 4 + 4

// Fixed offsets of the int32 boundary fields, used for in-place patch writes
// of FirstChunkPos/FirstChunkSize/LastChunkPos/LastChunkSize.
const (
	OffsetSize           = 11
	OffsetFirstChunkPos  = 19
	OffsetFirstChunkSize = 23
	OffsetLastChunkPos   = 27
	OffsetLastChunkSize  = 31
	OffsetChunksize      = 35
)

// ErrInvalidFormat is returned when the magic prefix does not match.
var ErrInvalidFormat = errors.New("header: invalid format")

// Header is the decoded fixed+variable header block.
type Header struct {
	MajorVersion   int32
	MinorVersion   int32
	Size           int64
	FirstChunkPos  int32
	FirstChunkSize int32
	LastChunkPos   int32
	LastChunkSize  int32
	Chunksize      int32
	Filename       string
	Folder         string
	PartFolder     string
}

// Encode serializes h into its on-disk byte layout. The returned length is
// the header's total size (HeadersSize), i.e. the offset at which the first
// chunk record begins.
func Encode(h Header) []byte {
	fn := []byte(h.Filename)
	fo := []byte(h.Folder)
	pf := []byte(h.PartFolder)

	size := fixedSize + 4 + len(fn) + 4 + len(fo) + 4 + len(pf)
	buf := make([]byte, size)

	copy(buf[0:3], Magic)
	binary.LittleEndian.PutUint32(buf[3:7], uint32(h.MajorVersion))
	binary.LittleEndian.PutUint32(buf[7:11], uint32(h.MinorVersion))
	binary.LittleEndian.PutUint64(buf[OffsetSize:OffsetSize+8], uint64(h.Size))
	binary.LittleEndian.PutUint32(buf[OffsetFirstChunkPos:OffsetFirstChunkPos+4], uint32(h.FirstChunkPos))
	binary.LittleEndian.PutUint32(buf[OffsetFirstChunkSize:OffsetFirstChunkSize+4], uint32(h.FirstChunkSize))
	binary.LittleEndian.PutUint32(buf[OffsetLastChunkPos:OffsetLastChunkPos+4], uint32(h.LastChunkPos))
	binary.LittleEndian.PutUint32(buf[OffsetLastChunkSize:OffsetLastChunkSize+4], uint32(h.LastChunkSize))
	binary.LittleEndian.PutUint32(buf[OffsetChunksize:OffsetChunksize+4], uint32(h.Chunksize))

	off := fixedSize
	off = putString(buf, off, fn)
	off = putString(buf, off, fo)
	putString(buf, off, pf)

	return buf
}

func putString(buf []byte, off int, s []byte) int {
	binary.LittleEndian.PutUint32(buf[off:off+4], uint32(len(s)))
	off += 4
	copy(buf[off:off+len(s)], s)
	return off + len(s)
}

// Decode reads a header from r, returning the parsed fields and the total
// number of bytes consumed (HeadersSize). Decode fails with ErrInvalidFormat
// if the magic prefix does not match.
func Decode(r io.Reader) (h Header, headersSize int64, err error) {
	fixed := make([]byte, fixedSize)
	if _, err = io.ReadFull(r, fixed); err != nil {
		return Header{}, 0, fmt.Errorf("header: read fixed prefix: %w", err)
	}
	if string(fixed[0:3]) != Magic {
		return Header{}, 0, ErrInvalidFormat
	}

	h.MajorVersion = int32(binary.LittleEndian.Uint32(fixed[3:7]))
	h.MinorVersion = int32(binary.LittleEndian.Uint32(fixed[7:11]))
	h.Size = int64(binary.LittleEndian.Uint64(fixed[OffsetSize : OffsetSize+8]))
	h.FirstChunkPos = int32(binary.LittleEndian.Uint32(fixed[OffsetFirstChunkPos : OffsetFirstChunkPos+4]))
	h.FirstChunkSize = int32(binary.LittleEndian.Uint32(fixed[OffsetFirstChunkSize : OffsetFirstChunkSize+4]))
	h.LastChunkPos = int32(binary.LittleEndian.Uint32(fixed[OffsetLastChunkPos : OffsetLastChunkPos+4]))
	h.LastChunkSize = int32(binary.LittleEndian.Uint32(fixed[OffsetLastChunkSize : OffsetLastChunkSize+4]))
	h.Chunksize = int32(binary.LittleEndian.Uint32(fixed[OffsetChunksize : OffsetChunksize+4]))

	consumed := int64(fixedSize)

	h.Filename, consumed, err = readString(r, consumed)
	if err != nil {
		return Header{}, 0, err
	}
	h.Folder, consumed, err = readString(r, consumed)
	if err != nil {
		return Header{}, 0, err
	}
	h.PartFolder, consumed, err = readString(r, consumed)
	if err != nil {
		return Header{}, 0, err
	}

	return h, consumed, nil
}

func readString(r io.Reader, consumed int64) (string, int64, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", 0, fmt.Errorf("header: read string length: %w", err)
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	consumed += 4

	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", 0, fmt.Errorf("header: read string body: %w", err)
		}
	}
	consumed += int64(n)

	return string(buf), consumed, nil
}

// PatchInt32 returns the 4-byte little-endian encoding of v, for use with a
// positional write at one of the Offset* constants.
func PatchInt32(v int32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return buf[:]
}
