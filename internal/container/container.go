// Package container owns the two file handles backing a partfile: an
// append/patch write handle and a random-access read handle. It performs
// framed appends, in-place header patches, and positional reads, and
// guarantees that readers never observe a half-written read-handle pointer
// while SwapReadFile replaces it.
package container

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"sync"
)

// Store is the on-disk container: one handle used for append/patch writes,
// one used for positional reads. The write path (Append, PatchAt) is
// serialized by writeMu, matching the container format's "callers must
// serialize writes per partfile instance" contract. SwapReadFile replaces
// the read handle under readMu, so a concurrent ReadAt picks up either the
// old or the new handle.
type Store struct {
	writeMu   sync.Mutex
	writeFile *os.File
	endOffset int64

	readMu   sync.RWMutex
	readFile *os.File
}

// Create opens a brand new container file for exclusive creation, plus a
// parallel read-only handle. The write offset starts at 0; the caller is
// expected to write the header immediately, which advances it.
func Create(path string) (*Store, error) {
	wf, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, err
	}
	rf, err := os.Open(path)
	if err != nil {
		_ = wf.Close()
		return nil, err
	}
	return &Store{writeFile: wf, readFile: rf}, nil
}

// OpenForRecovery opens an existing container file read-write, so that the
// caller can walk its body to reconstruct the chunk index before handing it
// back via Resume.
func OpenForRecovery(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR, 0o644)
}

// Resume wraps an already-open write handle (positioned by the caller after
// the recovery walk truncates any corrupt tail) together with a fresh
// read-only handle, continuing writes at endOffset.
func Resume(path string, writeFile *os.File, endOffset int64) (*Store, error) {
	rf, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Store{writeFile: writeFile, endOffset: endOffset, readFile: rf}, nil
}

// WriteHeader writes buf (a full encoded header) at offset 0 and advances
// the tracked end-of-data offset past it. Must only be called once, right
// after Create.
func (s *Store) WriteHeader(buf []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.writeFile.WriteAt(buf, 0); err != nil {
		return err
	}
	if int64(len(buf)) > s.endOffset {
		s.endOffset = int64(len(buf))
	}
	return nil
}

// PatchAt overwrites len(data) bytes at a fixed offset inside the header
// with a positional write. It neither moves the file position nor changes
// the tracked end-of-data offset, so a subsequent Append continues exactly
// where appends left off. This mirrors the container format's
// write_first/write_last contract: patch, then append at EOF.
func (s *Store) PatchAt(offset int64, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := s.writeFile.WriteAt(data, offset); err != nil {
		return err
	}
	return nil
}

// Append writes a framed chunk record (4-byte little-endian id, then
// payload) at the tracked end-of-data offset and advances it. It returns
// the byte offset the record was written at. If flush is true, the write is
// fsynced before returning.
func (s *Store) Append(id int64, payload []byte, flush bool) (offset int64, err error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	offset = s.endOffset

	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(int32(id)))

	if _, err = s.writeFile.WriteAt(hdr[:], offset); err != nil {
		return 0, err
	}
	if _, err = s.writeFile.WriteAt(payload, offset+4); err != nil {
		return 0, err
	}
	if flush {
		if err = s.writeFile.Sync(); err != nil {
			return 0, err
		}
	}

	s.endOffset = offset + 4 + int64(len(payload))
	return offset, nil
}

// EndOffset returns the tracked end-of-data offset (the file's logical
// length, excluding any truncated corrupt tail).
func (s *Store) EndOffset() int64 {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.endOffset
}

// ReadAt performs a positional read from the current read handle. It never
// seeks, so it is safe to call concurrently with other ReadAt calls and with
// a pending SwapReadFile.
func (s *Store) ReadAt(buf []byte, off int64) (int, error) {
	s.readMu.RLock()
	f := s.readFile
	s.readMu.RUnlock()
	return f.ReadAt(buf, off)
}

// SwapReadFile atomically replaces the read handle, returning the previous
// one for the caller to close. A ReadAt that loaded the old handle before
// the swap keeps using it after releasing its RLock, so closing the old
// handle can make such a read fail with os.ErrClosed.
func (s *Store) SwapReadFile(f *os.File) (old *os.File) {
	s.readMu.Lock()
	old = s.readFile
	s.readFile = f
	s.readMu.Unlock()
	return old
}

// Close releases both handles, collecting any errors from either.
func (s *Store) Close() error {
	var errs []error

	s.writeMu.Lock()
	if s.writeFile != nil {
		if err := s.writeFile.Close(); err != nil {
			errs = append(errs, err)
		}
		s.writeFile = nil
	}
	s.writeMu.Unlock()

	s.readMu.Lock()
	if s.readFile != nil {
		if err := s.readFile.Close(); err != nil {
			errs = append(errs, err)
		}
		s.readFile = nil
	}
	s.readMu.Unlock()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ReadRecordHeader reads the 4-byte id prefix of a chunk record from r at
// the current position, returning io.EOF if no bytes remain or
// io.ErrUnexpectedEOF if fewer than 4 bytes remain.
func ReadRecordHeader(r io.Reader) (id int32, err error) {
	var buf [4]byte
	if _, err = io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}
