package partfile

// SeekFrom is the origin a ReadStream.Seek offset is relative to.
type SeekFrom int

const (
	SeekBegin SeekFrom = iota
	SeekCurrent
	SeekEnd
)

// ReadStream is a positional, read-only sequential view over a Partfile. It
// holds no file handle of its own: every Read delegates to Partfile.ReadAt,
// so it works identically whether the underlying file is still a container
// or has already been materialized.
type ReadStream struct {
	pf       *Partfile
	position int64
}

// Length returns the logical length of the underlying Partfile.
func (s *ReadStream) Length() int64 { return s.pf.Size() }

// Position returns the stream's current read position.
func (s *ReadStream) Position() int64 { return s.position }

// Seek repositions the stream and returns the new position. SeekEnd is
// interpreted as exactly Length()-offset, not an absolute value from the
// end, so a negative offset seeks past the end on purpose.
func (s *ReadStream) Seek(offset int64, from SeekFrom) (int64, error) {
	var pos int64
	switch from {
	case SeekBegin:
		pos = offset
	case SeekCurrent:
		pos = s.position + offset
	case SeekEnd:
		pos = s.pf.Size() - offset
	default:
		return 0, errInvalidArgument(s.pf.filename, "from", from)
	}
	s.position = pos
	return pos, nil
}

// Read fills up to count bytes of buf (starting at offset) from the
// stream's current position and advances it by however many bytes were
// actually read.
func (s *ReadStream) Read(buf []byte, offset, count int) (int, error) {
	n, err := s.pf.ReadAt(s.position, buf, offset, count)
	s.position += int64(n)
	return n, err
}

// Write always fails: ReadStream is read-only.
func (s *ReadStream) Write([]byte, int, int) (int, error) {
	return 0, errNotSupported("ReadStream.Write")
}
