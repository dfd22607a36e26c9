// Package partfile implements a resumable partial-file container: a single
// on-disk file that accumulates out-of-order, fixed-size chunks of some
// logical target file, can be read at arbitrary byte positions while still
// incomplete, and is materialized into a contiguous completed file once
// every chunk has arrived.
package partfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"partfile/internal/chunkindex"
	"partfile/internal/container"
	"partfile/internal/geometry"
	"partfile/internal/header"
	"partfile/pkg/closeutil"
)

// Partfile is one container plus its derived geometry and lifecycle state.
// The write path (Write/WriteFirst/WriteLast), Create and Dispose are all
// serialized by mu; callers must serialize concurrent writers themselves —
// a single Partfile does not support concurrent writers by contract. Reads
// (ReadAt/ReadChunk) take a brief lock only to snapshot geometry fields,
// then read through container.Store, which itself guards the read handle
// against a concurrent swap during Create.
//
// OnFileCreating/OnFileCreated/OnWarning are invoked synchronously from
// whichever goroutine triggered the event (a Write that crosses Partsize,
// or an explicit Create/Dispose call); they must not call back into the
// same Partfile, or they will deadlock against mu.
type Partfile struct {
	mu sync.Mutex

	filename  string
	chunksize int32
	size      int64

	firstChunkPos  int32
	lastChunkPos   int32
	firstChunksize int32
	lastChunksize  int32

	chunksTotal int64
	partsize    int64
	headersSize int64
	curChunkPos int64

	index *chunkindex.Index
	store *container.Store

	completedPath string
	partPath      string

	created  bool
	disposed bool

	completedFile *os.File

	options   Options
	logger    zerolog.Logger
	sessionID string
}

// OpenNew creates a brand new container and, unless size is 0, leaves it
// open for writes. chunksize must be >= 1. size may be -1 if the total
// length is not known in advance; AutoCreate cannot be combined with an
// unknown size, since there would be no Partsize to compare against.
func OpenNew(filename string, chunksize int32, size int64, opts Options) (*Partfile, error) {
	opts = opts.clone()

	if chunksize < 1 {
		return nil, errInvalidArgument(filename, "chunksize", chunksize)
	}
	if size == -1 && opts.AutoCreate {
		return nil, errInvalidArgument(filename, "size", size)
	}
	if opts.FirstChunksize != Unknown && opts.FirstChunksize > chunksize {
		return nil, errInvalidArgument(filename, "first_chunksize", opts.FirstChunksize)
	}
	if opts.LastChunksize != Unknown && opts.LastChunksize > chunksize {
		return nil, errInvalidArgument(filename, "last_chunksize", opts.LastChunksize)
	}

	completedPath := filepath.Join(opts.Folder, filename)
	partPath := filepath.Join(opts.PartFolder, filename+opts.PartExtension)
	sessionID := uuid.NewString()
	logger := opts.Logger.With().Str("filename", filename).Str("session", sessionID).Logger()

	if err := os.MkdirAll(opts.Folder, 0o755); err != nil {
		return nil, err
	}
	if err := prepareDestination(filename, completedPath, opts.Overwrite); err != nil {
		return nil, err
	}

	if size == 0 {
		f, err := os.Create(completedPath)
		if err != nil {
			return nil, err
		}
		if err := f.Close(); err != nil {
			return nil, err
		}

		p := &Partfile{
			filename:       filename,
			chunksize:      chunksize,
			size:           0,
			firstChunkPos:  Unknown,
			lastChunkPos:   Unknown,
			firstChunksize: Unknown,
			lastChunksize:  Unknown,
			chunksTotal:    0,
			partsize:       0,
			curChunkPos:    -1,
			index:          chunkindex.New(),
			completedPath:  completedPath,
			partPath:       partPath,
			created:        true,
			options:        opts,
			logger:         logger,
			sessionID:      sessionID,
		}
		p.emitFileCreating()
		p.emitFileCreated()
		return p, nil
	}

	if err := os.MkdirAll(opts.PartFolder, 0o755); err != nil {
		return nil, err
	}
	if err := prepareDestination(filename, partPath, opts.PartOverwrite); err != nil {
		return nil, err
	}

	store, err := container.Create(partPath)
	if err != nil {
		return nil, err
	}

	h := header.Header{
		MajorVersion:   header.FormatMajor,
		MinorVersion:   header.FormatMinor,
		Size:           size,
		FirstChunkPos:  header.Unknown,
		FirstChunkSize: opts.FirstChunksize,
		LastChunkPos:   header.Unknown,
		LastChunkSize:  opts.LastChunksize,
		Chunksize:      chunksize,
		Filename:       filename,
		Folder:         opts.Folder,
		PartFolder:     opts.PartFolder,
	}
	buf := header.Encode(h)
	if err := store.WriteHeader(buf); err != nil {
		_ = store.Close()
		return nil, err
	}

	p := &Partfile{
		filename:       filename,
		chunksize:      chunksize,
		size:           size,
		firstChunkPos:  Unknown,
		lastChunkPos:   Unknown,
		firstChunksize: opts.FirstChunksize,
		lastChunksize:  opts.LastChunksize,
		headersSize:    int64(len(buf)),
		curChunkPos:    -1,
		index:          chunkindex.New(),
		store:          store,
		completedPath:  completedPath,
		partPath:       partPath,
		options:        opts,
		logger:         logger,
		sessionID:      sessionID,
	}

	g, err := p.computeGeometry(p.firstChunksize, p.lastChunksize)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	p.applyGeometryLocked(g)

	return p, nil
}

// OpenExisting resumes a container from path, reconstructing the chunk
// index by walking its body. A truncated trailing record (fewer bytes
// remaining than the expected payload length) is treated as corrupt and
// dropped: the file is truncated to the last intact record boundary so that
// future appends keep the offset arithmetic of §4.3 consistent.
//
// If forceOptionsFolder is false, opts.Folder and opts.PartFolder are
// overridden from the values recorded in the header.
func OpenExisting(path string, forceOptionsFolder bool, opts Options) (*Partfile, error) {
	opts = opts.clone()

	hf, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	h, headersSize, err := header.Decode(hf)
	closeErr := hf.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}

	if !forceOptionsFolder {
		opts.Folder = h.Folder
		opts.PartFolder = h.PartFolder
	}
	if ext := strings.TrimPrefix(filepath.Base(path), h.Filename); ext != "" {
		opts.PartExtension = ext
	}

	completedPath := filepath.Join(opts.Folder, h.Filename)
	if err := os.MkdirAll(opts.Folder, 0o755); err != nil {
		return nil, err
	}
	if err := prepareDestination(h.Filename, completedPath, opts.Overwrite); err != nil {
		return nil, err
	}

	wf, err := container.OpenForRecovery(path)
	if err != nil {
		return nil, err
	}

	index, curChunkPos, endOffset, err := recoverIndex(wf, h, headersSize)
	if err != nil {
		_ = wf.Close()
		return nil, err
	}
	if err := wf.Truncate(endOffset); err != nil {
		_ = wf.Close()
		return nil, err
	}
	if _, err := wf.Seek(endOffset, io.SeekStart); err != nil {
		_ = wf.Close()
		return nil, err
	}

	store, err := container.Resume(path, wf, endOffset)
	if err != nil {
		_ = wf.Close()
		return nil, err
	}

	sessionID := uuid.NewString()
	logger := opts.Logger.With().Str("filename", h.Filename).Str("session", sessionID).Logger()

	p := &Partfile{
		filename:       h.Filename,
		chunksize:      h.Chunksize,
		size:           h.Size,
		firstChunkPos:  h.FirstChunkPos,
		lastChunkPos:   h.LastChunkPos,
		firstChunksize: h.FirstChunkSize,
		lastChunksize:  h.LastChunkSize,
		headersSize:    headersSize,
		curChunkPos:    curChunkPos,
		index:          index,
		store:          store,
		completedPath:  completedPath,
		partPath:       path,
		options:        opts,
		logger:         logger,
		sessionID:      sessionID,
	}

	g, err := p.computeGeometry(p.firstChunksize, p.lastChunksize)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	p.applyGeometryLocked(g)

	if opts.AutoCreate && p.partsize >= 0 && endOffset == p.partsize {
		if err := p.Create(); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// recoverIndex walks a container's body starting at headersSize, inserting
// one chunkindex entry per intact record. It stops at the first record that
// is missing bytes (either its id prefix or its full payload), returning
// the byte offset at which that corrupt/truncated record begins.
func recoverIndex(f *os.File, h header.Header, headersSize int64) (*chunkindex.Index, int64, int64, error) {
	index := chunkindex.New()
	curChunkPos := int64(-1)
	pos := headersSize

	for {
		ordinal := curChunkPos + 1
		capacity := boundaryAwareCapacity(ordinal, h.FirstChunkPos, h.FirstChunkSize, h.LastChunkPos, h.LastChunkSize, h.Chunksize)
		if capacity < 0 {
			break
		}

		var idBuf [4]byte
		n, err := f.ReadAt(idBuf[:], pos)
		if n < 4 {
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, 0, 0, err
			}
			break
		}

		payload := make([]byte, capacity)
		pn, err := f.ReadAt(payload, pos+4)
		if pn < int(capacity) {
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, 0, 0, err
			}
			break
		}

		id := int64(int32(binary.LittleEndian.Uint32(idBuf[:])))
		index.Insert(id, ordinal)
		curChunkPos = ordinal
		pos += 4 + int64(capacity)
	}

	return index, curChunkPos, pos, nil
}

func boundaryAwareCapacity(ordinal int64, firstChunkPos, firstChunkSize, lastChunkPos, lastChunkSize, chunksize int32) int32 {
	switch {
	case firstChunkPos != header.Unknown && ordinal == int64(firstChunkPos):
		return firstChunkSize
	case lastChunkPos != header.Unknown && ordinal == int64(lastChunkPos):
		return lastChunkSize
	default:
		return chunksize
	}
}

// computeGeometry resolves chunksTotal/partsize from size, chunksize and the
// given boundary sizes without mutating p, so a prospective boundary size
// can be validated before anything is committed to disk.
func (p *Partfile) computeGeometry(firstChunksize, lastChunksize int32) (geometry.Geometry, error) {
	if p.size < 0 {
		return geometry.Geometry{ChunksTotal: -1, Partsize: -1, FirstChunksize: firstChunksize, LastChunksize: lastChunksize}, nil
	}

	g, err := geometry.Calculate(p.size, p.chunksize, firstChunksize, lastChunksize, p.headersSize)
	if err != nil {
		return geometry.Geometry{}, fmt.Errorf("partfile %q: %w: %w", p.filename, ErrInvalidGeometry, err)
	}
	return g, nil
}

// applyGeometryLocked stores a geometry already resolved by computeGeometry.
// Callers must hold mu.
func (p *Partfile) applyGeometryLocked(g geometry.Geometry) {
	p.firstChunksize = g.FirstChunksize
	p.lastChunksize = g.LastChunksize
	p.chunksTotal = g.ChunksTotal
	p.partsize = g.Partsize

	if p.options.Metrics != nil && p.chunksTotal >= 0 {
		p.options.Metrics.SetChunksTotal(p.chunksTotal)
	}
}

// Write appends a middle chunk: one that is neither the logical first (id
// 0) nor last (id chunksTotal-1) chunk, and so must be exactly chunksize
// bytes. Writing to an already-created Partfile, or writing a chunk id that
// was already written, is non-fatal: it emits a Warning and leaves state
// unchanged.
func (p *Partfile) Write(chunkID int64, buf []byte, offset int) error {
	if chunkID == 0 {
		return errInvalidArgument(p.filename, "chunk_id", chunkID)
	}
	length := int(p.chunksize)
	return p.writeChunk(chunkID, buf, offset, length, false, false)
}

// WriteFirst appends the logical first chunk (id 0). length of 0 means "use
// len(buf)-offset", matching the container format's "len defaults to
// buf.length" convention.
func (p *Partfile) WriteFirst(buf []byte, offset, length int) error {
	if length <= 0 {
		length = len(buf) - offset
	}
	return p.writeChunk(0, buf, offset, length, true, false)
}

// WriteLast appends the logical last chunk. chunkID 0 delegates to
// WriteFirst, matching the container format's rule for a single-chunk file.
func (p *Partfile) WriteLast(chunkID int64, buf []byte, offset, length int) error {
	if chunkID == 0 {
		return p.WriteFirst(buf, offset, length)
	}
	if length <= 0 {
		length = len(buf) - offset
	}
	return p.writeChunk(chunkID, buf, offset, length, false, true)
}

func (p *Partfile) writeChunk(chunkID int64, buf []byte, offset, length int, isFirst, isLast bool) error {
	p.mu.Lock()

	if p.created {
		p.mu.Unlock()
		p.emitWarning("write of chunk %d rejected: partfile already created", chunkID)
		return nil
	}
	if p.index.Has(chunkID) {
		p.mu.Unlock()
		p.emitWarning("write of chunk %d rejected: chunk already written", chunkID)
		return nil
	}
	if offset < 0 || length < 0 || offset+length > len(buf) {
		p.mu.Unlock()
		return errInvalidArgument(p.filename, "offset+length", offset+length)
	}

	payload := buf[offset : offset+length]
	nextOrdinal := p.curChunkPos + 1

	// Validate the prospective geometry before touching disk: a chunk that
	// would make size/chunksize/boundaries inconsistent must leave the
	// partfile exactly as it was.
	var g geometry.Geometry
	if isFirst || isLast {
		trialFirst, trialLast := p.firstChunksize, p.lastChunksize
		if isFirst {
			trialFirst = int32(length)
		}
		if isLast {
			trialLast = int32(length)
		}
		var err error
		g, err = p.computeGeometry(trialFirst, trialLast)
		if err != nil {
			p.mu.Unlock()
			return err
		}
	}

	if isFirst {
		if err := p.patchBoundaryLocked(header.OffsetFirstChunkPos, header.OffsetFirstChunkSize, int32(nextOrdinal), int32(length)); err != nil {
			p.mu.Unlock()
			return err
		}
		p.firstChunkPos = int32(nextOrdinal)
	}
	if isLast {
		if err := p.patchBoundaryLocked(header.OffsetLastChunkPos, header.OffsetLastChunkSize, int32(nextOrdinal), int32(length)); err != nil {
			p.mu.Unlock()
			return err
		}
		p.lastChunkPos = int32(nextOrdinal)
	}

	if _, err := p.store.Append(chunkID, payload, p.options.FlushOnEveryChunk); err != nil {
		p.mu.Unlock()
		return err
	}

	p.curChunkPos = nextOrdinal
	p.index.Insert(chunkID, nextOrdinal)
	if p.options.Metrics != nil {
		p.options.Metrics.AddChunkWritten()
		p.options.Metrics.SetChunksWritten(p.curChunkPos + 1)
	}

	if isFirst || isLast {
		p.applyGeometryLocked(g)
	}

	shouldCreate := p.options.AutoCreate && !p.created && p.partsize >= 0 && p.store.EndOffset() == p.partsize
	p.mu.Unlock()

	if shouldCreate {
		return p.Create()
	}
	return nil
}

func (p *Partfile) patchBoundaryLocked(posOffset, sizeOffset int64, pos, size int32) error {
	if err := p.store.PatchAt(posOffset, header.PatchInt32(pos)); err != nil {
		return err
	}
	return p.store.PatchAt(sizeOffset, header.PatchInt32(size))
}

// ReadAt fills up to count bytes of buf (starting at offset) with the bytes
// of the logical file starting at pos, clamped to Size. It fails with
// ErrNotReady if the first chunk's size is not known yet, and with
// ErrMissingChunk if a chunk the read would need to cross has not been
// written.
func (p *Partfile) ReadAt(pos int64, buf []byte, offset, count int) (int, error) {
	p.mu.Lock()
	size := p.size
	created := p.created
	chunksize := p.chunksize
	chunksTotal := p.chunksTotal
	firstChunkPos := p.firstChunkPos
	firstChunksize := p.firstChunksize
	lastChunkPos := p.lastChunkPos
	lastChunksize := p.lastChunksize
	headersSize := p.headersSize
	p.mu.Unlock()

	if size >= 0 {
		if pos >= size {
			count = 0
		} else if pos+int64(count) > size {
			count = int(size - pos)
		}
	}
	if count <= 0 {
		return 0, nil
	}

	if created {
		n, err := p.completedFile.ReadAt(buf[offset:offset+count], pos)
		if p.options.Metrics != nil {
			p.options.Metrics.AddBytesRead(n)
		}
		if errors.Is(err, io.EOF) && n == count {
			err = nil
		}
		return n, err
	}

	if firstChunksize == Unknown {
		return 0, errNotReady(p.filename, "first chunk size unknown")
	}

	total := 0
	remaining := count
	curPos := pos

	for remaining > 0 {
		var chunkID, startByte int64
		if curPos < int64(firstChunksize) {
			chunkID = 0
			startByte = curPos
		} else {
			chunkID = (curPos-int64(firstChunksize))/int64(chunksize) + 1
			startByte = (curPos - int64(firstChunksize)) % int64(chunksize)
		}

		capacity := geometry.ChunkCapacity(chunkID, chunksTotal, chunksize, firstChunksize, lastChunksize)
		readSize := remaining
		if avail := int64(capacity) - startByte; int64(readSize) > avail {
			readSize = int(avail)
		}
		if readSize <= 0 {
			break
		}

		ordinal, ok := p.index.Lookup(chunkID)
		if !ok {
			return total, errMissingChunk(p.filename, chunkID)
		}

		fileOff := geometry.PhysicalOffset(headersSize, chunksize, int32(ordinal), firstChunkPos, firstChunksize, lastChunkPos, lastChunksize) + startByte

		n, err := p.store.ReadAt(buf[offset+total:offset+total+readSize], fileOff)
		total += n
		if err != nil && !errors.Is(err, io.EOF) {
			return total, err
		}
		if n < readSize {
			return total, io.ErrUnexpectedEOF
		}

		remaining -= n
		curPos += int64(n)
	}

	if p.options.Metrics != nil {
		p.options.Metrics.AddBytesRead(total)
	}
	return total, nil
}

// ReadChunk reads up to count bytes starting at startByte within a single
// logical chunk, without crossing into the next chunk.
func (p *Partfile) ReadChunk(chunkID int64, startByte int, buf []byte, offset, count int) (int, error) {
	p.mu.Lock()
	created := p.created
	chunksize := p.chunksize
	chunksTotal := p.chunksTotal
	firstChunkPos := p.firstChunkPos
	firstChunksize := p.firstChunksize
	lastChunkPos := p.lastChunkPos
	lastChunksize := p.lastChunksize
	headersSize := p.headersSize
	p.mu.Unlock()

	if created {
		pos := chunkLogicalStart(chunkID, firstChunksize, chunksize) + int64(startByte)
		return p.ReadAt(pos, buf, offset, count)
	}

	capacity := geometry.ChunkCapacity(chunkID, chunksTotal, chunksize, firstChunksize, lastChunksize)
	if int64(startByte) >= int64(capacity) {
		return 0, nil
	}
	readSize := count
	if avail := int64(capacity) - int64(startByte); int64(readSize) > avail {
		readSize = int(avail)
	}
	if readSize <= 0 {
		return 0, nil
	}

	ordinal, ok := p.index.Lookup(chunkID)
	if !ok {
		return 0, errMissingChunk(p.filename, chunkID)
	}

	fileOff := geometry.PhysicalOffset(headersSize, chunksize, int32(ordinal), firstChunkPos, firstChunksize, lastChunkPos, lastChunksize) + int64(startByte)
	n, err := p.store.ReadAt(buf[offset:offset+readSize], fileOff)
	if p.options.Metrics != nil {
		p.options.Metrics.AddBytesRead(n)
	}
	return n, err
}

func chunkLogicalStart(chunkID int64, firstChunksize, chunksize int32) int64 {
	if chunkID == 0 {
		return 0
	}
	return int64(firstChunksize) + (chunkID-1)*int64(chunksize)
}

// Create materializes the completed file from the container's chunks. It is
// idempotent: calling it again once created is a no-op.
func (p *Partfile) Create() error {
	p.mu.Lock()
	if p.created {
		p.mu.Unlock()
		return nil
	}
	if p.disposed {
		p.mu.Unlock()
		return fmt.Errorf("partfile %q: disposed: %w", p.filename, ErrNotSupported)
	}
	if p.chunksTotal < 0 {
		p.mu.Unlock()
		return errNotReady(p.filename, "geometry not resolved")
	}

	err := p.doCreateLocked()
	p.mu.Unlock()
	return err
}

func (p *Partfile) doCreateLocked() error {
	p.emitFileCreating()

	if err := prepareDestination(p.filename, p.completedPath, p.options.Overwrite); err != nil {
		return err
	}
	target, err := os.OpenFile(p.completedPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	buf := make([]byte, p.chunksize)
	for id := int64(0); id < p.chunksTotal; id++ {
		capacity := geometry.ChunkCapacity(id, p.chunksTotal, p.chunksize, p.firstChunksize, p.lastChunksize)
		ordinal, ok := p.index.Lookup(id)
		if !ok {
			_ = target.Close()
			return errMissingChunk(p.filename, id)
		}

		off := geometry.PhysicalOffset(p.headersSize, p.chunksize, int32(ordinal), p.firstChunkPos, p.firstChunksize, p.lastChunkPos, p.lastChunksize)
		chunkBuf := buf[:capacity]
		if _, err := p.store.ReadAt(chunkBuf, off); err != nil {
			_ = target.Close()
			return err
		}
		if _, err := target.Write(chunkBuf); err != nil {
			_ = target.Close()
			return err
		}
	}

	if err := p.store.Close(); err != nil {
		_ = target.Close()
		return err
	}
	p.store = nil
	p.created = true

	if p.options.DeletePartOnCreate {
		_ = os.Remove(p.partPath)
	}

	p.emitFileCreated()

	if p.options.StayAlive {
		if err := target.Close(); err != nil {
			return err
		}
		rf, err := os.Open(p.completedPath)
		if err != nil {
			return err
		}
		p.completedFile = rf
		return nil
	}

	if err := target.Close(); err != nil {
		return err
	}
	return p.doDisposeLocked()
}

// Dispose releases both file handles and, per Options, deletes either or
// both files. It is idempotent.
func (p *Partfile) Dispose() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doDisposeLocked()
}

func (p *Partfile) doDisposeLocked() error {
	if p.disposed {
		return nil
	}

	var closers []io.Closer
	if p.store != nil {
		closers = append(closers, p.store)
		p.store = nil
	}
	if p.completedFile != nil {
		closers = append(closers, p.completedFile)
		p.completedFile = nil
	}

	removePart := closeutil.Close(func() {
		if p.options.DeletePartOnDispose {
			_ = removeIfExists(p.partPath)
		}
	})
	removeCompleted := closeutil.Close(func() {
		if p.options.DeleteOnDispose {
			_ = removeIfExists(p.completedPath)
		}
	})
	closers = append(closers, removePart, removeCompleted)

	err := closeutil.All(closers...)

	p.disposed = true
	p.index = nil
	return err
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetReadStream returns a positional, read-only sequential view over p.
func (p *Partfile) GetReadStream() *ReadStream {
	return &ReadStream{pf: p}
}

func (p *Partfile) emitWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.logger.Warn().Msg(msg)
	if p.options.Metrics != nil {
		p.options.Metrics.AddWarning()
	}
	if p.options.OnWarning != nil {
		p.options.OnWarning(p, msg)
	}
}

func (p *Partfile) emitFileCreating() {
	p.logger.Info().Msg("materializing completed file")
	if p.options.OnFileCreating != nil {
		p.options.OnFileCreating(p)
	}
}

func (p *Partfile) emitFileCreated() {
	p.logger.Info().Msg("completed file materialized")
	if p.options.Metrics != nil {
		p.options.Metrics.AddFileCreated()
	}
	if p.options.OnFileCreated != nil {
		p.options.OnFileCreated(p)
	}
}

func prepareDestination(filename, path string, overwrite bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("partfile %q: %s is a directory", filename, path)
	}
	if !overwrite {
		return errAlreadyExists(filename, path)
	}
	return os.Remove(path)
}

// Filename returns the logical name the completed and container paths were
// derived from.
func (p *Partfile) Filename() string { return p.filename }

// Chunksize returns the fixed length of every non-boundary chunk.
func (p *Partfile) Chunksize() int32 { return p.chunksize }

// Size returns the total logical length, or -1 if unknown.
func (p *Partfile) Size() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.size
}

// Options returns the configuration snapshot this Partfile was opened with.
func (p *Partfile) Options() Options { return p.options }

// Created reports whether the completed file has been materialized.
func (p *Partfile) Created() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}

// Disposed reports whether Dispose has run.
func (p *Partfile) Disposed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disposed
}

// Partsize returns the total on-disk size the container will have once
// every chunk is appended, or -1 if geometry is not yet resolved.
func (p *Partfile) Partsize() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.partsize
}

// ChunksWritten returns the number of chunks appended so far.
func (p *Partfile) ChunksWritten() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.curChunkPos + 1
}

// ChunksTotal returns the resolved chunk count, or -1 if not yet resolved.
func (p *Partfile) ChunksTotal() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.chunksTotal
}

// FirstChunkPos returns the ordinal the first logical chunk was appended
// at, or -1 if it has not been written yet.
func (p *Partfile) FirstChunkPos() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.firstChunkPos
}

// LastChunkPos returns the ordinal the last logical chunk was appended at,
// or -1 if it has not been written yet.
func (p *Partfile) LastChunkPos() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastChunkPos
}

// ChunkIndex returns a defensive copy of the logical id -> ordinal map.
func (p *Partfile) ChunkIndex() map[int64]int64 {
	p.mu.Lock()
	idx := p.index
	p.mu.Unlock()
	if idx == nil {
		return nil
	}
	return idx.Snapshot()
}
