// Package geometry computes the chunk layout of a container: how many
// chunks a logical file of a given size splits into, the total on-disk size
// once every chunk has been appended, and the physical byte offset of any
// chunk's payload.
package geometry

import (
	"errors"
	"fmt"
)

// Unknown is the sentinel for a boundary size/position that is not yet
// determined.
const Unknown int32 = -1

// ErrInvalidGeometry is returned when the middle span implied by size,
// chunksize and the two boundary sizes is not a positive multiple of
// chunksize.
var ErrInvalidGeometry = errors.New("geometry: invalid geometry")

// Geometry is the resolved layout of a container. ChunksTotal and Partsize
// are Unknown-as-(-1) while both boundary sizes are unknown; once either is
// known, Calculate derives the other.
type Geometry struct {
	ChunksTotal    int64
	Partsize       int64
	FirstChunksize int32
	LastChunksize  int32
}

// recordSize is the on-disk footprint of a chunk record of the given
// payload length: a 4-byte id prefix plus the payload.
func recordSize(payloadLen int32) int64 {
	return 4 + int64(payloadLen)
}

// Calculate fills in whichever boundary size is unknown and computes the
// total chunk count and final on-disk size, following the decision tree of
// the container format's §4.3.
//
// size must be >= 0. A size of 0 is the caller's responsibility to special
// case (an empty file has no chunks at all); Calculate assumes size > 0.
func Calculate(size int64, chunksize int32, firstChunksize, lastChunksize int32, headersSize int64) (Geometry, error) {
	if chunksize < 1 {
		return Geometry{}, fmt.Errorf("geometry: chunksize must be >= 1, got %d", chunksize)
	}

	firstKnown := firstChunksize != Unknown
	lastKnown := lastChunksize != Unknown

	// 1. Both boundaries unknown: geometry cannot be determined yet.
	if !firstKnown && !lastKnown {
		return Geometry{ChunksTotal: -1, Partsize: -1, FirstChunksize: Unknown, LastChunksize: Unknown}, nil
	}

	// 2. Only the last chunk size is known: derive the first.
	if !firstKnown && lastKnown {
		first := (size - int64(lastChunksize)) % int64(chunksize)
		if first == 0 {
			first = int64(chunksize)
		}
		firstChunksize = int32(first)
		firstKnown = true
	}

	// 3. A single chunk spans the whole file.
	if int64(firstChunksize) == size {
		return Geometry{
			ChunksTotal:    1,
			Partsize:       headersSize + recordSize(firstChunksize),
			FirstChunksize: firstChunksize,
			LastChunksize:  lastChunksize,
		}, nil
	}

	// 4. Only the first chunk size is known: derive the last.
	if firstKnown && !lastKnown {
		last := (size - int64(firstChunksize)) % int64(chunksize)
		if last == 0 {
			last = int64(chunksize)
		}
		lastChunksize = int32(last)
		lastKnown = true
	}

	// 5. Exactly two chunks span the file.
	if size == int64(firstChunksize)+int64(lastChunksize) {
		return Geometry{
			ChunksTotal:    2,
			Partsize:       headersSize + recordSize(firstChunksize) + recordSize(lastChunksize),
			FirstChunksize: firstChunksize,
			LastChunksize:  lastChunksize,
		}, nil
	}

	// 6. Everything left over must be a positive, exact multiple of
	// chunksize, split into equal middle chunks.
	szLeft := size - (int64(firstChunksize) + int64(lastChunksize))
	if szLeft <= 0 || szLeft%int64(chunksize) != 0 {
		return Geometry{}, fmt.Errorf("%w: size=%d chunksize=%d first=%d last=%d",
			ErrInvalidGeometry, size, chunksize, firstChunksize, lastChunksize)
	}
	middleChunks := szLeft / int64(chunksize)
	chunksTotal := 2 + middleChunks
	partsize := headersSize + recordSize(firstChunksize) + recordSize(lastChunksize) + middleChunks*recordSize(chunksize)

	return Geometry{
		ChunksTotal:    chunksTotal,
		Partsize:       partsize,
		FirstChunksize: firstChunksize,
		LastChunksize:  lastChunksize,
	}, nil
}

// PhysicalOffset returns the file offset of the payload of the chunk record
// appended at ordinal pos, given which ordinals (if any) hold the first and
// last logical chunks and their sizes. All non-boundary records are exactly
// chunksize bytes.
func PhysicalOffset(headersSize int64, chunksize int32, pos int32, firstChunkPos, firstChunksize, lastChunkPos, lastChunksize int32) int64 {
	filePos := headersSize + 4
	chunksLeft := int64(pos)

	if firstChunkPos != Unknown && pos > firstChunkPos {
		filePos += recordSize(firstChunksize)
		chunksLeft--
	}
	if lastChunkPos != Unknown && pos > lastChunkPos {
		filePos += recordSize(lastChunksize)
		chunksLeft--
	}

	filePos += chunksLeft * recordSize(chunksize)
	return filePos
}

// ChunkCapacity returns the payload length of the logical chunk with the
// given id, given the resolved geometry.
func ChunkCapacity(chunkID int64, chunksTotal int64, chunksize, firstChunksize, lastChunksize int32) int32 {
	switch {
	case chunkID == 0:
		return firstChunksize
	case chunkID == chunksTotal-1:
		return lastChunksize
	default:
		return chunksize
	}
}
