package geometry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculate_BothUnknown(t *testing.T) {
	g, err := Calculate(25, 10, Unknown, Unknown, 100)
	require.NoError(t, err)
	require.EqualValues(t, -1, g.ChunksTotal)
	require.EqualValues(t, -1, g.Partsize)
}

func TestCalculate_OnlyFirstKnown_Scenario1(t *testing.T) {
	// spec.md §8 scenario 1: size=220, chunksize=100, first=20.
	g, err := Calculate(220, 100, 20, Unknown, 50)
	require.NoError(t, err)
	require.EqualValues(t, 3, g.ChunksTotal)
	require.EqualValues(t, 100, g.LastChunksize)
	require.EqualValues(t, 50+4*3+20+100+1*100, g.Partsize)
}

func TestCalculate_OnlyFirstKnown_Scenario2(t *testing.T) {
	// spec.md §8 scenario 2: size=25, chunksize=10, first derived to 5 after
	// write_first(5 bytes).
	g, err := Calculate(25, 10, 5, Unknown, 17)
	require.NoError(t, err)
	require.EqualValues(t, 10, g.LastChunksize)
	require.EqualValues(t, 3, g.ChunksTotal)
}

func TestCalculate_SingleChunk_Scenario3(t *testing.T) {
	g, err := Calculate(10, 10, 10, Unknown, 17)
	require.NoError(t, err)
	require.EqualValues(t, 1, g.ChunksTotal)
	require.EqualValues(t, 17+14, g.Partsize)
}

func TestCalculate_TwoChunks(t *testing.T) {
	g, err := Calculate(50, 10, 20, 30, 40)
	require.NoError(t, err)
	require.EqualValues(t, 2, g.ChunksTotal)
	require.EqualValues(t, 40+4+20+4+30, g.Partsize)
}

func TestCalculate_ManyChunks_Scenario6(t *testing.T) {
	g, err := Calculate(250, 100, 20, 30, 60)
	require.NoError(t, err)
	require.EqualValues(t, 4, g.ChunksTotal)
	require.EqualValues(t, 60+4*4+20+30+2*100, g.Partsize)
}

func TestCalculate_OnlyLastKnown(t *testing.T) {
	g, err := Calculate(220, 100, Unknown, 100, 50)
	require.NoError(t, err)
	require.EqualValues(t, 20, g.FirstChunksize)
	require.EqualValues(t, 3, g.ChunksTotal)
}

func TestCalculate_OnlyLastKnown_FirstEqualsChunksize(t *testing.T) {
	// (size - last) mod chunksize == 0 -> first falls back to chunksize.
	g, err := Calculate(300, 100, Unknown, 100, 50)
	require.NoError(t, err)
	require.EqualValues(t, 100, g.FirstChunksize)
}

func TestCalculate_InvalidGeometry(t *testing.T) {
	_, err := Calculate(123, 10, 5, 5, 50)
	require.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestCalculate_InvalidChunksize(t *testing.T) {
	_, err := Calculate(10, 0, Unknown, Unknown, 50)
	require.Error(t, err)
}

func TestPhysicalOffset(t *testing.T) {
	const headersSize = 50
	const chunksize = 100

	// ordinal 0 is always the first physical record: payload starts right
	// after headers and its own 4-byte id prefix.
	require.EqualValues(t, headersSize+4, PhysicalOffset(headersSize, chunksize, 0, 0, 20, 2, 100))

	// ordinal 1 follows ordinal 0, whose record was 4+20 bytes (it's the
	// boundary chunk at firstChunkPos=0).
	require.EqualValues(t, headersSize+4+4+20, PhysicalOffset(headersSize, chunksize, 1, 0, 20, 2, 100))

	// ordinal 2 is the last-chunk boundary: it also follows the middle
	// chunk at ordinal 1 (size chunksize).
	require.EqualValues(t, headersSize+4+4+20+4+chunksize, PhysicalOffset(headersSize, chunksize, 2, 0, 20, 2, 100))
}

func TestChunkCapacity(t *testing.T) {
	require.EqualValues(t, 20, ChunkCapacity(0, 3, 100, 20, 30))
	require.EqualValues(t, 30, ChunkCapacity(2, 3, 100, 20, 30))
	require.EqualValues(t, 100, ChunkCapacity(1, 3, 100, 20, 30))
}
