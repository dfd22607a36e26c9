package partfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testOptions(t *testing.T) Options {
	dir := t.TempDir()
	return New(
		WithFolder(filepath.Join(dir, "out")),
		WithPartFolder(filepath.Join(dir, "parts")),
		WithPartExtension(".apf"),
		WithAutoCreate(false),
		WithLifecycle(false, false, false, true),
	)
}

func TestPartfile_SingleChunkFile(t *testing.T) {
	opts := testOptions(t)
	data := []byte("hello world")

	pf, err := OpenNew("greeting.txt", 1024, int64(len(data)), opts)
	require.NoError(t, err)
	defer pf.Dispose()

	require.NoError(t, pf.WriteFirst(data, 0, len(data)))
	require.EqualValues(t, 1, pf.ChunksTotal())

	require.NoError(t, pf.Create())
	require.True(t, pf.Created())

	got, err := os.ReadFile(filepath.Join(opts.Folder, "greeting.txt"))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestPartfile_EvenChunksOutOfOrder(t *testing.T) {
	opts := testOptions(t)
	data := bytes.Repeat([]byte{0xAB}, 30)

	pf, err := OpenNew("evenly.bin", 10, int64(len(data)), opts)
	require.NoError(t, err)
	defer pf.Dispose()

	require.NoError(t, pf.WriteFirst(data[0:10], 0, 10))
	require.NoError(t, pf.WriteLast(2, data[20:30], 0, 10))
	require.NoError(t, pf.Write(1, data[10:20], 0))

	require.EqualValues(t, 3, pf.ChunksTotal())

	buf := make([]byte, 30)
	n, err := pf.ReadAt(0, buf, 0, 30)
	require.NoError(t, err)
	require.Equal(t, 30, n)
	require.Equal(t, data, buf)

	require.NoError(t, pf.Create())
	got, err := os.ReadFile(filepath.Join(opts.Folder, "evenly.bin"))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestPartfile_UnevenBoundaries_AutoCreate(t *testing.T) {
	opts := testOptions(t)
	opts.AutoCreate = true
	data := make([]byte, 25)
	for i := range data {
		data[i] = byte(i)
	}

	pf, err := OpenNew("uneven.bin", 10, int64(len(data)), opts)
	require.NoError(t, err)
	defer pf.Dispose()

	require.NoError(t, pf.WriteFirst(data[0:5], 0, 5))
	require.NoError(t, pf.Write(1, data[5:15], 0))
	require.NoError(t, pf.WriteLast(2, data[15:25], 0, 10))

	require.EqualValues(t, 3, pf.ChunksTotal())
	require.True(t, pf.Created())

	got, err := os.ReadFile(filepath.Join(opts.Folder, "uneven.bin"))
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestPartfile_ReadBeforeCompletion_MissingChunk(t *testing.T) {
	opts := testOptions(t)
	data := bytes.Repeat([]byte{1}, 30)

	pf, err := OpenNew("partial.bin", 10, int64(len(data)), opts)
	require.NoError(t, err)
	defer pf.Dispose()

	require.NoError(t, pf.WriteFirst(data[0:10], 0, 10))

	buf := make([]byte, 10)
	_, err = pf.ReadAt(10, buf, 0, 10)
	require.ErrorIs(t, err, ErrMissingChunk)
}

func TestPartfile_DuplicateWrite_EmitsWarningNoMutation(t *testing.T) {
	opts := testOptions(t)
	var warnings []string
	opts.OnWarning = func(_ *Partfile, msg string) { warnings = append(warnings, msg) }

	data := bytes.Repeat([]byte{2}, 20)
	pf, err := OpenNew("dup.bin", 10, int64(len(data)), opts)
	require.NoError(t, err)
	defer pf.Dispose()

	require.NoError(t, pf.WriteFirst(data[0:10], 0, 10))
	require.NoError(t, pf.WriteFirst(data[0:10], 0, 10))
	require.Len(t, warnings, 1)
	require.EqualValues(t, 1, pf.ChunksWritten())
}

func TestPartfile_WriteAfterCreate_EmitsWarning(t *testing.T) {
	opts := testOptions(t)
	var warnings []string
	opts.OnWarning = func(_ *Partfile, msg string) { warnings = append(warnings, msg) }

	pf, err := OpenNew("tiny.bin", 10, 0, opts)
	require.NoError(t, err)
	defer pf.Dispose()
	require.True(t, pf.Created())

	require.NoError(t, pf.WriteFirst([]byte("x"), 0, 1))
	require.Len(t, warnings, 1)
}

func TestPartfile_ResumeAfterCrash(t *testing.T) {
	opts := testOptions(t)
	data := bytes.Repeat([]byte{3}, 40)

	pf, err := OpenNew("resume.bin", 10, int64(len(data)), opts)
	require.NoError(t, err)

	require.NoError(t, pf.WriteFirst(data[0:10], 0, 10))
	require.NoError(t, pf.Write(1, data[10:20], 0))
	partPath := pf.partPath
	require.NoError(t, pf.store.Close())
	pf.store = nil

	// simulate a crashed append: a dangling partial record past the
	// point the writer had durably reached.
	f, err := os.OpenFile(partPath, os.O_RDWR, 0o644)
	require.NoError(t, err)
	info, err := f.Stat()
	require.NoError(t, err)
	_, err = f.WriteAt([]byte{0, 0, 0}, info.Size())
	require.NoError(t, err)
	require.NoError(t, f.Close())

	resumed, err := OpenExisting(partPath, true, opts)
	require.NoError(t, err)
	defer resumed.Dispose()

	require.EqualValues(t, 2, resumed.ChunksWritten())

	require.NoError(t, resumed.WriteLast(2, data[20:40], 0, 20))
	require.EqualValues(t, 3, resumed.ChunksTotal())

	buf := make([]byte, 40)
	n, err := resumed.ReadAt(0, buf, 0, 40)
	require.NoError(t, err)
	require.Equal(t, 40, n)
	require.Equal(t, data, buf)
}

func TestPartfile_InvalidGeometry(t *testing.T) {
	opts := testOptions(t)
	pf, err := OpenNew("bad.bin", 10, 23, opts)
	require.NoError(t, err)
	defer pf.Dispose()

	require.NoError(t, pf.WriteFirst(make([]byte, 5), 0, 5))
	err = pf.WriteLast(1, make([]byte, 4), 0, 4)
	require.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestPartfile_ReadChunk(t *testing.T) {
	opts := testOptions(t)
	data := bytes.Repeat([]byte{9}, 20)

	pf, err := OpenNew("chunked.bin", 10, int64(len(data)), opts)
	require.NoError(t, err)
	defer pf.Dispose()

	require.NoError(t, pf.WriteFirst(data[0:10], 0, 10))
	require.NoError(t, pf.WriteLast(1, data[10:20], 0, 10))

	buf := make([]byte, 4)
	n, err := pf.ReadChunk(1, 2, buf, 0, 4)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, data[12:16], buf)
}
