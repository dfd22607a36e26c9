package partfile

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadStream_SeekAndRead(t *testing.T) {
	opts := testOptions(t)
	data := bytes.Repeat([]byte{5}, 20)

	pf, err := OpenNew("stream.bin", 10, int64(len(data)), opts)
	require.NoError(t, err)
	defer pf.Dispose()

	require.NoError(t, pf.WriteFirst(data[0:10], 0, 10))
	require.NoError(t, pf.WriteLast(1, data[10:20], 0, 10))

	s := pf.GetReadStream()
	require.EqualValues(t, 20, s.Length())

	buf := make([]byte, 5)
	n, err := s.Read(buf, 0, 5)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.EqualValues(t, 5, s.Position())

	pos, err := s.Seek(5, SeekEnd)
	require.NoError(t, err)
	require.EqualValues(t, 15, pos)

	n, err = s.Read(buf, 0, 5)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, data[15:20], buf)

	_, err = s.Write(buf, 0, 5)
	require.ErrorIs(t, err, ErrNotSupported)
}

func TestReadStream_AfterCreate(t *testing.T) {
	opts := testOptions(t)
	opts.AutoCreate = true
	data := []byte("stream after materialization")

	pf, err := OpenNew("materialized.bin", 1024, int64(len(data)), opts)
	require.NoError(t, err)
	defer pf.Dispose()

	require.NoError(t, pf.WriteFirst(data, 0, len(data)))
	require.True(t, pf.Created())

	s := pf.GetReadStream()
	buf := make([]byte, len(data))
	n, err := s.Read(buf, 0, len(data))
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, buf)

	require.FileExists(t, filepath.Join(opts.Folder, "materialized.bin"))
}
