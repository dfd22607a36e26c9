package container

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndReadAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.apf")
	s, err := Create(path)
	require.NoError(t, err)
	defer s.Close()

	header := []byte("HEADERBYTES")
	require.NoError(t, s.WriteHeader(header))

	off, err := s.Append(0, []byte("hello"), false)
	require.NoError(t, err)
	require.EqualValues(t, len(header), off)

	buf := make([]byte, 5)
	n, err := s.ReadAt(buf, off+4)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "hello", string(buf))
}

func TestStore_PatchAt_DoesNotDisturbAppendOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.apf")
	s, err := Create(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteHeader(make([]byte, 16)))
	require.NoError(t, s.PatchAt(4, []byte{1, 2, 3, 4}))

	off, err := s.Append(1, []byte("x"), false)
	require.NoError(t, err)
	require.EqualValues(t, 16, off)

	patched := make([]byte, 4)
	_, err = s.ReadAt(patched, 4)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, patched)
}

func TestStore_SwapReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.apf")
	s, err := Create(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.WriteHeader([]byte("abc")))

	otherPath := filepath.Join(t.TempDir(), "other")
	require.NoError(t, os.WriteFile(otherPath, []byte("xyz123"), 0o644))
	other, err := os.Open(otherPath)
	require.NoError(t, err)

	old := s.SwapReadFile(other)
	require.NotNil(t, old)
	require.NoError(t, old.Close())

	buf := make([]byte, 3)
	n, err := s.ReadAt(buf, 3)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "123", string(buf))
}
