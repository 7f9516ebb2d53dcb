package opensubtitles

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashReader(t *testing.T) {
	// 128 KiB of zeros: the hash is just the file size.
	data := make([]byte, hashChunkSize*2)
	got, err := hashReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, "0000000000020000", got)

	// A single little-endian 1 in the first word adds one.
	data[0] = 1
	got, err = hashReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, "0000000000020001", got)

	// The same word in the tail chunk counts too.
	data[0] = 0
	data[len(data)-8] = 1
	got, err = hashReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, "0000000000020001", got)
}

func TestHashReader_MiddleBytesIgnored(t *testing.T) {
	// Only the first and last 64 KiB contribute.
	data := make([]byte, hashChunkSize*3)
	base, err := hashReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	data[hashChunkSize+100] = 0xff
	got, err := hashReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestHashReader_TooSmall(t *testing.T) {
	_, err := hashReader(bytes.NewReader(make([]byte, 1024)), 1024)
	assert.Error(t, err)
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "video.mkv")
	require.NoError(t, os.WriteFile(path, make([]byte, hashChunkSize*2), 0o644))

	got, err := FileHash(path)
	require.NoError(t, err)
	assert.Equal(t, "0000000000020000", got)

	_, err = FileHash(filepath.Join(t.TempDir(), "missing.mkv"))
	assert.Error(t, err)
}
