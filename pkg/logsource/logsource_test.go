package logsource_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pacelog/pkg/logsource"
)

const sample = "C 1 10\nD 1 15\n"

func compress(t *testing.T, text string) []byte {
	t.Helper()

	var buf bytes.Buffer

	w := lz4.NewWriter(&buf)
	_, err := w.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.Bytes()
}

func readAll(t *testing.T, src *logsource.Source) string {
	t.Helper()

	data, err := io.ReadAll(src)
	require.NoError(t, err)
	require.NoError(t, src.Close())

	return string(data)
}

func TestOpen_PlainFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	src, err := logsource.Open(path)
	require.NoError(t, err)

	assert.False(t, src.Compressed)
	assert.Equal(t, int64(len(sample)), src.Size)
	assert.Equal(t, sample, readAll(t, src))
}

func TestOpen_CompressedByExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.log.lz4")
	require.NoError(t, os.WriteFile(path, compress(t, sample), 0o600))

	src, err := logsource.Open(path)
	require.NoError(t, err)

	assert.True(t, src.Compressed)
	assert.Equal(t, sample, readAll(t, src))
}

func TestNewReader_DetectsMagic(t *testing.T) {
	t.Parallel()

	src, err := logsource.NewReader("stream", bytes.NewReader(compress(t, sample)))
	require.NoError(t, err)

	assert.True(t, src.Compressed)
	assert.Equal(t, sample, readAll(t, src))
}

func TestNewReader_ShortPlainInput(t *testing.T) {
	t.Parallel()

	src, err := logsource.NewReader("tiny", strings.NewReader("C"))
	require.NoError(t, err)

	assert.False(t, src.Compressed)
	assert.Equal(t, "C", readAll(t, src))
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	_, err := logsource.Open(filepath.Join(t.TempDir(), "missing.log"))
	require.Error(t, err)

	_, dirErr := logsource.Open(t.TempDir())
	require.ErrorIs(t, dirErr, logsource.ErrNotRegular)
}
