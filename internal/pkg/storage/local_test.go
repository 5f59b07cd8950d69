package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewLocalStorage(dir, "https://files.nemopark.test/payslips/")
	require.NoError(t, err)
	return s, dir
}

func TestLocalStorage_UploadDownload(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestStorage(t)

	key, err := s.Upload(ctx, strings.NewReader("%PDF-1.3"), "2024/01/slip.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "2024/01/slip.pdf", key)

	_, err = os.Stat(filepath.Join(dir, "2024", "01", "slip.pdf"))
	require.NoError(t, err)

	rc, err := s.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(body))

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocalStorage_UploadOverwrites(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)

	_, err := s.Upload(ctx, strings.NewReader("first"), "slip.pdf", "application/pdf")
	require.NoError(t, err)
	_, err = s.Upload(ctx, strings.NewReader("second"), "slip.pdf", "application/pdf")
	require.NoError(t, err)

	rc, err := s.Download(ctx, "slip.pdf")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "second", string(body))
}

func TestLocalStorage_TraversalStaysInsideBase(t *testing.T) {
	ctx := context.Background()
	s, dir := newTestStorage(t)

	key, err := s.Upload(ctx, strings.NewReader("x"), "../../escape.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "escape.txt", key)

	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.NoError(t, err)
}

func TestLocalStorage_InvalidPath(t *testing.T) {
	s, _ := newTestStorage(t)

	_, err := s.Upload(context.Background(), strings.NewReader("x"), "/", "text/plain")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestLocalStorage_MissingFile(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStorage(t)

	_, err := s.Download(ctx, "nope.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)

	exists, err := s.Exists(ctx, "nope.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, s.Delete(ctx, "nope.pdf"))
}

func TestLocalStorage_GetURL(t *testing.T) {
	s, _ := newTestStorage(t)

	url, err := s.GetURL(context.Background(), "2024/01/slip.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://files.nemopark.test/payslips/2024/01/slip.pdf", url)
}

func TestLocalStorage_UploadCancelled(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Upload(ctx, strings.NewReader("x"), "slip.pdf", "application/pdf")
	assert.ErrorIs(t, err, context.Canceled)
}
