package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestExtractAudioPassthrough(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pitch.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really audio"), 0o600))

	extractor := NewFileExtractor(zerolog.Nop())
	content, err := extractor.Extract(context.Background(), path, "audio/mpeg")
	require.NoError(t, err)
	require.True(t, content.IsAudio())
	require.Equal(t, path, content.AudioPath)

	// Passthrough audio is owned by the caller, not the extractor.
	require.NoError(t, content.Close())
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestExtractPlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("project pitch"), 0o600))

	extractor := NewFileExtractor(zerolog.Nop())
	content, err := extractor.Extract(context.Background(), path, "text/plain")
	require.NoError(t, err)
	require.False(t, content.IsAudio())
	require.Equal(t, "project pitch", content.Text)
}

func TestExtractSniffsUndeclaredTextTypes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"idea": "solar grid"}`), 0o600))

	extractor := NewFileExtractor(zerolog.Nop())
	content, err := extractor.Extract(context.Background(), path, "application/octet-stream")
	require.NoError(t, err)
	require.Contains(t, content.Text, "solar grid")
}

func TestExtractRejectsBinaryContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x7f, 0x45, 0x4c, 0x46, 0x00, 0x01, 0x02}, 0o600))

	extractor := NewFileExtractor(zerolog.Nop())
	_, err := extractor.Extract(context.Background(), path, "application/octet-stream")
	require.ErrorIs(t, err, ErrExtractionFailed)
}

func TestContentCloseRemovesDerivedAudio(t *testing.T) {
	dir := t.TempDir()
	derived := filepath.Join(dir, "derived.mp3")
	require.NoError(t, os.WriteFile(derived, []byte("track"), 0o600))

	content := &Content{
		AudioPath: derived,
		cleanup:   func() error { return os.Remove(derived) },
	}

	require.NoError(t, content.Close())
	_, err := os.Stat(derived)
	require.True(t, os.IsNotExist(err))

	// A second Close on an already-released resource is a no-op.
	require.NoError(t, content.Close())
}
