package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSDocumentProviderReadsPerUserFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "7"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "7", "resume.txt"), []byte("Led a team."), 0o644))

	p := NewFSDocumentProvider(root)

	text, err := p.GetContent(context.Background(), 7, CategoryResume)
	require.NoError(t, err)
	assert.Equal(t, "Led a team.", text)
}

func TestFSDocumentProviderMissingFileIsEmpty(t *testing.T) {
	p := NewFSDocumentProvider(t.TempDir())

	text, err := p.GetContent(context.Background(), 7, CategoryStyleGuide)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestFSDocumentProviderUnknownCategory(t *testing.T) {
	p := NewFSDocumentProvider(t.TempDir())

	_, err := p.GetContent(context.Background(), 7, DocumentCategory("cover-art"))
	assert.Error(t, err)
}
