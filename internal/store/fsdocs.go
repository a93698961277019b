package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// categoryFiles maps each document category to its file name under the
// user's directory.
var categoryFiles = map[DocumentCategory]string{
	CategoryStyleGuide: "style_guide.txt",
	CategoryResume:     "resume.txt",
}

// FSDocumentProvider serves document text from a directory tree laid out as
// <root>/<user id>/<category file>. A missing file is not an error; the
// contract is empty text when nothing is uploaded.
type FSDocumentProvider struct {
	root string
}

// NewFSDocumentProvider creates a provider rooted at dir.
func NewFSDocumentProvider(dir string) *FSDocumentProvider {
	return &FSDocumentProvider{root: dir}
}

// GetContent returns the text of a user's document, or empty text when the
// user has not uploaded one.
func (p *FSDocumentProvider) GetContent(_ context.Context, userID int64, category DocumentCategory) (string, error) {
	name, ok := categoryFiles[category]
	if !ok {
		return "", fmt.Errorf("unknown document category %q", category)
	}

	path := filepath.Join(p.root, strconv.FormatInt(userID, 10), name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s document: %w", category, err)
	}
	return string(data), nil
}
