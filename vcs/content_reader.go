package vcs

import (
	"os"
	"path/filepath"
)

// ContentReader is a function that reads file content given a file path.
// This allows the caller to control how files are read (filesystem, git, etc.)
type ContentReader func(filePath string) ([]byte, error)

// DirReader reads slash-separated paths relative to root from the filesystem.
func DirReader(root string) ContentReader {
	return func(filePath string) ([]byte, error) {
		return os.ReadFile(filepath.Join(root, filepath.FromSlash(filePath)))
	}
}
