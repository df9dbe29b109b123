// Package snapshot stores type graphs as YAML documents so an API can be
// captured once and compared later. Files ending in .zst are zstd
// compressed.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/LegacyCodeHQ/apicheck/typegraph"
	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"
)

// Version is the document format written by this package.
const Version = 1

// CompressedSuffix marks snapshot files stored as a zstd stream.
const CompressedSuffix = ".zst"

// ErrUnsupportedVersion is returned for documents of another format version.
var ErrUnsupportedVersion = errors.New("unsupported snapshot version")

type document struct {
	Version int                   `yaml:"version"`
	Name    string                `yaml:"name"`
	Classes []typegraph.ClassDecl `yaml:"classes"`
}

// Write encodes g as a YAML document.
func Write(w io.Writer, g *typegraph.Graph) error {
	doc := document{Version: Version, Name: g.Name()}
	for _, c := range g.Classes() {
		doc.Classes = append(doc.Classes, c.Decl())
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return enc.Close()
}

// Read decodes a YAML document written by Write.
func Read(r io.Reader) (*typegraph.Graph, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	b := typegraph.NewBuilder(doc.Name)
	for _, decl := range doc.Classes {
		if err := b.AddClass(decl); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

// IsSnapshotFile reports whether path names a regular file rather than a
// source directory.
func IsSnapshotFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WriteFile writes g to path, compressing when path ends in .zst.
func WriteFile(path string, g *typegraph.Graph) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(path, CompressedSuffix) {
		return Write(f, g)
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := Write(zw, g); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// ReadFile reads a snapshot written by WriteFile.
func ReadFile(path string) (*typegraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !strings.HasSuffix(path, CompressedSuffix) {
		g, err := Read(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return g, nil
	}

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	g, err := Read(zr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
