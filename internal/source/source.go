package source

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// DefaultReader names the strategy used when no extension matches.
const DefaultReader = "text"

// Reader turns one rate list document into its ordered lines.
type Reader interface {
	Name() string
	Extensions() []string
	ReadLines(ctx context.Context, r io.Reader) ([]string, error)
}

// Registry keeps a mapping from reader names and file extensions to implementations.
type Registry struct {
	readers    map[string]Reader
	extensions map[string]Reader
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: map[string]Reader{}, extensions: map[string]Reader{}}
}

// Register adds or replaces a reader and claims its extensions.
func (r *Registry) Register(reader Reader) {
	if r.readers == nil {
		r.readers = map[string]Reader{}
	}
	if r.extensions == nil {
		r.extensions = map[string]Reader{}
	}
	r.readers[reader.Name()] = reader
	for _, ext := range reader.Extensions() {
		r.extensions[strings.ToLower(ext)] = reader
	}
}

// Resolve returns a reader by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Reader, error) {
	if reader, ok := r.readers[name]; ok {
		return reader, nil
	}
	return nil, fmt.Errorf("reader %s is not registered", name)
}

// ForPath picks a reader by file extension, falling back to DefaultReader.
func (r *Registry) ForPath(path string) (Reader, error) {
	if reader, ok := r.extensions[strings.ToLower(filepath.Ext(path))]; ok {
		return reader, nil
	}
	return r.Resolve(DefaultReader)
}
