package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"LabRateImporter/internal/ports"
	"LabRateImporter/internal/source"
)

// StdinPath reads the rate list from standard input with the default reader.
const StdinPath = "-"

// FileSource implements ports.RateListSource over local files.
type FileSource struct {
	registry *source.Registry
	stdin    io.Reader
	logger   *slog.Logger
}

var _ ports.RateListSource = (*FileSource)(nil)

// NewRegistry returns a registry with the text and HTML readers.
func NewRegistry() *source.Registry {
	reg := source.NewRegistry()
	reg.Register(TextReader{})
	reg.Register(HTMLReader{})
	return reg
}

// NewFileSource wires a reader registry; a nil registry gets the defaults.
func NewFileSource(reg *source.Registry, log *slog.Logger) *FileSource {
	if reg == nil {
		reg = NewRegistry()
	}
	return &FileSource{registry: reg, stdin: os.Stdin, logger: log}
}

// ReadLines loads the whole document at path and returns its lines in order.
func (s *FileSource) ReadLines(ctx context.Context, path string) ([]string, error) {
	if path == StdinPath {
		reader, err := s.registry.Resolve(source.DefaultReader)
		if err != nil {
			return nil, err
		}
		lines, err := reader.ReadLines(ctx, s.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		s.debug("rate list read", "path", path, "reader", reader.Name(), "lines", len(lines))
		return lines, nil
	}

	reader, err := s.registry.ForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rate list: %w", err)
	}
	defer f.Close()

	lines, err := reader.ReadLines(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	s.debug("rate list read", "path", path, "reader", reader.Name(), "lines", len(lines))
	return lines, nil
}

func (s *FileSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
