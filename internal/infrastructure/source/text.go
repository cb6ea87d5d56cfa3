package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextReader reads plain-text rate lists. A byte order mark selects UTF-8 or
// UTF-16; without one the input is taken as UTF-8.
type TextReader struct{}

// Name identifies the strategy inside the registry.
func (TextReader) Name() string {
	return "text"
}

// Extensions lists file suffixes handled by this reader.
func (TextReader) Extensions() []string {
	return []string{".txt", ".text", ".lst"}
}

// ReadLines decodes the whole document and splits it into lines.
func (TextReader) ReadLines(ctx context.Context, r io.Reader) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	raw, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}

	return splitLines(string(raw)), nil
}

// splitLines keeps blank lines so line positions stay meaningful.
func splitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
