package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTextReaderReadLines(t *testing.T) {
	t.Parallel()

	input := "\xef\xbb\xbfSr.No  Test Name  MRP  Sample\r\n1 CBC 350 Blood\r\n\r\n(with ESR)\n"
	lines, err := TextReader{}.ReadLines(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadLines error: %v", err)
	}

	want := []string{"Sr.No  Test Name  MRP  Sample", "1 CBC 350 Blood", "", "(with ESR)"}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestTextReaderUTF16(t *testing.T) {
	t.Parallel()

	// "1 TSH 300 Serum\n" encoded as UTF-16LE with a byte order mark.
	src := "1 TSH 300 Serum\n"
	raw := []byte{0xff, 0xfe}
	for _, r := range src {
		raw = append(raw, byte(r), 0)
	}

	lines, err := TextReader{}.ReadLines(context.Background(), strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("ReadLines error: %v", err)
	}
	if len(lines) != 1 || lines[0] != "1 TSH 300 Serum" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestTextReaderCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (TextReader{}).ReadLines(ctx, strings.NewReader("1 CBC 350 Blood")); err == nil {
		t.Fatal("expected context error")
	}
}

func TestHTMLReaderReadLines(t *testing.T) {
	t.Parallel()

	html := `
	<html><body>
	<table>
	  <tr><th>Sr.No</th><th>Test Name</th><th>MRP</th><th>Sample</th></tr>
	  <tr><td>7</td><td>Vitamin   D</td><td>1,200</td><td>Serum</td></tr>
	  <tr><td></td><td>(25-Hydroxy)</td><td></td><td></td></tr>
	</table>
	</body></html>`

	lines, err := HTMLReader{}.ReadLines(context.Background(), strings.NewReader(html))
	if err != nil {
		t.Fatalf("ReadLines error: %v", err)
	}

	want := []string{
		"Sr.No  Test Name  MRP  Sample",
		"7  Vitamin D  1,200  Serum",
		"(25-Hydroxy)",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestHTMLReaderWithoutTable(t *testing.T) {
	t.Parallel()

	lines, err := HTMLReader{}.ReadLines(context.Background(), strings.NewReader("<html><body>1 CBC 350 Blood</body></html>"))
	if err != nil {
		t.Fatalf("ReadLines error: %v", err)
	}
	if len(lines) != 1 || lines[0] != "1 CBC 350 Blood" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestRegistryForPath(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	tests := map[string]string{
		"rates.txt":  "text",
		"rates.HTML": "html",
		"rates.htm":  "html",
		"rates":      "text",
		"rates.csv":  "text",
	}
	for path, want := range tests {
		reader, err := reg.ForPath(path)
		if err != nil {
			t.Fatalf("ForPath(%s): %v", path, err)
		}
		if reader.Name() != want {
			t.Errorf("ForPath(%s) = %s, want %s", path, reader.Name(), want)
		}
	}

	if _, err := reg.Resolve("pdf"); err == nil {
		t.Fatal("expected error for unknown reader")
	}
}

func TestFileSourceReadLines(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rates.txt")
	if err := os.WriteFile(path, []byte("1 CBC 350 Blood\n2 TSH 300 Serum\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	src := NewFileSource(nil, nil)
	lines, err := src.ReadLines(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadLines error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	if _, err := src.ReadLines(context.Background(), filepath.Join(dir, "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFileSourceStdin(t *testing.T) {
	t.Parallel()

	src := NewFileSource(nil, nil)
	src.stdin = strings.NewReader("1 CBC 350 Blood\n")

	lines, err := src.ReadLines(context.Background(), StdinPath)
	if err != nil {
		t.Fatalf("ReadLines error: %v", err)
	}
	if len(lines) != 1 || lines[0] != "1 CBC 350 Blood" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}
