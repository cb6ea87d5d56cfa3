package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cellSeparator keeps cells apart the way column padding does in text exports.
const cellSeparator = "  "

// HTMLReader flattens rate lists exported as HTML tables: one line per row.
type HTMLReader struct{}

// Name identifies the strategy inside the registry.
func (HTMLReader) Name() string {
	return "html"
}

// Extensions lists file suffixes handled by this reader.
func (HTMLReader) Extensions() []string {
	return []string{".html", ".htm"}
}

// ReadLines parses the document and emits table rows in document order.
// Documents without rows yield the lines of their body text.
func (HTMLReader) ReadLines(ctx context.Context, r io.Reader) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	rows := doc.Find("tr")
	if rows.Length() == 0 {
		return splitLines(doc.Find("body").Text()), nil
	}

	lines := make([]string, 0, rows.Length())
	rows.Each(func(_ int, tr *goquery.Selection) {
		lines = append(lines, rowText(tr))
	})
	return lines, nil
}

func rowText(tr *goquery.Selection) string {
	var cells []string
	tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		text := strings.Join(strings.Fields(cell.Text()), " ")
		if text != "" {
			cells = append(cells, text)
		}
	})
	return strings.Join(cells, cellSeparator)
}
