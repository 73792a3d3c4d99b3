package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/devspec/internal/model"
)

// MarkdownWriter outputs the device list as a Markdown document.
type MarkdownWriter struct {
	baseWriter

	title string
}

// DefaultMarkdownTitle is the document heading.
const DefaultMarkdownTitle = "Device Specifications"

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		title:      DefaultMarkdownTitle,
	}
}

// Write outputs a heading, a device count and the device table.
// An empty list produces the heading and a note instead of a table.
func (w *MarkdownWriter) Write(devices []model.DeviceInfo) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1(w.title)
	md.PlainText("")
	md.PlainText(fmt.Sprintf("%d devices extracted from the store.", len(devices)))
	md.PlainText("")

	if len(devices) == 0 {
		md.PlainText("No device pages are stored yet. Run `devspec crawl` first.")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		row := d.Row()
		for i := range row {
			row[i] = escapeCell(row[i])
		}
		row[0] = fmt.Sprintf("[%s](%s)", row[0], d.URL)
		rows = append(rows, row)
	}

	md.Table(markdown.TableSet{
		Header: model.DeviceColumns,
		Rows:   rows,
	})

	return len(md.String()), md.Build()
}

// escapeCell keeps a cell value from splitting the table row.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
