// Package docx renders MCQ records as Word tables: one two-column table per
// question, label on the left and value on the right.
package docx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/mind-engage/mcq-docgen/internal/mcq"
	"github.com/mind-engage/mcq-docgen/internal/render"
)

const (
	ContentType  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	QuestionType = "Multiple Choice"
)

// Rows returns the label/value pairs of one question table in document order.
func Rows(rec mcq.Record) [][2]string {
	opt := func(i int) string {
		if i < len(rec.Options) {
			return rec.Options[i]
		}
		return mcq.NoOption
	}
	return [][2]string{
		{"Question", rec.Stem},
		{"Type", QuestionType},
		{"Option 1", opt(0)},
		{"Option 2", opt(1)},
		{"Option 3", opt(2)},
		{"Option 4", opt(3)},
		{"Option 5", opt(4)},
		{"Answer", rec.Answer},
		{"Solution", rec.Solution},
		{"Positive Marks", rec.PositiveMarks},
		{"Negative Marks", rec.NegativeMarks},
	}
}

type Renderer struct{}

func (Renderer) ContentType() string { return ContentType }
func (Renderer) Extension() string   { return ".docx" }

func (Renderer) Render(ctx context.Context, records []mcq.Record) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows := Rows(rec)
		tbl := doc.AddTable(len(rows), 2, 0, nil)
		for r, row := range rows {
			cells := tbl.TableRows[r].TableCells
			cells[0].AddParagraph().AddText(row[0]).Bold()
			// one paragraph per line so multi-line stems keep their shape
			for _, line := range strings.Split(row[1], "\n") {
				cells[1].AddParagraph().AddText(line)
			}
		}
		doc.AddParagraph()
	}

	buf := new(bytes.Buffer)
	if _, err := doc.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

func init() { render.Register("docx", Renderer{}) }
