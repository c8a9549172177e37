package extract

import (
	"fmt"
	"sort"
	"strings"

	rpdf "rsc.io/pdf"
)

// PDFFormat implements Format for PDF files.
type PDFFormat struct{}

func init() {
	Register(&PDFFormat{})
}

func (f *PDFFormat) Name() string         { return "PDF" }
func (f *PDFFormat) Extensions() []string { return []string{".pdf"} }

// Extract pulls the text runs from every page and reassembles them into
// lines by Y coordinate. Encrypted or image-only PDFs yield little or no
// text; that is surfaced downstream as a too-short document, not here.
func (f *PDFFormat) Extract(filename string) (text string, err error) {
	// rsc.io/pdf panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	doc, err := rpdf.Open(filename)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var out strings.Builder
	for i := 1; i <= doc.NumPage(); i++ {
		page := doc.Page(i)
		if page.V.IsNull() {
			continue
		}
		out.WriteString(pageText(page))
		out.WriteString("\n\n")
	}
	return out.String(), nil
}

// pageText orders a page's text runs top-to-bottom, left-to-right, and
// joins runs sharing a baseline into one line.
func pageText(page rpdf.Page) string {
	runs := page.Content().Text
	if len(runs) == 0 {
		return ""
	}

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Y != runs[j].Y {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})

	var out strings.Builder
	lastY := runs[0].Y
	lastEnd := 0.0
	for _, r := range runs {
		if r.Y != lastY {
			out.WriteString("\n")
			lastY = r.Y
			lastEnd = 0
		} else if lastEnd > 0 && r.X-lastEnd > r.FontSize*0.2 {
			out.WriteString(" ")
		}
		out.WriteString(r.S)
		lastEnd = r.X + r.W
	}
	return out.String()
}
