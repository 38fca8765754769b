package pdf

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/document"
)

type Options struct {
	// Language selects the captions, see LabelsFor.
	Language string
	// Uncompressed leaves page streams readable, mostly for tests.
	Uncompressed bool
}

// Render lays doc out and writes it as a PDF to w.
func Render(doc *document.AcademicDocument, w io.Writer, opts Options) error {
	if err := doc.Validate(); err != nil {
		return apierr.New(apierr.Format, apierr.OpRender, err)
	}

	f := fpdf.New("P", "mm", "A4", "")
	f.SetMargins(Margin, Margin, Margin)
	f.SetAutoPageBreak(false, 0)
	f.SetCompression(!opts.Uncompressed)
	f.SetTitle(doc.Title, true)
	f.SetCreator("memoscribe", true)

	m := &fontMeasurer{f: f}
	layout := NewLayout(doc, m, LabelsFor(opts.Language))

	for _, page := range layout.Pages {
		f.AddPage()
		for _, line := range page.Lines {
			f.SetFont(fontFamily, line.Style, line.Size)
			if line.Style == "B" {
				f.SetTextColor(0, 0, 0)
			} else {
				f.SetTextColor(51, 51, 51)
			}
			f.Text(line.X, line.Y, encode(line.Text))
		}

		number := fmt.Sprint(page.Number)
		f.SetFont(fontFamily, "", pageNumberSize)
		f.SetTextColor(100, 100, 100)
		f.Text((PageWidth-f.GetStringWidth(number))/2, PageHeight-pageNumberOffset, number)
	}

	if err := f.Output(w); err != nil {
		return apierr.Classify(apierr.OpRender, fmt.Errorf("write pdf: %w", err))
	}
	log.Printf("PDF: rendered %q (%d pages)", doc.Title, len(layout.Pages))
	return nil
}

// fontMeasurer measures UTF-8 text with the core fonts, which are
// cp1252 encoded.
type fontMeasurer struct {
	f *fpdf.Fpdf
}

func (m *fontMeasurer) SetFont(family, style string, size float64) {
	m.f.SetFont(family, style, size)
}

func (m *fontMeasurer) SplitText(txt string, w float64) []string {
	var lines []string
	for _, line := range m.f.SplitLines([]byte(encode(txt)), w) {
		lines = append(lines, decode(line))
	}
	return lines
}

func (m *fontMeasurer) GetStringWidth(s string) float64 {
	return m.f.GetStringWidth(encode(s))
}

// encode maps s to cp1252, replacing runes the core fonts cannot show.
func encode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = '?'
		}
		b.WriteByte(c)
	}
	return b.String()
}

func decode(p []byte) string {
	var b strings.Builder
	b.Grow(len(p))
	for _, c := range p {
		b.WriteRune(charmap.Windows1252.DecodeByte(c))
	}
	return b.String()
}
