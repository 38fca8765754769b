package pdf

import (
	"strings"

	"github.com/leonardotrapani/memoscribe/internal/document"
)

// A4 portrait, millimetres.
const (
	PageWidth  = 210.0
	PageHeight = 297.0
	Margin     = 20.0

	fontFamily = "Times"

	titleSize      = 22.0
	titleLeading   = 11.0
	titleAfter     = 15.0
	headingSize    = 14.0
	headingAfter   = 4.0
	bodySize       = 12.0
	introAfter     = 10.0
	paragraphAfter = 6.0
	sectionAfter   = 4.0
	conclusionRoom = 20.0

	pageNumberSize   = 10.0
	pageNumberOffset = 10.0
)

// Measurer is the text measurement facility the layout wraps lines with.
// *fpdf.Fpdf satisfies it for single-byte text.
type Measurer interface {
	SetFont(family, style string, size float64)
	SplitText(txt string, w float64) []string
	GetStringWidth(s string) float64
}

type Kind int

const (
	KindTitle Kind = iota
	KindLabel
	KindParagraph
	KindHeading
)

func (k Kind) String() string {
	switch k {
	case KindTitle:
		return "title"
	case KindLabel:
		return "label"
	case KindHeading:
		return "heading"
	}
	return "paragraph"
}

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
)

// Line is one positioned line of text. Y is the baseline.
type Line struct {
	Text  string
	X, Y  float64
	Style string // "" or "B"
	Size  float64
	Align Align
	Kind  Kind
	Block int
}

type Page struct {
	Number int
	Lines  []Line
}

// Layout is the positioned content of a document, page by page.
type Layout struct {
	Pages []Page
}

// Block is one logical piece of text recovered from a layout.
type Block struct {
	Kind Kind
	Text string
}

// LineHeight is the baseline distance for a font size.
func LineHeight(size float64) float64 {
	return size * 0.55
}

type builder struct {
	m      Measurer
	layout *Layout
	y      float64
	block  int
}

// NewLayout lays doc out on A4 pages. The result depends only on doc, the
// labels and the measurements m returns.
func NewLayout(doc *document.AcademicDocument, m Measurer, labels Labels) *Layout {
	b := &builder{m: m, layout: &Layout{}}
	b.newPage()

	b.title(doc.Title)

	b.addText(labels.Introduction, KindLabel, "B", headingSize, headingAfter)
	b.addText(doc.Introduction, KindParagraph, "", bodySize, introAfter)

	width := PageWidth - 2*Margin
	for _, s := range doc.Sections {
		// keep the heading with the first line of its content
		m.SetFont(fontFamily, "B", headingSize)
		headingLines := len(m.SplitText(s.Heading, width))
		b.checkPageBreak(float64(headingLines)*LineHeight(headingSize) + headingAfter + LineHeight(bodySize))

		b.addText(s.Heading, KindHeading, "B", headingSize, headingAfter)
		for _, p := range s.Content {
			if strings.TrimSpace(p) == "" {
				continue
			}
			b.addText(p, KindParagraph, "", bodySize, paragraphAfter)
		}
		b.y += sectionAfter
	}

	b.checkPageBreak(conclusionRoom)
	b.addText(labels.Conclusion, KindLabel, "B", headingSize, headingAfter)
	b.addText(doc.Conclusion, KindParagraph, "", bodySize, introAfter)

	return b.layout
}

func (b *builder) page() *Page {
	return &b.layout.Pages[len(b.layout.Pages)-1]
}

func (b *builder) newPage() {
	b.layout.Pages = append(b.layout.Pages, Page{Number: len(b.layout.Pages) + 1})
	b.y = Margin
}

func (b *builder) checkPageBreak(space float64) bool {
	if b.y+space > PageHeight-Margin {
		b.newPage()
		return true
	}
	return false
}

func (b *builder) title(text string) {
	b.m.SetFont(fontFamily, "B", titleSize)
	lines := b.m.SplitText(text, PageWidth-2*Margin)
	for i, line := range lines {
		b.page().Lines = append(b.page().Lines, Line{
			Text:  line,
			X:     (PageWidth - b.m.GetStringWidth(line)) / 2,
			Y:     b.y + float64(i)*titleLeading,
			Style: "B",
			Size:  titleSize,
			Align: AlignCenter,
			Kind:  KindTitle,
			Block: b.block,
		})
	}
	b.block++
	b.y += float64(len(lines))*titleLeading + titleAfter
}

func (b *builder) addText(text string, kind Kind, style string, size, after float64) {
	b.m.SetFont(fontFamily, style, size)
	lh := LineHeight(size)
	for _, line := range b.m.SplitText(text, PageWidth-2*Margin) {
		b.checkPageBreak(lh)
		b.page().Lines = append(b.page().Lines, Line{
			Text:  line,
			X:     Margin,
			Y:     b.y,
			Style: style,
			Size:  size,
			Kind:  kind,
			Block: b.block,
		})
		b.y += lh
	}
	b.block++
	b.y += after
}

// Blocks joins wrapped lines back into the logical blocks they came from,
// in reading order.
func (l *Layout) Blocks() []Block {
	var blocks []Block
	last := -1
	for _, p := range l.Pages {
		for _, line := range p.Lines {
			text := strings.TrimSpace(line.Text)
			if line.Block == last {
				cur := &blocks[len(blocks)-1]
				if text != "" {
					cur.Text = strings.TrimSpace(cur.Text + " " + text)
				}
				continue
			}
			blocks = append(blocks, Block{Kind: line.Kind, Text: text})
			last = line.Block
		}
	}
	return blocks
}
