package pdf

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/document"
	"github.com/leonardotrapani/memoscribe/internal/testutil"
)

var showText = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\) Tj`)

// extractText returns the strings drawn with Tj, in content order, without
// page numbers.
func extractText(t *testing.T, pdf []byte) []string {
	t.Helper()
	unescape := strings.NewReplacer(`\\`, `\`, `\(`, `(`, `\)`, `)`, `\r`, "\r")
	var out []string
	for _, m := range showText.FindAllSubmatch(pdf, -1) {
		s := decode([]byte(unescape.Replace(string(m[1]))))
		if strings.Trim(s, "0123456789") == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func TestRender_RoundTrip(t *testing.T) {
	doc := testutil.SampleDocument()
	doc.Sections[1].Content = append(doc.Sections[1].Content, "Perché l'entropìa (in media) cresce? È una domanda aperta.")

	var buf bytes.Buffer
	if err := Render(doc, &buf, Options{Language: "it", Uncompressed: true}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", buf.Bytes()[:16])
	}

	want := []string{doc.Title, "Introduzione", doc.Introduction}
	for _, s := range doc.Sections {
		want = append(want, s.Heading)
		want = append(want, s.Content...)
	}
	want = append(want, "Conclusione", doc.Conclusion)

	got := normalize(strings.Join(extractText(t, buf.Bytes()), " "))
	if exp := normalize(strings.Join(want, " ")); got != exp {
		t.Errorf("recovered text:\n%s\nwant:\n%s", got, exp)
	}
}

func TestRender_PageNumbers(t *testing.T) {
	doc := longDocument(8, 5)
	var buf bytes.Buffer
	if err := Render(doc, &buf, Options{Uncompressed: true}); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	pages := len(NewLayout(doc, &fontMeasurer{f: fpdf.New("P", "mm", "A4", "")}, LabelsFor("")).Pages)
	if pages < 2 {
		t.Fatalf("expected several pages, found %d", pages)
	}
	for n := 1; n <= pages; n++ {
		if !bytes.Contains(buf.Bytes(), []byte("("+strconv.Itoa(n)+") Tj")) {
			t.Errorf("page number %d missing", n)
		}
	}
}

func TestRender_InvalidDocument(t *testing.T) {
	err := Render(&document.AcademicDocument{Title: "solo titolo"}, &bytes.Buffer{}, Options{})
	if apierr.KindOf(err) != apierr.Format {
		t.Errorf("err = %v, want format error", err)
	}
}

func TestEncode(t *testing.T) {
	if got := decode([]byte(encode("Perché è così – “ok” 中"))); got != "Perché è così – “ok” ?" {
		t.Errorf("encode/decode = %q", got)
	}
}
