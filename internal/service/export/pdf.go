package export

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/heartmarshall/vocabscan/internal/domain"
)

const (
	pageMargin   = 40.0
	tableTop     = 60.0
	cardHeight   = 120.0
	cardGutter   = 20.0
	cardRadius   = 8.0
	cardMeanings = 120
	worksheetGap = "______________"
	unicodeFont  = "wordbook"
)

var headerFill = [3]int{91, 141, 239}

// PDFFilename returns the attachment name for a layout.
func PDFFilename(layout domain.Layout) string {
	return "wordbook_" + layout.String() + ".pdf"
}

// Renderer draws entries as an A4 document. With a TrueType font configured
// Hangul meanings render as text; otherwise the core Helvetica font is used
// and characters outside cp1252 are lost.
type Renderer struct {
	fontPath string
	log      *slog.Logger
}

// NewRenderer creates a Renderer. fontPath may be empty.
func NewRenderer(fontPath string, log *slog.Logger) *Renderer {
	return &Renderer{fontPath: fontPath, log: log.With("service", "export")}
}

// RenderPDF writes entries in the requested layout to w.
func (r *Renderer) RenderPDF(w io.Writer, entries []domain.Entry, layout domain.Layout) error {
	if !layout.IsValid() {
		return domain.NewValidationError("layout", "must be list, flashcards or worksheet")
	}

	d, err := r.newDocument()
	if err != nil {
		return err
	}

	switch layout {
	case domain.LayoutList:
		d.pdf.SetTitle("Word List", true)
		d.table(listTable, entries)
	case domain.LayoutWorksheet:
		d.pdf.SetTitle("Worksheet", true)
		d.table(worksheetTable, entries)
	case domain.LayoutFlashcards:
		d.pdf.SetTitle("Flashcards", true)
		d.flashcards(entries)
	}

	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("export: render %s pdf: %w", layout, err)
	}
	r.log.Debug("pdf rendered", slog.String("layout", layout.String()), slog.Int("entries", len(entries)))
	return nil
}

type document struct {
	pdf    *fpdf.Fpdf
	family string
	bold   string
	plain  func(string) string // text the current font can measure
	encode func(string) string // measured text to the font's encoding
	pageW  float64
	pageH  float64
}

func (d *document) text(s string) string { return d.encode(d.plain(s)) }

func (d *document) lines(s string, w float64) []string {
	return d.pdf.SplitText(d.plain(s), w)
}

func (r *Renderer) newDocument() (*document, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetCellMargin(0)
	pdf.SetCreator("vocabscan", true)

	d := &document{pdf: pdf}
	if r.fontPath != "" {
		pdf.AddUTF8Font(unicodeFont, "", r.fontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("export: load font %s: %w", r.fontPath, err)
		}
		d.family = unicodeFont
		d.plain = identity
		d.encode = identity
	} else {
		d.family = "Helvetica"
		d.bold = "B"
		d.plain = latin1
		d.encode = pdf.UnicodeTranslatorFromDescriptor("")
	}

	pdf.AddPage()
	d.pageW, d.pageH = pdf.GetPageSize()
	return d, nil
}

type column struct {
	title string
	width float64
}

type tableLayout struct {
	title    string
	columns  []column
	fontSize float64
	padding  float64
	row      func(i int, e domain.Entry) []string
}

var listTable = tableLayout{
	title: "Word List",
	columns: []column{
		{"#", 30}, {"Word", 95}, {"Meaning", 160}, {"POS", 60}, {"Example", 170},
	},
	fontSize: 10,
	padding:  6,
	row: func(i int, e domain.Entry) []string {
		return []string{strconv.Itoa(i + 1), e.Spelling(), e.Meaning(), e.PartOfSpeech, e.Example}
	},
}

var worksheetTable = tableLayout{
	title: "Worksheet: Fill in the meanings",
	columns: []column{
		{"#", 40}, {"Word", 200}, {"Meaning(blank)", 275},
	},
	fontSize: 12,
	padding:  8,
	row: func(i int, e domain.Entry) []string {
		return []string{strconv.Itoa(i + 1), e.Spelling(), worksheetGap}
	},
}

func (d *document) table(t tableLayout, entries []domain.Entry) {
	d.pdf.SetFont(d.family, "", 14)
	d.pdf.Text(pageMargin, pageMargin, d.text(t.title))
	d.pdf.SetY(tableTop)

	headers := make([]string, len(t.columns))
	for i, c := range t.columns {
		headers[i] = c.title
	}
	d.tableRow(t, headers, true)

	for i, e := range entries {
		cells := t.row(i, e)
		if d.pdf.GetY()+d.rowHeight(t, cells) > d.pageH-pageMargin {
			d.pdf.AddPage()
			d.pdf.SetY(pageMargin)
			d.tableRow(t, headers, true)
		}
		d.tableRow(t, cells, false)
	}
}

func (d *document) rowHeight(t tableLayout, cells []string) float64 {
	d.pdf.SetFont(d.family, "", t.fontSize)
	lineH := t.fontSize * 1.2
	lines := 1
	for i, c := range t.columns {
		n := len(d.lines(cells[i], c.width-2*t.padding))
		lines = max(lines, n)
	}
	return float64(lines)*lineH + 2*t.padding
}

func (d *document) tableRow(t tableLayout, cells []string, header bool) {
	h := d.rowHeight(t, cells)
	lineH := t.fontSize * 1.2
	x, y := pageMargin, d.pdf.GetY()

	style := "D"
	if header {
		d.pdf.SetFont(d.family, d.bold, t.fontSize)
		d.pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		d.pdf.SetDrawColor(headerFill[0], headerFill[1], headerFill[2])
		d.pdf.SetTextColor(255, 255, 255)
		style = "FD"
	} else {
		d.pdf.SetFont(d.family, "", t.fontSize)
		d.pdf.SetDrawColor(200, 200, 200)
		d.pdf.SetTextColor(0, 0, 0)
	}

	for i, c := range t.columns {
		d.pdf.Rect(x, y, c.width, h, style)
		d.pdf.SetXY(x+t.padding, y+t.padding)
		d.pdf.MultiCell(c.width-2*t.padding, lineH, d.text(cells[i]), "", "L", false)
		x += c.width
	}
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.SetXY(pageMargin, y+h)
}

// flashcards draws two columns of rounded cards per row, word on top and the
// meaning below, truncated to fit.
func (d *document) flashcards(entries []domain.Entry) {
	cardW := (d.pageW - 2*pageMargin - cardGutter) / 2
	x, y := pageMargin, pageMargin

	d.pdf.SetDrawColor(120, 120, 120)
	for _, e := range entries {
		if y+cardHeight > d.pageH-pageMargin {
			d.pdf.AddPage()
			x, y = pageMargin, pageMargin
		}

		d.pdf.RoundedRect(x, y, cardW, cardHeight, cardRadius, "1234", "D")

		d.pdf.SetFont(d.family, d.bold, 16)
		d.pdf.Text(x+16, y+30, d.text(e.Spelling()))

		d.pdf.SetFont(d.family, "", 12)
		lineH := 12 * 1.2
		maxLines := int((cardHeight - 44 - 12) / lineH)
		lines := d.lines(truncateRunes(e.Meaning(), cardMeanings), cardW-32)
		if len(lines) > maxLines {
			lines = lines[:maxLines]
		}
		for i, line := range lines {
			d.pdf.Text(x+16, y+56+float64(i)*lineH, d.encode(line))
		}

		x += cardW + cardGutter
		if x+cardW > d.pageW-pageMargin {
			x = pageMargin
			y += cardHeight + cardGutter
		}
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func identity(s string) string { return s }

// latin1 replaces runes the core fonts have no metrics for.
func latin1(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFF {
			return '?'
		}
		return r
	}, s)
}
