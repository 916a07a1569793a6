// Package export renders the final entry collection as CSV or printable PDF.
// Exporters only read entries.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/heartmarshall/vocabscan/internal/domain"
)

// CSVFilename is the attachment name used for CSV downloads.
const CSVFilename = "wordbook.csv"

var csvHeader = []string{"word", "correctedWord", "meaning", "confidence"}

// WriteCSV writes a header row and one row per entry. Confidence is written
// with two decimals, or left empty when unscored.
func WriteCSV(w io.Writer, entries []domain.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("export: csv header: %w", err)
	}
	for i, e := range entries {
		if err := cw.Write(csvRow(e)); err != nil {
			return fmt.Errorf("export: csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: csv flush: %w", err)
	}
	return nil
}

func csvRow(e domain.Entry) []string {
	conf := ""
	if e.Confidence != nil {
		conf = strconv.FormatFloat(*e.Confidence, 'f', 2, 64)
	}
	return []string{e.Word, e.CorrectedWord, e.Meaning(), conf}
}
