// Package export serializes report rows to delimited text for download.
package export

import (
	"bytes"
	"encoding/csv"

	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
)

// DateLayout renders event timestamps as a local day/month/year date with
// 12-hour time, matching the portal's display format.
const DateLayout = "02/01/2006 03:04 PM"

// Filename is the suggested attachment name for report downloads.
const Filename = "vaccination_report.csv"

var header = []string{"name", "class", "studentId", "vaccineName", "date"}

// Options configures CSV output.
type Options struct {
	// OmitHeader drops the header row, producing fully empty output for an
	// empty row set.
	OmitHeader bool
}

// CSV serializes rows in the fixed column order name, class, studentId,
// vaccineName, date. Rows without an event render empty vaccine and date
// fields. Quoting follows RFC 4180: fields containing the delimiter, quotes
// or line breaks are quoted, embedded quotes doubled. An empty row set is
// valid input.
func CSV(rows []model.ReportRow, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if !opts.OmitHeader {
		if err := w.Write(header); err != nil {
			return nil, err
		}
	}

	for _, row := range rows {
		date := ""
		if row.Date != nil {
			date = row.Date.Local().Format(DateLayout)
		}
		record := []string{row.Name, row.Class, row.StudentID, row.VaccineName, date}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
