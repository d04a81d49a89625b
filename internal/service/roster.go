package service

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
)

// ErrRosterHeader means the CSV header is missing one of the required columns.
var ErrRosterHeader = errors.New("roster header must contain name, class and student_id columns")

// RosterEntry is one parsed roster row, tagged with its 1-based data row
// number for failure reporting.
type RosterEntry struct {
	Row     int
	Student model.Student
}

// ParseRoster reads a CSV roster into candidate students. Columns are
// matched by header name (case-insensitive; "studentId" and "student_id"
// are both accepted) in any order. Rows with missing fields become
// failures rather than aborting the parse.
func ParseRoster(r io.Reader) ([]RosterEntry, []model.ImportFailure, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read roster header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	nameIdx, okName := cols["name"]
	classIdx, okClass := cols["class"]
	sidIdx, okSID := cols["studentid"]
	if !okName || !okClass || !okSID {
		return nil, nil, ErrRosterHeader
	}

	var (
		entries  []RosterEntry
		failures []model.ImportFailure
		rowNum   int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			failures = append(failures, model.ImportFailure{
				Row:    rowNum,
				Reason: fmt.Sprintf("row %d: %v", rowNum, err),
			})
			continue
		}

		name := fieldAt(record, nameIdx)
		class := fieldAt(record, classIdx)
		sid := fieldAt(record, sidIdx)
		if name == "" || class == "" || sid == "" {
			failures = append(failures, model.ImportFailure{
				Row:       rowNum,
				StudentID: sid,
				Reason:    fmt.Sprintf("row %d: name, class and student_id are all required", rowNum),
			})
			continue
		}

		entries = append(entries, RosterEntry{
			Row: rowNum,
			Student: model.Student{
				Name:      name,
				Class:     class,
				StudentID: sid,
			},
		})
	}

	return entries, failures, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, "_", "")
}

func fieldAt(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
