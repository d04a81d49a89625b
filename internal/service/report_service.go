package service

import (
	"context"
	"sort"
	"strings"

	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/response"
)

// ReportStore feeds the report pipeline.
type ReportStore interface {
	StudentsWithHistory(ctx context.Context) ([]model.Student, error)
}

// ReportService reshapes per-student vaccination histories into flat,
// filterable report rows.
type ReportService struct {
	store ReportStore
}

// NewReportService creates a new ReportService.
func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

// Generate runs the full report pipeline and returns every surviving row,
// sorted by student name then event date. Pagination is the caller's
// concern; see Paginate.
func (s *ReportService) Generate(ctx context.Context, f model.ReportFilter) ([]model.ReportRow, error) {
	students, err := s.store.StudentsWithHistory(ctx)
	if err != nil {
		return nil, err
	}
	return buildRows(students, f), nil
}

// buildRows applies the pipeline stages in order:
//
//  1. status: vaccinated keeps students with ≥1 event, unvaccinated keeps
//     students with none, all keeps everyone;
//  2. flatten: one row per event; a surviving student with no events still
//     yields exactly one row with empty vaccine fields;
//  3. vaccine name: exact match, case-insensitive; an empty-event row
//     never matches a non-empty filter;
//  4. date range: inclusive bounds on the event date; rows without an event
//     date never satisfy a present bound, so combining a date bound with
//     status=all or unvaccinated drops the empty rows;
//  5. projection and ordering: name ascending, then event date.
func buildRows(students []model.Student, f model.ReportFilter) []model.ReportRow {
	status := f.Status
	if status == "" {
		status = model.ReportStatusAll
	}

	rows := []model.ReportRow{}
	for _, st := range students {
		switch status {
		case model.ReportStatusVaccinated:
			if len(st.Vaccinations) == 0 {
				continue
			}
		case model.ReportStatusUnvaccinated:
			if len(st.Vaccinations) > 0 {
				continue
			}
		}

		if len(st.Vaccinations) == 0 {
			rows = append(rows, model.ReportRow{
				Name:      st.Name,
				Class:     st.Class,
				StudentID: st.StudentID,
			})
			continue
		}
		for _, e := range st.Vaccinations {
			date := e.AdministeredAt
			rows = append(rows, model.ReportRow{
				Name:        st.Name,
				Class:       st.Class,
				StudentID:   st.StudentID,
				VaccineName: e.VaccineName,
				Date:        &date,
			})
		}
	}

	if f.VaccineName != "" {
		kept := rows[:0]
		for _, row := range rows {
			if strings.EqualFold(row.VaccineName, f.VaccineName) {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	if f.DateFrom != nil || f.DateTo != nil {
		kept := rows[:0]
		for _, row := range rows {
			if row.Date == nil {
				continue
			}
			if f.DateFrom != nil && row.Date.Before(*f.DateFrom) {
				continue
			}
			if f.DateTo != nil && row.Date.After(*f.DateTo) {
				continue
			}
			kept = append(kept, row)
		}
		rows = kept
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		switch {
		case rows[i].Date == nil:
			return rows[j].Date != nil
		case rows[j].Date == nil:
			return false
		default:
			return rows[i].Date.Before(*rows[j].Date)
		}
	})

	return rows
}

// Paginate slices rows into a fixed-size page. It never alters the total
// result set, only the visible window; an out-of-range page yields an
// empty slice with intact totals.
func Paginate(rows []model.ReportRow, page, perPage int) ([]model.ReportRow, *response.Pagination) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	total := len(rows)
	totalPages := (total + perPage - 1) / perPage

	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	return rows[start:end], &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
}
