package model

import "time"

// ReportStatus selects which students enter the report pipeline.
type ReportStatus string

const (
	ReportStatusAll          ReportStatus = "all"
	ReportStatusVaccinated   ReportStatus = "vaccinated"
	ReportStatusUnvaccinated ReportStatus = "unvaccinated"
)

// Valid reports whether s is one of the known status values.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusAll, ReportStatusVaccinated, ReportStatusUnvaccinated:
		return true
	}
	return false
}

// ReportFilter holds the optional report query parameters. VaccineName is an
// exact, case-insensitive match; the date bounds are inclusive and apply to
// the event date, so rows without an event never satisfy a present bound.
type ReportFilter struct {
	VaccineName string
	Status      ReportStatus
	DateFrom    *time.Time
	DateTo      *time.Time
}

// ReportRow is one flattened line of the vaccination report: one per
// (student, vaccination) pair, or one with empty vaccine fields for a
// student with no events. Derived data, never persisted.
type ReportRow struct {
	Name        string     `json:"name"`
	Class       string     `json:"class"`
	StudentID   string     `json:"student_id"`
	VaccineName string     `json:"vaccine_name,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

// AnalyticsSummary is the dashboard snapshot: coverage counts plus the
// drives scheduled in the near future.
type AnalyticsSummary struct {
	TotalStudents      int     `json:"total_students"`
	VaccinatedStudents int     `json:"vaccinated_students"`
	VaccinatedPercent  float64 `json:"vaccinated_percent"`
	UpcomingDrives     []Drive `json:"upcoming_drives"`
}
