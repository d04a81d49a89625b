package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
)

// ReportRepository loads the data feeding the report pipeline and the
// dashboard analytics.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// StudentsWithHistory retrieves every student with their vaccination events
// embedded, ordered by student name then event time. The report pipeline
// applies its filter stages on top of this.
func (r *ReportRepository) StudentsWithHistory(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT s.id, s.name, s.class_label, s.student_id, s.created_at, s.updated_at,
		        v.id, v.drive_id, v.vaccine_name, v.administered_at
		 FROM students s
		 LEFT JOIN vaccinations v ON v.student_id = s.id
		 ORDER BY s.name, s.id, v.administered_at, v.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStudents(rows)
}

// CoverageCounts retrieves the total student count and how many of them
// have at least one recorded vaccination.
func (r *ReportRepository) CoverageCounts(ctx context.Context) (total, vaccinated int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(DISTINCT student_id) FROM vaccinations)`,
	).Scan(&total, &vaccinated)
	return
}
