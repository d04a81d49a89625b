package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
)

var (
	// ErrDuplicateStudentID surfaces the unique constraint on the roster number.
	ErrDuplicateStudentID = errors.New("student with this student ID already exists")
	// ErrVaccinationExists surfaces the (student_id, drive_id) unique
	// constraint. It is the write-time backstop for the ledger's duplicate
	// check under concurrent requests.
	ErrVaccinationExists = errors.New("vaccination already recorded for this student and drive")
)

// StudentRepository handles student and vaccination data access.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// GetByID retrieves a student with their full vaccination history.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, class_label, student_id, created_at, updated_at
		 FROM students WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.Class, &s.StudentID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	s.Vaccinations, err = r.listVaccinations(ctx, id)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves students matching the filter, with vaccination histories
// embedded. Ordered by name for stable output.
func (r *StudentRepository) List(ctx context.Context, f model.StudentFilter) ([]model.Student, error) {
	query := `SELECT s.id, s.name, s.class_label, s.student_id, s.created_at, s.updated_at,
	                 v.id, v.drive_id, v.vaccine_name, v.administered_at
	          FROM students s
	          LEFT JOIN vaccinations v ON v.student_id = s.id
	          WHERE 1=1`
	var args []interface{}

	if f.Name != "" {
		args = append(args, "%"+f.Name+"%")
		query += ` AND s.name ILIKE $` + strconv.Itoa(len(args))
	}
	if f.Class != "" {
		args = append(args, f.Class)
		query += ` AND s.class_label = $` + strconv.Itoa(len(args))
	}
	if f.VaccinatedOnly {
		query += ` AND EXISTS (SELECT 1 FROM vaccinations x WHERE x.student_id = s.id)`
	}

	query += ` ORDER BY s.name, s.id, v.administered_at, v.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStudents(rows)
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (name, class_label, student_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Class, s.StudentID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateStudentID
		}
		return err
	}
	return nil
}

// Update modifies a student's basic fields.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET name = $1, class_label = $2, student_id = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		s.Name, s.Class, s.StudentID, s.ID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateStudentID
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a student. Their vaccination rows cascade.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// AppendVaccination appends one event to a student's history. The unique
// constraint on (student_id, drive_id) makes the append idempotent even when
// two identical requests race past the service-level duplicate check.
func (r *StudentRepository) AppendVaccination(ctx context.Context, studentID int, e *model.VaccinationEvent) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO vaccinations (student_id, drive_id, vaccine_name, administered_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		studentID, e.DriveID, e.VaccineName, e.AdministeredAt,
	).Scan(&e.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrVaccinationExists
		}
		return err
	}
	return nil
}

func (r *StudentRepository) listVaccinations(ctx context.Context, studentID int) ([]model.VaccinationEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, drive_id, vaccine_name, administered_at
		 FROM vaccinations WHERE student_id = $1
		 ORDER BY administered_at, id`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []model.VaccinationEvent{}
	for rows.Next() {
		var e model.VaccinationEvent
		if err := rows.Scan(&e.ID, &e.DriveID, &e.VaccineName, &e.AdministeredAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// collectStudents groups student×vaccination join rows into students with
// embedded event lists. Rows must arrive ordered by student.
func collectStudents(rows pgx.Rows) ([]model.Student, error) {
	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		var (
			eventID        *int
			driveID        *int
			vaccineName    *string
			administeredAt *time.Time
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Class, &s.StudentID, &s.CreatedAt, &s.UpdatedAt,
			&eventID, &driveID, &vaccineName, &administeredAt); err != nil {
			return nil, err
		}

		if n := len(students); n > 0 && students[n-1].ID == s.ID {
			if eventID != nil {
				students[n-1].Vaccinations = append(students[n-1].Vaccinations, model.VaccinationEvent{
					ID:             *eventID,
					DriveID:        *driveID,
					VaccineName:    *vaccineName,
					AdministeredAt: *administeredAt,
				})
			}
			continue
		}

		s.Vaccinations = []model.VaccinationEvent{}
		if eventID != nil {
			s.Vaccinations = append(s.Vaccinations, model.VaccinationEvent{
				ID:             *eventID,
				DriveID:        *driveID,
				VaccineName:    *vaccineName,
				AdministeredAt: *administeredAt,
			})
		}
		students = append(students, s)
	}
	return students, rows.Err()
}
