package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/repository"
)

// StudentStore is the student persistence surface used by the student and
// vaccination services.
type StudentStore interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
	List(ctx context.Context, f model.StudentFilter) ([]model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, id int) error
	AppendVaccination(ctx context.Context, studentID int, e *model.VaccinationEvent) error
}

// StudentService handles student roster management.
type StudentService struct {
	students StudentStore
	log      zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(students StudentStore, log zerolog.Logger) *StudentService {
	return &StudentService{students: students, log: log}
}

// GetByID retrieves a student with their vaccination history.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStudentNotFound
	}
	return student, err
}

// List retrieves students matching the filter.
func (s *StudentService) List(ctx context.Context, f model.StudentFilter) ([]model.Student, error) {
	return s.students.List(ctx, f)
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req *model.CreateStudentRequest) (*model.Student, error) {
	student := &model.Student{
		Name:         req.Name,
		Class:        req.Class,
		StudentID:    req.StudentID,
		Vaccinations: []model.VaccinationEvent{},
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Update applies a partial update to a student's basic fields. Vaccination
// history is never touched here; only the ledger appends to it.
func (s *StudentService) Update(ctx context.Context, id int, req *model.UpdateStudentRequest) (*model.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Class != nil {
		student.Class = *req.Class
	}
	if req.StudentID != nil {
		student.StudentID = *req.StudentID
	}

	if err := s.students.Update(ctx, student); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return student, nil
}

// Delete removes a student and, via the store cascade, their vaccinations.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	err := s.students.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrStudentNotFound
	}
	return err
}

// ImportRoster parses a CSV roster and inserts the rows best-effort: rows
// that fail to parse or collide with an existing student ID are collected
// as failures, never aborting the batch. The returned error covers only an
// unreadable file or a missing header.
func (s *StudentService) ImportRoster(ctx context.Context, r io.Reader) (*model.ImportResult, error) {
	entries, failures, err := ParseRoster(r)
	if err != nil {
		return nil, err
	}

	result := &model.ImportResult{
		Attempted: len(entries) + len(failures),
		Failures:  failures,
	}

	for _, entry := range entries {
		student := entry.Student
		student.Vaccinations = []model.VaccinationEvent{}
		if err := s.students.Create(ctx, &student); err != nil {
			reason := fmt.Sprintf("row %d: %v", entry.Row, err)
			if errors.Is(err, repository.ErrDuplicateStudentID) {
				reason = fmt.Sprintf("row %d: student ID %q already exists", entry.Row, student.StudentID)
			}
			result.Failures = append(result.Failures, model.ImportFailure{
				Row:       entry.Row,
				StudentID: student.StudentID,
				Reason:    reason,
			})
			continue
		}
		result.Inserted++
	}

	s.log.Info().
		Int("attempted", result.Attempted).
		Int("inserted", result.Inserted).
		Int("failed", len(result.Failures)).
		Msg("Roster import finished")
	return result, nil
}
