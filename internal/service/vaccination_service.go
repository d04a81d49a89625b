package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/repository"
)

var (
	ErrStudentNotFound      = errors.New("student not found")
	ErrDuplicateVaccination = errors.New("student already vaccinated in this drive")
)

// VaccinationService is the ledger: it records a student's vaccination
// against a drive at most once. The store-level unique constraint closes the
// window between the duplicate check and the append, so two racing requests
// for the same (student, drive) pair can never both succeed.
type VaccinationService struct {
	students StudentStore
	drives   DriveStore
	now      func() time.Time
	log      zerolog.Logger
}

// NewVaccinationService creates a new VaccinationService.
func NewVaccinationService(students StudentStore, drives DriveStore, log zerolog.Logger) *VaccinationService {
	return &VaccinationService{
		students: students,
		drives:   drives,
		now:      time.Now,
		log:      log,
	}
}

// Record appends a vaccination event for the student against the drive.
// The vaccine name is taken from the caller, not re-derived from the drive.
// Returns the student with the refreshed history.
func (s *VaccinationService) Record(ctx context.Context, studentID, driveID int, vaccineName string) (*model.Student, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.drives.GetByID(ctx, driveID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDriveNotFound
		}
		return nil, err
	}

	if hasDoseFromDrive(student.Vaccinations, driveID) {
		return nil, ErrDuplicateVaccination
	}

	event := &model.VaccinationEvent{
		DriveID:        driveID,
		VaccineName:    vaccineName,
		AdministeredAt: s.now(),
	}
	if err := s.students.AppendVaccination(ctx, student.ID, event); err != nil {
		// A concurrent identical request may have won the race past the
		// check above; the constraint reports it.
		if errors.Is(err, repository.ErrVaccinationExists) {
			return nil, ErrDuplicateVaccination
		}
		return nil, err
	}

	student.Vaccinations = append(student.Vaccinations, *event)

	s.log.Info().
		Int("student_id", student.ID).
		Int("drive_id", driveID).
		Str("vaccine", vaccineName).
		Msg("Vaccination recorded")
	return student, nil
}

// hasDoseFromDrive reports whether the history already holds an event for
// the drive.
func hasDoseFromDrive(events []model.VaccinationEvent, driveID int) bool {
	for _, e := range events {
		if e.DriveID == driveID {
			return true
		}
	}
	return false
}
