package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/repository"
)

func newLedgerFixture(t *testing.T) (*VaccinationService, *fakeStudentStore, *fakeDriveStore) {
	t.Helper()
	students := newFakeStudentStore()
	drives := newFakeDriveStore()

	students.Create(context.Background(), &model.Student{Name: "Asha Rao", Class: "5A", StudentID: "S1"})
	drives.Create(context.Background(), &model.Drive{
		VaccineName:       "BCG",
		ScheduledAt:       testNow.AddDate(0, 0, 20),
		ApplicableClasses: []string{"5A"},
	})

	svc := NewVaccinationService(students, drives, zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	return svc, students, drives
}

func TestRecordVaccination(t *testing.T) {
	ctx := context.Background()

	t.Run("first recording succeeds and appends exactly one event", func(t *testing.T) {
		svc, students, _ := newLedgerFixture(t)

		student, err := svc.Record(ctx, 1, 1, "BCG")
		if err != nil {
			t.Fatalf("Record() failed: %v", err)
		}
		if len(student.Vaccinations) != 1 {
			t.Fatalf("history length = %d, want 1", len(student.Vaccinations))
		}
		e := student.Vaccinations[0]
		if e.DriveID != 1 || e.VaccineName != "BCG" {
			t.Errorf("event = %+v, want drive 1 / BCG", e)
		}
		if !e.AdministeredAt.Equal(testNow) {
			t.Errorf("AdministeredAt = %v, want recording time %v", e.AdministeredAt, testNow)
		}

		stored, _ := students.GetByID(ctx, 1)
		if len(stored.Vaccinations) != 1 {
			t.Errorf("persisted history length = %d, want 1", len(stored.Vaccinations))
		}
	})

	t.Run("second identical recording is rejected", func(t *testing.T) {
		svc, students, _ := newLedgerFixture(t)

		if _, err := svc.Record(ctx, 1, 1, "BCG"); err != nil {
			t.Fatalf("first Record() failed: %v", err)
		}
		_, err := svc.Record(ctx, 1, 1, "BCG")
		if !errors.Is(err, ErrDuplicateVaccination) {
			t.Fatalf("second Record() error = %v, want ErrDuplicateVaccination", err)
		}

		stored, _ := students.GetByID(ctx, 1)
		if len(stored.Vaccinations) != 1 {
			t.Errorf("history length after duplicate = %d, want still 1", len(stored.Vaccinations))
		}
	})

	t.Run("distinct drives accumulate", func(t *testing.T) {
		svc, students, drives := newLedgerFixture(t)
		drives.Create(ctx, &model.Drive{
			VaccineName:       "Polio",
			ScheduledAt:       testNow.AddDate(0, 0, 40),
			ApplicableClasses: []string{"5A"},
		})

		if _, err := svc.Record(ctx, 1, 1, "BCG"); err != nil {
			t.Fatalf("Record() drive 1 failed: %v", err)
		}
		if _, err := svc.Record(ctx, 1, 2, "Polio"); err != nil {
			t.Fatalf("Record() drive 2 failed: %v", err)
		}

		stored, _ := students.GetByID(ctx, 1)
		if len(stored.Vaccinations) != 2 {
			t.Errorf("history length = %d, want 2", len(stored.Vaccinations))
		}
	})

	t.Run("unknown student", func(t *testing.T) {
		svc, _, _ := newLedgerFixture(t)
		_, err := svc.Record(ctx, 99, 1, "BCG")
		if !errors.Is(err, ErrStudentNotFound) {
			t.Fatalf("Record() error = %v, want ErrStudentNotFound", err)
		}
	})

	t.Run("unknown drive", func(t *testing.T) {
		svc, _, _ := newLedgerFixture(t)
		_, err := svc.Record(ctx, 1, 99, "BCG")
		if !errors.Is(err, ErrDriveNotFound) {
			t.Fatalf("Record() error = %v, want ErrDriveNotFound", err)
		}
	})

	t.Run("constraint violation from a racing writer maps to duplicate", func(t *testing.T) {
		svc, students, _ := newLedgerFixture(t)
		students.appendErr = repository.ErrVaccinationExists

		_, err := svc.Record(ctx, 1, 1, "BCG")
		if !errors.Is(err, ErrDuplicateVaccination) {
			t.Fatalf("Record() error = %v, want ErrDuplicateVaccination", err)
		}
	})
}
