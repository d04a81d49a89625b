package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/config"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestDriveService(store DriveStore, granularity config.ConflictGranularity) *DriveService {
	cfg := &config.Config{
		DriveLeadTimeDays:        15,
		DriveConflictGranularity: granularity,
	}
	s := NewDriveService(store, cfg, zerolog.Nop())
	s.now = func() time.Time { return testNow }
	return s
}

func createReq(date time.Time, classes ...string) *model.CreateDriveRequest {
	return &model.CreateDriveRequest{
		VaccineName:       "BCG",
		Date:              date,
		AvailableDoses:    100,
		ApplicableClasses: classes,
	}
}

func TestDriveCreateLeadTime(t *testing.T) {
	boundary := testNow.AddDate(0, 0, 15)

	cases := []struct {
		name    string
		date    time.Time
		wantErr error
	}{
		{"one second short of the boundary", boundary.Add(-time.Second), ErrLeadTime},
		{"one day short", testNow.AddDate(0, 0, 14), ErrLeadTime},
		{"tomorrow", testNow.AddDate(0, 0, 1), ErrLeadTime},
		{"exactly on the boundary", boundary, nil},
		{"well past the boundary", testNow.AddDate(0, 0, 30), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestDriveService(newFakeDriveStore(), config.ConflictExact)
			drive, err := svc.Create(context.Background(), createReq(tc.date, "5A"))
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil && drive.ID == 0 {
				t.Fatal("Create() succeeded but drive has no assigned ID")
			}
		})
	}
}

func TestDriveCreateScheduleConflict(t *testing.T) {
	slot := testNow.AddDate(0, 0, 20)

	t.Run("overlapping classes on the same timestamp", func(t *testing.T) {
		svc := newTestDriveService(newFakeDriveStore(), config.ConflictExact)
		if _, err := svc.Create(context.Background(), createReq(slot, "5A", "5B")); err != nil {
			t.Fatalf("first Create() failed: %v", err)
		}
		_, err := svc.Create(context.Background(), createReq(slot, "5B", "6A"))
		if !errors.Is(err, ErrScheduleConflict) {
			t.Fatalf("second Create() error = %v, want ErrScheduleConflict", err)
		}
	})

	t.Run("disjoint classes on the same timestamp", func(t *testing.T) {
		svc := newTestDriveService(newFakeDriveStore(), config.ConflictExact)
		if _, err := svc.Create(context.Background(), createReq(slot, "5A")); err != nil {
			t.Fatalf("first Create() failed: %v", err)
		}
		if _, err := svc.Create(context.Background(), createReq(slot, "6A")); err != nil {
			t.Fatalf("second Create() with disjoint classes failed: %v", err)
		}
	})

	t.Run("exact granularity ignores same-day different times", func(t *testing.T) {
		svc := newTestDriveService(newFakeDriveStore(), config.ConflictExact)
		if _, err := svc.Create(context.Background(), createReq(slot, "5A")); err != nil {
			t.Fatalf("first Create() failed: %v", err)
		}
		if _, err := svc.Create(context.Background(), createReq(slot.Add(2*time.Hour), "5A")); err != nil {
			t.Fatalf("same-day different-time Create() under exact granularity failed: %v", err)
		}
	})

	t.Run("day granularity catches same-day different times", func(t *testing.T) {
		svc := newTestDriveService(newFakeDriveStore(), config.ConflictDay)
		if _, err := svc.Create(context.Background(), createReq(slot, "5A")); err != nil {
			t.Fatalf("first Create() failed: %v", err)
		}
		_, err := svc.Create(context.Background(), createReq(slot.Add(2*time.Hour), "5A"))
		if !errors.Is(err, ErrScheduleConflict) {
			t.Fatalf("same-day Create() under day granularity error = %v, want ErrScheduleConflict", err)
		}
	})
}

func TestDriveUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown drive", func(t *testing.T) {
		svc := newTestDriveService(newFakeDriveStore(), config.ConflictExact)
		_, err := svc.Update(ctx, 42, &model.UpdateDriveRequest{})
		if !errors.Is(err, ErrDriveNotFound) {
			t.Fatalf("Update() error = %v, want ErrDriveNotFound", err)
		}
	})

	t.Run("past drives are frozen regardless of patch", func(t *testing.T) {
		store := newFakeDriveStore()
		store.Create(ctx, &model.Drive{
			VaccineName:       "Polio",
			ScheduledAt:       testNow.AddDate(0, 0, -1),
			ApplicableClasses: []string{"5A"},
		})
		svc := newTestDriveService(store, config.ConflictExact)

		doses := 50
		_, err := svc.Update(ctx, 1, &model.UpdateDriveRequest{AvailableDoses: &doses})
		if !errors.Is(err, ErrPastDriveImmutable) {
			t.Fatalf("Update() error = %v, want ErrPastDriveImmutable", err)
		}
	})

	t.Run("merge patch keeps unspecified fields", func(t *testing.T) {
		store := newFakeDriveStore()
		store.Create(ctx, &model.Drive{
			VaccineName:       "Polio",
			ScheduledAt:       testNow.AddDate(0, 0, 20),
			AvailableDoses:    100,
			ApplicableClasses: []string{"5A"},
		})
		svc := newTestDriveService(store, config.ConflictExact)

		doses := 75
		updated, err := svc.Update(ctx, 1, &model.UpdateDriveRequest{AvailableDoses: &doses})
		if err != nil {
			t.Fatalf("Update() failed: %v", err)
		}
		if updated.AvailableDoses != 75 {
			t.Errorf("AvailableDoses = %d, want 75", updated.AvailableDoses)
		}
		if updated.VaccineName != "Polio" {
			t.Errorf("VaccineName = %q, want unchanged %q", updated.VaccineName, "Polio")
		}
	})

	t.Run("conflict check excludes the drive itself", func(t *testing.T) {
		store := newFakeDriveStore()
		store.Create(ctx, &model.Drive{
			VaccineName:       "Polio",
			ScheduledAt:       testNow.AddDate(0, 0, 20),
			ApplicableClasses: []string{"5A"},
		})
		svc := newTestDriveService(store, config.ConflictExact)

		doses := 10
		if _, err := svc.Update(ctx, 1, &model.UpdateDriveRequest{AvailableDoses: &doses}); err != nil {
			t.Fatalf("no-op slot Update() should not conflict with itself: %v", err)
		}
	})

	t.Run("moving onto another drive's slot conflicts", func(t *testing.T) {
		store := newFakeDriveStore()
		slot := testNow.AddDate(0, 0, 20)
		store.Create(ctx, &model.Drive{VaccineName: "Polio", ScheduledAt: slot, ApplicableClasses: []string{"5A"}})
		store.Create(ctx, &model.Drive{VaccineName: "BCG", ScheduledAt: slot.AddDate(0, 0, 1), ApplicableClasses: []string{"5A"}})
		svc := newTestDriveService(store, config.ConflictExact)

		_, err := svc.Update(ctx, 2, &model.UpdateDriveRequest{Date: &slot})
		if !errors.Is(err, ErrScheduleConflict) {
			t.Fatalf("Update() onto occupied slot error = %v, want ErrScheduleConflict", err)
		}
	})
}

func TestNormalizeClasses(t *testing.T) {
	got := normalizeClasses([]string{" 5A", "5B ", "", "5A", "6C"})
	want := []string{"5A", "5B", "6C"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalizeClasses() = %v, want %v", got, want)
	}
}

func TestMeetsLeadTime(t *testing.T) {
	if meetsLeadTime(testNow, testNow.AddDate(0, 0, 15).Add(-time.Nanosecond), 15) {
		t.Error("just under the boundary should not meet lead time")
	}
	if !meetsLeadTime(testNow, testNow.AddDate(0, 0, 15), 15) {
		t.Error("exact boundary should meet lead time")
	}
}
