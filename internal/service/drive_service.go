package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/config"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
)

var (
	ErrDriveNotFound      = errors.New("drive not found")
	ErrLeadTime           = errors.New("drive date does not meet the minimum lead time")
	ErrScheduleConflict   = errors.New("another drive already targets an overlapping class set on that date")
	ErrPastDriveImmutable = errors.New("past drives cannot be edited")
)

// DriveStore is the drive persistence surface the scheduling validator needs.
type DriveStore interface {
	GetByID(ctx context.Context, id int) (*model.Drive, error)
	List(ctx context.Context) ([]model.Drive, error)
	FindConflicting(ctx context.Context, at time.Time, classes []string, sameDay bool, excludeID int) (*model.Drive, error)
	Create(ctx context.Context, d *model.Drive) error
	Update(ctx context.Context, d *model.Drive) error
	Delete(ctx context.Context, id int) error
}

// DriveService enforces the drive scheduling rules: minimum lead time on
// creation, no two drives on the same slot for overlapping classes, and
// immutability of past drives.
type DriveService struct {
	drives       DriveStore
	leadTimeDays int
	sameDay      bool
	now          func() time.Time
	log          zerolog.Logger
}

// NewDriveService creates a new DriveService.
func NewDriveService(drives DriveStore, cfg *config.Config, log zerolog.Logger) *DriveService {
	return &DriveService{
		drives:       drives,
		leadTimeDays: cfg.DriveLeadTimeDays,
		sameDay:      cfg.DriveConflictGranularity == config.ConflictDay,
		now:          time.Now,
		log:          log,
	}
}

// GetByID retrieves a drive.
func (s *DriveService) GetByID(ctx context.Context, id int) (*model.Drive, error) {
	d, err := s.drives.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDriveNotFound
	}
	return d, err
}

// List retrieves all drives, date ascending.
func (s *DriveService) List(ctx context.Context) ([]model.Drive, error) {
	return s.drives.List(ctx)
}

// Create schedules a new drive after validating lead time and slot conflicts.
func (s *DriveService) Create(ctx context.Context, req *model.CreateDriveRequest) (*model.Drive, error) {
	d := &model.Drive{
		VaccineName:       req.VaccineName,
		ScheduledAt:       req.Date,
		AvailableDoses:    req.AvailableDoses,
		ApplicableClasses: normalizeClasses(req.ApplicableClasses),
	}

	if err := s.validateSchedule(ctx, d, true); err != nil {
		return nil, err
	}

	if err := s.drives.Create(ctx, d); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("drive_id", d.ID).
		Str("vaccine", d.VaccineName).
		Time("scheduled_at", d.ScheduledAt).
		Msg("Drive scheduled")
	return d, nil
}

// Update merges the patch into an existing drive. Past drives are frozen
// regardless of which fields the patch touches; future drives go back
// through the shared schedule validation (lead time excepted, which only
// binds creations).
func (s *DriveService) Update(ctx context.Context, id int, req *model.UpdateDriveRequest) (*model.Drive, error) {
	d, err := s.drives.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDriveNotFound
	}
	if err != nil {
		return nil, err
	}

	if d.IsPast(s.now()) {
		return nil, ErrPastDriveImmutable
	}

	if req.VaccineName != nil {
		d.VaccineName = *req.VaccineName
	}
	if req.Date != nil {
		d.ScheduledAt = *req.Date
	}
	if req.AvailableDoses != nil {
		d.AvailableDoses = *req.AvailableDoses
	}
	if req.ApplicableClasses != nil {
		d.ApplicableClasses = normalizeClasses(req.ApplicableClasses)
	}

	if err := s.validateSchedule(ctx, d, false); err != nil {
		return nil, err
	}

	if err := s.drives.Update(ctx, d); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDriveNotFound
		}
		return nil, err
	}
	return d, nil
}

// Delete removes a drive. The store refuses while recorded vaccinations
// still reference it.
func (s *DriveService) Delete(ctx context.Context, id int) error {
	err := s.drives.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDriveNotFound
	}
	return err
}

// validateSchedule is the single scheduling policy for both create and
// update paths. The lead-time rule applies only to creations; the slot
// conflict check runs on both, excluding the drive itself on updates.
func (s *DriveService) validateSchedule(ctx context.Context, d *model.Drive, isCreate bool) error {
	if isCreate && !meetsLeadTime(s.now(), d.ScheduledAt, s.leadTimeDays) {
		return ErrLeadTime
	}

	conflict, err := s.drives.FindConflicting(ctx, d.ScheduledAt, d.ApplicableClasses, s.sameDay, d.ID)
	if err != nil {
		return err
	}
	if conflict != nil {
		return ErrScheduleConflict
	}
	return nil
}

// meetsLeadTime reports whether scheduled is at least days ahead of now.
// The boundary is inclusive: exactly now+days is accepted.
func meetsLeadTime(now, scheduled time.Time, days int) bool {
	return !scheduled.Before(now.AddDate(0, 0, days))
}

// classesOverlap reports whether the two class sets share a label.
func classesOverlap(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// sameSlot reports whether two drive dates occupy the same scheduling slot
// under the configured granularity.
func sameSlot(a, b time.Time, sameDay bool) bool {
	if sameDay {
		ay, am, ad := a.Date()
		by, bm, bd := b.Date()
		return ay == by && am == bm && ad == bd
	}
	return a.Equal(b)
}

// normalizeClasses trims labels, drops empties and deduplicates while
// preserving the caller's order for display.
func normalizeClasses(classes []string) []string {
	seen := make(map[string]struct{}, len(classes))
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
