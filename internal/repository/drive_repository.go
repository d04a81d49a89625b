package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vaxtrackhq/vaxtrack-backend/internal/model"
)

// ErrDriveReferenced surfaces the RESTRICT foreign key from vaccinations:
// a drive with recorded doses cannot be deleted.
var ErrDriveReferenced = errors.New("drive has recorded vaccinations and cannot be deleted")

// DriveRepository handles drive data access.
type DriveRepository struct {
	pool *pgxpool.Pool
}

// NewDriveRepository creates a new DriveRepository.
func NewDriveRepository(pool *pgxpool.Pool) *DriveRepository {
	return &DriveRepository{pool: pool}
}

// GetByID retrieves a drive by its ID.
func (r *DriveRepository) GetByID(ctx context.Context, id int) (*model.Drive, error) {
	d := &model.Drive{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, vaccine_name, scheduled_at, available_doses, applicable_classes, created_at, updated_at
		 FROM drives WHERE id = $1`, id,
	).Scan(&d.ID, &d.VaccineName, &d.ScheduledAt, &d.AvailableDoses, &d.ApplicableClasses, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// List retrieves all drives ordered by scheduled date.
func (r *DriveRepository) List(ctx context.Context) ([]model.Drive, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, vaccine_name, scheduled_at, available_doses, applicable_classes, created_at, updated_at
		 FROM drives ORDER BY scheduled_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDrives(rows)
}

// FindConflicting returns a drive occupying the same slot as the candidate:
// an identical timestamp (or the same calendar day when sameDay is set) with
// at least one shared class label. excludeID skips the drive being updated;
// pass 0 for creations. Returns (nil, nil) when the slot is free.
func (r *DriveRepository) FindConflicting(ctx context.Context, at time.Time, classes []string, sameDay bool, excludeID int) (*model.Drive, error) {
	dateCond := `scheduled_at = $1`
	if sameDay {
		dateCond = `date_trunc('day', scheduled_at) = date_trunc('day', $1::timestamptz)`
	}

	d := &model.Drive{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, vaccine_name, scheduled_at, available_doses, applicable_classes, created_at, updated_at
		 FROM drives
		 WHERE `+dateCond+` AND applicable_classes && $2 AND id <> $3
		 LIMIT 1`,
		at, classes, excludeID,
	).Scan(&d.ID, &d.VaccineName, &d.ScheduledAt, &d.AvailableDoses, &d.ApplicableClasses, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Create inserts a new drive.
func (r *DriveRepository) Create(ctx context.Context, d *model.Drive) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO drives (vaccine_name, scheduled_at, available_doses, applicable_classes)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		d.VaccineName, d.ScheduledAt, d.AvailableDoses, d.ApplicableClasses,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// Update modifies an existing drive.
func (r *DriveRepository) Update(ctx context.Context, d *model.Drive) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE drives SET vaccine_name = $1, scheduled_at = $2, available_doses = $3, applicable_classes = $4, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $5`,
		d.VaccineName, d.ScheduledAt, d.AvailableDoses, d.ApplicableClasses, d.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes a drive. Fails with ErrDriveReferenced while any
// vaccination still points at it.
func (r *DriveRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM drives WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrDriveReferenced
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpcomingBetween retrieves drives scheduled within [from, to], date ascending.
func (r *DriveRepository) UpcomingBetween(ctx context.Context, from, to time.Time) ([]model.Drive, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, vaccine_name, scheduled_at, available_doses, applicable_classes, created_at, updated_at
		 FROM drives
		 WHERE scheduled_at >= $1 AND scheduled_at <= $2
		 ORDER BY scheduled_at, id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDrives(rows)
}

func collectDrives(rows pgx.Rows) ([]model.Drive, error) {
	drives := []model.Drive{}
	for rows.Next() {
		var d model.Drive
		if err := rows.Scan(&d.ID, &d.VaccineName, &d.ScheduledAt, &d.AvailableDoses, &d.ApplicableClasses, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		drives = append(drives, d)
	}
	return drives, rows.Err()
}
