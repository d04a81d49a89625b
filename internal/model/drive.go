package model

import "time"

// Drive represents a scheduled vaccination drive: one vaccine, one day,
// open to a set of classes. AvailableDoses is advisory and is not
// decremented when vaccinations are recorded.
type Drive struct {
	ID                int       `json:"id"`
	VaccineName       string    `json:"vaccine_name"`
	ScheduledAt       time.Time `json:"date"`
	AvailableDoses    int       `json:"available_doses"`
	ApplicableClasses []string  `json:"applicable_classes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsPast reports whether the drive's scheduled day is already behind now.
// Past drives are frozen: no field may be edited.
func (d *Drive) IsPast(now time.Time) bool {
	return d.ScheduledAt.Before(now)
}

// CreateDriveRequest is the payload for scheduling a new drive.
type CreateDriveRequest struct {
	VaccineName       string    `json:"vaccine_name" binding:"required,min=1,max=100"`
	Date              time.Time `json:"date" binding:"required"`
	AvailableDoses    int       `json:"available_doses" binding:"min=0"`
	ApplicableClasses []string  `json:"applicable_classes" binding:"required,min=1,dive,required"`
}

// UpdateDriveRequest is a merge patch; absent fields keep their current value.
type UpdateDriveRequest struct {
	VaccineName       *string    `json:"vaccine_name" binding:"omitempty,min=1,max=100"`
	Date              *time.Time `json:"date" binding:"omitempty"`
	AvailableDoses    *int       `json:"available_doses" binding:"omitempty,min=0"`
	ApplicableClasses []string   `json:"applicable_classes" binding:"omitempty,min=1,dive,required"`
}
