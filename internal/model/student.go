package model

import "time"

// Student represents a registered student and their vaccination history.
// The vaccination list is owned by the student: events are only ever
// appended through the ledger, never edited in place.
type Student struct {
	ID           int                `json:"id"`
	Name         string             `json:"name"`
	Class        string             `json:"class"`
	StudentID    string             `json:"student_id"`
	Vaccinations []VaccinationEvent `json:"vaccinations"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// VaccinationEvent records that a student received a vaccine during a drive.
// VaccineName is copied from the drive at recording time and is intentionally
// not re-synced if the drive is later renamed.
type VaccinationEvent struct {
	ID             int       `json:"id"`
	DriveID        int       `json:"drive_id"`
	VaccineName    string    `json:"vaccine_name"`
	AdministeredAt time.Time `json:"date"`
}

// StudentFilter narrows student listings.
type StudentFilter struct {
	Name           string // substring match, case-insensitive
	Class          string // exact match
	VaccinatedOnly bool
}

// CreateStudentRequest is the payload for registering a student.
type CreateStudentRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100"`
	Class     string `json:"class" binding:"required,min=1,max=20"`
	StudentID string `json:"student_id" binding:"required,min=1,max=30"`
}

// UpdateStudentRequest is a partial update; absent fields are left unchanged.
type UpdateStudentRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=2,max=100"`
	Class     *string `json:"class" binding:"omitempty,min=1,max=20"`
	StudentID *string `json:"student_id" binding:"omitempty,min=1,max=30"`
}

// RecordVaccinationRequest is the payload for recording a dose against a drive.
type RecordVaccinationRequest struct {
	DriveID     int    `json:"drive_id" binding:"required"`
	VaccineName string `json:"vaccine_name" binding:"required,min=1,max=100"`
}

// ImportFailure describes one rejected row of a bulk roster import.
type ImportFailure struct {
	Row       int    `json:"row"`
	StudentID string `json:"student_id,omitempty"`
	Reason    string `json:"reason"`
}

// ImportResult summarizes a best-effort bulk import. A batch never fails as
// a whole: rejected rows are reported alongside the insert count.
type ImportResult struct {
	Attempted int             `json:"attempted"`
	Inserted  int             `json:"inserted_count"`
	Failures  []ImportFailure `json:"failures"`
}
