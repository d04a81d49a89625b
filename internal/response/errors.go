package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"

	// ─── Scheduling rules ──────────────────────────────────────────────
	ErrLeadTimeViolation  ErrCode = "LEAD_TIME_VIOLATION"
	ErrScheduleConflict   ErrCode = "SCHEDULE_CONFLICT"
	ErrPastDriveImmutable ErrCode = "PAST_DRIVE_IMMUTABLE"

	// ─── Ledger rules ──────────────────────────────────────────────────
	ErrDuplicateVaccination ErrCode = "DUPLICATE_VACCINATION"

	// ─── Import / upload ───────────────────────────────────────────────
	ErrFileRequired    ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge    ErrCode = "FILE_TOO_LARGE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrDependencyExists:
		return "Resource cannot be deleted because other records still reference it."

	// ─── Scheduling rules ──────────────────────────────────────────────
	case ErrLeadTimeViolation:
		return "Drives must be scheduled with the required advance notice."
	case ErrScheduleConflict:
		return "Another drive already targets the same classes on that date."
	case ErrPastDriveImmutable:
		return "Past drives cannot be edited."

	// ─── Ledger rules ──────────────────────────────────────────────────
	case ErrDuplicateVaccination:
		return "This student is already vaccinated in this drive."

	// ─── Import / upload ───────────────────────────────────────────────
	case ErrFileRequired:
		return "A file upload is required."
	case ErrUnsupportedFile:
		return "Unsupported file type."
	case ErrFileTooLarge:
		return "File size exceeds the limit."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
