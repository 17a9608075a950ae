package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired  ErrCode = "TOKEN_REQUIRED"
	ErrSessionExpired ErrCode = "SESSION_EXPIRED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation       ErrCode = "VALIDATION_ERROR"
	ErrInvalidID        ErrCode = "INVALID_ID"
	ErrInvalidPayload   ErrCode = "INVALID_PAYLOAD"
	ErrMalformedImport  ErrCode = "MALFORMED_IMPORT"
	ErrTypeChange       ErrCode = "QUESTION_TYPE_CHANGE"
	ErrUnknownType      ErrCode = "UNKNOWN_QUESTION_TYPE"
	ErrUnknownAction    ErrCode = "UNKNOWN_ACTION"
	ErrIndexOutOfRange  ErrCode = "INDEX_OUT_OF_RANGE"
	ErrUnknownFormat    ErrCode = "UNKNOWN_FORMAT"
	ErrActionNotAllowed ErrCode = "ACTION_NOT_ALLOWED"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound       ErrCode = "NOT_FOUND"
	ErrDraftNotFound  ErrCode = "DRAFT_NOT_FOUND"
	ErrNothingToUndo  ErrCode = "NOTHING_TO_UNDO"
	ErrDraftNotSynced ErrCode = "DRAFT_NOT_SYNCED"

	// ─── Upstream ──────────────────────────────────────────────────────
	ErrUpstream ErrCode = "UPSTREAM_ERROR"

	// ─── Rendering ─────────────────────────────────────────────────────
	ErrPDFUnavailable ErrCode = "PDF_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrSessionExpired:
		return "Your session has expired. Please log in again."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrMalformedImport:
		return "The import file is not a valid paper."
	case ErrTypeChange:
		return "A group's question type cannot be changed. Delete the group and create a new one."
	case ErrUnknownType:
		return "Unknown question type."
	case ErrUnknownAction:
		return "Unknown action."
	case ErrIndexOutOfRange:
		return "Position is out of range."
	case ErrUnknownFormat:
		return "Unsupported render format."
	case ErrActionNotAllowed:
		return "Only reorder actions can be applied to a draft. Use the section, group and question endpoints for other changes."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrDraftNotFound:
		return "No open draft for this paper. Load it first."
	case ErrNothingToUndo:
		return "There is nothing to undo."
	case ErrDraftNotSynced:
		return "The draft holds entries the exam API does not know. Reload the paper before editing them."

	// ─── Upstream ──────────────────────────────────────────────────────
	case ErrUpstream:
		return "The exam API rejected the request."

	// ─── Rendering ─────────────────────────────────────────────────────
	case ErrPDFUnavailable:
		return "PDF output is not configured on this server."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Internal server error."
	default:
		return "Unexpected error."
	}
}
