package errx

// Type represents the category of error
type Type string

const (
	// TypeInternal represents internal server errors
	TypeInternal Type = "INTERNAL"

	// TypeValidation represents validation errors
	TypeValidation Type = "VALIDATION"

	// TypeAuthorization represents authorization/authentication errors
	TypeAuthorization Type = "AUTHORIZATION"

	// TypeNotFound represents resource not found errors
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict represents resource conflict errors
	TypeConflict Type = "CONFLICT"

	// TypeExternal represents errors from external services (LLM backend, stores)
	TypeExternal Type = "EXTERNAL"

	// TypeCanceled represents work abandoned because the caller went away
	TypeCanceled Type = "CANCELED"
)

func (t Type) String() string {
	return string(t)
}

// httpStatus maps error types to HTTP status codes
func (t Type) httpStatus() int {
	switch t {
	case TypeValidation:
		return 400
	case TypeAuthorization:
		return 401
	case TypeNotFound:
		return 404
	case TypeConflict:
		return 409
	case TypeExternal:
		return 502
	case TypeCanceled:
		return 499
	default:
		return 500
	}
}
