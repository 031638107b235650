package httputil

// Machine-readable error codes returned in ErrorResponse.Code
const (
	CodeInvalidID          = "INVALID_ID"
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeMealNotFound       = "MEAL_NOT_FOUND"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeTimeout            = "TIMEOUT"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeDatabaseUnhealthy  = "DATABASE_UNAVAILABLE"
)
