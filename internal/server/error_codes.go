package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidQuery    = 1003
	ErrCodeInvalidOTP      = 1004
	ErrCodeMissingRequired = 1005
	ErrCodeUnsupportedType = 1006
	ErrCodeFileTooLarge    = 1007
	ErrCodeInvalidOptions  = 1008
	ErrCodeEmptyFile       = 1009

	// Domain state (2xxx). Expired jobs report ErrCodeJobNotFound, never
	// a distinct code, so callers cannot probe whether a code once existed.
	ErrCodeJobNotFound  = 2001
	ErrCodeOTPExhausted = 2101

	// Auth & limits (3xxx)
	ErrCodeUnauthorized      = 3001
	ErrCodeForbidden         = 3002
	ErrCodeResourceExhausted = 3003

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
	ErrCodeBlobFailure  = 4003
	ErrCodeUpdateFailed = 4004
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 401:
		return ErrCodeUnauthorized
	case 403:
		return ErrCodeForbidden
	case 404:
		return ErrCodeJobNotFound
	case 413:
		return ErrCodeFileTooLarge
	case 429:
		return ErrCodeResourceExhausted
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
