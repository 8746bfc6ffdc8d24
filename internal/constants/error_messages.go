package constants

const (
	MsgSyncInProgress  = "A catalog sync is already in progress"
	MsgLockNotAcquired = "Another instance is running the catalog sync"
	MsgEnvNotPermitted = "Catalog sync is only permitted in the primary environment"
	MsgUnknownBrand    = "Unknown brand"
)

// Provider error codes
const (
	ErrCodeNetworkError      = "NETWORK_ERROR"
	ErrCodeInvalidAPIKey     = "INVALID_API_KEY"
	ErrCodeInvalidDataFormat = "INVALID_DATA_FORMAT"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeServerError       = "SERVER_ERROR"
)

var errorMessages = map[string]string{
	ErrCodeNetworkError:      "Failed to reach catalog provider",
	ErrCodeInvalidAPIKey:     "Catalog provider rejected the API key",
	ErrCodeInvalidDataFormat: "Catalog provider returned malformed data",
	ErrCodeNotFound:          "Resource not found at catalog provider",
	ErrCodeRateLimited:       "Catalog provider rate limit exceeded",
	ErrCodeServerError:       "Catalog provider internal error",
}

// GetErrorMessage returns the user-facing message for a provider error code
func GetErrorMessage(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "Unknown provider error"
}
