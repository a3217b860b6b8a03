package apperrors

import (
	"errors"
)

var (
	ErrShutdown = errors.New("shutdown error")

	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrUserDoesNotExist    = errors.New("user does not exist")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	ErrUnauthenticated   = errors.New("missing or invalid credentials")
	ErrMalformedIdentity = errors.New("malformed identity claim")

	ErrContextValueDoesNotExist = errors.New("context value does not exist")
	ErrContextValueInvalidType  = errors.New("invalid context value type")

	ErrForbidden           = errors.New("operation not permitted for this user")
	ErrWebsiteDoesNotExist = errors.New("website does not exist")
	ErrPingDoesNotExist    = errors.New("ping does not exist")
	ErrSelfPingForbidden   = errors.New("you cannot manually ping your own site")

	ErrInvalidPaymentToken = errors.New("unknown or invalid payment token")
	ErrTokenAlreadyUsed    = errors.New("payment token already used")
	ErrNoAgentConfigured   = errors.New("no agent endpoint configured for user")
	ErrDispatchFailed      = errors.New("failed to call agent")
	ErrPersistenceFailed   = errors.New("failed to record ping")

	ErrAPIKeyDoesNotExist = errors.New("api key does not exist")

	ErrReportDoesNotExist = errors.New("report does not exist")
)

// Kind maps an error to its machine-checkable kind for API responses.
// Errors outside the taxonomy are reported as "internal".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrMalformedIdentity):
		return "malformed_identity"
	case errors.Is(err, ErrUserDoesNotExist), errors.Is(err, ErrWebsiteDoesNotExist),
		errors.Is(err, ErrPingDoesNotExist), errors.Is(err, ErrReportDoesNotExist):
		return "not_found"
	case errors.Is(err, ErrSelfPingForbidden), errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvalidPaymentToken):
		return "invalid_payment_token"
	case errors.Is(err, ErrTokenAlreadyUsed):
		return "token_already_used"
	case errors.Is(err, ErrNoAgentConfigured):
		return "no_agent_configured"
	case errors.Is(err, ErrDispatchFailed):
		return "dispatch_failed"
	case errors.Is(err, ErrPersistenceFailed):
		return "persistence_failed"
	case errors.Is(err, ErrUserAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrRefreshTokenExpired):
		return "invalid_credentials"
	default:
		return "internal"
	}
}
