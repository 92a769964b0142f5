package cognito

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
)

var (
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrUserNotConfirmed      = errors.New("user not confirmed")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrTooManyRequests       = errors.New("too many requests")
	ErrNotAuthorized         = errors.New("not authorized")
	ErrLimitExceeded         = errors.New("limit exceeded")
	ErrPasswordResetRequired = errors.New("password reset required")
	ErrInvalidParameter      = errors.New("invalid parameter")
)

// ErrorInfo is the API response for a pool error that reaches a handler.
type ErrorInfo struct {
	Status int
	Code   string
}

type poolError struct {
	err  error
	info ErrorInfo
}

// poolErrors is keyed by the exception name the user pool returns.
var poolErrors = map[string]poolError{
	"UsernameExistsException":        {ErrUserAlreadyExists, ErrorInfo{http.StatusBadRequest, "USERNAME_TAKEN"}},
	"UserNotFoundException":          {ErrUserNotFound, ErrorInfo{http.StatusUnauthorized, "INVALID_CREDENTIALS"}},
	"UserNotConfirmedException":      {ErrUserNotConfirmed, ErrorInfo{http.StatusForbidden, "USER_NOT_CONFIRMED"}},
	"InvalidPasswordException":       {ErrInvalidPassword, ErrorInfo{http.StatusBadRequest, "WEAK_PASSWORD"}},
	"TooManyRequestsException":       {ErrTooManyRequests, ErrorInfo{http.StatusTooManyRequests, "TOO_MANY_REQUESTS"}},
	"NotAuthorizedException":         {ErrNotAuthorized, ErrorInfo{http.StatusUnauthorized, "INVALID_CREDENTIALS"}},
	"LimitExceededException":         {ErrLimitExceeded, ErrorInfo{http.StatusTooManyRequests, "LIMIT_EXCEEDED"}},
	"PasswordResetRequiredException": {ErrPasswordResetRequired, ErrorInfo{http.StatusForbidden, "PASSWORD_RESET_REQUIRED"}},
	"InvalidParameterException":      {ErrInvalidParameter, ErrorInfo{http.StatusBadRequest, "INVALID_PARAMETER"}},
}

// LookupError returns the response for an error wrapping one of the sentinels.
func LookupError(err error) (ErrorInfo, bool) {
	for _, pe := range poolErrors {
		if errors.Is(err, pe.err) {
			return pe.info, true
		}
	}
	return ErrorInfo{}, false
}

// mapAWSError wraps a known pool exception in its sentinel. Anything else,
// including transport failures, stays wrapped as is.
func mapAWSError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("cognito: %w", err)
	}
	if pe, ok := poolErrors[apiErr.ErrorCode()]; ok {
		return fmt.Errorf("%s: %w", apiErr.ErrorMessage(), pe.err)
	}
	return fmt.Errorf("cognito %s: %w", apiErr.ErrorCode(), err)
}
