package partnersdk

import (
	"errors"
	"fmt"
)

const (
	// ErrorDomain is the domain of request/load errors.
	ErrorDomain = "com.google.admob"
	// PresentationErrorDomain is the domain of presentation errors.
	PresentationErrorDomain = "com.google.ads.presentation"
)

// ErrorCode is a load error code in ErrorDomain.
type ErrorCode int

const (
	ErrorCodeInvalidRequest               ErrorCode = 0
	ErrorCodeNoFill                       ErrorCode = 1
	ErrorCodeNetworkError                 ErrorCode = 2
	ErrorCodeServerError                  ErrorCode = 3
	ErrorCodeOSVersionTooLow              ErrorCode = 4
	ErrorCodeTimeout                      ErrorCode = 5
	ErrorCodeMediationDataError           ErrorCode = 7
	ErrorCodeMediationAdapterError        ErrorCode = 8
	ErrorCodeMediationNoFill              ErrorCode = 9
	ErrorCodeMediationInvalidAdSize       ErrorCode = 10
	ErrorCodeInternalError                ErrorCode = 11
	ErrorCodeInvalidArgument              ErrorCode = 12
	ErrorCodeReceivedInvalidResponse      ErrorCode = 13
	ErrorCodeAdAlreadyUsed                ErrorCode = 19
	ErrorCodeApplicationIdentifierMissing ErrorCode = 20
)

// PresentationErrorCode is a presentation error code in PresentationErrorDomain.
type PresentationErrorCode int

const (
	PresentationErrorCodeAdNotReady    PresentationErrorCode = 15
	PresentationErrorCodeAdTooLarge    PresentationErrorCode = 16
	PresentationErrorCodeInternal      PresentationErrorCode = 17
	PresentationErrorCodeAdAlreadyUsed PresentationErrorCode = 18
	PresentationErrorCodeNotMainThread PresentationErrorCode = 21
	PresentationErrorCodeMediation     PresentationErrorCode = 22
)

// Error is an error reported by the SDK.
type Error struct {
	Domain  string
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s error %d", e.Domain, e.Code)
	}
	return fmt.Sprintf("%s error %d: %s", e.Domain, e.Code, e.Message)
}

// NewLoadError builds an ErrorDomain error.
func NewLoadError(code ErrorCode, message string) *Error {
	return &Error{Domain: ErrorDomain, Code: int(code), Message: message}
}

// NewPresentationError builds a PresentationErrorDomain error.
func NewPresentationError(code PresentationErrorCode, message string) *Error {
	return &Error{Domain: PresentationErrorDomain, Code: int(code), Message: message}
}

// AsError extracts an SDK error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
