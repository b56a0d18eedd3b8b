package mediation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the mediation framework's error taxonomy. Partner adapters map
// partner-specific failures onto these codes.
type ErrorCode int

const (
	InitializationFailureUnknown ErrorCode = 100

	LoadFailureUnknown                ErrorCode = 300
	LoadFailureAborted                ErrorCode = 301
	LoadFailureNoFill                 ErrorCode = 302
	LoadFailureNetworkingError        ErrorCode = 303
	LoadFailureServerError            ErrorCode = 304
	LoadFailureTimeout                ErrorCode = 305
	LoadFailureInvalidAdRequest       ErrorCode = 306
	LoadFailureInvalidCredentials     ErrorCode = 307
	LoadFailureInvalidBidResponse     ErrorCode = 308
	LoadFailureInvalidBannerSize      ErrorCode = 309
	LoadFailureViewControllerNotFound ErrorCode = 310
	LoadFailureUnsupportedAdFormat    ErrorCode = 311
	LoadFailureException              ErrorCode = 312

	ShowFailureUnknown                ErrorCode = 400
	ShowFailureAdNotReady             ErrorCode = 401
	ShowFailureUnsupportedAdSize      ErrorCode = 402
	ShowFailureException              ErrorCode = 403
	ShowFailureViewControllerNotFound ErrorCode = 404

	InvalidateFailureUnknown ErrorCode = 500
)

var errorCodeNames = map[ErrorCode]string{
	InitializationFailureUnknown: "initialization_failure_unknown",

	LoadFailureUnknown:                "load_failure_unknown",
	LoadFailureAborted:                "load_failure_aborted",
	LoadFailureNoFill:                 "load_failure_no_fill",
	LoadFailureNetworkingError:        "load_failure_networking_error",
	LoadFailureServerError:            "load_failure_server_error",
	LoadFailureTimeout:                "load_failure_timeout",
	LoadFailureInvalidAdRequest:       "load_failure_invalid_ad_request",
	LoadFailureInvalidCredentials:     "load_failure_invalid_credentials",
	LoadFailureInvalidBidResponse:     "load_failure_invalid_bid_response",
	LoadFailureInvalidBannerSize:      "load_failure_invalid_banner_size",
	LoadFailureViewControllerNotFound: "load_failure_view_controller_not_found",
	LoadFailureUnsupportedAdFormat:    "load_failure_unsupported_ad_format",
	LoadFailureException:              "load_failure_exception",

	ShowFailureUnknown:                "show_failure_unknown",
	ShowFailureAdNotReady:             "show_failure_ad_not_ready",
	ShowFailureUnsupportedAdSize:      "show_failure_unsupported_ad_size",
	ShowFailureException:              "show_failure_exception",
	ShowFailureViewControllerNotFound: "show_failure_view_controller_not_found",

	InvalidateFailureUnknown: "invalidate_failure_unknown",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("error_code_%d", int(c))
}

type (
	// Error is the error shape handed back to the mediation framework.
	Error struct {
		Code      ErrorCode
		Message   string
		PartnerID string

		cause error
	}

	// ErrorOption configures an Error.
	ErrorOption func(*Error)
)

// NewError builds an Error for code.
func NewError(code ErrorCode, opts ...ErrorOption) *Error {
	e := &Error{Code: code}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func WithMessage(format string, args ...any) ErrorOption {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	return func(e *Error) {
		e.Message = msg
	}
}

func WithCause(err error) ErrorOption {
	return func(e *Error) {
		e.cause = err
	}
}

func WithPartner(partnerID string) ErrorOption {
	return func(e *Error) {
		e.PartnerID = partnerID
	}
}

// Error method for Error
func (e *Error) Error() string {
	var b strings.Builder
	if e.PartnerID != "" {
		b.WriteString(e.PartnerID)
		b.WriteString(": ")
	}
	b.WriteString(e.Code.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same code, so callers can write
// errors.Is(err, mediation.NewError(mediation.LoadFailureNoFill)).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the mediation code from err.
func CodeOf(err error) (ErrorCode, bool) {
	var me *Error
	if errors.As(err, &me) {
		return me.Code, true
	}
	return 0, false
}
