package admob

import (
	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk"
)

var loadErrorCodes = map[partnersdk.ErrorCode]mediation.ErrorCode{
	partnersdk.ErrorCodeNoFill:                       mediation.LoadFailureNoFill,
	partnersdk.ErrorCodeMediationNoFill:              mediation.LoadFailureNoFill,
	partnersdk.ErrorCodeNetworkError:                 mediation.LoadFailureNetworkingError,
	partnersdk.ErrorCodeServerError:                  mediation.LoadFailureServerError,
	partnersdk.ErrorCodeTimeout:                      mediation.LoadFailureTimeout,
	partnersdk.ErrorCodeInvalidRequest:               mediation.LoadFailureInvalidAdRequest,
	partnersdk.ErrorCodeInvalidArgument:              mediation.LoadFailureInvalidAdRequest,
	partnersdk.ErrorCodeApplicationIdentifierMissing: mediation.LoadFailureInvalidCredentials,
	partnersdk.ErrorCodeReceivedInvalidResponse:      mediation.LoadFailureInvalidBidResponse,
	partnersdk.ErrorCodeMediationInvalidAdSize:       mediation.LoadFailureInvalidBannerSize,
	partnersdk.ErrorCodeInternalError:                mediation.LoadFailureException,
}

var showErrorCodes = map[partnersdk.PresentationErrorCode]mediation.ErrorCode{
	partnersdk.PresentationErrorCodeAdNotReady:    mediation.ShowFailureAdNotReady,
	partnersdk.PresentationErrorCodeAdAlreadyUsed: mediation.ShowFailureAdNotReady,
	partnersdk.PresentationErrorCodeAdTooLarge:    mediation.ShowFailureUnsupportedAdSize,
	partnersdk.PresentationErrorCodeInternal:      mediation.ShowFailureException,
	partnersdk.PresentationErrorCodeNotMainThread: mediation.ShowFailureException,
}

// MapLoadError maps a partner load error. ok is false for errors outside the
// partner load domain and for codes with no counterpart.
func MapLoadError(err error) (mediation.ErrorCode, bool) {
	pe, ok := partnersdk.AsError(err)
	if !ok || pe.Domain != partnersdk.ErrorDomain {
		return 0, false
	}
	code, ok := loadErrorCodes[partnersdk.ErrorCode(pe.Code)]
	return code, ok
}

// MapShowError maps a partner presentation error, see MapLoadError.
func MapShowError(err error) (mediation.ErrorCode, bool) {
	pe, ok := partnersdk.AsError(err)
	if !ok || pe.Domain != partnersdk.PresentationErrorDomain {
		return 0, false
	}
	code, ok := showErrorCodes[partnersdk.PresentationErrorCode(pe.Code)]
	return code, ok
}

func loadFailure(err error) *mediation.Error {
	code, ok := MapLoadError(err)
	if !ok {
		code = mediation.LoadFailureUnknown
	}
	return mediation.NewError(code, mediation.WithPartner(PartnerID), mediation.WithCause(err))
}

func showFailure(err error) *mediation.Error {
	code, ok := MapShowError(err)
	if !ok {
		code = mediation.ShowFailureUnknown
	}
	return mediation.NewError(code, mediation.WithPartner(PartnerID), mediation.WithCause(err))
}
