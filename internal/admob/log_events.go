package admob

// Log messages emitted by the adapter. Kept in one place so hosts can grep and
// alert on them.
const (
	logSetUpStarted       = "setup started"
	logSetUpSucceeded     = "setup succeeded"
	logSetUpFailed        = "setup failed"
	logSetUpQueued        = "setup queued behind pending start"
	logSetUpAlreadyDone   = "setup already completed"
	logFetchBidderInfo    = "fetch bidder info"
	logPrivacyUpdated     = "privacy updated"
	logPrivacyExtras      = "privacy request extras"
	logConsentIgnored     = "consent key ignored"
	logTestDevicesUpdated = "test device identifiers updated"

	logLoadStarted       = "load started"
	logLoadSucceeded     = "load succeeded"
	logLoadFailed        = "load failed"
	logLoadResultIgnored = "load result ignored"
	logShowStarted       = "show started"
	logShowSucceeded     = "show succeeded"
	logShowFailed        = "show failed"
	logShowResultIgnored = "show result ignored"

	logDidTrackImpression  = "did track impression"
	logDidClick            = "did click"
	logDidReward           = "did reward"
	logDidDismiss          = "did dismiss"
	logDelegateUnavailable = "delegate unavailable"

	logInvalidateStarted   = "invalidate started"
	logInvalidateSucceeded = "invalidate succeeded"
)
