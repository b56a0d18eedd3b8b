package mediation

// ViewController is an opaque presentation context owned by the host app.
// A nil ViewController means none was supplied.
type ViewController any

// PartnerDetails is free-form string metadata returned from partner calls.
type PartnerDetails map[string]string

type (
	// LoadCompletion is called exactly once per load with either details or an error.
	LoadCompletion func(details PartnerDetails, err error)

	// ShowCompletion is called exactly once per show.
	ShowCompletion func(err error)
)

type (
	// PartnerAdapter 合作方适配器接口
	// PartnerAdapter is the contract every partner adapter implements.
	PartnerAdapter interface {
		// PartnerInfo identifies the partner and adapter versions.
		PartnerInfo() PartnerInfo

		// SetUp initializes the partner SDK. Repeated calls after a successful
		// set-up succeed without re-initializing.
		SetUp(configuration PartnerConfiguration, completion func(PartnerDetails, error))

		// FetchBidderInformation returns bidding tokens for a pre-bid request.
		FetchBidderInformation(request PreBidRequest, completion func(map[string]string, error))

		// SetConsents applies consent values; only modifiedKeys are re-derived.
		SetConsents(consents map[ConsentKey]ConsentValue, modifiedKeys []ConsentKey)

		// SetIsUserUnderage forwards a COPPA-style signal to the partner.
		SetIsUserUnderage(isUserUnderage bool)

		MakeBannerAd(request AdLoadRequest, delegate DelegateRef) (PartnerBannerAd, error)
		MakeFullscreenAd(request AdLoadRequest, delegate DelegateRef) (PartnerFullscreenAd, error)

		// MapLoadError and MapShowError translate partner errors. ok is false
		// when no mapping exists, in which case callers pick their own default.
		MapLoadError(err error) (code ErrorCode, ok bool)
		MapShowError(err error) (code ErrorCode, ok bool)
	}

	// PartnerInfo 合作方信息
	PartnerInfo struct {
		PartnerID          string `json:"partner_id"`
		PartnerDisplayName string `json:"partner_display_name"`
		AdapterVersion     string `json:"adapter_version"`
		PartnerSDKVersion  string `json:"partner_sdk_version"`
	}

	// PartnerAd is one ad instance created by a partner adapter.
	PartnerAd interface {
		Adapter() PartnerAdapter
		Request() AdLoadRequest

		// Load fetches the ad. viewController is required for banners.
		Load(viewController ViewController, completion LoadCompletion)

		// Invalidate releases partner resources; pending completions are dropped.
		Invalidate() error
	}

	// PartnerBannerAd is a loaded-and-displayed-inline ad.
	PartnerBannerAd interface {
		PartnerAd

		// View returns the partner banner view once loaded.
		View() any

		// Size returns the loaded banner size, if known.
		Size() (BannerSize, bool)
	}

	// PartnerFullscreenAd is an ad presented over the app.
	PartnerFullscreenAd interface {
		PartnerAd

		Show(viewController ViewController, completion ShowCompletion)
	}

	// PartnerAdDelegate receives lifecycle events after load.
	PartnerAdDelegate interface {
		DidTrackImpression(ad PartnerAd, details PartnerDetails)
		DidClick(ad PartnerAd, details PartnerDetails)
		DidReward(ad PartnerAd, details PartnerDetails)
		DidDismiss(ad PartnerAd, details PartnerDetails, err error)
		DidExpire(ad PartnerAd, details PartnerDetails)
	}
)
