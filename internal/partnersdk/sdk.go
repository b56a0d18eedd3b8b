// Package partnersdk describes the surface of the Google Mobile Ads SDK that the
// adapter drives. The SDK owns its ad objects; the adapter only holds handles
// and receives callbacks through the delegate interfaces below.
package partnersdk

import "time"

// MobileAdsClassName is the key of the SDK's own entry in
// InitializationStatus.AdapterStatuses.
const MobileAdsClassName = "GADMobileAds"

// AdapterState is the readiness reported for an adapter after Start.
type AdapterState int

const (
	AdapterStateNotReady AdapterState = iota
	AdapterStateReady
)

func (s AdapterState) String() string {
	if s == AdapterStateReady {
		return "ready"
	}
	return "not_ready"
}

type (
	AdapterStatus struct {
		State       AdapterState
		Description string
		Latency     time.Duration
	}

	// InitializationStatus is delivered to the Start completion handler.
	InitializationStatus struct {
		AdapterStatuses map[string]AdapterStatus
	}

	// Request is a single ad request. Extras are the "additional parameters"
	// network extras attached to it.
	Request struct {
		RequestAgent string
		Extras       map[string]string
	}

	// Reward is the reward configured for a rewarded ad unit.
	Reward struct {
		Type   string
		Amount int
	}
)

// SDK is the process-wide entry point of the partner SDK.
type SDK interface {
	Version() string

	// DisableMediationInitialization stops the SDK from initializing its own
	// mediation adapters; the host framework is the mediator.
	DisableMediationInitialization()

	// Start initializes the SDK; completion runs asynchronously.
	Start(completion func(InitializationStatus))

	// Request configuration, applied to every subsequent request.
	SetChildDirectedTreatment(childDirected bool)
	SetTestDeviceIdentifiers(ids []string)

	// SetPrivacyValue writes to the key-value store the SDK reads privacy
	// signals from. A nil value removes the key.
	SetPrivacyValue(key string, value any)

	LoadInterstitial(adUnitID string, request *Request, completion func(FullScreenAd, error))
	LoadRewarded(adUnitID string, request *Request, completion func(RewardedAd, error))
	LoadRewardedInterstitial(adUnitID string, request *Request, completion func(RewardedAd, error))

	// NewBannerView creates a banner view. Must be called on the main queue.
	NewBannerView(size AdSize) BannerView
}

// FullScreenContentDelegate receives presentation events of fullscreen ads.
type FullScreenContentDelegate interface {
	AdDidRecordImpression(ad FullScreenPresentingAd)
	AdDidRecordClick(ad FullScreenPresentingAd)
	AdDidFailToPresentFullScreenContent(ad FullScreenPresentingAd, err error)
	AdWillPresentFullScreenContent(ad FullScreenPresentingAd)
	AdDidDismissFullScreenContent(ad FullScreenPresentingAd)
}

// FullScreenPresentingAd is any ad that can be presented over the app.
type FullScreenPresentingAd interface {
	SetFullScreenContentDelegate(delegate FullScreenContentDelegate)
}

// FullScreenAd is a loaded interstitial.
type FullScreenAd interface {
	FullScreenPresentingAd
	Present(rootViewController any)
}

// RewardedAd is a loaded rewarded or rewarded interstitial ad.
type RewardedAd interface {
	FullScreenPresentingAd
	AdReward() Reward
	Present(rootViewController any, userDidEarnReward func())
}

// BannerViewDelegate receives banner view events.
type BannerViewDelegate interface {
	BannerViewDidReceiveAd(view BannerView)
	BannerViewDidFailToReceiveAd(view BannerView, err error)
	BannerViewDidRecordImpression(view BannerView)
	BannerViewDidRecordClick(view BannerView)
}

// BannerView is an inline banner owned by the SDK.
type BannerView interface {
	SetAdUnitID(adUnitID string)
	SetAutoloadEnabled(enabled bool)
	SetRootViewController(rootViewController any)
	SetDelegate(delegate BannerViewDelegate)
	Load(request *Request)

	AdSize() AdSize
	// IntrinsicContentSize is the rendered size once an ad is received.
	IntrinsicContentSize() (width, height float64)
	RemoveFromSuperview()
}
