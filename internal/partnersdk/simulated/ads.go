package simulated

import (
	"sync"

	"github.com/echoface/admob-adapter/internal/partnersdk"
)

type fullScreenAd struct {
	sdk       *SDK
	placement string
	scenario  Scenario

	// outer is the value handed to delegate callbacks.
	outer partnersdk.FullScreenPresentingAd

	mu        sync.Mutex
	delegate  partnersdk.FullScreenContentDelegate
	onReward  func()
	presented bool
	dismissed bool
}

func newFullScreenAd(sdk *SDK, placement string, scenario Scenario) *fullScreenAd {
	return &fullScreenAd{sdk: sdk, placement: placement, scenario: scenario}
}

func (f *fullScreenAd) SetFullScreenContentDelegate(delegate partnersdk.FullScreenContentDelegate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delegate = delegate
}

func (f *fullScreenAd) currentDelegate() partnersdk.FullScreenContentDelegate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.delegate
}

func (f *fullScreenAd) present(root any, onReward func()) {
	f.mu.Lock()
	used := f.presented
	f.presented = true
	f.onReward = onReward
	f.mu.Unlock()

	var err error
	switch {
	case used:
		err = partnersdk.NewPresentationError(partnersdk.PresentationErrorCodeAdAlreadyUsed, "ad was already presented")
	case root == nil:
		err = partnersdk.NewPresentationError(partnersdk.PresentationErrorCodeInternal, "root view controller is nil")
	case f.scenario.PresentErrorCode != nil:
		err = partnersdk.NewPresentationError(partnersdk.PresentationErrorCode(*f.scenario.PresentErrorCode), "scripted present failure")
	}
	if err != nil {
		f.sdk.queue.Async(func() {
			if d := f.currentDelegate(); d != nil {
				d.AdDidFailToPresentFullScreenContent(f.outer, err)
			}
		})
		return
	}

	f.sdk.addLive(f.placement, f)
	f.sdk.queue.Async(func() {
		d := f.currentDelegate()
		if d == nil {
			return
		}
		d.AdWillPresentFullScreenContent(f.outer)
		if f.scenario.AutoImpression {
			d.AdDidRecordImpression(f.outer)
		}
		if f.scenario.AutoReward && onReward != nil {
			onReward()
		}
	})
}

func (f *fullScreenAd) trigger(event Event) bool {
	f.mu.Lock()
	if !f.presented || f.dismissed {
		f.mu.Unlock()
		return false
	}
	if event == EventDismiss {
		f.dismissed = true
	}
	d, onReward := f.delegate, f.onReward
	f.mu.Unlock()

	switch event {
	case EventImpression:
		if d != nil {
			f.sdk.queue.Async(func() { d.AdDidRecordImpression(f.outer) })
		}
	case EventClick:
		if d != nil {
			f.sdk.queue.Async(func() { d.AdDidRecordClick(f.outer) })
		}
	case EventReward:
		if onReward == nil {
			return false
		}
		f.sdk.queue.Async(onReward)
	case EventDismiss:
		f.sdk.removeLive(f.placement, f)
		if d != nil {
			f.sdk.queue.Async(func() { d.AdDidDismissFullScreenContent(f.outer) })
		}
	default:
		return false
	}
	return true
}

type interstitialAd struct {
	*fullScreenAd
}

func (a *interstitialAd) Present(rootViewController any) {
	a.present(rootViewController, nil)
}

type rewardedAd struct {
	*fullScreenAd
}

func (a *rewardedAd) AdReward() partnersdk.Reward {
	return partnersdk.Reward{Type: a.scenario.RewardType, Amount: a.scenario.RewardAmount}
}

func (a *rewardedAd) Present(rootViewController any, userDidEarnReward func()) {
	a.present(rootViewController, userDidEarnReward)
}

type bannerView struct {
	sdk  *SDK
	size partnersdk.AdSize

	mu       sync.Mutex
	adUnitID string
	autoload bool
	root     any
	delegate partnersdk.BannerViewDelegate
	width    float64
	height   float64
	loaded   bool
	removed  bool
}

func (b *bannerView) SetAdUnitID(adUnitID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.adUnitID = adUnitID
}

func (b *bannerView) SetAutoloadEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.autoload = enabled
}

func (b *bannerView) SetRootViewController(rootViewController any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.root = rootViewController
}

func (b *bannerView) SetDelegate(delegate partnersdk.BannerViewDelegate) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.delegate = delegate
}

func (b *bannerView) AdSize() partnersdk.AdSize {
	return b.size
}

func (b *bannerView) IntrinsicContentSize() (float64, float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *bannerView) RemoveFromSuperview() {
	b.mu.Lock()
	b.removed = true
	adUnitID := b.adUnitID
	b.mu.Unlock()
	b.sdk.removeLive(adUnitID, b)
}

func (b *bannerView) Load(request *partnersdk.Request) {
	b.mu.Lock()
	adUnitID, root := b.adUnitID, b.root
	b.mu.Unlock()

	scenario := b.sdk.record(adUnitID, "banner", request)
	if scenario.Hang {
		return
	}

	err := scenario.loadError(adUnitID)
	switch {
	case err != nil:
	case !b.size.IsValid():
		err = partnersdk.NewLoadError(partnersdk.ErrorCodeMediationInvalidAdSize, "invalid banner size "+b.size.String())
	case root == nil:
		err = partnersdk.NewLoadError(partnersdk.ErrorCodeInvalidRequest, "root view controller is nil")
	}

	b.sdk.deliver(scenario.latency(), func() {
		b.mu.Lock()
		if b.removed {
			b.mu.Unlock()
			return
		}
		d := b.delegate
		if err == nil {
			b.width, b.height = b.size.Width, b.size.ResolvedHeight()
			if b.size.Adaptive && scenario.BannerHeight > 0 {
				b.height = scenario.BannerHeight
			}
			b.loaded = true
		}
		b.mu.Unlock()

		if d == nil {
			return
		}
		if err != nil {
			d.BannerViewDidFailToReceiveAd(b, err)
			return
		}
		b.sdk.addLive(adUnitID, b)
		d.BannerViewDidReceiveAd(b)
		if scenario.AutoImpression {
			d.BannerViewDidRecordImpression(b)
		}
	})
}

func (b *bannerView) trigger(event Event) bool {
	b.mu.Lock()
	ok := b.loaded && !b.removed
	d := b.delegate
	b.mu.Unlock()
	if !ok || d == nil {
		return false
	}

	switch event {
	case EventImpression:
		b.sdk.queue.Async(func() { d.BannerViewDidRecordImpression(b) })
	case EventClick:
		b.sdk.queue.Async(func() { d.BannerViewDidRecordClick(b) })
	default:
		return false
	}
	return true
}
