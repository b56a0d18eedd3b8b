package admob

import (
	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk"
)

// fullscreenAd holds what interstitial and rewarded formats share: the loaded
// partner handle and the full screen content callbacks.
type fullscreenAd struct {
	*adapterAd

	// guarded by adapterAd.mu
	handle partnersdk.FullScreenPresentingAd
}

var _ partnersdk.FullScreenContentDelegate = (*fullscreenAd)(nil)

func newFullscreenAd(adapter *Adapter, request mediation.AdLoadRequest, delegate mediation.DelegateRef) *fullscreenAd {
	return &fullscreenAd{adapterAd: newAdapterAd(adapter, request, delegate)}
}

// loaded is the partner load callback for every fullscreen format.
func (f *fullscreenAd) loaded(handle partnersdk.FullScreenPresentingAd, err error) {
	if err != nil {
		f.finishLoad(nil, loadFailure(err))
		return
	}
	if handle == nil {
		f.finishLoad(nil, mediation.NewError(mediation.LoadFailureUnknown,
			mediation.WithPartner(PartnerID), mediation.WithMessage("partner returned no ad")))
		return
	}

	f.mu.Lock()
	attach := f.state == AdStateLoading
	if attach {
		f.handle = handle
	}
	f.mu.Unlock()

	if attach {
		handle.SetFullScreenContentDelegate(f)
	}
	f.finishLoad(nil, nil)
}

// show validates and claims the show slot, then presents on the main queue.
func (f *fullscreenAd) show(viewController mediation.ViewController, completion mediation.ShowCompletion,
	present func(handle partnersdk.FullScreenPresentingAd)) {
	f.logger.Info(logShowStarted)

	f.mu.Lock()
	handle := f.handle
	f.mu.Unlock()

	if handle == nil {
		f.failShow(completion, mediation.NewError(mediation.ShowFailureAdNotReady,
			mediation.WithPartner(PartnerID), mediation.WithMessage("no loaded ad")))
		return
	}
	if viewController == nil {
		f.failShow(completion, mediation.NewError(mediation.ShowFailureViewControllerNotFound,
			mediation.WithPartner(PartnerID)))
		return
	}
	if err := f.beginShow(completion); err != nil {
		f.failShow(completion, err)
		return
	}

	f.adapter.queue.Async(func() {
		if f.invalidated() {
			return
		}
		present(handle)
	})
}

func (f *fullscreenAd) Invalidate() error {
	if !f.invalidate() {
		return nil
	}

	f.mu.Lock()
	handle := f.handle
	f.handle = nil
	f.mu.Unlock()

	if handle != nil {
		handle.SetFullScreenContentDelegate(nil)
	}
	f.logger.Info(logInvalidateSucceeded)
	return nil
}

func (f *fullscreenAd) AdDidRecordImpression(partnersdk.FullScreenPresentingAd) {
	f.didTrackImpression()
}

func (f *fullscreenAd) AdDidRecordClick(partnersdk.FullScreenPresentingAd) {
	f.didClick()
}

func (f *fullscreenAd) AdDidFailToPresentFullScreenContent(_ partnersdk.FullScreenPresentingAd, err error) {
	f.finishShow(showFailure(err))
}

func (f *fullscreenAd) AdWillPresentFullScreenContent(partnersdk.FullScreenPresentingAd) {
	f.finishShow(nil)
}

func (f *fullscreenAd) AdDidDismissFullScreenContent(partnersdk.FullScreenPresentingAd) {
	f.markDismissed()
	f.logger.Debug(logDidDismiss)
	f.notify("dismiss", func(d mediation.PartnerAdDelegate) {
		d.DidDismiss(f.self, mediation.PartnerDetails{}, nil)
	})
}

// InterstitialAd is a fullscreen interstitial.
type InterstitialAd struct {
	*fullscreenAd
}

var _ mediation.PartnerFullscreenAd = (*InterstitialAd)(nil)

func newInterstitialAd(adapter *Adapter, request mediation.AdLoadRequest, delegate mediation.DelegateRef) *InterstitialAd {
	ad := &InterstitialAd{fullscreenAd: newFullscreenAd(adapter, request, delegate)}
	ad.self = ad
	return ad
}

func (i *InterstitialAd) Load(_ mediation.ViewController, completion mediation.LoadCompletion) {
	if err := i.beginLoad(completion); err != nil {
		i.logger.Error(logLoadFailed, "error", err)
		completion(nil, err)
		return
	}
	i.adapter.sdk.LoadInterstitial(i.request.PartnerPlacement, i.buildRequest(), func(ad partnersdk.FullScreenAd, err error) {
		var handle partnersdk.FullScreenPresentingAd
		if ad != nil {
			handle = ad
		}
		i.loaded(handle, err)
	})
}

func (i *InterstitialAd) Show(viewController mediation.ViewController, completion mediation.ShowCompletion) {
	i.show(viewController, completion, func(handle partnersdk.FullScreenPresentingAd) {
		handle.(partnersdk.FullScreenAd).Present(viewController)
	})
}
