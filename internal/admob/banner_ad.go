package admob

import (
	"strconv"

	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk"
)

// BannerAd is an inline banner backed by a partner banner view.
type BannerAd struct {
	*adapterAd

	// guarded by adapterAd.mu
	view       partnersdk.BannerView
	inlineView partnersdk.BannerView
	fixedSize  *mediation.BannerSize
	size       mediation.BannerSize
	sizeKnown  bool
}

var (
	_ mediation.PartnerBannerAd     = (*BannerAd)(nil)
	_ partnersdk.BannerViewDelegate = (*BannerAd)(nil)
)

func newBannerAd(adapter *Adapter, request mediation.AdLoadRequest, delegate mediation.DelegateRef) *BannerAd {
	ad := &BannerAd{adapterAd: newAdapterAd(adapter, request, delegate)}
	ad.self = ad
	return ad
}

// Load requests a banner. Banners render as soon as they load, so a view
// controller is required up front.
func (b *BannerAd) Load(viewController mediation.ViewController, completion mediation.LoadCompletion) {
	if err := b.beginLoad(completion); err != nil {
		b.logger.Error(logLoadFailed, "error", err)
		completion(nil, err)
		return
	}

	if viewController == nil {
		b.finishLoad(nil, mediation.NewError(mediation.LoadFailureViewControllerNotFound,
			mediation.WithPartner(PartnerID),
			mediation.WithMessage("banner load requires a view controller")))
		return
	}

	size, adSize, err := partnerBannerSize(b.request)
	if err != nil {
		b.finishLoad(nil, err)
		return
	}

	request := b.buildRequest()
	placement := b.request.PartnerPlacement
	b.adapter.queue.Async(func() {
		view := b.adapter.sdk.NewBannerView(adSize)
		view.SetAdUnitID(placement)
		view.SetAutoloadEnabled(false)
		view.SetRootViewController(viewController)

		b.mu.Lock()
		if b.state == AdStateInvalidated {
			b.mu.Unlock()
			return
		}
		b.view = view
		if size.Type == mediation.BannerSizeFixed {
			b.fixedSize = &size
		}
		b.mu.Unlock()

		view.SetDelegate(b)
		view.Load(request)
	})
}

// View returns the partner banner view once an ad was received.
func (b *BannerAd) View() any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inlineView == nil {
		return nil
	}
	return b.inlineView
}

func (b *BannerAd) Size() (mediation.BannerSize, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size, b.sizeKnown
}

func (b *BannerAd) Invalidate() error {
	if !b.invalidate() {
		return nil
	}

	b.mu.Lock()
	view := b.view
	b.view, b.inlineView = nil, nil
	b.mu.Unlock()

	if view != nil {
		b.adapter.queue.Async(func() {
			view.SetDelegate(nil)
			view.RemoveFromSuperview()
		})
	}
	b.logger.Info(logInvalidateSucceeded)
	return nil
}

func (b *BannerAd) BannerViewDidReceiveAd(view partnersdk.BannerView) {
	var details mediation.PartnerDetails

	// size is only known once the partner answered the pending load
	b.mu.Lock()
	if b.state == AdStateLoading {
		b.inlineView = view
		switch {
		case view.AdSize().Adaptive:
			w, h := view.IntrinsicContentSize()
			b.size = mediation.BannerSize{Size: mediation.Size{Width: w, Height: h}, Type: mediation.BannerSizeAdaptive}
			b.sizeKnown = true
			details = mediation.PartnerDetails{
				DetailBannerWidth:  strconv.FormatFloat(w, 'f', -1, 64),
				DetailBannerHeight: strconv.FormatFloat(h, 'f', -1, 64),
			}
		case b.fixedSize != nil:
			b.size, b.sizeKnown = *b.fixedSize, true
		}
	}
	b.mu.Unlock()

	b.finishLoad(details, nil)
}

func (b *BannerAd) BannerViewDidFailToReceiveAd(_ partnersdk.BannerView, err error) {
	b.finishLoad(nil, loadFailure(err))
}

func (b *BannerAd) BannerViewDidRecordImpression(partnersdk.BannerView) {
	b.didTrackImpression()
}

func (b *BannerAd) BannerViewDidRecordClick(partnersdk.BannerView) {
	b.didClick()
}
