package admob

import (
	"sync"

	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk"
	"github.com/echoface/admob-adapter/pkg/jsonx"
	"github.com/echoface/admob-adapter/pkg/logger"
)

// AdState is the lifecycle state of one ad instance.
type AdState int

const (
	AdStateIdle AdState = iota
	AdStateLoading
	AdStateLoaded
	AdStateLoadFailed
	AdStateShowing
	AdStateShown
	AdStateShowFailed
	AdStateDismissed
	AdStateInvalidated
)

var adStateNames = [...]string{
	AdStateIdle:        "idle",
	AdStateLoading:     "loading",
	AdStateLoaded:      "loaded",
	AdStateLoadFailed:  "load_failed",
	AdStateShowing:     "showing",
	AdStateShown:       "shown",
	AdStateShowFailed:  "show_failed",
	AdStateDismissed:   "dismissed",
	AdStateInvalidated: "invalidated",
}

func (s AdState) String() string {
	if int(s) < len(adStateNames) {
		return adStateNames[s]
	}
	return "unknown"
}

// adapterAd is the state shared by every ad format: the owning adapter, the
// request, a weak delegate handle and the take-once completion slots.
type adapterAd struct {
	adapter  *Adapter
	request  mediation.AdLoadRequest
	delegate mediation.DelegateRef
	logger   logger.Logger

	// self is the concrete ad handed to delegate callbacks
	self mediation.PartnerAd

	mu             sync.Mutex
	state          AdState
	loadCompletion mediation.LoadCompletion
	showCompletion mediation.ShowCompletion
}

func newAdapterAd(adapter *Adapter, request mediation.AdLoadRequest, delegate mediation.DelegateRef) *adapterAd {
	return &adapterAd{
		adapter:  adapter,
		request:  request,
		delegate: delegate,
		logger: adapter.logger.With(
			"format", string(request.Format),
			"placement", request.PartnerPlacement,
			"load_id", request.LoadID),
	}
}

func (a *adapterAd) Adapter() mediation.PartnerAdapter {
	return a.adapter
}

func (a *adapterAd) Request() mediation.AdLoadRequest {
	return a.request
}

func (a *adapterAd) State() AdState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *adapterAd) invalidated() bool {
	return a.State() == AdStateInvalidated
}

// beginLoad claims the load slot. Ads are single use, so anything but a fresh
// ad is refused.
func (a *adapterAd) beginLoad(completion mediation.LoadCompletion) error {
	a.logger.Info(logLoadStarted, "partner_settings", jsonx.LzJSON(a.request.PartnerSettings))

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != AdStateIdle {
		return mediation.NewError(mediation.LoadFailureAborted,
			mediation.WithPartner(PartnerID),
			mediation.WithMessage("ad is %s, instances cannot be reloaded", a.state))
	}
	a.state = AdStateLoading
	a.loadCompletion = completion
	return nil
}

// finishLoad resolves the pending load at most once.
func (a *adapterAd) finishLoad(details mediation.PartnerDetails, err error) {
	a.mu.Lock()
	completion := a.loadCompletion
	a.loadCompletion = nil
	if completion != nil {
		if err != nil {
			a.state = AdStateLoadFailed
		} else {
			a.state = AdStateLoaded
		}
	}
	a.mu.Unlock()

	if completion == nil {
		a.logger.Warn(logLoadResultIgnored, "error", err)
		a.adapter.metrics.observeDropped(a.request.Format, "load_result")
		return
	}

	a.adapter.metrics.observeLoad(a.request.Format, err)
	if err != nil {
		a.logger.Error(logLoadFailed, "error", err)
		completion(nil, err)
		return
	}
	a.logger.Info(logLoadSucceeded)
	if details == nil {
		details = mediation.PartnerDetails{}
	}
	completion(details, nil)
}

// beginShow claims the show slot of a loaded ad.
func (a *adapterAd) beginShow(completion mediation.ShowCompletion) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != AdStateLoaded {
		return mediation.NewError(mediation.ShowFailureAdNotReady,
			mediation.WithPartner(PartnerID),
			mediation.WithMessage("ad is %s", a.state))
	}
	a.state = AdStateShowing
	a.showCompletion = completion
	return nil
}

// failShow reports a show that never reached the partner.
func (a *adapterAd) failShow(completion mediation.ShowCompletion, err error) {
	a.adapter.metrics.observeShow(a.request.Format, err)
	a.logger.Error(logShowFailed, "error", err)
	completion(err)
}

// finishShow resolves the pending show at most once.
func (a *adapterAd) finishShow(err error) {
	a.mu.Lock()
	completion := a.showCompletion
	a.showCompletion = nil
	if completion != nil {
		if err != nil {
			a.state = AdStateShowFailed
		} else {
			a.state = AdStateShown
		}
	}
	a.mu.Unlock()

	if completion == nil {
		a.logger.Warn(logShowResultIgnored, "error", err)
		a.adapter.metrics.observeDropped(a.request.Format, "show_result")
		return
	}

	a.adapter.metrics.observeShow(a.request.Format, err)
	if err != nil {
		a.logger.Error(logShowFailed, "error", err)
	} else {
		a.logger.Info(logShowSucceeded)
	}
	completion(err)
}

// invalidate drops pending completions. It reports false when the ad was
// already invalidated.
func (a *adapterAd) invalidate() bool {
	a.logger.Info(logInvalidateStarted)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == AdStateInvalidated {
		return false
	}
	a.state = AdStateInvalidated
	a.loadCompletion = nil
	a.showCompletion = nil
	return true
}

func (a *adapterAd) markDismissed() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != AdStateInvalidated {
		a.state = AdStateDismissed
	}
}

// buildRequest assembles the partner request: consent extras first, then the
// per-request hybrid parameters, which win on collision.
func (a *adapterAd) buildRequest() *partnersdk.Request {
	extras := a.adapter.privacy.sharedExtras()
	if a.request.SettingBool(isHybridKey) {
		extras[isHybridKey] = "true"
		extras[requestIDKey] = a.request.Identifier
	}
	return &partnersdk.Request{
		RequestAgent: requestAgent,
		Extras:       extras,
	}
}

// notify forwards a post-load event if the host still holds the delegate.
func (a *adapterAd) notify(event string, fn func(d mediation.PartnerAdDelegate)) {
	d, ok := a.delegate.Delegate()
	if !ok {
		a.logger.Warn(logDelegateUnavailable, "event", event)
		a.adapter.metrics.observeDropped(a.request.Format, "delegate_"+event)
		return
	}
	a.adapter.metrics.observeEvent(a.request.Format, event)
	fn(d)
}

func (a *adapterAd) didTrackImpression() {
	a.logger.Debug(logDidTrackImpression)
	a.notify("impression", func(d mediation.PartnerAdDelegate) {
		d.DidTrackImpression(a.self, mediation.PartnerDetails{})
	})
}

func (a *adapterAd) didClick() {
	a.logger.Debug(logDidClick)
	a.notify("click", func(d mediation.PartnerAdDelegate) {
		d.DidClick(a.self, mediation.PartnerDetails{})
	})
}
