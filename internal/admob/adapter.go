// Package admob adapts the Google Mobile Ads SDK to the mediation framework.
package admob

import (
	"slices"
	"sync"
	"time"

	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk"
	"github.com/echoface/admob-adapter/pkg/concurrent"
	"github.com/echoface/admob-adapter/pkg/logger"
)

const (
	PartnerID          = "admob"
	PartnerDisplayName = "AdMob"

	// AdapterVersion is <mediation major>.<partner sdk major.minor.patch>.<build>.
	AdapterVersion = "5.11.2.0.0"

	// request agent reported to the partner for mediated traffic
	requestAgent = "Helium"

	isHybridKey  = "is_hybrid_setup"
	requestIDKey = "placement_req_id"

	DetailPartnerSDKVersion = "partner_sdk_version"
	DetailAdapterVersion    = "adapter_version"
	DetailBannerWidth       = "banner_width"
	DetailBannerHeight      = "banner_height"
)

type setupState int

const (
	setupIdle setupState = iota
	setupStarting
	setupReady
)

type setupCompletion func(mediation.PartnerDetails, error)

// Adapter is the process-wide AdMob partner adapter.
type Adapter struct {
	sdk     partnersdk.SDK
	queue   concurrent.Executor
	logger  logger.Logger
	metrics *Metrics
	privacy *privacyState

	mu            sync.Mutex
	setup         setupState
	setupWaiters  []setupCompletion
	testDeviceIDs []string
}

var _ mediation.PartnerAdapter = (*Adapter)(nil)

// Option configures an Adapter.
type Option func(*Adapter)

func WithLogger(l logger.Logger) Option {
	return func(a *Adapter) {
		a.logger = l
	}
}

func WithMetrics(m *Metrics) Option {
	return func(a *Adapter) {
		a.metrics = m
	}
}

// WithMainQueue sets the executor UI-affecting partner calls run on.
func WithMainQueue(q concurrent.Executor) Option {
	return func(a *Adapter) {
		a.queue = q
	}
}

// WithTestDeviceIdentifiers registers test devices applied at set-up.
func WithTestDeviceIdentifiers(ids ...string) Option {
	return func(a *Adapter) {
		a.testDeviceIDs = slices.Clone(ids)
	}
}

func New(sdk partnersdk.SDK, opts ...Option) *Adapter {
	a := &Adapter{sdk: sdk}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	if a.logger == nil {
		a.logger = logger.NewNop()
	}
	if a.metrics == nil {
		a.metrics = NewMetrics(nil, "")
	}
	if a.queue == nil {
		a.queue = concurrent.Inline{}
	}
	a.logger = a.logger.With("partner", PartnerID)
	a.privacy = newPrivacyState(sdk, a.logger)
	return a
}

func (a *Adapter) PartnerInfo() mediation.PartnerInfo {
	return mediation.PartnerInfo{
		PartnerID:          PartnerID,
		PartnerDisplayName: PartnerDisplayName,
		AdapterVersion:     AdapterVersion,
		PartnerSDKVersion:  a.sdk.Version(),
	}
}

func (a *Adapter) setupDetails() mediation.PartnerDetails {
	return mediation.PartnerDetails{
		DetailPartnerSDKVersion: a.sdk.Version(),
		DetailAdapterVersion:    AdapterVersion,
	}
}

// SetUp starts the partner SDK once. Calls made while the start is pending
// share its outcome; calls after success complete immediately.
func (a *Adapter) SetUp(configuration mediation.PartnerConfiguration, completion func(mediation.PartnerDetails, error)) {
	a.logger.Info(logSetUpStarted)

	a.mu.Lock()
	switch a.setup {
	case setupReady:
		a.mu.Unlock()
		a.logger.Info(logSetUpAlreadyDone)
		completion(a.setupDetails(), nil)
		return
	case setupStarting:
		a.setupWaiters = append(a.setupWaiters, completion)
		a.mu.Unlock()
		a.logger.Info(logSetUpQueued)
		return
	}
	a.setup = setupStarting
	a.setupWaiters = append(a.setupWaiters, completion)
	testDeviceIDs := slices.Clone(a.testDeviceIDs)
	a.mu.Unlock()

	a.SetConsents(configuration.Consents, mediation.AllConsentKeys())
	a.SetIsUserUnderage(configuration.IsUserUnderage)

	// the mediation framework is the mediator, not the partner SDK
	a.sdk.DisableMediationInitialization()
	if len(testDeviceIDs) > 0 {
		a.sdk.SetTestDeviceIdentifiers(testDeviceIDs)
	}

	startedAt := time.Now()
	a.sdk.Start(func(status partnersdk.InitializationStatus) {
		a.onStarted(status, time.Since(startedAt))
	})
}

func (a *Adapter) onStarted(status partnersdk.InitializationStatus, elapsed time.Duration) {
	var err error
	st, ok := status.AdapterStatuses[partnersdk.MobileAdsClassName]
	if !ok || st.State != partnersdk.AdapterStateReady {
		state := "missing"
		if ok {
			state = st.State.String()
		}
		err = mediation.NewError(mediation.InitializationFailureUnknown,
			mediation.WithPartner(PartnerID),
			mediation.WithMessage("%s adapter status was %s", partnersdk.MobileAdsClassName, state))
	}

	a.mu.Lock()
	waiters := a.setupWaiters
	a.setupWaiters = nil
	if err != nil {
		// a later SetUp may try again
		a.setup = setupIdle
	} else {
		a.setup = setupReady
	}
	a.mu.Unlock()

	a.metrics.observeSetUp(err)
	if err != nil {
		a.logger.Error(logSetUpFailed, "error", err, "elapsed", elapsed)
		for _, done := range waiters {
			done(nil, err)
		}
		return
	}

	a.logger.Info(logSetUpSucceeded, "partner_sdk_version", a.sdk.Version(), "elapsed", elapsed)
	details := a.setupDetails()
	for _, done := range waiters {
		done(details, nil)
	}
}

// IsSetUp reports whether the partner SDK started successfully.
func (a *Adapter) IsSetUp() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.setup == setupReady
}

func (a *Adapter) FetchBidderInformation(request mediation.PreBidRequest, completion func(map[string]string, error)) {
	a.logger.Debug(logFetchBidderInfo, "placement", request.MediationPlacement, "format", request.Format)
	completion(map[string]string{}, nil)
}

func (a *Adapter) SetConsents(consents map[mediation.ConsentKey]mediation.ConsentValue, modifiedKeys []mediation.ConsentKey) {
	a.privacy.apply(consents, modifiedKeys)
}

func (a *Adapter) SetIsUserUnderage(isUserUnderage bool) {
	a.logger.Info(logPrivacyUpdated, "setting", "child_directed_treatment", "value", isUserUnderage)
	a.sdk.SetChildDirectedTreatment(isUserUnderage)
}

// SetTestDeviceIdentifiers replaces the partner's test devices. Empty clears them.
func (a *Adapter) SetTestDeviceIdentifiers(ids []string) {
	ids = slices.Clone(ids)
	if ids == nil {
		ids = []string{}
	}

	a.mu.Lock()
	a.testDeviceIDs = ids
	a.mu.Unlock()

	a.sdk.SetTestDeviceIdentifiers(ids)
	a.logger.Info(logTestDevicesUpdated, "ids", ids)
}

func (a *Adapter) MakeBannerAd(request mediation.AdLoadRequest, delegate mediation.DelegateRef) (mediation.PartnerBannerAd, error) {
	if !request.Format.IsBanner() {
		return nil, a.unsupportedFormat(request, "banner")
	}
	return newBannerAd(a, request, delegate), nil
}

func (a *Adapter) MakeFullscreenAd(request mediation.AdLoadRequest, delegate mediation.DelegateRef) (mediation.PartnerFullscreenAd, error) {
	switch request.Format {
	case mediation.AdFormatInterstitial:
		return newInterstitialAd(a, request, delegate), nil
	case mediation.AdFormatRewarded:
		return newRewardedAd(a, request, delegate), nil
	case mediation.AdFormatRewardedInterstitial:
		return newRewardedInterstitialAd(a, request, delegate), nil
	}
	return nil, a.unsupportedFormat(request, "fullscreen")
}

func (a *Adapter) unsupportedFormat(request mediation.AdLoadRequest, factory string) error {
	err := mediation.NewError(mediation.LoadFailureUnsupportedAdFormat,
		mediation.WithPartner(PartnerID),
		mediation.WithMessage("%s ad cannot be made for format %q", factory, request.Format))
	a.metrics.observeLoad(request.Format, err)
	a.logger.Warn(logLoadFailed, "format", request.Format, "load_id", request.LoadID, "error", err)
	return err
}

func (a *Adapter) MapLoadError(err error) (mediation.ErrorCode, bool) {
	return MapLoadError(err)
}

func (a *Adapter) MapShowError(err error) (mediation.ErrorCode, bool) {
	return MapShowError(err)
}
