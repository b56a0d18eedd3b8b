// Package simulated is an in-process stand-in for the partner SDK. Placements
// are scripted through Scenario values so hosts and tests can drive fills,
// failures, hangs and post-load events deterministically.
package simulated

import (
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/echoface/admob-adapter/internal/partnersdk"
	"github.com/echoface/admob-adapter/pkg/concurrent"
	"github.com/echoface/admob-adapter/pkg/logger"
)

// ErrNoLiveAd is returned by Trigger when no ad of the placement can take the event.
var ErrNoLiveAd = errors.New("no live ad for placement")

// RecordedRequest is a load request as seen by the SDK.
type RecordedRequest struct {
	AdUnitID string             `json:"ad_unit_id"`
	Kind     string             `json:"kind"`
	Request  partnersdk.Request `json:"request"`
}

type liveAd interface {
	trigger(event Event) bool
}

// SDK implements partnersdk.SDK. Callbacks are delivered through the executor
// given to New, after the scenario latency if any.
type SDK struct {
	cfg    Config
	queue  concurrent.Executor
	logger logger.Logger

	mu                    sync.Mutex
	startCount            int
	mediationInitDisabled bool
	childDirected         *bool
	testDevices           []string
	privacy               map[string]any
	requests              []RecordedRequest
	live                  map[string][]liveAd
}

var _ partnersdk.SDK = (*SDK)(nil)

func New(cfg Config, queue concurrent.Executor, log logger.Logger) *SDK {
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	if queue == nil {
		queue = concurrent.Inline{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &SDK{
		cfg:     cfg,
		queue:   queue,
		logger:  log.With("component", "simulated_sdk"),
		privacy: make(map[string]any),
		live:    make(map[string][]liveAd),
	}
}

func (s *SDK) Version() string {
	return s.cfg.Version
}

func (s *SDK) DisableMediationInitialization() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mediationInitDisabled = true
}

func (s *SDK) Start(completion func(partnersdk.InitializationStatus)) {
	s.mu.Lock()
	s.startCount++
	s.mu.Unlock()

	state := partnersdk.AdapterStateReady
	if s.cfg.StartNotReady {
		state = partnersdk.AdapterStateNotReady
	}
	latency := time.Duration(s.cfg.StartLatencyMS) * time.Millisecond
	s.deliver(latency, func() {
		completion(partnersdk.InitializationStatus{
			AdapterStatuses: map[string]partnersdk.AdapterStatus{
				partnersdk.MobileAdsClassName: {State: state, Latency: latency},
			},
		})
	})
}

func (s *SDK) SetChildDirectedTreatment(childDirected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.childDirected = &childDirected
}

func (s *SDK) SetTestDeviceIdentifiers(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.testDevices = slices.Clone(ids)
}

func (s *SDK) SetPrivacyValue(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == nil {
		delete(s.privacy, key)
		return
	}
	s.privacy[key] = value
}

func (s *SDK) LoadInterstitial(adUnitID string, request *partnersdk.Request, completion func(partnersdk.FullScreenAd, error)) {
	s.loadFullscreen(adUnitID, "interstitial", request, func(ad *fullScreenAd, err error) {
		if err != nil {
			completion(nil, err)
			return
		}
		w := &interstitialAd{ad}
		ad.outer = w
		completion(w, nil)
	})
}

func (s *SDK) LoadRewarded(adUnitID string, request *partnersdk.Request, completion func(partnersdk.RewardedAd, error)) {
	s.loadRewarded(adUnitID, "rewarded", request, completion)
}

func (s *SDK) LoadRewardedInterstitial(adUnitID string, request *partnersdk.Request, completion func(partnersdk.RewardedAd, error)) {
	s.loadRewarded(adUnitID, "rewarded_interstitial", request, completion)
}

func (s *SDK) NewBannerView(size partnersdk.AdSize) partnersdk.BannerView {
	return &bannerView{sdk: s, size: size}
}

// Trigger fires event on every live ad of placement and returns how many took it.
func (s *SDK) Trigger(placement string, event Event) (int, error) {
	s.mu.Lock()
	ads := slices.Clone(s.live[placement])
	s.mu.Unlock()

	n := 0
	for _, ad := range ads {
		if ad.trigger(event) {
			n++
		}
	}
	if n == 0 {
		return 0, ErrNoLiveAd
	}
	s.logger.Debug("partner event triggered", "placement", placement, "event", event, "ads", n)
	return n, nil
}

// Requests returns every load request received so far.
func (s *SDK) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

func (s *SDK) PrivacyValue(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.privacy[key]
	return v, ok
}

// ChildDirectedTreatment returns the last value set; ok is false when never set.
func (s *SDK) ChildDirectedTreatment() (childDirected, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.childDirected == nil {
		return false, false
	}
	return *s.childDirected, true
}

func (s *SDK) TestDeviceIdentifiers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.testDevices)
}

func (s *SDK) StartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startCount
}

func (s *SDK) MediationInitializationDisabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mediationInitDisabled
}

func (s *SDK) loadRewarded(adUnitID, kind string, request *partnersdk.Request, completion func(partnersdk.RewardedAd, error)) {
	s.loadFullscreen(adUnitID, kind, request, func(ad *fullScreenAd, err error) {
		if err != nil {
			completion(nil, err)
			return
		}
		w := &rewardedAd{ad}
		ad.outer = w
		completion(w, nil)
	})
}

func (s *SDK) loadFullscreen(adUnitID, kind string, request *partnersdk.Request, completion func(*fullScreenAd, error)) {
	scenario := s.record(adUnitID, kind, request)
	if scenario.Hang {
		s.logger.Debug("simulated load hangs", "ad_unit_id", adUnitID, "kind", kind)
		return
	}

	err := scenario.loadError(adUnitID)
	s.deliver(scenario.latency(), func() {
		if err != nil {
			completion(nil, err)
			return
		}
		completion(newFullScreenAd(s, adUnitID, scenario), nil)
	})
}

// record stores the request and returns the scenario that answers it.
func (s *SDK) record(adUnitID, kind string, request *partnersdk.Request) Scenario {
	rec := RecordedRequest{AdUnitID: adUnitID, Kind: kind}
	if request != nil {
		rec.Request = partnersdk.Request{RequestAgent: request.RequestAgent, Extras: maps.Clone(request.Extras)}
	}

	s.mu.Lock()
	s.requests = append(s.requests, rec)
	s.mu.Unlock()

	s.logger.Debug("simulated load", "ad_unit_id", adUnitID, "kind", kind, "agent", rec.Request.RequestAgent)
	return s.cfg.ScenarioFor(adUnitID)
}

func (s *SDK) deliver(delay time.Duration, fn func()) {
	if delay <= 0 {
		s.queue.Async(fn)
		return
	}
	time.AfterFunc(delay, func() { s.queue.Async(fn) })
}

func (s *SDK) addLive(placement string, ad liveAd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.live[placement], ad) {
		return
	}
	s.live[placement] = append(s.live[placement], ad)
}

func (s *SDK) removeLive(placement string, ad liveAd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ads := slices.DeleteFunc(s.live[placement], func(a liveAd) bool { return a == ad })
	if len(ads) == 0 {
		delete(s.live, placement)
		return
	}
	s.live[placement] = ads
}

func (sc Scenario) loadError(adUnitID string) error {
	if adUnitID == "" {
		return partnersdk.NewLoadError(partnersdk.ErrorCodeInvalidRequest, "ad unit id is empty")
	}
	if sc.LoadErrorCode != nil {
		return partnersdk.NewLoadError(partnersdk.ErrorCode(*sc.LoadErrorCode), "scripted load failure")
	}
	return nil
}
