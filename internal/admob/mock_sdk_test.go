package admob

import (
	"fmt"
	"sync"

	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk"
	"github.com/echoface/admob-adapter/pkg/logger"
)

type mockLoad[T any] struct {
	adUnitID   string
	request    *partnersdk.Request
	completion func(T, error)
}

// MockSDK records every call and keeps completions so tests decide when and
// how the partner answers.
type MockSDK struct {
	mu sync.Mutex

	version          string
	startCompletions []func(partnersdk.InitializationStatus)
	disableCalls     int
	childDirected    []bool
	testDevices      [][]string
	privacy          map[string]any

	interstitialLoads         []mockLoad[partnersdk.FullScreenAd]
	rewardedLoads             []mockLoad[partnersdk.RewardedAd]
	rewardedInterstitialLoads []mockLoad[partnersdk.RewardedAd]
	banners                   []*MockBannerView
}

func NewMockSDK() *MockSDK {
	return &MockSDK{version: "11.2.0", privacy: make(map[string]any)}
}

func (m *MockSDK) Version() string { return m.version }

func (m *MockSDK) DisableMediationInitialization() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disableCalls++
}

func (m *MockSDK) Start(completion func(partnersdk.InitializationStatus)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCompletions = append(m.startCompletions, completion)
}

func (m *MockSDK) SetChildDirectedTreatment(childDirected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.childDirected = append(m.childDirected, childDirected)
}

func (m *MockSDK) SetTestDeviceIdentifiers(ids []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.testDevices = append(m.testDevices, ids)
}

func (m *MockSDK) SetPrivacyValue(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == nil {
		delete(m.privacy, key)
		return
	}
	m.privacy[key] = value
}

func (m *MockSDK) LoadInterstitial(adUnitID string, request *partnersdk.Request, completion func(partnersdk.FullScreenAd, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interstitialLoads = append(m.interstitialLoads, mockLoad[partnersdk.FullScreenAd]{adUnitID, request, completion})
}

func (m *MockSDK) LoadRewarded(adUnitID string, request *partnersdk.Request, completion func(partnersdk.RewardedAd, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewardedLoads = append(m.rewardedLoads, mockLoad[partnersdk.RewardedAd]{adUnitID, request, completion})
}

func (m *MockSDK) LoadRewardedInterstitial(adUnitID string, request *partnersdk.Request, completion func(partnersdk.RewardedAd, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewardedInterstitialLoads = append(m.rewardedInterstitialLoads, mockLoad[partnersdk.RewardedAd]{adUnitID, request, completion})
}

func (m *MockSDK) NewBannerView(size partnersdk.AdSize) partnersdk.BannerView {
	m.mu.Lock()
	defer m.mu.Unlock()
	view := &MockBannerView{size: size}
	m.banners = append(m.banners, view)
	return view
}

func (m *MockSDK) startCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.startCompletions)
}

// completeStart answers the i-th Start call.
func (m *MockSDK) completeStart(i int, state partnersdk.AdapterState) {
	m.mu.Lock()
	completion := m.startCompletions[i]
	m.mu.Unlock()
	completion(partnersdk.InitializationStatus{
		AdapterStatuses: map[string]partnersdk.AdapterStatus{
			partnersdk.MobileAdsClassName: {State: state},
		},
	})
}

func (m *MockSDK) bannerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.banners)
}

type MockBannerView struct {
	size     partnersdk.AdSize
	adUnitID string
	autoload bool
	root     any
	delegate partnersdk.BannerViewDelegate
	requests []*partnersdk.Request
	width    float64
	height   float64
	removed  bool
}

func (v *MockBannerView) SetAdUnitID(adUnitID string) { v.adUnitID = adUnitID }
func (v *MockBannerView) SetAutoloadEnabled(enabled bool) { v.autoload = enabled }
func (v *MockBannerView) SetRootViewController(rootViewController any) { v.root = rootViewController }
func (v *MockBannerView) SetDelegate(delegate partnersdk.BannerViewDelegate) { v.delegate = delegate }
func (v *MockBannerView) Load(request *partnersdk.Request) { v.requests = append(v.requests, request) }
func (v *MockBannerView) AdSize() partnersdk.AdSize { return v.size }
func (v *MockBannerView) IntrinsicContentSize() (float64, float64) { return v.width, v.height }
func (v *MockBannerView) RemoveFromSuperview() { v.removed = true }

type MockFullScreenAd struct {
	delegate partnersdk.FullScreenContentDelegate
	presents []any
}

func (a *MockFullScreenAd) SetFullScreenContentDelegate(delegate partnersdk.FullScreenContentDelegate) {
	a.delegate = delegate
}

func (a *MockFullScreenAd) Present(rootViewController any) {
	a.presents = append(a.presents, rootViewController)
}

type MockRewardedAd struct {
	MockFullScreenAd
	reward   partnersdk.Reward
	onReward func()
}

func (a *MockRewardedAd) AdReward() partnersdk.Reward { return a.reward }

func (a *MockRewardedAd) Present(rootViewController any, userDidEarnReward func()) {
	a.presents = append(a.presents, rootViewController)
	a.onReward = userDidEarnReward
}

// MockDelegate records mediation delegate events.
type MockDelegate struct {
	mu      sync.Mutex
	events  []string
	details []mediation.PartnerDetails
}

func (d *MockDelegate) record(event string, details mediation.PartnerDetails) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	d.details = append(d.details, details)
}

func (d *MockDelegate) Events() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.events...)
}

func (d *MockDelegate) DidTrackImpression(_ mediation.PartnerAd, details mediation.PartnerDetails) {
	d.record("impression", details)
}

func (d *MockDelegate) DidClick(_ mediation.PartnerAd, details mediation.PartnerDetails) {
	d.record("click", details)
}

func (d *MockDelegate) DidReward(_ mediation.PartnerAd, details mediation.PartnerDetails) {
	d.record("reward", details)
}

func (d *MockDelegate) DidDismiss(_ mediation.PartnerAd, details mediation.PartnerDetails, _ error) {
	d.record("dismiss", details)
}

func (d *MockDelegate) DidExpire(_ mediation.PartnerAd, details mediation.PartnerDetails) {
	d.record("expire", details)
}

// loadRecorder counts load completions.
type loadRecorder struct {
	mu      sync.Mutex
	calls   int
	details mediation.PartnerDetails
	err     error
}

func (r *loadRecorder) complete(details mediation.PartnerDetails, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.details, r.err = details, err
}

func (r *loadRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type showRecorder struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *showRecorder) complete(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.err = err
}

type logEntry struct {
	msg    string
	fields map[string]string
}

// recordingLogger keeps every entry, formatted with %v, in a sink shared by
// its children.
type recordingLogger struct {
	sink *logSink
	base []interface{}
}

type logSink struct {
	mu      sync.Mutex
	entries []logEntry
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{sink: &logSink{}}
}

func (l *recordingLogger) record(msg string, keysAndValues []interface{}) {
	kv := append(append([]interface{}{}, l.base...), keysAndValues...)
	fields := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = fmt.Sprint(kv[i+1])
	}
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, logEntry{msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, kv ...interface{}) { l.record(msg, kv) }
func (l *recordingLogger) Info(msg string, kv ...interface{})  { l.record(msg, kv) }
func (l *recordingLogger) Warn(msg string, kv ...interface{})  { l.record(msg, kv) }
func (l *recordingLogger) Error(msg string, kv ...interface{}) { l.record(msg, kv) }
func (l *recordingLogger) Fatal(msg string, kv ...interface{}) { l.record(msg, kv) }

func (l *recordingLogger) With(kv ...interface{}) logger.Logger {
	return &recordingLogger{sink: l.sink, base: append(append([]interface{}{}, l.base...), kv...)}
}

// last returns the fields of the latest entry with msg.
func (l *recordingLogger) last(msg string) (map[string]string, bool) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	for i := len(l.sink.entries) - 1; i >= 0; i-- {
		if l.sink.entries[i].msg == msg {
			return l.sink.entries[i].fields, true
		}
	}
	return nil, false
}
