package admob

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk"
	"github.com/echoface/admob-adapter/pkg/concurrent"
)

type fakeViewController struct{ name string }

var testVC = &fakeViewController{name: "root"}

type adFixture struct {
	adapter  *Adapter
	sdk      *MockSDK
	registry *mediation.DelegateRegistry
	delegate *MockDelegate
	ref      mediation.DelegateRef
}

func newAdFixture(t *testing.T, opts ...Option) *adFixture {
	t.Helper()
	adapter, sdk := newTestAdapter(t, opts...)
	registry := mediation.NewDelegateRegistry()
	delegate := &MockDelegate{}
	return &adFixture{
		adapter:  adapter,
		sdk:      sdk,
		registry: registry,
		delegate: delegate,
		ref:      registry.Register(delegate),
	}
}

func bannerRequest(size *mediation.BannerSize) mediation.AdLoadRequest {
	return mediation.AdLoadRequest{
		PartnerID:        PartnerID,
		PartnerPlacement: "banner-unit",
		Format:           mediation.AdFormatBanner,
		BannerSize:       size,
		Identifier:       "req-1",
		LoadID:           "load-1",
	}
}

func (f *adFixture) banner(t *testing.T, req mediation.AdLoadRequest) *BannerAd {
	t.Helper()
	ad, err := f.adapter.MakeBannerAd(req, f.ref)
	require.NoError(t, err)
	return ad.(*BannerAd)
}

func (f *adFixture) fullscreen(t *testing.T, format mediation.AdFormat, settings map[string]any) mediation.PartnerFullscreenAd {
	t.Helper()
	ad, err := f.adapter.MakeFullscreenAd(mediation.AdLoadRequest{
		PartnerID:        PartnerID,
		PartnerPlacement: "fullscreen-unit",
		Format:           format,
		PartnerSettings:  settings,
		Identifier:       "req-2",
		LoadID:           "load-2",
	}, f.ref)
	require.NoError(t, err)
	return ad
}

func assertCode(t *testing.T, want mediation.ErrorCode, err error) {
	t.Helper()
	code, ok := mediation.CodeOf(err)
	require.True(t, ok, "not a mediation error: %v", err)
	assert.Equal(t, want, code)
}

func TestBannerAd_LoadWithoutViewControllerNeverTouchesPartner(t *testing.T) {
	f := newAdFixture(t)
	ad := f.banner(t, bannerRequest(&mediation.StandardBannerSize))

	rec := &loadRecorder{}
	ad.Load(nil, rec.complete)

	require.Equal(t, 1, rec.count())
	assertCode(t, mediation.LoadFailureViewControllerNotFound, rec.err)
	assert.Equal(t, 0, f.sdk.bannerCount())
	assert.Equal(t, AdStateLoadFailed, ad.State())
}

func TestBannerAd_InvalidFixedSizeFailsBeforePartner(t *testing.T) {
	f := newAdFixture(t)
	for _, size := range []*mediation.BannerSize{
		nil,
		{Size: mediation.Size{Width: 100, Height: 40}, Type: mediation.BannerSizeFixed},
		{Size: mediation.Size{Width: 0, Height: 50}, Type: mediation.BannerSizeAdaptive},
	} {
		ad := f.banner(t, bannerRequest(size))
		rec := &loadRecorder{}
		ad.Load(testVC, rec.complete)
		require.Equal(t, 1, rec.count())
		assertCode(t, mediation.LoadFailureInvalidBannerSize, rec.err)
	}
	assert.Equal(t, 0, f.sdk.bannerCount())
}

func TestFixedBannerSize_Buckets(t *testing.T) {
	cases := []struct {
		requested mediation.Size
		want      partnersdk.AdSize
		ok        bool
	}{
		{mediation.Size{Width: 320, Height: 50}, partnersdk.AdSizeBanner, true},
		{mediation.Size{Width: 300, Height: 250}, partnersdk.AdSizeMediumRectangle, true},
		{mediation.Size{Width: 728, Height: 90}, partnersdk.AdSizeLeaderboard, true},
		{mediation.Size{Width: 400, Height: 300}, partnersdk.AdSizeMediumRectangle, true},
		{mediation.Size{Width: 1024, Height: 100}, partnersdk.AdSizeLeaderboard, true},
		{mediation.Size{Width: 360, Height: 60}, partnersdk.AdSizeBanner, true},
		// loose slots prefer the leaderboard, then the medium rectangle
		{mediation.Size{Width: 728, Height: 250}, partnersdk.AdSizeLeaderboard, true},
		{mediation.Size{Width: 320, Height: 250}, partnersdk.AdSizeMediumRectangle, true},
		{mediation.Size{Width: 800, Height: 300}, partnersdk.AdSizeLeaderboard, true},
		{mediation.Size{Width: 299, Height: 250}, partnersdk.AdSizeInvalid, false},
		{mediation.Size{Width: 319, Height: 50}, partnersdk.AdSizeInvalid, false},
	}
	for _, c := range cases {
		_, got, ok := fixedBannerSize(c.requested)
		assert.Equal(t, c.ok, ok, c.requested.String())
		assert.Equal(t, c.want, got, c.requested.String())
	}
}

func TestBannerAd_LoadSucceedsOnce(t *testing.T) {
	f := newAdFixture(t)
	ad := f.banner(t, bannerRequest(&mediation.StandardBannerSize))

	rec := &loadRecorder{}
	ad.Load(testVC, rec.complete)
	require.Equal(t, 1, f.sdk.bannerCount())
	assert.Equal(t, 0, rec.count())

	view := f.sdk.banners[0]
	assert.Equal(t, "banner-unit", view.adUnitID)
	assert.False(t, view.autoload)
	assert.Same(t, testVC, view.root)
	assert.Equal(t, partnersdk.AdSizeBanner, view.size)
	require.Len(t, view.requests, 1)
	assert.Equal(t, "Helium", view.requests[0].RequestAgent)
	assert.Nil(t, ad.View())
	_, known := ad.Size()
	assert.False(t, known, "size is unknown until the partner answers")

	view.delegate.BannerViewDidReceiveAd(view)
	view.delegate.BannerViewDidReceiveAd(view)
	view.delegate.BannerViewDidFailToReceiveAd(view, partnersdk.NewLoadError(partnersdk.ErrorCodeNoFill, ""))

	require.Equal(t, 1, rec.count())
	assert.NoError(t, rec.err)
	assert.Empty(t, rec.details)
	assert.Equal(t, AdStateLoaded, ad.State())
	assert.Same(t, view, ad.View())
	size, ok := ad.Size()
	assert.True(t, ok)
	assert.Equal(t, mediation.StandardBannerSize, size)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.adapter.metrics.dropped.WithLabelValues("banner", "load_result")))
}

func TestBannerAd_AdaptiveReportsRenderedSize(t *testing.T) {
	f := newAdFixture(t)
	req := bannerRequest(ptr(mediation.AdaptiveBannerSize(360, 0)))
	req.Format = mediation.AdFormatAdaptiveBanner
	ad := f.banner(t, req)

	rec := &loadRecorder{}
	ad.Load(testVC, rec.complete)
	view := f.sdk.banners[0]
	assert.True(t, view.size.Adaptive)
	assert.Equal(t, 360.0, view.size.Width)

	_, known := ad.Size()
	assert.False(t, known)

	view.width, view.height = 360, 56
	view.delegate.BannerViewDidReceiveAd(view)

	require.Equal(t, 1, rec.count())
	assert.Equal(t, mediation.PartnerDetails{DetailBannerWidth: "360", DetailBannerHeight: "56"}, rec.details)
	size, known := ad.Size()
	assert.True(t, known)
	assert.Equal(t, mediation.AdaptiveBannerSize(360, 56), size)
}

func TestBannerAd_LoadFailureMapped(t *testing.T) {
	f := newAdFixture(t)
	ad := f.banner(t, bannerRequest(&mediation.MediumBannerSize))

	rec := &loadRecorder{}
	ad.Load(testVC, rec.complete)
	view := f.sdk.banners[0]
	view.delegate.BannerViewDidFailToReceiveAd(view, partnersdk.NewLoadError(partnersdk.ErrorCodeNoFill, "no fill"))
	view.delegate.BannerViewDidReceiveAd(view)

	require.Equal(t, 1, rec.count())
	assertCode(t, mediation.LoadFailureNoFill, rec.err)
	assert.Equal(t, AdStateLoadFailed, ad.State())
	_, known := ad.Size()
	assert.False(t, known)
	assert.Nil(t, ad.View())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.adapter.metrics.loads.WithLabelValues("banner", "load_failure_no_fill")))
}

func TestBannerAd_EventsDroppedAfterDelegateReleased(t *testing.T) {
	f := newAdFixture(t)
	ad := f.banner(t, bannerRequest(&mediation.StandardBannerSize))
	ad.Load(testVC, func(mediation.PartnerDetails, error) {})
	view := f.sdk.banners[0]
	view.delegate.BannerViewDidReceiveAd(view)

	view.delegate.BannerViewDidRecordImpression(view)
	view.delegate.BannerViewDidRecordClick(view)
	assert.Equal(t, []string{"impression", "click"}, f.delegate.Events())

	f.registry.Release(f.ref)
	view.delegate.BannerViewDidRecordClick(view)
	assert.Equal(t, []string{"impression", "click"}, f.delegate.Events())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.adapter.metrics.dropped.WithLabelValues("banner", "delegate_click")))
}

func TestBannerAd_InvalidateIsIdempotent(t *testing.T) {
	f := newAdFixture(t)
	ad := f.banner(t, bannerRequest(&mediation.StandardBannerSize))

	rec := &loadRecorder{}
	ad.Load(testVC, rec.complete)
	view := f.sdk.banners[0]

	require.NoError(t, ad.Invalidate())
	require.NoError(t, ad.Invalidate())
	assert.True(t, view.removed)
	assert.Nil(t, view.delegate)
	assert.Equal(t, AdStateInvalidated, ad.State())

	// a late partner answer never reaches the host
	ad.BannerViewDidReceiveAd(view)
	assert.Equal(t, 0, rec.count())
	assert.Nil(t, ad.View())
}

func TestBannerAd_UsesMainQueue(t *testing.T) {
	queue := concurrent.NewMainQueue()
	defer queue.Close()
	f := newAdFixture(t, WithMainQueue(queue))

	block := make(chan struct{})
	queue.Async(func() { <-block })

	ad := f.banner(t, bannerRequest(&mediation.StandardBannerSize))
	ad.Load(testVC, func(mediation.PartnerDetails, error) {})
	assert.Equal(t, 0, f.sdk.bannerCount())

	close(block)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, queue.Flush(ctx))
	assert.Equal(t, 1, f.sdk.bannerCount())
}

func TestAd_SecondLoadIsAborted(t *testing.T) {
	f := newAdFixture(t)
	ad := f.fullscreen(t, mediation.AdFormatInterstitial, nil)

	first, second := &loadRecorder{}, &loadRecorder{}
	ad.Load(nil, first.complete)
	ad.Load(nil, second.complete)

	require.Equal(t, 1, second.count())
	assertCode(t, mediation.LoadFailureAborted, second.err)
	assert.Len(t, f.sdk.interstitialLoads, 1)

	f.sdk.interstitialLoads[0].completion(&MockFullScreenAd{}, nil)
	assert.Equal(t, 1, first.count())
	assert.NoError(t, first.err)
}

func TestInterstitialAd_Lifecycle(t *testing.T) {
	f := newAdFixture(t)
	ad := f.fullscreen(t, mediation.AdFormatInterstitial, nil)

	loaded := &loadRecorder{}
	ad.Load(nil, loaded.complete)
	require.Len(t, f.sdk.interstitialLoads, 1)
	load := f.sdk.interstitialLoads[0]
	assert.Equal(t, "fullscreen-unit", load.adUnitID)
	assert.Equal(t, "Helium", load.request.RequestAgent)

	handle := &MockFullScreenAd{}
	load.completion(handle, nil)
	require.Equal(t, 1, loaded.count())
	require.NoError(t, loaded.err)
	require.NotNil(t, handle.delegate)

	shown := &showRecorder{}
	ad.Show(testVC, shown.complete)
	assert.Equal(t, []any{testVC}, handle.presents)
	assert.Equal(t, 0, shown.calls)

	handle.delegate.AdWillPresentFullScreenContent(handle)
	handle.delegate.AdDidFailToPresentFullScreenContent(handle, partnersdk.NewPresentationError(partnersdk.PresentationErrorCodeInternal, ""))
	assert.Equal(t, 1, shown.calls)
	assert.NoError(t, shown.err)

	handle.delegate.AdDidRecordImpression(handle)
	handle.delegate.AdDidRecordClick(handle)
	handle.delegate.AdDidDismissFullScreenContent(handle)
	assert.Equal(t, []string{"impression", "click", "dismiss"}, f.delegate.Events())
	assert.Equal(t, AdStateDismissed, ad.(*InterstitialAd).State())
}

func TestInterstitialAd_LoadErrors(t *testing.T) {
	cases := []struct {
		err  error
		want mediation.ErrorCode
	}{
		{partnersdk.NewLoadError(partnersdk.ErrorCodeTimeout, ""), mediation.LoadFailureTimeout},
		{partnersdk.NewLoadError(partnersdk.ErrorCodeOSVersionTooLow, ""), mediation.LoadFailureUnknown},
		{assert.AnError, mediation.LoadFailureUnknown},
	}
	for _, c := range cases {
		f := newAdFixture(t)
		ad := f.fullscreen(t, mediation.AdFormatInterstitial, nil)
		rec := &loadRecorder{}
		ad.Load(nil, rec.complete)
		f.sdk.interstitialLoads[0].completion(nil, c.err)

		require.Equal(t, 1, rec.count())
		assertCode(t, c.want, rec.err)
		assert.ErrorIs(t, rec.err, c.err)
	}
}

func TestFullscreenAd_ShowWithoutLoadFailsSynchronously(t *testing.T) {
	for _, format := range []mediation.AdFormat{mediation.AdFormatInterstitial, mediation.AdFormatRewarded, mediation.AdFormatRewardedInterstitial} {
		f := newAdFixture(t)
		ad := f.fullscreen(t, format, nil)
		shown := &showRecorder{}
		ad.Show(testVC, shown.complete)
		assert.Equal(t, 1, shown.calls, format)
		assertCode(t, mediation.ShowFailureAdNotReady, shown.err)
	}
}

func TestFullscreenAd_ShowRequiresViewController(t *testing.T) {
	f := newAdFixture(t)
	ad := f.fullscreen(t, mediation.AdFormatInterstitial, nil)
	ad.Load(nil, func(mediation.PartnerDetails, error) {})
	handle := &MockFullScreenAd{}
	f.sdk.interstitialLoads[0].completion(handle, nil)

	shown := &showRecorder{}
	ad.Show(nil, shown.complete)
	assert.Equal(t, 1, shown.calls)
	assertCode(t, mediation.ShowFailureViewControllerNotFound, shown.err)
	assert.Empty(t, handle.presents)

	// still showable with a view controller
	again := &showRecorder{}
	ad.Show(testVC, again.complete)
	assert.Len(t, handle.presents, 1)
}

func TestFullscreenAd_ShowFailureMapped(t *testing.T) {
	f := newAdFixture(t)
	ad := f.fullscreen(t, mediation.AdFormatInterstitial, nil)
	ad.Load(nil, func(mediation.PartnerDetails, error) {})
	handle := &MockFullScreenAd{}
	f.sdk.interstitialLoads[0].completion(handle, nil)

	shown := &showRecorder{}
	ad.Show(testVC, shown.complete)
	handle.delegate.AdDidFailToPresentFullScreenContent(handle,
		partnersdk.NewPresentationError(partnersdk.PresentationErrorCodeAdTooLarge, "too large"))
	handle.delegate.AdWillPresentFullScreenContent(handle)

	assert.Equal(t, 1, shown.calls)
	assertCode(t, mediation.ShowFailureUnsupportedAdSize, shown.err)
	assert.Equal(t, AdStateShowFailed, ad.(*InterstitialAd).State())

	// a failed show does not make the ad showable again
	second := &showRecorder{}
	ad.Show(testVC, second.complete)
	assertCode(t, mediation.ShowFailureAdNotReady, second.err)
}

func TestRewardedAd_RewardForwarded(t *testing.T) {
	f := newAdFixture(t)
	ad := f.fullscreen(t, mediation.AdFormatRewarded, nil)
	ad.Load(nil, func(mediation.PartnerDetails, error) {})
	require.Len(t, f.sdk.rewardedLoads, 1)

	handle := &MockRewardedAd{reward: partnersdk.Reward{Type: "coins", Amount: 10}}
	f.sdk.rewardedLoads[0].completion(handle, nil)

	ad.Show(testVC, func(error) {})
	require.NotNil(t, handle.onReward)
	handle.delegate.AdWillPresentFullScreenContent(handle)
	handle.onReward()

	assert.Equal(t, []string{"reward"}, f.delegate.Events())
	assert.Equal(t, mediation.PartnerDetails{DetailRewardType: "coins", DetailRewardAmount: "10"}, f.delegate.details[0])
}

func TestRewardedInterstitialAd_UsesOwnEntryPoint(t *testing.T) {
	f := newAdFixture(t)
	ad := f.fullscreen(t, mediation.AdFormatRewardedInterstitial, nil)
	rec := &loadRecorder{}
	ad.Load(nil, rec.complete)

	assert.Empty(t, f.sdk.rewardedLoads)
	require.Len(t, f.sdk.rewardedInterstitialLoads, 1)
	f.sdk.rewardedInterstitialLoads[0].completion(&MockRewardedAd{}, nil)
	assert.NoError(t, rec.err)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.adapter.metrics.loads.WithLabelValues("rewarded_interstitial", resultSuccess)))
}

func TestFullscreenAd_InvalidateDropsPendingLoad(t *testing.T) {
	f := newAdFixture(t)
	ad := f.fullscreen(t, mediation.AdFormatRewarded, nil)
	rec := &loadRecorder{}
	ad.Load(nil, rec.complete)

	require.NoError(t, ad.Invalidate())
	handle := &MockRewardedAd{}
	f.sdk.rewardedLoads[0].completion(handle, nil)

	assert.Equal(t, 0, rec.count())
	assert.Nil(t, handle.delegate)
	require.NoError(t, ad.Invalidate())
}

func TestFullscreenAd_InvalidateDetachesPartnerDelegate(t *testing.T) {
	f := newAdFixture(t)
	ad := f.fullscreen(t, mediation.AdFormatInterstitial, nil)
	ad.Load(nil, func(mediation.PartnerDetails, error) {})
	handle := &MockFullScreenAd{}
	f.sdk.interstitialLoads[0].completion(handle, nil)
	require.NotNil(t, handle.delegate)

	require.NoError(t, ad.Invalidate())
	assert.Nil(t, handle.delegate)

	shown := &showRecorder{}
	ad.Show(testVC, shown.complete)
	assertCode(t, mediation.ShowFailureAdNotReady, shown.err)
}

func TestBuildRequest_HybridParameters(t *testing.T) {
	f := newAdFixture(t)
	f.adapter.SetConsents(map[mediation.ConsentKey]mediation.ConsentValue{
		mediation.ConsentKeyGDPRConsentGiven: mediation.ConsentDenied,
	}, []mediation.ConsentKey{mediation.ConsentKeyGDPRConsentGiven})

	cases := []struct {
		settings map[string]any
		want     map[string]string
	}{
		{nil, map[string]string{"npa": "1"}},
		{map[string]any{"is_hybrid_setup": "true"}, map[string]string{"npa": "1"}},
		{map[string]any{"is_hybrid_setup": false}, map[string]string{"npa": "1"}},
		{map[string]any{"is_hybrid_setup": true}, map[string]string{"npa": "1", "is_hybrid_setup": "true", "placement_req_id": "req-2"}},
	}
	for i, c := range cases {
		ad := f.fullscreen(t, mediation.AdFormatInterstitial, c.settings)
		ad.Load(nil, func(mediation.PartnerDetails, error) {})
		assert.Equal(t, c.want, f.sdk.interstitialLoads[i].request.Extras)
	}
}

func TestLoadCompletion_ExactlyOnceUnderRace(t *testing.T) {
	f := newAdFixture(t)
	ad := f.fullscreen(t, mediation.AdFormatInterstitial, nil)
	rec := &loadRecorder{}
	ad.Load(nil, rec.complete)
	completion := f.sdk.interstitialLoads[0].completion

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				completion(&MockFullScreenAd{}, nil)
				return
			}
			completion(nil, partnersdk.NewLoadError(partnersdk.ErrorCodeNoFill, ""))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, rec.count())
}

func TestAd_LoadLogsPartnerSettings(t *testing.T) {
	log := newRecordingLogger()
	f := newAdFixture(t, WithLogger(log))
	ad := f.fullscreen(t, mediation.AdFormatInterstitial, map[string]any{"is_hybrid_setup": true})
	ad.Load(testVC, func(mediation.PartnerDetails, error) {})

	fields, ok := log.last(logLoadStarted)
	require.True(t, ok)
	assert.Equal(t, `{"is_hybrid_setup":true}`, fields["partner_settings"])
	assert.Equal(t, "load-2", fields["load_id"])
}

func ptr[T any](v T) *T { return &v }
