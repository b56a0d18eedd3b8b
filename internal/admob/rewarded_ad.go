package admob

import (
	"strconv"

	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk"
)

const (
	DetailRewardType   = "reward_type"
	DetailRewardAmount = "reward_amount"
)

// rewardedFullscreenAd backs both rewarded formats; only the partner load
// entry point differs.
type rewardedFullscreenAd struct {
	*fullscreenAd

	load func(adUnitID string, request *partnersdk.Request, completion func(partnersdk.RewardedAd, error))
}

func (r *rewardedFullscreenAd) Load(_ mediation.ViewController, completion mediation.LoadCompletion) {
	if err := r.beginLoad(completion); err != nil {
		r.logger.Error(logLoadFailed, "error", err)
		completion(nil, err)
		return
	}
	r.load(r.request.PartnerPlacement, r.buildRequest(), func(ad partnersdk.RewardedAd, err error) {
		var handle partnersdk.FullScreenPresentingAd
		if ad != nil {
			handle = ad
		}
		r.loaded(handle, err)
	})
}

func (r *rewardedFullscreenAd) Show(viewController mediation.ViewController, completion mediation.ShowCompletion) {
	r.show(viewController, completion, func(handle partnersdk.FullScreenPresentingAd) {
		ad := handle.(partnersdk.RewardedAd)
		ad.Present(viewController, func() { r.didReward(ad.AdReward()) })
	})
}

func (r *rewardedFullscreenAd) didReward(reward partnersdk.Reward) {
	r.logger.Debug(logDidReward, "reward_type", reward.Type, "reward_amount", reward.Amount)
	if r.invalidated() {
		return
	}
	details := mediation.PartnerDetails{}
	if reward.Type != "" {
		details[DetailRewardType] = reward.Type
	}
	if reward.Amount > 0 {
		details[DetailRewardAmount] = strconv.Itoa(reward.Amount)
	}
	r.notify("reward", func(d mediation.PartnerAdDelegate) {
		d.DidReward(r.self, details)
	})
}

// RewardedAd is a fullscreen rewarded ad.
type RewardedAd struct {
	*rewardedFullscreenAd
}

var _ mediation.PartnerFullscreenAd = (*RewardedAd)(nil)

func newRewardedAd(adapter *Adapter, request mediation.AdLoadRequest, delegate mediation.DelegateRef) *RewardedAd {
	ad := &RewardedAd{&rewardedFullscreenAd{
		fullscreenAd: newFullscreenAd(adapter, request, delegate),
		load:         adapter.sdk.LoadRewarded,
	}}
	ad.self = ad
	return ad
}

// RewardedInterstitialAd is a rewarded ad shown at natural transitions,
// without an opt-in prompt.
type RewardedInterstitialAd struct {
	*rewardedFullscreenAd
}

var _ mediation.PartnerFullscreenAd = (*RewardedInterstitialAd)(nil)

func newRewardedInterstitialAd(adapter *Adapter, request mediation.AdLoadRequest, delegate mediation.DelegateRef) *RewardedInterstitialAd {
	ad := &RewardedInterstitialAd{&rewardedFullscreenAd{
		fullscreenAd: newFullscreenAd(adapter, request, delegate),
		load:         adapter.sdk.LoadRewardedInterstitial,
	}}
	ad.self = ad
	return ad
}
