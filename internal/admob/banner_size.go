package admob

import (
	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk"
)

// fixedBannerBuckets are the fixed sizes the partner serves, in preference
// order: a slot that fits several buckets gets the first one.
var fixedBannerBuckets = []struct {
	size    mediation.BannerSize
	partner partnersdk.AdSize
}{
	{mediation.LeaderboardBannerSize, partnersdk.AdSizeLeaderboard},
	{mediation.MediumBannerSize, partnersdk.AdSizeMediumRectangle},
	{mediation.StandardBannerSize, partnersdk.AdSizeBanner},
}

// fixedBannerSize picks the first bucket that fits inside requested.
func fixedBannerSize(requested mediation.Size) (mediation.BannerSize, partnersdk.AdSize, bool) {
	for _, b := range fixedBannerBuckets {
		if b.size.Size.Width <= requested.Width && b.size.Size.Height <= requested.Height {
			return b.size, b.partner, true
		}
	}
	return mediation.BannerSize{}, partnersdk.AdSizeInvalid, false
}

// partnerBannerSize resolves the partner size for a banner request. The
// returned BannerSize is what the ad reports for fixed requests; adaptive
// requests report the rendered size after load instead.
func partnerBannerSize(req mediation.AdLoadRequest) (mediation.BannerSize, partnersdk.AdSize, error) {
	invalid := func(format string, args ...any) error {
		return mediation.NewError(mediation.LoadFailureInvalidBannerSize,
			mediation.WithPartner(PartnerID), mediation.WithMessage(format, args...))
	}

	if req.BannerSize == nil {
		return mediation.BannerSize{}, partnersdk.AdSizeInvalid, invalid("banner size missing")
	}

	requested := *req.BannerSize
	if requested.Type == mediation.BannerSizeAdaptive || req.Format == mediation.AdFormatAdaptiveBanner {
		if requested.Size.Width <= 0 {
			return mediation.BannerSize{}, partnersdk.AdSizeInvalid, invalid("adaptive width %g", requested.Size.Width)
		}
		adaptive := mediation.AdaptiveBannerSize(requested.Size.Width, requested.Size.Height)
		return adaptive, partnersdk.InlineAdaptiveBannerAdSize(requested.Size.Width, requested.Size.Height), nil
	}

	size, partner, ok := fixedBannerSize(requested.Size)
	if !ok {
		return mediation.BannerSize{}, partnersdk.AdSizeInvalid, invalid("no fixed size fits %s", requested.Size)
	}
	return size, partner, nil
}
