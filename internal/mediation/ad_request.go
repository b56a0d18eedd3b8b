package mediation

import "fmt"

// AdFormat identifies the kind of ad a load request asks for.
type AdFormat string

const (
	AdFormatBanner               AdFormat = "banner"
	AdFormatAdaptiveBanner       AdFormat = "adaptive_banner"
	AdFormatInterstitial         AdFormat = "interstitial"
	AdFormatRewarded             AdFormat = "rewarded"
	AdFormatRewardedInterstitial AdFormat = "rewarded_interstitial"
)

// IsBanner reports whether ads of this format are displayed inline.
func (f AdFormat) IsBanner() bool {
	return f == AdFormatBanner || f == AdFormatAdaptiveBanner
}

// Size is a width/height pair in points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// BannerSizeType distinguishes fixed IAB sizes from width-driven adaptive sizes.
type BannerSizeType string

const (
	BannerSizeFixed    BannerSizeType = "fixed"
	BannerSizeAdaptive BannerSizeType = "adaptive"
)

// BannerSize is the size requested for a banner. For adaptive banners Height is
// the maximum height; zero means unbounded.
type BannerSize struct {
	Size Size           `json:"size"`
	Type BannerSizeType `json:"type"`
}

var (
	StandardBannerSize    = BannerSize{Size: Size{Width: 320, Height: 50}, Type: BannerSizeFixed}
	MediumBannerSize      = BannerSize{Size: Size{Width: 300, Height: 250}, Type: BannerSizeFixed}
	LeaderboardBannerSize = BannerSize{Size: Size{Width: 728, Height: 90}, Type: BannerSizeFixed}
)

// AdaptiveBannerSize returns an adaptive size for the given width and max height.
func AdaptiveBannerSize(width, maxHeight float64) BannerSize {
	return BannerSize{Size: Size{Width: width, Height: maxHeight}, Type: BannerSizeAdaptive}
}

type (
	// AdLoadRequest describes a single load. It is created by the mediation
	// framework and treated as read-only by partner adapters.
	AdLoadRequest struct {
		PartnerID          string         `json:"partner_id"`
		MediationPlacement string         `json:"mediation_placement"`
		PartnerPlacement   string         `json:"partner_placement"`
		Format             AdFormat       `json:"format"`
		BannerSize         *BannerSize    `json:"banner_size,omitempty"`
		PartnerSettings    map[string]any `json:"partner_settings,omitempty"`
		Identifier         string         `json:"identifier"`
		LoadID             string         `json:"load_id"`
	}

	// PreBidRequest is passed to FetchBidderInformation ahead of an auction.
	PreBidRequest struct {
		MediationPlacement string   `json:"mediation_placement"`
		Format             AdFormat `json:"format"`
		LoadID             string   `json:"load_id"`
	}

	// PartnerConfiguration carries the data a partner adapter needs at set-up.
	PartnerConfiguration struct {
		Credentials    map[string]any              `json:"credentials" mapstructure:"credentials"`
		Consents       map[ConsentKey]ConsentValue `json:"consents" mapstructure:"consents"`
		IsUserUnderage bool                        `json:"is_user_underage" mapstructure:"is_user_underage"`
	}
)

// SettingBool reads a boolean partner setting. Missing keys and values of
// other types read as false.
func (r AdLoadRequest) SettingBool(key string) bool {
	v, ok := r.PartnerSettings[key].(bool)
	return ok && v
}
