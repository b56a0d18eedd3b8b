package partnersdk

import "fmt"

// AdSize is a partner banner size. Adaptive sizes fix the width and let the
// SDK pick a height up to MaxHeight (0 means the SDK default).
type AdSize struct {
	Width     float64
	Height    float64
	Adaptive  bool
	MaxHeight float64
}

var (
	AdSizeInvalid           = AdSize{}
	AdSizeBanner            = AdSize{Width: 320, Height: 50}
	AdSizeLeaderboard       = AdSize{Width: 728, Height: 90}
	AdSizeMediumRectangle   = AdSize{Width: 300, Height: 250}
	adaptiveDefaultMaxRatio = 0.15
)

// InlineAdaptiveBannerAdSize returns an adaptive size for width capped at maxHeight.
func InlineAdaptiveBannerAdSize(width, maxHeight float64) AdSize {
	return AdSize{Width: width, Adaptive: true, MaxHeight: maxHeight}
}

// IsValid reports whether the size can be requested.
func (s AdSize) IsValid() bool {
	if s.Adaptive {
		return s.Width > 0
	}
	return s.Width > 0 && s.Height > 0
}

// ResolvedHeight is the height an adaptive banner renders at when the SDK
// picks one itself.
func (s AdSize) ResolvedHeight() float64 {
	if !s.Adaptive {
		return s.Height
	}
	h := s.Width * adaptiveDefaultMaxRatio
	if h < 50 {
		h = 50
	}
	if s.MaxHeight > 0 && h > s.MaxHeight {
		h = s.MaxHeight
	}
	return h
}

func (s AdSize) String() string {
	if s.Adaptive {
		return fmt.Sprintf("adaptive(%g,max=%g)", s.Width, s.MaxHeight)
	}
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}
