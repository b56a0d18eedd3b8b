package simulated

import (
	"fmt"
	"strings"
	"time"
)

// Event is a partner-side event that can be triggered on live ads.
type Event string

const (
	EventImpression Event = "impression"
	EventClick      Event = "click"
	EventDismiss    Event = "dismiss"
	EventReward     Event = "reward"
)

// ParseEvent validates an event name.
func ParseEvent(s string) (Event, error) {
	switch e := Event(strings.ToLower(s)); e {
	case EventImpression, EventClick, EventDismiss, EventReward:
		return e, nil
	}
	return "", fmt.Errorf("unknown partner event %q", s)
}

// Scenario scripts how the simulated SDK answers for one placement.
type Scenario struct {
	// LatencyMS delays every load callback.
	LatencyMS int `mapstructure:"latency_ms" json:"latency_ms"`
	// LoadErrorCode fails loads with this partner load error code when set.
	LoadErrorCode *int `mapstructure:"load_error_code" json:"load_error_code,omitempty"`
	// PresentErrorCode fails presentation with this presentation error code when set.
	PresentErrorCode *int `mapstructure:"present_error_code" json:"present_error_code,omitempty"`
	// Hang never calls the load completion back.
	Hang bool `mapstructure:"hang" json:"hang"`
	// AutoImpression records an impression right after present / banner receive.
	AutoImpression bool `mapstructure:"auto_impression" json:"auto_impression"`
	// AutoReward grants the reward right after a rewarded ad presents.
	AutoReward   bool   `mapstructure:"auto_reward" json:"auto_reward"`
	RewardType   string `mapstructure:"reward_type" json:"reward_type"`
	RewardAmount int    `mapstructure:"reward_amount" json:"reward_amount"`
	// BannerHeight overrides the height an adaptive banner renders at.
	BannerHeight float64 `mapstructure:"banner_height" json:"banner_height"`
}

func (s Scenario) latency() time.Duration {
	return time.Duration(s.LatencyMS) * time.Millisecond
}

// Config configures the simulated SDK.
type Config struct {
	Version        string `mapstructure:"version" json:"version"`
	StartLatencyMS int    `mapstructure:"start_latency_ms" json:"start_latency_ms"`
	// StartNotReady reports the mobile ads class as not ready after Start.
	StartNotReady bool `mapstructure:"start_not_ready" json:"start_not_ready"`

	Default    Scenario            `mapstructure:"default" json:"default"`
	Placements map[string]Scenario `mapstructure:"placements" json:"placements"`
}

// DefaultVersion is reported when Config.Version is empty.
const DefaultVersion = "11.2.0"

// ScenarioFor returns the scenario of placement, falling back to Default.
// Placement lookup ignores case since config keys are lowercased by viper.
func (c Config) ScenarioFor(placement string) Scenario {
	if s, ok := c.Placements[placement]; ok {
		return s
	}
	if s, ok := c.Placements[strings.ToLower(placement)]; ok {
		return s
	}
	return c.Default
}
