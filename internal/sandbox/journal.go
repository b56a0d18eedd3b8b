package sandbox

import (
	"sync"
	"time"

	"github.com/echoface/admob-adapter/internal/mediation"
)

// JournalEvent is one delegate callback as seen by the host.
type JournalEvent struct {
	Name    string                   `json:"name"`
	Details mediation.PartnerDetails `json:"details,omitempty"`
	Error   string                   `json:"error,omitempty"`
	At      time.Time                `json:"at"`
}

// Journal is the delegate the sandbox registers for every ad. It only records.
type Journal struct {
	mu     sync.Mutex
	events []JournalEvent
}

var _ mediation.PartnerAdDelegate = (*Journal)(nil)

func (j *Journal) record(name string, details mediation.PartnerDetails, err error) {
	ev := JournalEvent{Name: name, Details: details, At: time.Now()}
	if err != nil {
		ev.Error = err.Error()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, ev)
}

// Events returns a copy of the recorded events in arrival order.
func (j *Journal) Events() []JournalEvent {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]JournalEvent(nil), j.events...)
}

func (j *Journal) DidTrackImpression(_ mediation.PartnerAd, details mediation.PartnerDetails) {
	j.record("impression", details, nil)
}

func (j *Journal) DidClick(_ mediation.PartnerAd, details mediation.PartnerDetails) {
	j.record("click", details, nil)
}

func (j *Journal) DidReward(_ mediation.PartnerAd, details mediation.PartnerDetails) {
	j.record("reward", details, nil)
}

func (j *Journal) DidDismiss(_ mediation.PartnerAd, details mediation.PartnerDetails, err error) {
	j.record("dismiss", details, err)
}

func (j *Journal) DidExpire(_ mediation.PartnerAd, details mediation.PartnerDetails) {
	j.record("expire", details, nil)
}
