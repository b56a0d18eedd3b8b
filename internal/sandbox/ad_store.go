package sandbox

import (
	"sync"

	"github.com/echoface/admob-adapter/internal/admob"
	"github.com/echoface/admob-adapter/internal/mediation"
)

// AdStatus is the host-side view of an ad's progress.
type AdStatus string

const (
	AdStatusLoading     AdStatus = "loading"
	AdStatusLoaded      AdStatus = "loaded"
	AdStatusLoadFailed  AdStatus = "load_failed"
	AdStatusShowing     AdStatus = "showing"
	AdStatusShown       AdStatus = "shown"
	AdStatusShowFailed  AdStatus = "show_failed"
	AdStatusInvalidated AdStatus = "invalidated"
)

// adEntry 沙箱持有的广告实例
type adEntry struct {
	id       string
	request  mediation.AdLoadRequest
	ad       mediation.PartnerAd
	journal  *Journal
	delegate mediation.DelegateRef

	loaded chan struct{}
	shown  chan struct{}

	mu          sync.Mutex
	status      AdStatus
	loadDetails mediation.PartnerDetails
	err         error
}

func newAdEntry(id string, request mediation.AdLoadRequest) *adEntry {
	return &adEntry{
		id:      id,
		request: request,
		journal: &Journal{},
		loaded:  make(chan struct{}),
		status:  AdStatusLoading,
	}
}

func (e *adEntry) loadCompleted(details mediation.PartnerDetails, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != AdStatusLoading {
		return
	}
	e.loadDetails, e.err = details, err
	e.status = AdStatusLoaded
	if err != nil {
		e.status = AdStatusLoadFailed
	}
	close(e.loaded)
}

// beginShow arms the show channel; false when the ad cannot be shown now.
func (e *adEntry) beginShow() (<-chan struct{}, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != AdStatusLoaded {
		return nil, false
	}
	e.status = AdStatusShowing
	e.shown = make(chan struct{})
	return e.shown, true
}

func (e *adEntry) showCompleted(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != AdStatusShowing {
		return
	}
	e.err = err
	e.status = AdStatusShown
	if err != nil {
		e.status = AdStatusShowFailed
	}
	close(e.shown)
}

func (e *adEntry) markInvalidated() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = AdStatusInvalidated
}

// AdView is the JSON rendering of an ad entry.
type AdView struct {
	ID                 string                   `json:"id"`
	Format             mediation.AdFormat       `json:"format"`
	MediationPlacement string                   `json:"mediation_placement"`
	PartnerPlacement   string                   `json:"partner_placement"`
	Identifier         string                   `json:"identifier"`
	LoadID             string                   `json:"load_id"`
	Status             AdStatus                 `json:"status"`
	AdapterState       string                   `json:"adapter_state,omitempty"`
	LoadDetails        mediation.PartnerDetails `json:"load_details,omitempty"`
	BannerSize         *mediation.BannerSize    `json:"banner_size,omitempty"`
	Error              string                   `json:"error,omitempty"`
	ErrorCode          string                   `json:"error_code,omitempty"`
	Events             []JournalEvent           `json:"events"`
}

func (e *adEntry) view() AdView {
	e.mu.Lock()
	v := AdView{
		ID:                 e.id,
		Format:             e.request.Format,
		MediationPlacement: e.request.MediationPlacement,
		PartnerPlacement:   e.request.PartnerPlacement,
		Identifier:         e.request.Identifier,
		LoadID:             e.request.LoadID,
		Status:             e.status,
		LoadDetails:        e.loadDetails,
	}
	err := e.err
	e.mu.Unlock()

	if err != nil {
		v.Error = err.Error()
		if code, ok := mediation.CodeOf(err); ok {
			v.ErrorCode = code.String()
		}
	}
	if stated, ok := e.ad.(interface{ State() admob.AdState }); ok {
		v.AdapterState = stated.State().String()
	}
	if banner, ok := e.ad.(mediation.PartnerBannerAd); ok {
		if size, known := banner.Size(); known {
			v.BannerSize = &size
		}
	}
	v.Events = e.journal.Events()
	return v
}

// AdStore indexes live ads by sandbox id.
type AdStore struct {
	mu  sync.RWMutex
	ads map[string]*adEntry
}

func NewAdStore() *AdStore {
	return &AdStore{ads: make(map[string]*adEntry)}
}

func (s *AdStore) put(e *adEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ads[e.id] = e
}

func (s *AdStore) get(id string) (*adEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.ads[id]
	return e, ok
}

func (s *AdStore) remove(id string) (*adEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.ads[id]
	delete(s.ads, id)
	return e, ok
}

// drain removes and returns every entry.
func (s *AdStore) drain() []*adEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*adEntry, 0, len(s.ads))
	for id, e := range s.ads {
		out = append(out, e)
		delete(s.ads, id)
	}
	return out
}

func (s *AdStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ads)
}
