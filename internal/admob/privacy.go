package admob

import (
	"maps"
	"sync"

	"github.com/prebid/go-gdpr/consentconstants"
	"github.com/prebid/go-gdpr/vendorconsent"

	"github.com/echoface/admob-adapter/internal/mediation"
	"github.com/echoface/admob-adapter/internal/partnersdk"
	"github.com/echoface/admob-adapter/pkg/jsonx"
	"github.com/echoface/admob-adapter/pkg/logger"
)

const (
	// extras sent with every ad request
	npaKey = "npa"
	rdpKey = "rdp"

	// partner privacy store keys
	privacyRDPKey = "gad_rdp"

	googleVendorID = 755
)

// storage and access of information on the device
const storageAccessPurpose consentconstants.Purpose = 1

// privacyState holds the request extras derived from consent. It is shared by
// every ad of one Adapter.
type privacyState struct {
	sdk    partnersdk.SDK
	logger logger.Logger

	mu     sync.RWMutex
	extras map[string]string
}

func newPrivacyState(sdk partnersdk.SDK, log logger.Logger) *privacyState {
	return &privacyState{sdk: sdk, logger: log, extras: make(map[string]string)}
}

// sharedExtras returns a copy of the current extras.
func (p *privacyState) sharedExtras() map[string]string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.extras)
}

func (p *privacyState) setExtra(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if value == "" {
		delete(p.extras, key)
	} else {
		p.extras[key] = value
	}
	p.logger.Debug(logPrivacyExtras, "extras", jsonx.LzJSON(maps.Clone(p.extras)))
}

// apply re-derives partner privacy settings for modifiedKeys only.
func (p *privacyState) apply(consents map[mediation.ConsentKey]mediation.ConsentValue, modifiedKeys []mediation.ConsentKey) {
	for _, key := range modifiedKeys {
		value := consents[key]
		switch key {
		case mediation.ConsentKeyGDPRConsentGiven:
			// personalized ads unless consent was explicitly denied
			npa := ""
			if value == mediation.ConsentDenied {
				npa = "1"
			}
			p.setExtra(npaKey, npa)
			p.logger.Info(logPrivacyUpdated, "setting", npaKey, "value", npa)

		case mediation.ConsentKeyCCPAOptIn:
			if value == mediation.ConsentDenied {
				p.setExtra(rdpKey, "1")
				p.sdk.SetPrivacyValue(privacyRDPKey, true)
			} else {
				p.setExtra(rdpKey, "")
				p.sdk.SetPrivacyValue(privacyRDPKey, nil)
			}
			p.logger.Info(logPrivacyUpdated, "setting", privacyRDPKey, "value", value == mediation.ConsentDenied)

		case mediation.ConsentKeyTCF:
			p.applyTCF(string(value))

		case mediation.ConsentKeyUSP:
			if value == "" {
				p.sdk.SetPrivacyValue(string(key), nil)
			} else {
				p.sdk.SetPrivacyValue(string(key), string(value))
			}
			p.logger.Info(logPrivacyUpdated, "setting", string(key), "value", string(value))

		default:
			p.logger.Debug(logConsentIgnored, "key", string(key))
		}
	}
}

func (p *privacyState) applyTCF(tcString string) {
	key := string(mediation.ConsentKeyTCF)
	if tcString == "" {
		p.sdk.SetPrivacyValue(key, nil)
		p.logger.Info(logPrivacyUpdated, "setting", key, "value", nil)
		return
	}

	consent, err := vendorconsent.ParseString(tcString)
	if err != nil {
		p.sdk.SetPrivacyValue(key, nil)
		p.logger.Warn("invalid tcf consent string dropped", "error", err)
		return
	}

	p.sdk.SetPrivacyValue(key, tcString)
	p.logger.Info(logPrivacyUpdated,
		"setting", key,
		"tcf_version", consent.Version(),
		"vendor_list_version", consent.VendorListVersion(),
		"google_vendor_consent", consent.VendorConsent(googleVendorID),
		"storage_access_purpose", consent.PurposeAllowed(storageAccessPurpose))
}
