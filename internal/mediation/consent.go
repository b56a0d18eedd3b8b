package mediation

// ConsentKey names a privacy signal.
type ConsentKey string

// ConsentValue is the value of a privacy signal. Boolean-like keys use
// ConsentGranted / ConsentDenied; IAB string keys carry the raw string.
type ConsentValue string

const (
	ConsentKeyGDPRConsentGiven ConsentKey = "gdpr_consent_given"
	ConsentKeyCCPAOptIn        ConsentKey = "ccpa_opt_in"
	ConsentKeyTCF              ConsentKey = "IABTCF_TCString"
	ConsentKeyUSP              ConsentKey = "IABUSPrivacy_String"

	ConsentGranted ConsentValue = "granted"
	ConsentDenied  ConsentValue = "denied"
)

// AllConsentKeys lists every key a partner adapter is expected to understand.
func AllConsentKeys() []ConsentKey {
	return []ConsentKey{
		ConsentKeyGDPRConsentGiven,
		ConsentKeyCCPAOptIn,
		ConsentKeyTCF,
		ConsentKeyUSP,
	}
}
