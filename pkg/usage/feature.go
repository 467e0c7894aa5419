// Package usage records metered feature consumption as an append-only event
// ledger and answers quota questions by summing it.
package usage

// Feature is a metered action a user can perform.
type Feature string

const (
	FeatureCoverLetter    Feature = "cover_letter"
	FeatureLocationCheck  Feature = "location_check"
	FeatureCVImport       Feature = "cv_import"
	FeatureJobSearch      Feature = "job_search"
	FeatureLinkedInImport Feature = "linkedin_import"
	FeatureSaveJob        Feature = "save_job"
	FeatureAIChatMessage  Feature = "ai_chat_message"
)

var allFeatures = []Feature{
	FeatureCoverLetter,
	FeatureLocationCheck,
	FeatureCVImport,
	FeatureJobSearch,
	FeatureLinkedInImport,
	FeatureSaveJob,
	FeatureAIChatMessage,
}

// Features lists every metered feature.
func Features() []Feature {
	out := make([]Feature, len(allFeatures))
	copy(out, allFeatures)
	return out
}

// Valid reports whether f is a known feature.
func (f Feature) Valid() bool {
	for _, known := range allFeatures {
		if f == known {
			return true
		}
	}
	return false
}

func (f Feature) String() string { return string(f) }
