package entitlement

import (
	"fmt"

	"github.com/dmitrymomot/applytrack/pkg/plans"
	"github.com/dmitrymomot/applytrack/pkg/usage"
)

// featureLimitKeys maps every metered feature to the plan key holding its
// quota. It must cover usage.Features(); NewChecker enforces that.
var featureLimitKeys = map[usage.Feature]plans.LimitKey{
	usage.FeatureCoverLetter:    plans.LimitAICoverLetters,
	usage.FeatureLocationCheck:  plans.LimitLocationChecks,
	usage.FeatureCVImport:       plans.LimitCVImports,
	usage.FeatureJobSearch:      plans.LimitJobSearches,
	usage.FeatureLinkedInImport: plans.LimitLinkedInImport,
	usage.FeatureSaveJob:        plans.LimitSaveJobs,
	usage.FeatureAIChatMessage:  plans.LimitAIChat,
}

// LimitKeyFor returns the plan key for feature. Features without an alias
// are looked up under their own name.
func LimitKeyFor(feature usage.Feature) plans.LimitKey {
	if key, ok := featureLimitKeys[feature]; ok {
		return key
	}
	return plans.LimitKey(feature)
}

func checkAliases(features []usage.Feature) error {
	for _, f := range features {
		if _, ok := featureLimitKeys[f]; !ok {
			return fmt.Errorf("%w: %s", ErrUnmappedFeature, f)
		}
	}
	return nil
}
