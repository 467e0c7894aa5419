// Package plans holds the static catalog of subscription plans and the
// per-feature quotas they grant.
package plans

// PlanID identifies a catalog plan.
type PlanID string

const (
	PlanFree    PlanID = "free"
	PlanMonthly PlanID = "monthly"
	PlanAnnual  PlanID = "annual"
)

// LimitKey is the key a plan uses to express a quota. Metered features are
// mapped onto limit keys by the entitlement layer.
type LimitKey string

const (
	LimitAICoverLetters    LimitKey = "ai_cover_letters"
	LimitLocationChecks    LimitKey = "location_checks"
	LimitCVImports         LimitKey = "cv_imports"
	LimitJobSearches       LimitKey = "job_searches"
	LimitLinkedInImport    LimitKey = "linkedin_import"
	LimitTrackApplications LimitKey = "track_applications"
	LimitSaveJobs          LimitKey = "save_jobs"
	LimitAIChat            LimitKey = "ai_chat"
	LimitPrioritySupport   LimitKey = "priority_support"
)

// Unlimited marks a quota without an upper bound.
const Unlimited int64 = -1

// Period is the display period of a quota. Enforcement ignores it.
type Period string

const (
	PeriodNone     Period = ""
	PeriodMonth    Period = "month"
	PeriodLifetime Period = "lifetime"
)

// Interval is a billing cadence.
type Interval string

const (
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
)

// Money is an amount in minor units (cents).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}
