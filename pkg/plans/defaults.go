package plans

// DefaultPlans returns the shipped pricing table. Price references come from
// deployment configuration; an empty reference leaves the plan unsellable.
func DefaultPlans(monthlyPriceRef, annualPriceRef string) []Plan {
	return []Plan{
		{
			ID:          PlanFree,
			Name:        "Free",
			DisplayName: "Free Plan",
			Description: "Perfect for getting started",
			CTA:         "Start Free",
			Price: Price{
				Money:    Money{Amount: 0, Currency: "EUR"},
				Display:  "€0",
				Interval: IntervalMonth,
			},
			Features: []FeatureLimit{
				{Key: LimitAICoverLetters, Limit: 1, Display: "1 AI cover letter per month", Period: PeriodMonth},
				{Key: LimitLocationChecks, Limit: 1, Display: "1 location check per month", Period: PeriodMonth},
				{Key: LimitCVImports, Limit: 1, Display: "1 AI CV import", Period: PeriodLifetime},
				{Key: LimitJobSearches, Limit: 1, Display: "1 job search", Period: PeriodMonth},
				{Key: LimitLinkedInImport, Limit: Unlimited, Display: "LinkedIn job import"},
				{Key: LimitTrackApplications, Limit: Unlimited, Display: "Track unlimited applications"},
				{Key: LimitAIChat, Limit: 10, Display: "AI Chat (trial)", Period: PeriodLifetime},
			},
			Highlights: []string{
				"No credit card required",
				"Free forever",
				"Track unlimited applications",
			},
		},
		{
			ID:          PlanMonthly,
			Name:        "Pro",
			DisplayName: "Pro Monthly",
			Description: "Billed monthly, cancel anytime",
			CTA:         "Get Started",
			PriceRef:    monthlyPriceRef,
			Price: Price{
				Money:    Money{Amount: 300, Currency: "EUR"},
				Display:  "€3",
				Interval: IntervalMonth,
			},
			Features: proFeatures(),
		},
		{
			ID:          PlanAnnual,
			Name:        "Pro",
			DisplayName: "Pro Annual",
			Description: "Best value - Save €17/year!",
			CTA:         "Get Started",
			PriceRef:    annualPriceRef,
			Price: Price{
				Money:             Money{Amount: 1900, Currency: "EUR"},
				Display:           "€19",
				Interval:          IntervalYear,
				MonthlyEquivalent: "€1.58",
			},
			Savings:     &Savings{Amount: 1700, Percent: 47, Display: "Save 47%"},
			Badge:       "Best Value",
			Recommended: true,
			Features:    proFeatures(),
		},
	}
}

func proFeatures() []FeatureLimit {
	return []FeatureLimit{
		{Key: LimitAICoverLetters, Limit: Unlimited, Display: "Unlimited AI cover letters"},
		{Key: LimitLocationChecks, Limit: Unlimited, Display: "Unlimited location checks"},
		{Key: LimitCVImports, Limit: Unlimited, Display: "Unlimited AI CV imports"},
		{Key: LimitJobSearches, Limit: Unlimited, Display: "Job search access"},
		{Key: LimitLinkedInImport, Limit: Unlimited, Display: "LinkedIn job import"},
		{Key: LimitSaveJobs, Limit: Unlimited, Display: "Save unlimited jobs"},
		{Key: LimitAIChat, Limit: Unlimited, Display: "Unlimited AI Chat"},
		{Key: LimitPrioritySupport, Limit: Unlimited, Display: "Priority support"},
	}
}
