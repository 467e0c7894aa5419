package main

import (
	"github.com/dmitrymomot/applytrack/pkg/plans"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"applytrack"`

	// PaymentProcessor is "stripe" or "paddle".
	PaymentProcessor string `env:"PAYMENT_PROCESSOR" envDefault:"stripe"`
	MonthlyPriceRef  string `env:"PRICE_MONTHLY"`
	AnnualPriceRef   string `env:"PRICE_ANNUAL"`
	// PlansFile overrides the built-in catalog with a YAML document.
	PlansFile string `env:"PLANS_FILE"`
	// ProPlan is the catalog plan granted to pro users.
	ProPlan plans.PlanID `env:"PRO_PLAN" envDefault:"monthly"`

	// UsageBackend is "postgres" or "mongo".
	UsageBackend string `env:"USAGE_BACKEND" envDefault:"postgres"`
}
