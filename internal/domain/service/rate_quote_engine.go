package service

import (
	"fmt"
	"strings"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/pkg/money"
)

// Credit score bounds accepted by the quote path.
const (
	MinCreditScore = 300
	MaxCreditScore = 850
)

// ---------------------------------------------------------------------------
// RateQuoteEngine – risk-adjusted rate entry point
// ---------------------------------------------------------------------------

// RateQuoteEngine validates a quote request, runs the tier engine against a
// configuration snapshot and clamps the result.
type RateQuoteEngine struct {
	tiers *TierAdjustmentEngine
}

// NewRateQuoteEngine returns a new engine instance.
func NewRateQuoteEngine(tiers *TierAdjustmentEngine) *RateQuoteEngine {
	if tiers == nil {
		tiers = NewTierAdjustmentEngine()
	}
	return &RateQuoteEngine{tiers: tiers}
}

// Quote prices req against cfg. The caller passes one snapshot for the whole
// call so a concurrent reload cannot mix configuration versions.
func (e *RateQuoteEngine) Quote(cfg model.RateConfig, req model.RateQuoteRequest) model.RateQuoteResult {
	var errs, warnings []string

	if !req.LoanAmount.IsPositive() {
		errs = append(errs, "Loan amount must be greater than 0")
	}
	if !req.PropertyValue.IsPositive() {
		errs = append(errs, "Property value must be greater than 0")
	}
	if req.CreditScore < MinCreditScore || req.CreditScore > MaxCreditScore {
		errs = append(errs, fmt.Sprintf("Credit score must be between %d and %d", MinCreditScore, MaxCreditScore))
	}
	if req.DSCR != nil && req.DSCR.IsNegative() {
		errs = append(errs, "DSCR must not be negative")
	}

	product, ok := cfg.Product(req.ProductRef)
	if !ok {
		errs = append(errs, "Unknown product: "+displayRef(req.ProductRef))
	}
	propertyType, ok := cfg.PropertyType(req.PropertyTypeRef)
	if !ok {
		errs = append(errs, "Unknown property type: "+displayRef(req.PropertyTypeRef))
	}
	purpose, ok := cfg.LoanPurpose(req.LoanPurposeRef)
	if !ok {
		errs = append(errs, "Unknown loan purpose: "+displayRef(req.LoanPurposeRef))
	}

	if len(errs) > 0 {
		return model.InvalidRateQuote(errs, warnings)
	}

	// Tiers match the exact ratio; only the reported value is rounded.
	exactLTV := req.LoanAmount.Div(req.PropertyValue).Mul(money.Hundred)
	ltv := money.RoundCurrency(exactLTV)
	if exactLTV.GreaterThan(money.Hundred) {
		warnings = append(warnings, fmt.Sprintf("LTV %s%% exceeds 100%%", ltv.StringFixed(2)))
	}

	breakdown := e.tiers.Evaluate(cfg, TierInputs{
		CreditScore: req.CreditScore,
		LTV:         exactLTV,
		DSCR:        req.DSCR,
		LoanAmount:  req.LoanAmount,
	}, product.BaseRate, propertyType, purpose)
	breakdown.LTV.Input = ltv.String()

	for _, f := range breakdown.Factors() {
		if !f.Matched && f.Label != model.LabelNotProvided {
			warnings = append(warnings, fmt.Sprintf("No %s tier matched %s; applied %s", f.Factor, f.Input, f.Adjustment.String()))
		}
	}

	unclamped := product.BaseRate.Add(breakdown.Total)
	final := money.Clamp(unclamped,
		product.BaseRate.Add(cfg.MinAdjustment),
		product.BaseRate.Add(cfg.MaxAdjustment),
	)

	return model.RateQuoteResult{
		ConfigVersion:   cfg.Version,
		Product:         product.Code,
		BaseRate:        product.BaseRate,
		LTV:             ltv,
		Breakdown:       breakdown,
		TotalAdjustment: money.RoundRate(breakdown.Total),
		FinalRate:       money.RoundRate(final),
		Clamped:         !final.Equal(unclamped),
		IsValid:         true,
		Warnings:        nonNil(warnings),
		Errors:          []string{},
	}
}

func displayRef(ref string) string {
	if strings.TrimSpace(ref) == "" {
		return "(none)"
	}
	return ref
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
