package service

import (
	"github.com/bibbank/pricing-service/internal/domain/model"
)

// ---------------------------------------------------------------------------
// PricingEngine – loan-sizing entry point
// ---------------------------------------------------------------------------

// PricingEngine validates inputs, dispatches to the product calculator and
// aggregates totals. It holds no mutable state and is safe for concurrent use.
type PricingEngine struct {
	validator *InputValidator
}

// NewPricingEngine returns a new engine instance.
func NewPricingEngine(validator *InputValidator) *PricingEngine {
	if validator == nil {
		validator = NewInputValidator()
	}
	return &PricingEngine{validator: validator}
}

// Calculate prices in. Business failures are returned in result.Errors,
// never as a Go error. Funding and maturity dates must already be set on in
// for the output to be reproducible.
func (e *PricingEngine) Calculate(in model.LoanInputs) model.PricingResult {
	report := e.validator.Validate(in)
	if !report.OK() {
		return model.InvalidPricingResult(report.Errors, report.Warnings)
	}

	calc, err := calculatorFor(in.ProductType)
	if err != nil {
		return model.InvalidPricingResult([]string{err.Error()}, report.Warnings)
	}

	partial := calc.Calculate(in)
	result, totalsWarnings := AggregateTotals(partial, in.TermMonths)
	// Totals are derived from exact components; cents are applied once here.
	result = result.Rounded()

	warnings := make([]string, 0, len(report.Warnings)+len(partial.Warnings)+len(totalsWarnings))
	warnings = append(warnings, report.Warnings...)
	warnings = append(warnings, partial.Warnings...)
	warnings = append(warnings, totalsWarnings...)

	result.FundingDate = in.FundingDate
	result.MaturityDate = in.MaturityDate
	result.Warnings = warnings
	result.Errors = []string{}
	result.IsValid = true
	return result
}
