package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/pricing-service/internal/domain/model"
)

// Warning thresholds.
var (
	HighLTCThreshold  = decimal.RequireFromString("0.85")
	HighRateThreshold = decimal.RequireFromString("0.18")
)

// ValidationReport separates fatal errors from advisory warnings.
type ValidationReport struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the calculation may proceed.
func (r ValidationReport) OK() bool { return len(r.Errors) == 0 }

func (r *ValidationReport) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationReport) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// InputValidator checks LoanInputs before any calculator runs.
type InputValidator struct{}

// NewInputValidator returns a validator.
func NewInputValidator() *InputValidator {
	return &InputValidator{}
}

// Validate returns every error and warning for in, in a stable order.
func (v *InputValidator) Validate(in model.LoanInputs) ValidationReport {
	var r ValidationReport

	if !in.PurchasePrice.IsPositive() && !in.AsIsValue.IsPositive() {
		r.errorf("Purchase price or as-is value must be greater than 0")
	}
	if in.ProductType.SizesOffARV() && !in.AfterRepairValue.IsPositive() {
		r.errorf("After-repair value must be greater than 0 for %s loans", in.ProductType)
	}
	if !inUnitInterval(in.InterestRate) {
		r.errorf("Interest rate must be greater than 0 and at most 1")
	}
	switch {
	case in.TermMonths <= 0:
		r.errorf("Term must be at least 1 month")
	case in.TermMonths > model.MaxTermMonths:
		r.errorf("Term must not exceed %d months", model.MaxTermMonths)
	}

	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"Purchase price", in.PurchasePrice},
		{"After-repair value", in.AfterRepairValue},
		{"Rehab costs", in.RehabCosts},
		{"As-is value", in.AsIsValue},
		{"Current balance", in.CurrentBalance},
		{"Inspection fee", in.Fees.InspectionFee},
		{"Processing fee", in.Fees.ProcessingFee},
		{"Appraisal fee", in.Fees.AppraisalFee},
		{"Title insurance", in.Fees.TitleInsurance},
		{"Attorney fee", in.Fees.AttorneyFee},
		{"Origination fee rate", in.Fees.OriginationFeeRate},
		{"Extension fee rate", in.Fees.ExtensionFeeRate},
	} {
		if f.value.IsNegative() {
			r.errorf("%s must not be negative", f.name)
		}
	}

	if !inUnitInterval(in.LoanToCostRatio) {
		r.errorf("Loan-to-cost ratio must be greater than 0 and at most 1")
	}
	if !inUnitInterval(in.LoanToARVRatio) {
		r.errorf("Loan-to-ARV ratio must be greater than 0 and at most 1")
	}
	if in.Fees.OriginationFeeRate.GreaterThan(decimal.NewFromInt(1)) {
		r.errorf("Origination fee rate must be at most 1")
	}
	if in.Fees.ExtensionFeeRate.GreaterThan(decimal.NewFromInt(1)) {
		r.errorf("Extension fee rate must be at most 1")
	}
	if m := in.Fees.InterestReserveMonths; m < 0 || m > model.MaxInterestReserveMonths {
		r.errorf("Interest reserve months must be between 0 and %d", model.MaxInterestReserveMonths)
	}

	if in.LoanToCostRatio.GreaterThan(HighLTCThreshold) {
		r.warnf("Very high LTC: %s exceeds %s", in.LoanToCostRatio.StringFixed(4), HighLTCThreshold.StringFixed(2))
	}
	if in.InterestRate.GreaterThan(HighRateThreshold) {
		r.warnf("Very high rate: %s exceeds %s", in.InterestRate.StringFixed(4), HighRateThreshold.StringFixed(2))
	}

	return r
}

// inUnitInterval reports whether d is in (0, 1].
func inUnitInterval(d decimal.Decimal) bool {
	return d.IsPositive() && d.LessThanOrEqual(decimal.NewFromInt(1))
}
