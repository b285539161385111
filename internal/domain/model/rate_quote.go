package model

import (
	"github.com/shopspring/decimal"
)

// Factor names used as breakdown keys.
const (
	FactorCreditScore  = "credit_score"
	FactorLTV          = "ltv"
	FactorDSCR         = "dscr"
	FactorLoanAmount   = "loan_amount"
	FactorPropertyType = "property_type"
	FactorLoanPurpose  = "loan_purpose"
	FactorTotal        = "total"
)

// Labels recorded when a factor has no matching tier.
const (
	LabelUnmatched   = "Unmatched"
	LabelHighRisk    = "High Risk"
	LabelNotProvided = "Not Provided"
)

// RateQuoteRequest is the input of the rate quote orchestrator. DSCR is
// optional; a nil value skips the DSCR factor entirely.
type RateQuoteRequest struct {
	DSCR            *decimal.Decimal `json:"dscr,omitempty"`
	ProductRef      string           `json:"product"`
	PropertyTypeRef string           `json:"property_type"`
	LoanPurposeRef  string           `json:"loan_purpose"`
	LoanAmount      decimal.Decimal  `json:"loan_amount"`
	PropertyValue   decimal.Decimal  `json:"property_value"`
	CreditScore     int              `json:"credit_score"`
}

// FactorAdjustment is one line of the audit breakdown.
type FactorAdjustment struct {
	Factor     string          `json:"factor"`
	Label      string          `json:"label"`
	Input      string          `json:"input,omitempty"`
	Adjustment decimal.Decimal `json:"adjustment"`
	Matched    bool            `json:"matched"`
}

// AdjustmentBreakdown holds one record per factor, in evaluation order.
type AdjustmentBreakdown struct {
	CreditScore  FactorAdjustment `json:"credit_score"`
	LTV          FactorAdjustment `json:"ltv"`
	DSCR         FactorAdjustment `json:"dscr"`
	LoanAmount   FactorAdjustment `json:"loan_amount"`
	PropertyType FactorAdjustment `json:"property_type"`
	LoanPurpose  FactorAdjustment `json:"loan_purpose"`
	Total        decimal.Decimal  `json:"total"`
}

// Factors returns the six factor records in evaluation order.
func (b AdjustmentBreakdown) Factors() []FactorAdjustment {
	return []FactorAdjustment{b.CreditScore, b.LTV, b.DSCR, b.LoanAmount, b.PropertyType, b.LoanPurpose}
}

// Sum adds the six factor contributions.
func (b AdjustmentBreakdown) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, f := range b.Factors() {
		total = total.Add(f.Adjustment)
	}
	return total
}

// RateQuoteResult is the output of the rate quote orchestrator. Rates are
// in percentage points.
type RateQuoteResult struct {
	ConfigVersion   string              `json:"config_version"`
	Product         string              `json:"product"`
	Breakdown       AdjustmentBreakdown `json:"breakdown"`
	BaseRate        decimal.Decimal     `json:"base_rate"`
	LTV             decimal.Decimal     `json:"ltv"`
	TotalAdjustment decimal.Decimal     `json:"total_adjustment"`
	FinalRate       decimal.Decimal     `json:"final_rate"`
	Warnings        []string            `json:"warnings"`
	Errors          []string            `json:"errors"`
	Clamped         bool                `json:"clamped"`
	IsValid         bool                `json:"is_valid"`
}

// InvalidRateQuote returns a quote carrying only validation output.
func InvalidRateQuote(errs, warnings []string) RateQuoteResult {
	return RateQuoteResult{
		IsValid:  false,
		Errors:   append([]string{}, errs...),
		Warnings: append([]string{}, warnings...),
	}
}
