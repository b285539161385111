package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/pricing-service/pkg/money"
)

// PricingResult is the output of the pricing orchestrator.
//
// When Errors is non-empty IsValid is false and every numeric field is zero.
// TotalFees is always the sum of the eight fee fields.
type PricingResult struct {
	FundingDate  time.Time `json:"funding_date"`
	MaturityDate time.Time `json:"maturity_date"`

	LoanAmount      decimal.Decimal `json:"loan_amount"`
	MaxLoanAmount   decimal.Decimal `json:"max_loan_amount"`
	FundsToBorrower decimal.Decimal `json:"funds_to_borrower"`

	// DailyInterestRate is a dollar amount per day, not a rate.
	DailyInterestRate      decimal.Decimal `json:"daily_interest_rate"`
	MonthlyInterestPayment decimal.Decimal `json:"monthly_interest_payment"`
	TotalInterest          decimal.Decimal `json:"total_interest"`

	OriginationFee  decimal.Decimal `json:"origination_fee"`
	InspectionFee   decimal.Decimal `json:"inspection_fee"`
	ProcessingFee   decimal.Decimal `json:"processing_fee"`
	AppraisalFee    decimal.Decimal `json:"appraisal_fee"`
	TitleInsurance  decimal.Decimal `json:"title_insurance"`
	AttorneyFee     decimal.Decimal `json:"attorney_fee"`
	InterestReserve decimal.Decimal `json:"interest_reserve"`
	ExtensionFee    decimal.Decimal `json:"extension_fee"`

	TotalFees                decimal.Decimal `json:"total_fees"`
	TotalClosingCosts        decimal.Decimal `json:"total_closing_costs"`
	TotalAmountDueAtMaturity decimal.Decimal `json:"total_amount_due_at_maturity"`
	NetFundingAmount         decimal.Decimal `json:"net_funding_amount"`

	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
	IsValid  bool     `json:"is_valid"`
}

// InvalidPricingResult returns a result carrying only validation output.
func InvalidPricingResult(errs, warnings []string) PricingResult {
	return PricingResult{
		IsValid:  false,
		Errors:   append([]string{}, errs...),
		Warnings: append([]string{}, warnings...),
	}
}

// FeeComponents returns the eight fee fields in their canonical order.
func (r PricingResult) FeeComponents() []decimal.Decimal {
	return []decimal.Decimal{
		r.OriginationFee,
		r.InspectionFee,
		r.ProcessingFee,
		r.AppraisalFee,
		r.TitleInsurance,
		r.AttorneyFee,
		r.InterestReserve,
		r.ExtensionFee,
	}
}

// Rounded returns a copy with every currency field rounded to cents.
func (r PricingResult) Rounded() PricingResult {
	for _, f := range r.amountFields() {
		*f = money.RoundCurrency(*f)
	}
	return r
}

// Equal compares two results by value. Decimal fields are compared
// numerically so "3200" and "3200.00" are equal.
func (r PricingResult) Equal(other PricingResult) bool {
	if r.IsValid != other.IsValid ||
		!r.FundingDate.Equal(other.FundingDate) ||
		!r.MaturityDate.Equal(other.MaturityDate) ||
		!equalStrings(r.Warnings, other.Warnings) ||
		!equalStrings(r.Errors, other.Errors) {
		return false
	}
	mine, theirs := r.amountFields(), other.amountFields()
	for i := range mine {
		if !mine[i].Equal(*theirs[i]) {
			return false
		}
	}
	return true
}

func (r *PricingResult) amountFields() []*decimal.Decimal {
	return []*decimal.Decimal{
		&r.LoanAmount, &r.MaxLoanAmount, &r.FundsToBorrower,
		&r.DailyInterestRate, &r.MonthlyInterestPayment, &r.TotalInterest,
		&r.OriginationFee, &r.InspectionFee, &r.ProcessingFee, &r.AppraisalFee,
		&r.TitleInsurance, &r.AttorneyFee, &r.InterestReserve, &r.ExtensionFee,
		&r.TotalFees, &r.TotalClosingCosts, &r.TotalAmountDueAtMaturity, &r.NetFundingAmount,
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
