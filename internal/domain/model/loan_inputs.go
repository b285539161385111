package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/pricing-service/internal/domain/valueobject"
)

// Sizing and interest conventions shared by all product calculators.
const (
	DaysPerYear      = 360
	MonthsPerYear    = 12
	DaysPerTermMonth = 30

	MaxTermMonths            = 60
	MaxInterestReserveMonths = 12

	// BridgeReserveMonths is the fixed interest reserve for both bridge products.
	BridgeReserveMonths = 6
)

// ARVAdvanceRate caps Fix-and-Flip and WholeTail loans at 70% of after-repair value.
var ARVAdvanceRate = decimal.RequireFromString("0.70")

// ---------------------------------------------------------------------------
// FeeSchedule
// ---------------------------------------------------------------------------

// FeeSchedule carries the fee overrides of a calculation. Every field has a
// product-agnostic default, see DefaultFeeSchedule.
type FeeSchedule struct {
	OriginationFeeRate      decimal.Decimal `json:"origination_fee_rate"`
	InspectionFee           decimal.Decimal `json:"inspection_fee"`
	ProcessingFee           decimal.Decimal `json:"processing_fee"`
	AppraisalFee            decimal.Decimal `json:"appraisal_fee"`
	TitleInsurance          decimal.Decimal `json:"title_insurance"`
	AttorneyFee             decimal.Decimal `json:"attorney_fee"`
	ExtensionFeeRate        decimal.Decimal `json:"extension_fee_rate"`
	InterestReserveMonths   int             `json:"interest_reserve_months"`
	InterestReserveRequired bool            `json:"interest_reserve_required"`
}

// DefaultFeeSchedule returns the standard fee schedule.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		OriginationFeeRate:      decimal.RequireFromString("0.02"),
		InspectionFee:           decimal.NewFromInt(750),
		ProcessingFee:           decimal.NewFromInt(995),
		AppraisalFee:            decimal.NewFromInt(650),
		TitleInsurance:          decimal.NewFromInt(2500),
		AttorneyFee:             decimal.NewFromInt(1500),
		ExtensionFeeRate:        decimal.Zero,
		InterestReserveMonths:   6,
		InterestReserveRequired: true,
	}
}

// ---------------------------------------------------------------------------
// LoanInputs
// ---------------------------------------------------------------------------

// LoanInputs is the caller-supplied description of one calculation.
// It is built per request and never mutated afterwards.
type LoanInputs struct {
	FundingDate      time.Time               `json:"funding_date"`
	MaturityDate     time.Time               `json:"maturity_date"`
	PurchasePrice    decimal.Decimal         `json:"purchase_price"`
	AfterRepairValue decimal.Decimal         `json:"arv"`
	RehabCosts       decimal.Decimal         `json:"rehab_costs"`
	AsIsValue        decimal.Decimal         `json:"as_is_value"`
	CurrentBalance   decimal.Decimal         `json:"current_balance"`
	LoanToCostRatio  decimal.Decimal         `json:"loan_to_cost_ratio"`
	LoanToARVRatio   decimal.Decimal         `json:"loan_to_arv_ratio"`
	InterestRate     decimal.Decimal         `json:"interest_rate"`
	LoanPurpose      valueobject.LoanPurpose `json:"loan_purpose"`
	ProductType      valueobject.ProductType `json:"product_type"`
	Fees             FeeSchedule             `json:"fees"`
	TermMonths       int                     `json:"term_months"`
}

// DefaultLoanInputs returns inputs pre-filled with the documented request
// defaults for the given product. Property amounts are left at zero.
func DefaultLoanInputs(product valueobject.ProductType) LoanInputs {
	return LoanInputs{
		ProductType:     product,
		LoanPurpose:     valueobject.LoanPurposePurchase,
		LoanToCostRatio: decimal.RequireFromString("0.80"),
		LoanToARVRatio:  decimal.RequireFromString("0.70"),
		InterestRate:    decimal.RequireFromString("0.12"),
		TermMonths:      12,
		Fees:            DefaultFeeSchedule(),
	}
}

// WithDates fills in the funding date (when absent) from now and derives the
// maturity date (when absent) as funding date + term_months x 30 days.
func (in LoanInputs) WithDates(now time.Time) LoanInputs {
	if in.FundingDate.IsZero() {
		in.FundingDate = now.UTC().Truncate(24 * time.Hour)
	}
	if in.MaturityDate.IsZero() && in.TermMonths > 0 {
		in.MaturityDate = in.FundingDate.AddDate(0, 0, in.TermMonths*DaysPerTermMonth)
	}
	return in
}

// PropertyValue returns the as-is value, falling back to the purchase price
// when no as-is value was supplied.
func (in LoanInputs) PropertyValue() decimal.Decimal {
	if in.AsIsValue.IsPositive() {
		return in.AsIsValue
	}
	return in.PurchasePrice
}
