package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
	"github.com/bibbank/pricing-service/pkg/money"
)

// ---------------------------------------------------------------------------
// Calculation – partial result produced by a product calculator
// ---------------------------------------------------------------------------

// Calculation holds the sizing, interest and fee fields of a result. Totals
// are left for the aggregator. NetFunding is set only by calculators that
// define net funding themselves.
type Calculation struct {
	NetFunding *decimal.Decimal
	Warnings   []string
	model.PricingResult
}

// ProductCalculator sizes a loan for one product.
type ProductCalculator interface {
	Calculate(in model.LoanInputs) Calculation
}

// calculatorFor is the single dispatch point from product to formula.
func calculatorFor(p valueobject.ProductType) (ProductCalculator, error) {
	switch p {
	case valueobject.ProductFixAndFlip:
		return FixAndFlipCalculator{}, nil
	case valueobject.ProductWholeTail:
		return WholeTailCalculator{}, nil
	case valueobject.ProductBridgePurchase:
		return BridgePurchaseCalculator{}, nil
	case valueobject.ProductBridgeRefinance:
		return BridgeRefinanceCalculator{}, nil
	default:
		return nil, &valueobject.UnknownProductError{Value: p.String()}
	}
}

// newCalculation fills the interest and fee fields that every product
// derives the same way from the loan amount.
func newCalculation(in model.LoanInputs, loan, maxLoan decimal.Decimal, reserveMonths int) Calculation {
	monthly := loan.Mul(in.InterestRate).Div(decimal.NewFromInt(model.MonthsPerYear))
	daily := loan.Mul(in.InterestRate).Div(decimal.NewFromInt(model.DaysPerYear))

	c := Calculation{}
	c.LoanAmount = loan
	c.MaxLoanAmount = maxLoan
	c.DailyInterestRate = daily
	c.MonthlyInterestPayment = monthly

	c.OriginationFee = loan.Mul(in.Fees.OriginationFeeRate)
	c.InspectionFee = in.Fees.InspectionFee
	c.ProcessingFee = in.Fees.ProcessingFee
	c.AppraisalFee = in.Fees.AppraisalFee
	c.TitleInsurance = in.Fees.TitleInsurance
	c.AttorneyFee = in.Fees.AttorneyFee
	c.ExtensionFee = loan.Mul(in.Fees.ExtensionFeeRate)
	if in.Fees.InterestReserveRequired {
		c.InterestReserve = monthly.Mul(decimal.NewFromInt(int64(reserveMonths)))
	}
	return c
}

// ---------------------------------------------------------------------------
// Fix-and-Flip
// ---------------------------------------------------------------------------

// FixAndFlipCalculator sizes purchase-plus-rehab loans against cost and ARV.
type FixAndFlipCalculator struct{}

func (FixAndFlipCalculator) Calculate(in model.LoanInputs) Calculation {
	maxByARV := in.AfterRepairValue.Mul(model.ARVAdvanceRate).Sub(in.RehabCosts)

	var maxLoan decimal.Decimal
	if !maxByARV.IsPositive() {
		maxLoan = money.Min(in.PurchasePrice, in.AfterRepairValue)
	} else {
		maxLoan = money.Min(in.PurchasePrice, in.AfterRepairValue, maxByARV)
	}

	loan := money.Min(in.PurchasePrice.Mul(in.LoanToCostRatio), in.RehabCosts.Add(in.PurchasePrice))

	var warnings []string
	if loan.GreaterThan(maxLoan) {
		warnings = append(warnings, fmt.Sprintf(
			"Loan amount %s exceeds maximum %s; capped at maximum",
			money.FormatUSD(loan), money.FormatUSD(maxLoan),
		))
		loan = maxLoan
	}

	c := newCalculation(in, loan, maxLoan, in.Fees.InterestReserveMonths)
	c.Warnings = warnings
	return c
}

// ---------------------------------------------------------------------------
// WholeTail
// ---------------------------------------------------------------------------

// WholeTailCalculator sizes loans directly off after-repair value.
type WholeTailCalculator struct{}

func (WholeTailCalculator) Calculate(in model.LoanInputs) Calculation {
	arv := in.AfterRepairValue
	maxLoan := money.Max(decimal.Zero, arv.Mul(model.ARVAdvanceRate).Sub(in.RehabCosts))
	loan := money.Min(arv, maxLoan)

	c := newCalculation(in, loan, maxLoan, in.Fees.InterestReserveMonths)
	// Compares against max_loan_amount but assigns from ARV; kept as the
	// product team defined it.
	if maxLoan.LessThanOrEqual(arv) {
		c.FundsToBorrower = money.Max(decimal.Zero, arv.Sub(maxLoan))
	}
	if loan.IsZero() {
		c.Warnings = append(c.Warnings, "Rehab costs exceed 70% of ARV; no WholeTail loan can be sized")
	}
	return c
}

// ---------------------------------------------------------------------------
// Bridge-Purchase
// ---------------------------------------------------------------------------

// BridgePurchaseCalculator sizes short-term acquisition loans on cost.
type BridgePurchaseCalculator struct{}

func (BridgePurchaseCalculator) Calculate(in model.LoanInputs) Calculation {
	loan := in.PurchasePrice.Mul(in.LoanToCostRatio)

	c := newCalculation(in, loan, loan, model.BridgeReserveMonths)
	c.FundsToBorrower = in.PurchasePrice.Sub(loan)
	return c
}

// ---------------------------------------------------------------------------
// Bridge-Refinance
// ---------------------------------------------------------------------------

// BridgeRefinanceCalculator sizes refinance loans on as-is value and nets
// out the existing balance.
type BridgeRefinanceCalculator struct{}

func (BridgeRefinanceCalculator) Calculate(in model.LoanInputs) Calculation {
	loan := in.PropertyValue().Mul(in.LoanToARVRatio)

	c := newCalculation(in, loan, loan, model.BridgeReserveMonths)

	net, clamped := money.FloorZero(loan.Sub(in.CurrentBalance))
	if clamped {
		c.Warnings = append(c.Warnings, fmt.Sprintf(
			"Current balance %s exceeds loan amount %s; net funding set to 0",
			money.FormatUSD(in.CurrentBalance), money.FormatUSD(loan),
		))
	}
	c.NetFunding = &net
	return c
}
