package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/pkg/money"
)

// AggregateTotals fills the total fields of a calculator's partial result.
// It works on unrounded amounts; the caller rounds the finished result, so a
// total may differ from the sum of its displayed components by one cent.
func AggregateTotals(c Calculation, termMonths int) (model.PricingResult, []string) {
	r := c.PricingResult
	var warnings []string

	r.TotalFees = decimal.Sum(decimal.Zero, r.FeeComponents()...)
	r.TotalClosingCosts = decimal.Sum(
		r.OriginationFee,
		r.InspectionFee,
		r.ProcessingFee,
		r.AppraisalFee,
		r.TitleInsurance,
		r.AttorneyFee,
	)
	r.TotalInterest = r.MonthlyInterestPayment.Mul(decimal.NewFromInt(int64(termMonths)))
	r.TotalAmountDueAtMaturity = r.LoanAmount.Add(r.TotalInterest)

	if c.NetFunding != nil {
		r.NetFundingAmount = *c.NetFunding
	} else {
		net, clamped := money.FloorZero(r.LoanAmount.Sub(r.TotalClosingCosts))
		if clamped {
			warnings = append(warnings, fmt.Sprintf(
				"Closing costs %s exceed loan amount %s; net funding set to 0",
				money.FormatUSD(r.TotalClosingCosts), money.FormatUSD(r.LoanAmount),
			))
		}
		r.NetFundingAmount = net
	}
	return r, warnings
}
