package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/pkg/money"
)

// Default penalties, in percentage points, when a mandatory factor has no tier.
var (
	UnmatchedCreditPenalty = decimal.RequireFromString("0.5")
	UnmatchedLTVPenalty    = decimal.RequireFromString("0.25")
)

// TierInputs are the borrower attributes the tier engine prices.
type TierInputs struct {
	DSCR        *decimal.Decimal
	LTV         decimal.Decimal
	LoanAmount  decimal.Decimal
	CreditScore int
}

// ---------------------------------------------------------------------------
// TierAdjustmentEngine
// ---------------------------------------------------------------------------

// TierAdjustmentEngine turns borrower attributes into a per-factor rate
// adjustment breakdown. It has no side effects.
type TierAdjustmentEngine struct{}

// NewTierAdjustmentEngine returns a new engine instance.
func NewTierAdjustmentEngine() *TierAdjustmentEngine {
	return &TierAdjustmentEngine{}
}

// Evaluate matches every factor against cfg and returns the breakdown.
// Total is the unclamped sum of the six contributions.
func (e *TierAdjustmentEngine) Evaluate(
	cfg model.RateConfig,
	in TierInputs,
	baseRate decimal.Decimal,
	propertyType, loanPurpose model.RiskFactor,
) model.AdjustmentBreakdown {
	b := model.AdjustmentBreakdown{
		CreditScore: lookupTier(model.FactorCreditScore, cfg.CreditScoreTiers,
			decimal.NewFromInt(int64(in.CreditScore)), UnmatchedCreditPenalty, model.LabelUnmatched),
		LTV: lookupTier(model.FactorLTV, cfg.LTVTiers,
			in.LTV, UnmatchedLTVPenalty, model.LabelHighRisk),
		LoanAmount: lookupTier(model.FactorLoanAmount, cfg.LoanAmountTiers,
			in.LoanAmount, decimal.Zero, model.LabelUnmatched),
		PropertyType: riskAdjustment(model.FactorPropertyType, propertyType, baseRate),
		LoanPurpose:  riskAdjustment(model.FactorLoanPurpose, loanPurpose, baseRate),
	}

	if in.DSCR != nil {
		b.DSCR = lookupTier(model.FactorDSCR, cfg.DSCRTiers, *in.DSCR, decimal.Zero, model.LabelUnmatched)
	} else {
		b.DSCR = model.FactorAdjustment{
			Factor:     model.FactorDSCR,
			Label:      model.LabelNotProvided,
			Adjustment: decimal.Zero,
		}
	}

	b.Total = b.Sum()
	return b
}

func lookupTier(factor string, tiers model.TierSet, value, penalty decimal.Decimal, fallback string) model.FactorAdjustment {
	fa := model.FactorAdjustment{Factor: factor, Input: value.String()}
	if tier, ok := tiers.Match(value); ok {
		fa.Label = tier.Label
		fa.Adjustment = tier.RateAdjustment
		fa.Matched = true
		return fa
	}
	fa.Label = fallback
	fa.Adjustment = penalty
	return fa
}

// riskAdjustment prices a multiplicative risk factor as (multiplier - 1) x base.
func riskAdjustment(factor string, rf model.RiskFactor, baseRate decimal.Decimal) model.FactorAdjustment {
	return model.FactorAdjustment{
		Factor:     factor,
		Label:      rf.Name,
		Input:      rf.RiskMultiplier.String(),
		Adjustment: money.RoundRate(rf.RiskMultiplier.Sub(money.One).Mul(baseRate)),
		Matched:    true,
	}
}
