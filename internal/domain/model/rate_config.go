package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/pricing-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Tier
// ---------------------------------------------------------------------------

// Tier maps a closed numeric range to a rate adjustment in percentage points.
// A nil Max makes the tier open-ended upwards.
type Tier struct {
	Max            *decimal.Decimal `json:"max"`
	Label          string           `json:"label"`
	Min            decimal.Decimal  `json:"min"`
	RateAdjustment decimal.Decimal  `json:"rate_adjustment"`
}

// Contains reports whether v falls within [Min, Max].
func (t Tier) Contains(v decimal.Decimal) bool {
	if v.LessThan(t.Min) {
		return false
	}
	return t.Max == nil || v.LessThanOrEqual(*t.Max)
}

func (t Tier) String() string {
	upper := "+inf"
	if t.Max != nil {
		upper = t.Max.String()
	}
	return fmt.Sprintf("%s [%s, %s]", t.Label, t.Min, upper)
}

// overlaps reports whether two closed ranges share at least one point.
func (t Tier) overlaps(o Tier) bool {
	if t.Max != nil && t.Max.LessThan(o.Min) {
		return false
	}
	if o.Max != nil && o.Max.LessThan(t.Min) {
		return false
	}
	return true
}

// TierSet is an ordered list of tiers for one factor.
type TierSet []Tier

// Match returns the first tier containing v.
func (s TierSet) Match(v decimal.Decimal) (Tier, bool) {
	for _, t := range s {
		if t.Contains(v) {
			return t, true
		}
	}
	return Tier{}, false
}

// Validate rejects inverted and overlapping ranges.
func (s TierSet) Validate(factor string) error {
	var errs []error
	for i, t := range s {
		if t.Max != nil && t.Max.LessThan(t.Min) {
			errs = append(errs, fmt.Errorf("%s tier %q: max %s below min %s", factor, t.Label, t.Max, t.Min))
		}
		for _, prev := range s[:i] {
			if t.overlaps(prev) {
				errs = append(errs, fmt.Errorf("%s tier %s overlaps %s", factor, t, prev))
			}
		}
	}
	return errors.Join(errs...)
}

// ---------------------------------------------------------------------------
// Reference records
// ---------------------------------------------------------------------------

// RiskFactor is a property-type or loan-purpose record. Its contribution to
// the rate is (RiskMultiplier - 1) x base rate.
type RiskFactor struct {
	Name           string          `json:"name"`
	RiskMultiplier decimal.Decimal `json:"risk_multiplier"`
}

// Product is a rate-quote product with its base rate in percentage points.
type Product struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	BaseRate decimal.Decimal `json:"base_rate"`
}

// ---------------------------------------------------------------------------
// RateConfig
// ---------------------------------------------------------------------------

// RateConfig is one immutable, versioned snapshot of the rate reference data.
type RateConfig struct {
	EffectiveAt      time.Time       `json:"effective_at"`
	Version          string          `json:"version"`
	CreditScoreTiers TierSet         `json:"credit_score_tiers"`
	LTVTiers         TierSet         `json:"ltv_tiers"`
	DSCRTiers        TierSet         `json:"dscr_tiers"`
	LoanAmountTiers  TierSet         `json:"loan_amount_tiers"`
	PropertyTypes    []RiskFactor    `json:"property_types"`
	LoanPurposes     []RiskFactor    `json:"loan_purposes"`
	Products         []Product       `json:"products"`
	MinAdjustment    decimal.Decimal `json:"min_adjustment"`
	MaxAdjustment    decimal.Decimal `json:"max_adjustment"`
}

// Validate checks the configuration is usable for deterministic quoting.
func (c RateConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Version) == "" {
		errs = append(errs, errors.New("version is required"))
	}
	if c.MaxAdjustment.LessThan(c.MinAdjustment) {
		errs = append(errs, fmt.Errorf("max_adjustment %s below min_adjustment %s", c.MaxAdjustment, c.MinAdjustment))
	}
	if len(c.Products) == 0 {
		errs = append(errs, errors.New("at least one product is required"))
	}
	for _, p := range c.Products {
		if p.BaseRate.IsNegative() {
			errs = append(errs, fmt.Errorf("product %q: negative base rate", p.Code))
		}
	}
	for _, rf := range append(append([]RiskFactor{}, c.PropertyTypes...), c.LoanPurposes...) {
		if !rf.RiskMultiplier.IsPositive() {
			errs = append(errs, fmt.Errorf("risk factor %q: multiplier must be positive", rf.Name))
		}
	}
	errs = append(errs,
		c.CreditScoreTiers.Validate(FactorCreditScore),
		c.LTVTiers.Validate(FactorLTV),
		c.DSCRTiers.Validate(FactorDSCR),
		c.LoanAmountTiers.Validate(FactorLoanAmount),
	)
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", valueobject.ErrInvalidRateConfig, err)
	}
	return nil
}

// Product looks up a product by code or name, case-insensitively.
func (c RateConfig) Product(ref string) (Product, bool) {
	for _, p := range c.Products {
		if strings.EqualFold(p.Code, ref) || strings.EqualFold(p.Name, ref) {
			return p, true
		}
	}
	return Product{}, false
}

// PropertyType looks up a property-type record by name.
func (c RateConfig) PropertyType(ref string) (RiskFactor, bool) {
	return findRiskFactor(c.PropertyTypes, ref)
}

// LoanPurpose looks up a loan-purpose record by name.
func (c RateConfig) LoanPurpose(ref string) (RiskFactor, bool) {
	return findRiskFactor(c.LoanPurposes, ref)
}

func findRiskFactor(list []RiskFactor, ref string) (RiskFactor, bool) {
	for _, rf := range list {
		if strings.EqualFold(rf.Name, ref) {
			return rf, true
		}
	}
	return RiskFactor{}, false
}
