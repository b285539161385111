package model_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func creditTiers() model.TierSet {
	return model.TierSet{
		{Label: "760+", Min: dec("760"), Max: ptr("850"), RateAdjustment: dec("-0.25")},
		{Label: "700-759", Min: dec("700"), Max: ptr("759"), RateAdjustment: dec("0")},
		{Label: "660-699", Min: dec("660"), Max: ptr("699"), RateAdjustment: dec("0.375")},
	}
}

func TestTier_ContainsIsClosedOnBothEnds(t *testing.T) {
	tier := model.Tier{Label: "700-759", Min: dec("700"), Max: ptr("759")}

	assert.True(t, tier.Contains(dec("700")))
	assert.True(t, tier.Contains(dec("759")))
	assert.False(t, tier.Contains(dec("699")))
	assert.False(t, tier.Contains(dec("760")))
}

func TestTier_OpenEndedMax(t *testing.T) {
	tier := model.Tier{Label: "1.25+", Min: dec("1.25")}

	assert.True(t, tier.Contains(dec("1.25")))
	assert.True(t, tier.Contains(dec("99")))
	assert.False(t, tier.Contains(dec("1.2499")))
	assert.Equal(t, "1.25+ [1.25, +inf]", tier.String())
}

func TestTierSet_Match(t *testing.T) {
	set := creditTiers()

	t.Run("score on max boundary matches that tier", func(t *testing.T) {
		got, ok := set.Match(dec("759"))
		require.True(t, ok)
		assert.Equal(t, "700-759", got.Label)
	})

	t.Run("score in no tier is unmatched", func(t *testing.T) {
		_, ok := set.Match(dec("640"))
		assert.False(t, ok)
	})

	t.Run("first matching tier wins", func(t *testing.T) {
		overlapping := model.TierSet{
			{Label: "first", Min: dec("0"), Max: ptr("10")},
			{Label: "second", Min: dec("5"), Max: ptr("15")},
		}
		got, ok := overlapping.Match(dec("7"))
		require.True(t, ok)
		assert.Equal(t, "first", got.Label)
	})
}

func TestTierSet_Validate(t *testing.T) {
	assert.NoError(t, creditTiers().Validate(model.FactorCreditScore))

	t.Run("overlap rejected", func(t *testing.T) {
		set := model.TierSet{
			{Label: "a", Min: dec("0"), Max: ptr("80")},
			{Label: "b", Min: dec("80"), Max: ptr("90")},
		}
		err := set.Validate(model.FactorLTV)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "overlaps")
	})

	t.Run("open-ended tier overlaps later tier", func(t *testing.T) {
		set := model.TierSet{
			{Label: "a", Min: dec("1000000")},
			{Label: "b", Min: dec("2000000"), Max: ptr("3000000")},
		}
		assert.Error(t, set.Validate(model.FactorLoanAmount))
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		set := model.TierSet{{Label: "bad", Min: dec("10"), Max: ptr("5")}}
		err := set.Validate(model.FactorDSCR)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "below min")
	})
}

func validConfig() model.RateConfig {
	return model.RateConfig{
		Version:          "2026-01",
		CreditScoreTiers: creditTiers(),
		Products:         []model.Product{{Code: "DSCR30", Name: "DSCR 30yr", BaseRate: dec("7.5")}},
		PropertyTypes:    []model.RiskFactor{{Name: "SFR", RiskMultiplier: dec("1")}},
		LoanPurposes:     []model.RiskFactor{{Name: "Cash-Out Refinance", RiskMultiplier: dec("1.05")}},
		MinAdjustment:    dec("-1"),
		MaxAdjustment:    dec("3"),
	}
}

func TestRateConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Version = ""
	cfg.MinAdjustment = dec("4")
	cfg.Products = nil
	cfg.LoanPurposes = []model.RiskFactor{{Name: "Bad", RiskMultiplier: dec("0")}}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, valueobject.ErrInvalidRateConfig))
	assert.Contains(t, err.Error(), "version is required")
	assert.Contains(t, err.Error(), "max_adjustment")
	assert.Contains(t, err.Error(), "at least one product")
	assert.Contains(t, err.Error(), `risk factor "Bad"`)
}

func TestRateConfig_Lookups(t *testing.T) {
	cfg := validConfig()

	p, ok := cfg.Product("dscr30")
	require.True(t, ok)
	assert.True(t, p.BaseRate.Equal(dec("7.5")))

	_, ok = cfg.Product("DSCR 30YR")
	assert.True(t, ok)

	_, ok = cfg.Product("missing")
	assert.False(t, ok)

	pt, ok := cfg.PropertyType("sfr")
	require.True(t, ok)
	assert.Equal(t, "SFR", pt.Name)

	lp, ok := cfg.LoanPurpose("cash-out refinance")
	require.True(t, ok)
	assert.True(t, lp.RiskMultiplier.Equal(dec("1.05")))
}
