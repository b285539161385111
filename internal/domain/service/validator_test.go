package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/service"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
)

func TestInputValidator_AcceptsDefaults(t *testing.T) {
	r := service.NewInputValidator().Validate(fixAndFlipInputs())

	assert.True(t, r.OK())
	assert.Empty(t, r.Warnings)
}

func TestInputValidator_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.LoanInputs)
		want   string
	}{
		{"no value", func(in *model.LoanInputs) {
			in.PurchasePrice = dec("0")
		}, "Purchase price or as-is value must be greater than 0"},
		{"missing ARV", func(in *model.LoanInputs) {
			in.AfterRepairValue = dec("0")
		}, "After-repair value must be greater than 0 for FnF loans"},
		{"zero rate", func(in *model.LoanInputs) {
			in.InterestRate = dec("0")
		}, "Interest rate must be greater than 0 and at most 1"},
		{"rate as percent", func(in *model.LoanInputs) {
			in.InterestRate = dec("12")
		}, "Interest rate must be greater than 0 and at most 1"},
		{"zero term", func(in *model.LoanInputs) {
			in.TermMonths = 0
		}, "Term must be at least 1 month"},
		{"long term", func(in *model.LoanInputs) {
			in.TermMonths = 61
		}, "Term must not exceed 60 months"},
		{"negative rehab", func(in *model.LoanInputs) {
			in.RehabCosts = dec("-1")
		}, "Rehab costs must not be negative"},
		{"negative fee", func(in *model.LoanInputs) {
			in.Fees.AttorneyFee = dec("-0.01")
		}, "Attorney fee must not be negative"},
		{"ltc above one", func(in *model.LoanInputs) {
			in.LoanToCostRatio = dec("1.2")
		}, "Loan-to-cost ratio must be greater than 0 and at most 1"},
		{"zero ltarv", func(in *model.LoanInputs) {
			in.LoanToARVRatio = dec("0")
		}, "Loan-to-ARV ratio must be greater than 0 and at most 1"},
		{"origination above one", func(in *model.LoanInputs) {
			in.Fees.OriginationFeeRate = dec("1.5")
		}, "Origination fee rate must be at most 1"},
		{"reserve months", func(in *model.LoanInputs) {
			in.Fees.InterestReserveMonths = 13
		}, "Interest reserve months must be between 0 and 12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := fixAndFlipInputs()
			tt.mutate(&in)

			r := service.NewInputValidator().Validate(in)

			require.False(t, r.OK())
			assert.Contains(t, r.Errors, tt.want)
		})
	}
}

func TestInputValidator_CollectsAllErrors(t *testing.T) {
	in := fixAndFlipInputs()
	in.PurchasePrice = dec("0")
	in.InterestRate = dec("0")
	in.TermMonths = 0

	r := service.NewInputValidator().Validate(in)

	assert.Len(t, r.Errors, 3)
}

func TestInputValidator_AsIsValueSatisfiesValueCheck(t *testing.T) {
	in := inputs(valueobject.ProductBridgeRefinance)
	in.AsIsValue = dec("450000")

	r := service.NewInputValidator().Validate(in)

	assert.True(t, r.OK(), r.Errors)
}

func TestInputValidator_BridgeDoesNotNeedARV(t *testing.T) {
	in := inputs(valueobject.ProductBridgePurchase)
	in.PurchasePrice = dec("300000")

	r := service.NewInputValidator().Validate(in)

	assert.True(t, r.OK(), r.Errors)
}

func TestInputValidator_Warnings(t *testing.T) {
	in := fixAndFlipInputs()
	in.LoanToCostRatio = dec("0.86")
	in.InterestRate = dec("0.185")

	r := service.NewInputValidator().Validate(in)

	require.True(t, r.OK())
	assert.Equal(t, []string{
		"Very high LTC: 0.8600 exceeds 0.85",
		"Very high rate: 0.1850 exceeds 0.18",
	}, r.Warnings)
}
