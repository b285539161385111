package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/pricing-service/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// PricingRequest carries one loan sizing request. Pointer fields are
// optional; nil takes the documented default.
type PricingRequest struct {
	InterestReserveRequired *bool            `json:"interest_reserve_required,omitempty"`
	FundingDate             *time.Time       `json:"funding_date,omitempty"`
	MaturityDate            *time.Time       `json:"maturity_date,omitempty"`
	LoanToCostRatio         *decimal.Decimal `json:"loan_to_cost_ratio,omitempty"`
	LoanToARVRatio          *decimal.Decimal `json:"loan_to_arv_ratio,omitempty"`
	InterestRate            *decimal.Decimal `json:"interest_rate,omitempty"`
	OriginationFeeRate      *decimal.Decimal `json:"origination_fee_rate,omitempty"`
	InspectionFee           *decimal.Decimal `json:"inspection_fee,omitempty"`
	ProcessingFee           *decimal.Decimal `json:"processing_fee,omitempty"`
	AppraisalFee            *decimal.Decimal `json:"appraisal_fee,omitempty"`
	TitleInsurance          *decimal.Decimal `json:"title_insurance,omitempty"`
	AttorneyFee             *decimal.Decimal `json:"attorney_fee,omitempty"`
	ExtensionFeeRate        *decimal.Decimal `json:"extension_fee_rate,omitempty"`
	TermMonths              *int             `json:"term_months,omitempty"`
	InterestReserveMonths   *int             `json:"interest_reserve_months,omitempty"`
	SaveAs                  *SaveAs          `json:"save_as,omitempty"`
	ProductType             string           `json:"product_type"`
	LoanPurpose             string           `json:"loan_purpose,omitempty"`
	PurchasePrice           decimal.Decimal  `json:"purchase_price"`
	AfterRepairValue        decimal.Decimal  `json:"arv"`
	RehabCosts              decimal.Decimal  `json:"rehab_costs"`
	AsIsValue               decimal.Decimal  `json:"as_is_value"`
	CurrentBalance          decimal.Decimal  `json:"current_balance"`
}

// SaveAs asks CalculatePricing to persist the result under a name.
type SaveAs struct {
	ScenarioID string          `json:"scenario_id,omitempty"`
	Name       string          `json:"scenario_name"`
	Owner      model.OwnerRefs `json:"owner_refs"`
}

// SaveScenarioRequest persists an already computed calculation. It is the
// retry path after a failed save and never recomputes.
type SaveScenarioRequest struct {
	ScenarioID string              `json:"scenario_id,omitempty"`
	Name       string              `json:"scenario_name"`
	Owner      model.OwnerRefs     `json:"owner_refs"`
	Inputs     model.LoanInputs    `json:"inputs"`
	Result     model.PricingResult `json:"results"`
}

// ListScenariosRequest filters scenarios by owner reference.
type ListScenariosRequest struct {
	Owner model.OwnerRefs `json:"owner_refs"`
}

// GetScenarioRequest identifies one scenario.
type GetScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// RateQuoteRequest is the transport shape of a rate quote.
type RateQuoteRequest = model.RateQuoteRequest

// PublishRateConfigRequest activates a new rate configuration version.
type PublishRateConfigRequest struct {
	PublishedBy string           `json:"published_by,omitempty"`
	Config      model.RateConfig `json:"config"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// SaveStatus reports the outcome of an optional save. A failed save never
// invalidates the calculation it accompanies.
type SaveStatus struct {
	ScenarioID string `json:"scenario_id,omitempty"`
	Error      string `json:"error,omitempty"`
	Success    bool   `json:"success"`
}

// PricingResponse is the result of CalculatePricing.
type PricingResponse struct {
	Save   *SaveStatus         `json:"save,omitempty"`
	Inputs model.LoanInputs    `json:"inputs"`
	Result model.PricingResult `json:"results"`
}

// ScenarioResponse is the external representation of a saved scenario.
type ScenarioResponse struct {
	CreatedAt   time.Time           `json:"created_at"`
	ID          string              `json:"scenario_id"`
	Name        string              `json:"scenario_name"`
	ProductType string              `json:"product_type"`
	Owner       model.OwnerRefs     `json:"owner_refs"`
	Inputs      model.LoanInputs    `json:"inputs"`
	Result      model.PricingResult `json:"results"`
}

// ScenarioListResponse lists scenarios newest first.
type ScenarioListResponse struct {
	Scenarios []ScenarioResponse `json:"scenarios"`
}

// RateQuoteResponse is the result of QuoteRate.
type RateQuoteResponse = model.RateQuoteResult

// PublishRateConfigResponse confirms which version is now active.
type PublishRateConfigResponse struct {
	EffectiveAt time.Time `json:"effective_at"`
	Version     string    `json:"version"`
}
