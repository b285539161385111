package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/pricing-service/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// Event type names.
const (
	TypeScenarioSaved       = "pricing.scenario.saved"
	TypeRateConfigPublished = "pricing.rate_config.published"
)

// ---------------------------------------------------------------------------
// Scenario Events
// ---------------------------------------------------------------------------

// ScenarioSaved is raised once a priced scenario has been persisted.
type ScenarioSaved struct {
	events.BaseEvent
	ScenarioName  string          `json:"scenario_name"`
	ProductType   string          `json:"product_type"`
	ContactID     string          `json:"contact_id,omitempty"`
	OpportunityID string          `json:"opportunity_id,omitempty"`
	LoanAmount    decimal.Decimal `json:"loan_amount"`
	IsValid       bool            `json:"is_valid"`
}

func NewScenarioSaved(
	scenarioID, name, productType, contactID, opportunityID string,
	loanAmount decimal.Decimal, isValid bool, at time.Time,
) ScenarioSaved {
	return ScenarioSaved{
		BaseEvent:     events.NewBaseEvent(TypeScenarioSaved, scenarioID, "Scenario", at),
		ScenarioName:  name,
		ProductType:   productType,
		ContactID:     contactID,
		OpportunityID: opportunityID,
		LoanAmount:    loanAmount,
		IsValid:       isValid,
	}
}

// ---------------------------------------------------------------------------
// Rate Configuration Events
// ---------------------------------------------------------------------------

// RateConfigPublished is raised when a new rate configuration version becomes
// active. Every service instance reloads its snapshot on receipt.
type RateConfigPublished struct {
	events.BaseEvent
	Version     string    `json:"version"`
	EffectiveAt time.Time `json:"effective_at"`
	PublishedBy string    `json:"published_by,omitempty"`
}

func NewRateConfigPublished(version string, effectiveAt time.Time, publishedBy string, at time.Time) RateConfigPublished {
	return RateConfigPublished{
		BaseEvent:   events.NewBaseEvent(TypeRateConfigPublished, version, "RateConfig", at),
		Version:     version,
		EffectiveAt: effectiveAt,
		PublishedBy: publishedBy,
	}
}
