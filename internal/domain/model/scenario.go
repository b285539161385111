package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/pricing-service/internal/domain/event"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
	"github.com/bibbank/pricing-service/pkg/events"
)

// MaxScenarioNameLength bounds the caller-supplied scenario name.
const MaxScenarioNameLength = 200

// OwnerRefs links a scenario to records in the external CRM.
type OwnerRefs struct {
	ContactID     string `json:"contact_id,omitempty"`
	OpportunityID string `json:"opportunity_id,omitempty"`
}

// IsEmpty reports whether no owner reference is set.
func (o OwnerRefs) IsEmpty() bool {
	return o.ContactID == "" && o.OpportunityID == ""
}

// Matches reports whether o satisfies filter. Blank filter fields match
// anything, so an empty filter matches every scenario.
func (o OwnerRefs) Matches(filter OwnerRefs) bool {
	if filter.ContactID != "" && filter.ContactID != o.ContactID {
		return false
	}
	if filter.OpportunityID != "" && filter.OpportunityID != o.OpportunityID {
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Scenario aggregate
// ---------------------------------------------------------------------------

// Scenario is a named, persisted snapshot of one calculation.
type Scenario struct {
	createdAt time.Time
	id        string
	name      string
	owner     OwnerRefs
	inputs    LoanInputs
	result    PricingResult
	events.EventCollector
}

// NewScenario creates a scenario and records a ScenarioSaved event. An empty
// id generates a new one; callers retrying a failed save pass the id they
// were handed the first time so the write stays idempotent.
func NewScenario(
	id, name string,
	inputs LoanInputs,
	result PricingResult,
	owner OwnerRefs,
	now time.Time,
) (Scenario, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Scenario{}, &valueobject.InvalidInputError{Field: "scenario_name", Reason: "is required"}
	}
	if len(name) > MaxScenarioNameLength {
		return Scenario{}, &valueobject.InvalidInputError{
			Field:  "scenario_name",
			Reason: fmt.Sprintf("must be at most %d characters", MaxScenarioNameLength),
		}
	}
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return Scenario{}, &valueobject.InvalidInputError{Field: "scenario_id", Reason: "must be a UUID"}
	}

	s := Scenario{
		id:        id,
		name:      name,
		inputs:    inputs,
		result:    result,
		owner:     owner,
		createdAt: now.UTC(),
	}
	s.Record(event.NewScenarioSaved(
		s.id, s.name, inputs.ProductType.String(),
		owner.ContactID, owner.OpportunityID,
		result.LoanAmount, result.IsValid, s.createdAt,
	))
	return s, nil
}

// ReconstructScenario rebuilds a scenario from storage without raising events.
func ReconstructScenario(
	id, name string,
	inputs LoanInputs,
	result PricingResult,
	owner OwnerRefs,
	createdAt time.Time,
) Scenario {
	return Scenario{
		id:        id,
		name:      name,
		inputs:    inputs,
		result:    result,
		owner:     owner,
		createdAt: createdAt,
	}
}

func (s Scenario) ID() string                           { return s.id }
func (s Scenario) Name() string                         { return s.name }
func (s Scenario) ProductType() valueobject.ProductType { return s.inputs.ProductType }
func (s Scenario) Inputs() LoanInputs                   { return s.inputs }
func (s Scenario) Result() PricingResult                { return s.result }
func (s Scenario) Owner() OwnerRefs                     { return s.owner }
func (s Scenario) CreatedAt() time.Time                 { return s.createdAt }

// DomainEvents returns the events raised while building the scenario.
func (s Scenario) DomainEvents() []event.DomainEvent { return s.Events() }
