package testutil

// Fixed identifiers for deterministic tests.
const (
	ScenarioID1   = "00000000-0000-4000-8000-000000000001"
	ScenarioID2   = "00000000-0000-4000-8000-000000000002"
	ContactID     = "crm-contact-0001"
	OpportunityID = "crm-opportunity-0001"
)
