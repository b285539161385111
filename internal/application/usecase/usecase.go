package usecase

import (
	"go.opentelemetry.io/otel"

	"github.com/bibbank/pricing-service/internal/application/dto"
	"github.com/bibbank/pricing-service/internal/domain/model"
)

var tracer = otel.Tracer("github.com/bibbank/pricing-service/internal/application/usecase")

func toScenarioResponse(s model.Scenario) dto.ScenarioResponse {
	return dto.ScenarioResponse{
		ID:          s.ID(),
		Name:        s.Name(),
		ProductType: s.ProductType().String(),
		Owner:       s.Owner(),
		Inputs:      s.Inputs(),
		Result:      s.Result(),
		CreatedAt:   s.CreatedAt(),
	}
}

// Set groups the use cases the transports expose. PublishRateConfig is nil
// when rate configuration is read from a file.
type Set struct {
	CalculatePricing  *CalculatePricingUseCase
	QuoteRate         *QuoteRateUseCase
	SaveScenario      *SaveScenarioUseCase
	ListScenarios     *ListScenariosUseCase
	GetScenario       *GetScenarioUseCase
	PublishRateConfig *PublishRateConfigUseCase
}
