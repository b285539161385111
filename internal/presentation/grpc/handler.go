package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/pricing-service/internal/application/dto"
	"github.com/bibbank/pricing-service/internal/application/usecase"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
	"github.com/bibbank/pricing-service/pkg/auth"
)

// PricingHandler implements PricingServiceServer on top of the use cases.
// Invalid loan inputs are not a gRPC error: the result carries is_valid=false
// and its errors, exactly as the REST body does.
type PricingHandler struct {
	UnimplementedPricingServiceServer
	uc usecase.Set
}

func NewPricingHandler(uc usecase.Set) *PricingHandler {
	return &PricingHandler{uc: uc}
}

func (h *PricingHandler) CalculatePricing(ctx context.Context, req *dto.PricingRequest) (*dto.PricingResponse, error) {
	resp, err := h.uc.CalculatePricing.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (h *PricingHandler) QuoteRate(ctx context.Context, req *dto.RateQuoteRequest) (*dto.RateQuoteResponse, error) {
	resp, err := h.uc.QuoteRate.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (h *PricingHandler) SaveScenario(ctx context.Context, req *dto.SaveScenarioRequest) (*dto.ScenarioResponse, error) {
	resp, err := h.uc.SaveScenario.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (h *PricingHandler) ListScenarios(ctx context.Context, req *dto.ListScenariosRequest) (*dto.ScenarioListResponse, error) {
	resp, err := h.uc.ListScenarios.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (h *PricingHandler) GetScenario(ctx context.Context, req *dto.GetScenarioRequest) (*dto.ScenarioResponse, error) {
	resp, err := h.uc.GetScenario.Execute(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

func (h *PricingHandler) PublishRateConfig(ctx context.Context, req *dto.PublishRateConfigRequest) (*dto.PublishRateConfigResponse, error) {
	if h.uc.PublishRateConfig == nil {
		return nil, status.Error(codes.FailedPrecondition, "rate configuration is file based; edit the file instead")
	}
	in := *req
	if claims, ok := auth.ClaimsFromContext(ctx); ok && in.PublishedBy == "" {
		in.PublishedBy = claims.Subject
	}
	resp, err := h.uc.PublishRateConfig.Execute(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return &resp, nil
}

// toStatus maps domain errors onto gRPC codes.
func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, valueobject.ErrValidation),
		errors.Is(err, valueobject.ErrInvalidRateConfig),
		errors.Is(err, valueobject.ErrUnknownProduct):
		code = codes.InvalidArgument
	case errors.Is(err, valueobject.ErrScenarioNotFound):
		code = codes.NotFound
	case errors.Is(err, valueobject.ErrConfigurationUnavailable),
		errors.Is(err, valueobject.ErrPersistence):
		code = codes.Unavailable
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	default:
		code = codes.Internal
	}
	return status.Error(code, err.Error())
}
