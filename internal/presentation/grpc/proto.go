package grpc

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/pricing-service/internal/application/dto"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "pricing.v1.PricingService"

// Full method names, used by interceptors and the authorization policy.
const (
	MethodCalculatePricing  = "/" + ServiceName + "/CalculatePricing"
	MethodQuoteRate         = "/" + ServiceName + "/QuoteRate"
	MethodSaveScenario      = "/" + ServiceName + "/SaveScenario"
	MethodListScenarios     = "/" + ServiceName + "/ListScenarios"
	MethodGetScenario       = "/" + ServiceName + "/GetScenario"
	MethodPublishRateConfig = "/" + ServiceName + "/PublishRateConfig"
)

// PricingServiceServer is the server API for PricingService.
type PricingServiceServer interface {
	CalculatePricing(context.Context, *dto.PricingRequest) (*dto.PricingResponse, error)
	QuoteRate(context.Context, *dto.RateQuoteRequest) (*dto.RateQuoteResponse, error)
	SaveScenario(context.Context, *dto.SaveScenarioRequest) (*dto.ScenarioResponse, error)
	ListScenarios(context.Context, *dto.ListScenariosRequest) (*dto.ScenarioListResponse, error)
	GetScenario(context.Context, *dto.GetScenarioRequest) (*dto.ScenarioResponse, error)
	PublishRateConfig(context.Context, *dto.PublishRateConfigRequest) (*dto.PublishRateConfigResponse, error)
	mustEmbedUnimplementedPricingServiceServer()
}

// UnimplementedPricingServiceServer provides forward-compatible defaults.
type UnimplementedPricingServiceServer struct{}

func (UnimplementedPricingServiceServer) CalculatePricing(context.Context, *dto.PricingRequest) (*dto.PricingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CalculatePricing not implemented")
}
func (UnimplementedPricingServiceServer) QuoteRate(context.Context, *dto.RateQuoteRequest) (*dto.RateQuoteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method QuoteRate not implemented")
}
func (UnimplementedPricingServiceServer) SaveScenario(context.Context, *dto.SaveScenarioRequest) (*dto.ScenarioResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method SaveScenario not implemented")
}
func (UnimplementedPricingServiceServer) ListScenarios(context.Context, *dto.ListScenariosRequest) (*dto.ScenarioListResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListScenarios not implemented")
}
func (UnimplementedPricingServiceServer) GetScenario(context.Context, *dto.GetScenarioRequest) (*dto.ScenarioResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetScenario not implemented")
}
func (UnimplementedPricingServiceServer) PublishRateConfig(context.Context, *dto.PublishRateConfigRequest) (*dto.PublishRateConfigResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method PublishRateConfig not implemented")
}
func (UnimplementedPricingServiceServer) mustEmbedUnimplementedPricingServiceServer() {}

// RegisterPricingServiceServer registers srv with s.
func RegisterPricingServiceServer(s grpclib.ServiceRegistrar, srv PricingServiceServer) {
	s.RegisterService(&pricingServiceDesc, srv)
}

var pricingServiceDesc = grpclib.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PricingServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "CalculatePricing", Handler: unary(MethodCalculatePricing, PricingServiceServer.CalculatePricing)},
		{MethodName: "QuoteRate", Handler: unary(MethodQuoteRate, PricingServiceServer.QuoteRate)},
		{MethodName: "SaveScenario", Handler: unary(MethodSaveScenario, PricingServiceServer.SaveScenario)},
		{MethodName: "ListScenarios", Handler: unary(MethodListScenarios, PricingServiceServer.ListScenarios)},
		{MethodName: "GetScenario", Handler: unary(MethodGetScenario, PricingServiceServer.GetScenario)},
		{MethodName: "PublishRateConfig", Handler: unary(MethodPublishRateConfig, PricingServiceServer.PublishRateConfig)},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "pricing/v1/pricing.proto",
}

// unary adapts a typed server method to the grpc method handler signature.
func unary[Req, Resp any](
	fullMethod string,
	call func(PricingServiceServer, context.Context, *Req) (*Resp, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpclib.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PricingServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PricingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}
