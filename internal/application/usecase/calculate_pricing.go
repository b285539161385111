package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/pricing-service/internal/application/dto"
	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/service"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
)

// CalculatePricingUseCase sizes a loan and optionally saves the result.
type CalculatePricingUseCase struct {
	engine *service.PricingEngine
	saver  *SaveScenarioUseCase
	logger *slog.Logger
	now    func() time.Time
}

// NewCalculatePricingUseCase wires dependencies. saver may be nil, in which
// case save_as requests report a failed save.
func NewCalculatePricingUseCase(
	engine *service.PricingEngine,
	saver *SaveScenarioUseCase,
	logger *slog.Logger,
) *CalculatePricingUseCase {
	return &CalculatePricingUseCase{
		engine: engine,
		saver:  saver,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the clock used to default the funding date.
func (uc *CalculatePricingUseCase) WithClock(now func() time.Time) *CalculatePricingUseCase {
	uc.now = now
	return uc
}

// Execute prices req. Validation failures are reported in the result, not
// as an error, and a failed save never changes the result.
func (uc *CalculatePricingUseCase) Execute(
	ctx context.Context,
	req dto.PricingRequest,
) (dto.PricingResponse, error) {
	ctx, span := tracer.Start(ctx, "CalculatePricing")
	defer span.End()

	if err := ctx.Err(); err != nil {
		return dto.PricingResponse{}, err
	}

	// 1. Map the request onto inputs with defaults applied.
	inputs, errs := ToLoanInputs(req, uc.now())

	// 2. Price.
	var result model.PricingResult
	if len(errs) > 0 {
		result = model.InvalidPricingResult(errs, nil)
	} else {
		result = uc.engine.Calculate(inputs)
	}
	span.SetAttributes(
		attribute.String("pricing.product_type", inputs.ProductType.String()),
		attribute.Bool("pricing.is_valid", result.IsValid),
	)
	uc.logger.Debug("pricing calculated",
		"product_type", inputs.ProductType.String(),
		"is_valid", result.IsValid,
		"loan_amount", result.LoanAmount.String(),
		"warnings", len(result.Warnings),
	)

	resp := dto.PricingResponse{Inputs: inputs, Result: result}

	// 3. Optional save.
	if req.SaveAs != nil {
		resp.Save = uc.save(ctx, req.SaveAs, inputs, result)
	}
	return resp, nil
}

func (uc *CalculatePricingUseCase) save(
	ctx context.Context,
	saveAs *dto.SaveAs,
	inputs model.LoanInputs,
	result model.PricingResult,
) *dto.SaveStatus {
	// The id is fixed before the first attempt so a retry can reuse it.
	id := saveAs.ScenarioID
	if id == "" {
		id = uuid.NewString()
	}
	status := &dto.SaveStatus{ScenarioID: id}

	if uc.saver == nil {
		status.Error = "scenario store not configured"
		return status
	}

	if _, err := uc.saver.Execute(ctx, dto.SaveScenarioRequest{
		ScenarioID: id,
		Name:       saveAs.Name,
		Owner:      saveAs.Owner,
		Inputs:     inputs,
		Result:     result,
	}); err != nil {
		uc.logger.Warn("scenario save failed", "scenario_id", id, "error", err)
		status.Error = err.Error()
		return status
	}

	status.Success = true
	return status
}

// ToLoanInputs applies request defaults and parses the enumerations. The
// returned messages are request errors that stop the calculation.
func ToLoanInputs(req dto.PricingRequest, now time.Time) (model.LoanInputs, []string) {
	var errs []string

	product, err := valueobject.NewProductType(req.ProductType)
	if err != nil {
		errs = append(errs, err.Error())
	}
	purpose, err := valueobject.NewLoanPurpose(req.LoanPurpose)
	if err != nil {
		errs = append(errs, err.Error())
	}

	in := model.DefaultLoanInputs(product)
	in.LoanPurpose = purpose
	in.PurchasePrice = req.PurchasePrice
	in.AfterRepairValue = req.AfterRepairValue
	in.RehabCosts = req.RehabCosts
	in.AsIsValue = req.AsIsValue
	in.CurrentBalance = req.CurrentBalance

	setDecimal(&in.LoanToCostRatio, req.LoanToCostRatio)
	setDecimal(&in.LoanToARVRatio, req.LoanToARVRatio)
	setDecimal(&in.InterestRate, req.InterestRate)
	setDecimal(&in.Fees.OriginationFeeRate, req.OriginationFeeRate)
	setDecimal(&in.Fees.InspectionFee, req.InspectionFee)
	setDecimal(&in.Fees.ProcessingFee, req.ProcessingFee)
	setDecimal(&in.Fees.AppraisalFee, req.AppraisalFee)
	setDecimal(&in.Fees.TitleInsurance, req.TitleInsurance)
	setDecimal(&in.Fees.AttorneyFee, req.AttorneyFee)
	setDecimal(&in.Fees.ExtensionFeeRate, req.ExtensionFeeRate)
	if req.TermMonths != nil {
		in.TermMonths = *req.TermMonths
	}
	if req.InterestReserveMonths != nil {
		in.Fees.InterestReserveMonths = *req.InterestReserveMonths
	}
	if req.InterestReserveRequired != nil {
		in.Fees.InterestReserveRequired = *req.InterestReserveRequired
	}
	if req.FundingDate != nil {
		in.FundingDate = req.FundingDate.UTC()
	}
	if req.MaturityDate != nil {
		in.MaturityDate = req.MaturityDate.UTC()
	}

	return in.WithDates(now), errs
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}
