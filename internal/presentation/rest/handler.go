package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bibbank/pricing-service/internal/application/dto"
	"github.com/bibbank/pricing-service/internal/application/usecase"
	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
	"github.com/bibbank/pricing-service/pkg/auth"
)

// maxBodyBytes caps request bodies; a full rate configuration fits easily.
const maxBodyBytes = 1 << 20

// PricingHandler exposes the pricing use cases as JSON over HTTP.
//
// Calculation and quote responses always carry the full body. A result with
// is_valid=false is answered with 422 so plain HTTP clients can branch on the
// status without parsing.
type PricingHandler struct {
	uc      usecase.Set
	schemas requestSchemas
	logger  *slog.Logger
}

// NewPricingHandler compiles the request schemas and wires the use cases.
func NewPricingHandler(uc usecase.Set, logger *slog.Logger) (*PricingHandler, error) {
	schemas, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	return &PricingHandler{uc: uc, schemas: schemas, logger: logger}, nil
}

// RegisterRoutes attaches the API routes to the given mux.
func (h *PricingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/pricing", h.calculatePricing)
	mux.HandleFunc("POST /v1/rate-quotes", h.quoteRate)
	mux.HandleFunc("POST /v1/scenarios", h.saveScenario)
	mux.HandleFunc("GET /v1/scenarios", h.listScenarios)
	mux.HandleFunc("GET /v1/scenarios/{id}", h.getScenario)
	mux.Handle("POST /v1/rate-configs", auth.RequireRoles(http.HandlerFunc(h.publishRateConfig), auth.RolePricingAdmin))
}

func (h *PricingHandler) calculatePricing(w http.ResponseWriter, r *http.Request) {
	var req dto.PricingRequest
	if !h.decode(w, r, "pricing_request", &req) {
		return
	}
	resp, err := h.uc.CalculatePricing.Execute(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, resultStatus(resp.Result.IsValid), resp)
}

func (h *PricingHandler) quoteRate(w http.ResponseWriter, r *http.Request) {
	var req dto.RateQuoteRequest
	if !h.decode(w, r, "rate_quote_request", &req) {
		return
	}
	resp, err := h.uc.QuoteRate.Execute(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, resultStatus(resp.IsValid), resp)
}

func (h *PricingHandler) saveScenario(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveScenarioRequest
	if !h.decode(w, r, "save_scenario_request", &req) {
		return
	}
	resp, err := h.uc.SaveScenario.Execute(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/scenarios/"+resp.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *PricingHandler) listScenarios(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := h.uc.ListScenarios.Execute(r.Context(), dto.ListScenariosRequest{
		Owner: model.OwnerRefs{
			ContactID:     q.Get("contact_id"),
			OpportunityID: q.Get("opportunity_id"),
		},
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PricingHandler) getScenario(w http.ResponseWriter, r *http.Request) {
	resp, err := h.uc.GetScenario.Execute(r.Context(), dto.GetScenarioRequest{ScenarioID: r.PathValue("id")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PricingHandler) publishRateConfig(w http.ResponseWriter, r *http.Request) {
	if h.uc.PublishRateConfig == nil {
		writeError(w, http.StatusConflict, "rate configuration is file based; edit the file instead")
		return
	}
	var req dto.PublishRateConfigRequest
	if !h.decode(w, r, "publish_rate_config_request", &req) {
		return
	}
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok && req.PublishedBy == "" {
		req.PublishedBy = claims.Subject
	}
	resp, err := h.uc.PublishRateConfig.Execute(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// decode reads the body, checks it against the named schema and unmarshals
// it into dst. It writes the 400 response itself and returns false on any
// failure.
func (h *PricingHandler) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}

	violations, err := h.schemas.check(schema, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if len(violations) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "request does not match schema",
			"details": violations,
		})
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return false
	}
	return true
}

func (h *PricingHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, err.Error())
}

func resultStatus(valid bool) int {
	if valid {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}

// httpStatus maps domain errors onto HTTP status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, valueobject.ErrValidation),
		errors.Is(err, valueobject.ErrInvalidRateConfig),
		errors.Is(err, valueobject.ErrUnknownProduct):
		return http.StatusUnprocessableEntity
	case errors.Is(err, valueobject.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, valueobject.ErrConfigurationUnavailable),
		errors.Is(err, valueobject.ErrPersistence):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
