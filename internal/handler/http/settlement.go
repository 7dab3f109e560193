package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SettlementHandler interface {
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	ListPeriods(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	ActivatePeriod(w http.ResponseWriter, r *http.Request)
	CancelPeriod(w http.ResponseWriter, r *http.Request)

	Run(w http.ResponseWriter, r *http.Request)
	ListSettlements(w http.ResponseWriter, r *http.Request)
	ExportCSV(w http.ResponseWriter, r *http.Request)
	ExportXLSX(w http.ResponseWriter, r *http.Request)

	ProcessNightPay(w http.ResponseWriter, r *http.Request)
}

type SettlementHandlerImpl struct {
	settlementService settlement.SettlementService
}

func NewSettlementHandler(settlementService settlement.SettlementService) SettlementHandler {
	return &SettlementHandlerImpl{settlementService: settlementService}
}

// CreatePeriod implements SettlementHandler.
func (h *SettlementHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req settlement.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreatePeriod decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	period, err := h.settlementService.CreatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Flexible work period created", settlement.NewPeriodResponse(period))
}

// ListPeriods implements SettlementHandler.
func (h *SettlementHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.settlementService.ListPeriods(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]settlement.PeriodResponse, 0, len(periods))
	for _, p := range periods {
		result = append(result, settlement.NewPeriodResponse(p))
	}
	response.Success(w, result)
}

// GetPeriod implements SettlementHandler.
func (h *SettlementHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.settlementService.GetPeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, settlement.NewPeriodResponse(period))
}

// ActivatePeriod implements SettlementHandler.
func (h *SettlementHandlerImpl) ActivatePeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.settlementService.ActivatePeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Flexible work period activated", settlement.NewPeriodResponse(period))
}

// CancelPeriod implements SettlementHandler.
func (h *SettlementHandlerImpl) CancelPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.settlementService.CancelPeriod(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Flexible work period cancelled", settlement.NewPeriodResponse(period))
}

// Run implements SettlementHandler. A second run of a settled period is a 409.
func (h *SettlementHandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	result, err := h.settlementService.RunQuarterlySettlement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Quarterly settlement completed", settlement.NewRunResponse(result))
}

// ListSettlements implements SettlementHandler.
func (h *SettlementHandlerImpl) ListSettlements(w http.ResponseWriter, r *http.Request) {
	rows, err := h.settlementService.ListSettlements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]settlement.SettlementResponse, 0, len(rows))
	for _, row := range rows {
		result = append(result, settlement.NewSettlementResponse(row))
	}
	response.Success(w, result)
}

// ExportCSV implements SettlementHandler.
func (h *SettlementHandlerImpl) ExportCSV(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "id")
	body, err := h.settlementService.ExportCSV(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, "text/csv; charset=utf-8", fmt.Sprintf("settlement-%s.csv", periodID), body)
}

// ExportXLSX implements SettlementHandler.
func (h *SettlementHandlerImpl) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "id")
	body, err := h.settlementService.ExportXLSX(r.Context(), periodID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, xlsxContentType, fmt.Sprintf("settlement-%s.xlsx", periodID), body)
}

// ProcessNightPay implements SettlementHandler.
func (h *SettlementHandlerImpl) ProcessNightPay(w http.ResponseWriter, r *http.Request) {
	var req settlement.ProcessNightPayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("ProcessNightPay decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.settlementService.ProcessMonthlyNightPay(r.Context(), req.ParsedMonth.Year(), req.ParsedMonth.Month())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Night allowance processed", settlement.NewNightPayResponse(result))
}
