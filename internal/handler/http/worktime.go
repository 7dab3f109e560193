package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type WorktimeHandler interface {
	Recompute(w http.ResponseWriter, r *http.Request)
	GetSummary(w http.ResponseWriter, r *http.Request)
	MonthlyStats(w http.ResponseWriter, r *http.Request)

	CreateRuleConfig(w http.ResponseWriter, r *http.Request)
	GetEffectiveRuleConfig(w http.ResponseWriter, r *http.Request)
	AddHoliday(w http.ResponseWriter, r *http.Request)
	ListHolidays(w http.ResponseWriter, r *http.Request)
}

type WorktimeHandlerImpl struct {
	worktimeService worktime.WorktimeService
}

func NewWorktimeHandler(worktimeService worktime.WorktimeService) WorktimeHandler {
	return &WorktimeHandlerImpl{worktimeService: worktimeService}
}

// Recompute implements WorktimeHandler.
func (h *WorktimeHandlerImpl) Recompute(w http.ResponseWriter, r *http.Request) {
	var req worktime.RecomputeDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Recompute decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	summary, err := h.worktimeService.RecomputeDay(r.Context(), req.EmployeeID, req.ParsedWorkDate, req.HadDinner)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work summary recomputed", worktime.NewDailyWorkSummaryResponse(summary))
}

// GetSummary implements WorktimeHandler.
func (h *WorktimeHandlerImpl) GetSummary(w http.ResponseWriter, r *http.Request) {
	workDate, ok := validator.IsValidDate(chi.URLParam(r, "date"))
	if !ok {
		response.HandleError(w, validator.ValidationErrors{{Field: "date", Message: "date must be YYYY-MM-DD"}})
		return
	}

	summary, err := h.worktimeService.GetSummary(r.Context(), chi.URLParam(r, "employeeID"), workDate)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, worktime.NewDailyWorkSummaryResponse(summary))
}

// MonthlyStats implements WorktimeHandler.
func (h *WorktimeHandlerImpl) MonthlyStats(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())

	var errs validator.ValidationErrors
	if s := r.URL.Query().Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be a number"})
		}
		year = v
	}
	if s := r.URL.Query().Get("month"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > 12 {
			errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be between 1 and 12"})
		}
		month = v
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	stats, err := h.worktimeService.MonthlyStats(r.Context(), chi.URLParam(r, "employeeID"), year, time.Month(month))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, worktime.NewMonthlyWorkStatsResponse(stats))
}

// CreateRuleConfig implements WorktimeHandler.
func (h *WorktimeHandlerImpl) CreateRuleConfig(w http.ResponseWriter, r *http.Request) {
	var req worktime.CreateRuleConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRuleConfig decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	cfg, err := h.worktimeService.CreateRuleConfig(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Rule configuration created", worktime.NewRuleConfigResponse(cfg))
}

// GetEffectiveRuleConfig implements WorktimeHandler. The date query
// parameter defaults to today.
func (h *WorktimeHandlerImpl) GetEffectiveRuleConfig(w http.ResponseWriter, r *http.Request) {
	date := time.Now()
	if s := r.URL.Query().Get("date"); s != "" {
		d, ok := validator.IsValidDate(s)
		if !ok {
			response.HandleError(w, validator.ValidationErrors{{Field: "date", Message: "date must be YYYY-MM-DD"}})
			return
		}
		date = d
	}

	cfg, err := h.worktimeService.GetEffectiveRuleConfig(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, worktime.NewRuleConfigResponse(cfg))
}

// AddHoliday implements WorktimeHandler.
func (h *WorktimeHandlerImpl) AddHoliday(w http.ResponseWriter, r *http.Request) {
	var req worktime.HolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AddHoliday decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	holiday, err := h.worktimeService.AddHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday saved", holidayResponse(holiday))
}

// ListHolidays implements WorktimeHandler.
func (h *WorktimeHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year := time.Now().Year()
	if s := r.URL.Query().Get("year"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			response.HandleError(w, validator.ValidationErrors{{Field: "year", Message: "year must be a number"}})
			return
		}
		year = v
	}

	holidays, err := h.worktimeService.ListHolidays(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]worktime.HolidayResponse, 0, len(holidays))
	for _, hd := range holidays {
		result = append(result, holidayResponse(hd))
	}
	response.Success(w, result)
}

func holidayResponse(h worktime.Holiday) worktime.HolidayResponse {
	return worktime.HolidayResponse{Date: h.Date.Format("2006-01-02"), Name: h.Name}
}
