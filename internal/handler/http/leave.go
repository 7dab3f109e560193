package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	Debit(w http.ResponseWriter, r *http.Request)
	Grant(w http.ResponseWriter, r *http.Request)
	ListTransactions(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// GetBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := l.leaveService.GetLeaveBalance(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, leave.NewLeaveBalanceResponse(balance))
}

// Debit implements LeaveHandler. A business rejection is still a 200 with
// approved=false and the reason.
func (l *LeaveHandlerImpl) Debit(w http.ResponseWriter, r *http.Request) {
	var req leave.DebitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("DebitLeave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// The path decides whose bank is debited.
	req.EmployeeID = chi.URLParam(r, "employeeID")

	result, err := l.leaveService.DebitLeave(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !result.Approved {
		response.SuccessWithMessage(w, "Leave debit rejected", leave.NewDebitResultResponse(result))
		return
	}
	response.SuccessWithMessage(w, "Leave debited successfully", leave.NewDebitResultResponse(result))
}

// Grant implements LeaveHandler.
func (l *LeaveHandlerImpl) Grant(w http.ResponseWriter, r *http.Request) {
	var req leave.GrantLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("GrantLeave decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.EmployeeID = chi.URLParam(r, "employeeID")

	balance, err := l.leaveService.Grant(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave granted successfully", leave.NewLeaveBalanceResponse(balance))
}

// ListTransactions implements LeaveHandler.
func (l *LeaveHandlerImpl) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := l.leaveService.ListTransactions(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]leave.TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		result = append(result, leave.NewTransactionResponse(t))
	}
	response.Success(w, result)
}
