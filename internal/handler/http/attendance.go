package http

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// maxImportSize caps a terminal export upload.
const maxImportSize = 20 << 20

type AttendanceHandler interface {
	Import(w http.ResponseWriter, r *http.Request)
	SubmitManual(w http.ResponseWriter, r *http.Request)
	GetDaily(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &AttendanceHandlerImpl{attendanceService: attendanceService}
}

// Import accepts a terminal export either as a plain text body or as a
// multipart form field named "file".
func (h *AttendanceHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	var body io.Reader = http.MaxBytesReader(w, r.Body, maxImportSize)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			slog.Error("Failed to parse multipart form", "error", err)
			response.BadRequest(w, "Failed to parse form data", nil)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			response.BadRequest(w, "Field 'file' is required", nil)
			return
		}
		defer file.Close()
		body = file
	}

	lines, err := readLines(body)
	if err != nil {
		slog.Error("Failed to read import payload", "error", err)
		response.BadRequest(w, "Failed to read import payload", nil)
		return
	}

	result, err := h.attendanceService.ImportBatch(r.Context(), lines)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Import processed", result)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	return lines, scanner.Err()
}

// SubmitManual implements AttendanceHandler.
func (h *AttendanceHandlerImpl) SubmitManual(w http.ResponseWriter, r *http.Request) {
	var req attendance.ManualEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SubmitManual decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if employeeID, ok := callerEmployeeID(r); ok && !callerIsAdmin(r) {
		req.EmployeeID = employeeID
	}

	day, err := h.attendanceService.SubmitManualEvent(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance event recorded", day)
}

// GetDaily implements AttendanceHandler.
func (h *AttendanceHandlerImpl) GetDaily(w http.ResponseWriter, r *http.Request) {
	workDate, ok := validator.IsValidDate(chi.URLParam(r, "date"))
	if !ok {
		response.HandleError(w, validator.ValidationErrors{{Field: "date", Message: "date must be YYYY-MM-DD"}})
		return
	}

	day, err := h.attendanceService.GetDaily(r.Context(), chi.URLParam(r, "employeeID"), workDate)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, day)
}
