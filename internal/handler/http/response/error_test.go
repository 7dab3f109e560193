package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/settlement"
	"github.com/cmlabs-hris/attendance-engine/internal/domain/worktime"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_StatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"validation", validator.ValidationErrors{{Field: "work_date", Message: "bad"}}, http.StatusUnprocessableEntity},
		{"missing config", fmt.Errorf("recompute: %w", worktime.ErrConfigurationMissing), http.StatusUnprocessableEntity},
		{"earned leave overdrawn", fmt.Errorf("recompute: %w", worktime.ErrEarnedLeaveOverdrawn), http.StatusConflict},
		{"settlement conflict", settlement.ErrSettlementConflict, http.StatusConflict},
		{"settlement running", settlement.ErrSettlementInProgress, http.StatusConflict},
		{"period missing", settlement.ErrPeriodNotFound, http.StatusNotFound},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)
			assert.Equal(t, tt.wantCode, rec.Code)

			var body Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
		})
	}
}

func TestHandleError_ConfigurationMissingCode(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, worktime.ErrConfigurationMissing)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CONFIGURATION_MISSING", body.Error.Code)
}
