package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactories(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"validation", NewValidation("bad"), CodeValidation, http.StatusBadRequest},
		{"not found", NewNotFound("field", "B"), CodeNotFound, http.StatusNotFound},
		{"undefined unit", NewUndefinedUnit("blob"), CodeUndefinedUnit, http.StatusUnprocessableEntity},
		{"dimensionality", NewDimensionality("tesla", "meter", "[mass] / [current] / [time] ** 2", "[length]"), CodeDimensionality, http.StatusUnprocessableEntity},
		{"offset", NewOffsetUnit("degC * meter"), CodeOffsetUnit, http.StatusUnprocessableEntity},
		{"incompatible type", NewIncompatibleFieldType("meter", "MAGNETIC_FIELD", "tesla"), CodeIncompatibleFieldType, http.StatusUnprocessableEntity},
		{"internal", NewInternal(errors.New("boom")), CodeInternal, http.StatusInternalServerError},
		{"database", NewDatabase(errors.New("conn reset")), CodeDatabase, http.StatusInternalServerError},
		{"conflict", NewConflict("taken"), CodeConflict, http.StatusConflict},
		{"duplicate", NewDuplicate("field", "name", "B"), CodeDuplicate, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, GetHTTPStatus(tt.err))
			assert.True(t, HasCode(tt.err, tt.code))
		})
	}
}

func TestErrorChain(t *testing.T) {
	cause := errors.New("no such unit")
	err := fmt.Errorf("load format: %w", NewUndefinedUnit("blob").WithCause(cause))

	assert.True(t, IsAppError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "caused by: no such unit")

	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "blob", appErr.Details["unit"])

	assert.False(t, IsNotFound(err))
	assert.True(t, IsNotFound(NewNotFound("format", "x")))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestWithDetail(t *testing.T) {
	err := NewValidation("bad").WithDetail("field", "B").WithDetail("unit", "T")
	assert.Equal(t, map[string]any{"field": "B", "unit": "T"}, err.Details)
	assert.Equal(t, "VALIDATION_ERROR: bad", err.Error())
}
