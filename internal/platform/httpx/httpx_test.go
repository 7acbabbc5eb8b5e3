package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gstbill/gstbill/internal/shared"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("invoice x: %w", shared.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad gst", shared.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: disk full", shared.ErrPersistence), http.StatusServiceUnavailable},
		{ErrBodyTooLarge, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())

		var pd ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pd))
		assert.Equal(t, tc.status, pd.Status)
	}
}

func TestDecodeJSON(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Asha"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &target, 0))
	assert.Equal(t, "Asha", target.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), req, &target, 0), shared.ErrInvalidInput)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`))
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), req, &target, 16), ErrBodyTooLarge)
}
