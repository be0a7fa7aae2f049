package response_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/response"
)

func TestRespondError(t *testing.T) {
	t.Run("empty details are omitted", func(t *testing.T) {
		w := httptest.NewRecorder()
		response.RespondError(w, http.StatusNotFound, "portfolio not found", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"portfolio not found"}`, w.Body.String())
	})

	t.Run("field details", func(t *testing.T) {
		w := httptest.NewRecorder()
		response.RespondError(w, http.StatusBadRequest, "validation failed", map[string]string{"name": "name is required"})

		assert.JSONEq(t, `{"error":"validation failed","details":{"name":"name is required"}}`, w.Body.String())
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	})
}

func TestRespondJSON_NilBody(t *testing.T) {
	w := httptest.NewRecorder()
	response.RespondJSON(w, http.StatusAccepted, nil)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Empty(t, w.Body.String())
}
