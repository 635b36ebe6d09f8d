package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// setupValidationRouter wires the handlers without a store; only requests
// rejected before any storage access are exercised here.
func setupValidationRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(nil, nil, nil, nil)
	r.POST("/api/customers", handler.StartSession)
	r.POST("/api/customers/:id/items", handler.AddSessionItem)
	r.PUT("/api/subscriptions", handler.PutSubscription)
	return r
}

func TestStartSessionValidation(t *testing.T) {
	router := setupValidationRouter()

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"missing machine", `{"customer_name":"Sam","multi_single":"single"}`},
		{"bad end time", `{"customer_name":"Sam","machine_name":"PS5-01","multi_single":"single","end_time":"2025-06-01T12:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/api/customers", strings.NewReader(tt.body))
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAddItemValidation(t *testing.T) {
	router := setupValidationRouter()

	t.Run("non-numeric id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/customers/abc/items", strings.NewReader(`{"item_name":"cola","quantity":1}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero quantity", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/customers/1/items", strings.NewReader(`{"item_name":"cola","quantity":0}`))
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPutSubscriptionValidation(t *testing.T) {
	router := setupValidationRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/subscriptions", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
