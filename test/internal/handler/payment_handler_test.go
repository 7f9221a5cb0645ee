package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"eventgo-ticketing/internal/handler"
	"eventgo-ticketing/internal/payment"
	"eventgo-ticketing/internal/service"
	apperrors "eventgo-ticketing/pkg/app_errors"
	"eventgo-ticketing/test/internal/mocks/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupPaymentTestRouter(reconcileMock *services.ReconcileServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	paymentHandler := handler.NewPaymentHandler(reconcileMock)
	paymentHandler.RegisterRoutes(router)

	return router
}

func TestPayOrder(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		reconcileMock := services.NewReconcileServiceMock()
		router := setupPaymentTestRouter(reconcileMock)

		reconcileMock.On("PayOrder", mock.Anything, 1).Return(&payment.Charge{
			PayURL:   "https://pay.momo.vn/abc",
			OrderRef: "ORDER_7_1",
		}, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/orders/1/pay", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ORDER_7_1")
	})

	t.Run("Failed - order not pending", func(t *testing.T) {
		reconcileMock := services.NewReconcileServiceMock()
		router := setupPaymentTestRouter(reconcileMock)

		reconcileMock.On("PayOrder", mock.Anything, 1).
			Return(nil, apperrors.ErrOrderNotPending).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/orders/1/pay", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Failed - order expired", func(t *testing.T) {
		reconcileMock := services.NewReconcileServiceMock()
		router := setupPaymentTestRouter(reconcileMock)

		reconcileMock.On("PayOrder", mock.Anything, 1).
			Return(nil, apperrors.ErrOrderExpired).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/orders/1/pay", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Failed - gateway declined", func(t *testing.T) {
		reconcileMock := services.NewReconcileServiceMock()
		router := setupPaymentTestRouter(reconcileMock)

		reconcileMock.On("PayOrder", mock.Anything, 1).
			Return(nil, apperrors.ErrGatewayDeclined).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/orders/1/pay", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestWebhook(t *testing.T) {
	payload := []byte(`{"orderId":"ORDER_7_1","requestId":"REQ_1","resultCode":0}`)

	t.Run("Success - forwards raw body and signature", func(t *testing.T) {
		reconcileMock := services.NewReconcileServiceMock()
		router := setupPaymentTestRouter(reconcileMock)

		reconcileMock.On("HandleWebhook", mock.Anything, payload, "sig-value").
			Return(&service.WebhookOutcome{OrderID: 1, Applied: true}, nil).Once()

		req := createRawHTTPRequest("POST", "/api/v1/payment/webhook", payload, "sig-value")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		reconcileMock.AssertExpectations(t)
	})

	t.Run("Success - duplicate webhook still 200", func(t *testing.T) {
		reconcileMock := services.NewReconcileServiceMock()
		router := setupPaymentTestRouter(reconcileMock)

		reconcileMock.On("HandleWebhook", mock.Anything, payload, "sig-value").
			Return(&service.WebhookOutcome{OrderID: 1, Duplicate: true}, nil).Once()

		req := createRawHTTPRequest("POST", "/api/v1/payment/webhook", payload, "sig-value")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Failed - bad signature is 400", func(t *testing.T) {
		reconcileMock := services.NewReconcileServiceMock()
		router := setupPaymentTestRouter(reconcileMock)

		reconcileMock.On("HandleWebhook", mock.Anything, payload, "bad").
			Return(nil, apperrors.ErrInvalidSignature).Once()

		req := createRawHTTPRequest("POST", "/api/v1/payment/webhook", payload, "bad")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Failed - invalid order ref is 400", func(t *testing.T) {
		reconcileMock := services.NewReconcileServiceMock()
		router := setupPaymentTestRouter(reconcileMock)

		reconcileMock.On("HandleWebhook", mock.Anything, payload, "sig-value").
			Return(nil, apperrors.ErrInvalidOrderRef).Once()

		req := createRawHTTPRequest("POST", "/api/v1/payment/webhook", payload, "sig-value")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCheckStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		reconcileMock := services.NewReconcileServiceMock()
		router := setupPaymentTestRouter(reconcileMock)

		reconcileMock.On("CheckStatus", mock.Anything, 1).
			Return(&service.WebhookOutcome{OrderID: 1, Applied: true}, nil).Once()

		req := createJSONHTTPRequest("GET", "/api/v1/orders/1/payment-status", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Failed - order not found", func(t *testing.T) {
		reconcileMock := services.NewReconcileServiceMock()
		router := setupPaymentTestRouter(reconcileMock)

		reconcileMock.On("CheckStatus", mock.Anything, 99).
			Return(nil, apperrors.ErrOrderNotFound).Once()

		req := createJSONHTTPRequest("GET", "/api/v1/orders/99/payment-status", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
