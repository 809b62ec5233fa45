package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"pix-bridge-api/internal/config"
	"pix-bridge-api/internal/models"
	"pix-bridge-api/internal/services"
)

type fakeGateway struct {
	createResult *services.UpstreamResult
	createErr    error
	statusResult *services.UpstreamResult
	statusErr    error
	statusCalls  int
}

func (f *fakeGateway) CreateSale(ctx context.Context, order *models.OrderRequest) (*services.UpstreamResult, error) {
	return f.createResult, f.createErr
}

func (f *fakeGateway) GetSaleStatus(ctx context.Context, transactionID string) (*services.UpstreamResult, error) {
	f.statusCalls++
	if strings.TrimSpace(transactionID) == "" {
		return nil, fmt.Errorf("%w: transaction_id is required", models.ErrClientInput)
	}
	return f.statusResult, f.statusErr
}

type fakeTracking struct {
	result *services.NotificationResult
	err    error
}

func (f *fakeTracking) BuildTrackingRecord(notif models.WebhookNotification, now time.Time) (*models.TrackingRecord, error) {
	if f.result == nil {
		return nil, f.err
	}
	return f.result.Record, f.err
}

func (f *fakeTracking) ProcessNotification(ctx context.Context, notif models.WebhookNotification) (*services.NotificationResult, error) {
	if notif.OrderID() == "" {
		return nil, fmt.Errorf("%w: missing orderId", models.ErrClientInput)
	}
	return f.result, f.err
}

type fakeRelay struct {
	result *services.UpstreamResult
	err    error
}

func (f *fakeRelay) RecordSale(ctx context.Context, record *models.TrackingRecord) (*services.UpstreamResult, error) {
	return f.result, f.err
}

func newTestRouter(cfg *RouterConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupRoutes(router, cfg)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCreateSale_RelaysGatewayReply(t *testing.T) {
	gateway := &fakeGateway{
		createResult: &services.UpstreamResult{
			StatusCode: http.StatusOK,
			Body:       map[string]any{"id": "tx1", "transactionId": "tx1"},
		},
	}
	router := newTestRouter(&RouterConfig{GatewayService: gateway, TrackingService: &fakeTracking{}, RelayService: &fakeRelay{}})

	w := doRequest(t, router, http.MethodPost, "/api/v1/sales", `{"amount":5000,"items":[{"title":"x"}],"customer":{"name":"Maria","email":"m@x.com","phone":"11999991234","document":{"type":"cpf","number":"12345678900"}}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["transactionId"] != "tx1" {
		t.Errorf("transactionId = %v", body["transactionId"])
	}
}

func TestCreateSale_InvalidJSON(t *testing.T) {
	router := newTestRouter(&RouterConfig{GatewayService: &fakeGateway{}, TrackingService: &fakeTracking{}, RelayService: &fakeRelay{}})

	w := doRequest(t, router, http.MethodPost, "/api/v1/sales", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Error("success must be false")
	}
}

func TestCreateSale_MissingGatewayKey(t *testing.T) {
	// Real gateway service with no key configured: no outbound call, 500.
	gateway := services.NewGatewayService(&config.Config{}, nil)
	router := newTestRouter(&RouterConfig{GatewayService: gateway, TrackingService: &fakeTracking{}, RelayService: &fakeRelay{}})

	w := doRequest(t, router, http.MethodPost, "/api/v1/sales", `{"amount":5000,"items":[{"title":"x"}],"customer":{"name":"Maria","email":"m@x.com","phone":"11999991234","document":"12345678900"}}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestGetStatus_Idempotent(t *testing.T) {
	gateway := &fakeGateway{
		statusResult: &services.UpstreamResult{
			StatusCode: http.StatusOK,
			Body:       map[string]any{"status": "waiting_payment", "amount": float64(5000)},
		},
	}
	router := newTestRouter(&RouterConfig{GatewayService: gateway, TrackingService: &fakeTracking{}, RelayService: &fakeRelay{}})

	first := doRequest(t, router, http.MethodGet, "/api/v1/sales/status?transaction_id=tx1", "")
	second := doRequest(t, router, http.MethodGet, "/api/v1/sales/status?transaction_id=tx1", "")

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("statuses = %d, %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Error("polling twice must yield identical responses")
	}
	if gateway.statusCalls != 2 {
		t.Errorf("gateway calls = %d, want 2", gateway.statusCalls)
	}
}

func TestGetStatus_MissingTransactionID(t *testing.T) {
	router := newTestRouter(&RouterConfig{GatewayService: &fakeGateway{}, TrackingService: &fakeTracking{}, RelayService: &fakeRelay{}})

	w := doRequest(t, router, http.MethodGet, "/api/v1/sales/status", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGetStatus_RawFallback(t *testing.T) {
	gateway := &fakeGateway{
		statusResult: &services.UpstreamResult{
			StatusCode: http.StatusBadGateway,
			Body:       map[string]any{"raw": "<html>down</html>"},
		},
	}
	router := newTestRouter(&RouterConfig{GatewayService: gateway, TrackingService: &fakeTracking{}, RelayService: &fakeRelay{}})

	w := doRequest(t, router, http.MethodGet, "/api/v1/sales/status?transaction_id=tx1", "")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["raw"] != "<html>down</html>" {
		t.Errorf("raw = %v", body["raw"])
	}
}

func TestWebhook_TokenMismatch(t *testing.T) {
	router := newTestRouter(&RouterConfig{
		GatewayService:  &fakeGateway{},
		TrackingService: &fakeTracking{},
		RelayService:    &fakeRelay{},
		WebhookToken:    "secret",
	})

	w := doRequest(t, router, http.MethodPost, "/api/v1/webhooks/payment?token=wrong", `{"status":"paid","transactionId":"tx1"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestWebhook_MissingOrderID(t *testing.T) {
	router := newTestRouter(&RouterConfig{
		GatewayService:  &fakeGateway{},
		TrackingService: &fakeTracking{},
		RelayService:    &fakeRelay{},
	})

	w := doRequest(t, router, http.MethodPost, "/api/v1/webhooks/payment", `{"status":"paid"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestWebhook_AcknowledgesRelayFailure(t *testing.T) {
	record := &models.TrackingRecord{OrderID: "ord1", Status: models.TrackingStatusPaid}
	tracking := &fakeTracking{
		result: &services.NotificationResult{Record: record},
		err:    fmt.Errorf("forward tracking record: connection refused"),
	}
	router := newTestRouter(&RouterConfig{
		GatewayService:  &fakeGateway{},
		TrackingService: tracking,
		RelayService:    &fakeRelay{},
	})

	w := doRequest(t, router, http.MethodPost, "/api/v1/webhooks/payment", `{"status":"paid","externalRef":"ord1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even when forwarding fails", w.Code)
	}
	var ack webhookAck
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ack.Success || ack.Forwarded {
		t.Errorf("ack = %+v, want failure ack without forwarded", ack)
	}
	if ack.OrderID != "ord1" {
		t.Errorf("orderId = %q", ack.OrderID)
	}
	if ack.Message == "" {
		t.Error("failure ack must carry a message")
	}
}

func TestWebhook_ForwardedAck(t *testing.T) {
	record := &models.TrackingRecord{OrderID: "ord1", Status: models.TrackingStatusPaid}
	tracking := &fakeTracking{
		result: &services.NotificationResult{Record: record, RelayStatus: http.StatusOK},
	}
	router := newTestRouter(&RouterConfig{
		GatewayService:  &fakeGateway{},
		TrackingService: tracking,
		RelayService:    &fakeRelay{},
	})

	w := doRequest(t, router, http.MethodPost, "/api/v1/webhooks/payment", `{"status":"paid","externalRef":"ord1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var ack webhookAck
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ack.Forwarded || ack.Status != "paid" {
		t.Errorf("ack = %+v", ack)
	}
}

func TestRecordSale_RelaysUpstreamReply(t *testing.T) {
	relay := &fakeRelay{
		result: &services.UpstreamResult{
			StatusCode: http.StatusOK,
			Body:       map[string]any{"result": "ok"},
		},
	}
	router := newTestRouter(&RouterConfig{GatewayService: &fakeGateway{}, TrackingService: &fakeTracking{}, RelayService: relay})

	w := doRequest(t, router, http.MethodPost, "/api/v1/relay/record-sale", `{"orderId":"ord1","status":"paid"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRecordSale_ClientInput(t *testing.T) {
	relay := &fakeRelay{err: fmt.Errorf("%w: OrderID is required", models.ErrClientInput)}
	router := newTestRouter(&RouterConfig{GatewayService: &fakeGateway{}, TrackingService: &fakeTracking{}, RelayService: relay})

	w := doRequest(t, router, http.MethodPost, "/api/v1/relay/record-sale", `{"status":"paid"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(&RouterConfig{GatewayService: &fakeGateway{}, TrackingService: &fakeTracking{}, RelayService: &fakeRelay{}})

	w := doRequest(t, router, http.MethodGet, "/api/v1/sales", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success {
		t.Error("success must be false")
	}
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(&RouterConfig{GatewayService: &fakeGateway{}, TrackingService: &fakeTracking{}, RelayService: &fakeRelay{}})

	w := doRequest(t, router, http.MethodGet, "/api/v1/unknown", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(&RouterConfig{GatewayService: &fakeGateway{}, TrackingService: &fakeTracking{}, RelayService: &fakeRelay{}})

	w := doRequest(t, router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v", body["status"])
	}
}
