package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pix-bridge-api/internal/config"
	"pix-bridge-api/internal/models"
)

func notification(t *testing.T, body string) models.WebhookNotification {
	t.Helper()
	n, err := models.ParseWebhookNotification([]byte(body))
	if err != nil {
		t.Fatalf("parse notification: %v", err)
	}
	return n
}

func TestBuildTrackingRecord_PaidSale(t *testing.T) {
	cfg := &config.Config{
		Tracking: config.TrackingConfig{ProductID: "oferta-principal", ProductName: "Oferta Principal"},
	}
	svc := NewTrackingService(cfg, nil)
	now := time.Date(2024, 11, 30, 0, 5, 9, 0, time.UTC)

	n := notification(t, `{"status":"PAID","transactionId":"tx1","externalRef":"ord1","amount":5000,"fees":150,"paidAt":"2024-11-29T18:00:00Z","customer":{"name":"Maria","email":"maria@example.com","phone":"(11) 99999-1234"},"utm_source":"facebook"}`)

	record, err := svc.BuildTrackingRecord(n, now)
	if err != nil {
		t.Fatalf("BuildTrackingRecord: %v", err)
	}

	if record.OrderID != "ord1" {
		t.Errorf("orderId = %q, want ord1", record.OrderID)
	}
	if record.Platform != "BlackCat" || record.PaymentMethod != "pix" {
		t.Errorf("platform/method = %q/%q", record.Platform, record.PaymentMethod)
	}
	if record.Status != models.TrackingStatusPaid {
		t.Errorf("status = %s, want paid", record.Status)
	}
	if record.ApprovedDate == nil || *record.ApprovedDate != "2024-11-29 18:00:00" {
		t.Errorf("approvedDate = %v, want 2024-11-29 18:00:00", record.ApprovedDate)
	}
	if record.RefundedAt != nil {
		t.Errorf("refundedAt must be nil for a paid sale, got %v", *record.RefundedAt)
	}

	if record.Commission.TotalPriceInCents != 5000 {
		t.Errorf("totalPriceInCents = %d", record.Commission.TotalPriceInCents)
	}
	if record.Commission.GatewayFeeInCents != 150 {
		t.Errorf("gatewayFeeInCents = %d", record.Commission.GatewayFeeInCents)
	}
	if record.Commission.UserCommissionInCents != 5000 {
		t.Errorf("userCommissionInCents = %d, want full amount", record.Commission.UserCommissionInCents)
	}

	if len(record.Products) != 1 {
		t.Fatalf("products = %d, want 1", len(record.Products))
	}
	if record.Products[0].ID != "oferta-principal" || record.Products[0].PriceInCents != 5000 {
		t.Errorf("product = %+v", record.Products[0])
	}

	if record.Customer.Name != "Maria" {
		t.Errorf("customer name = %q", record.Customer.Name)
	}
	if record.Customer.Phone == nil || *record.Customer.Phone != "11999991234" {
		t.Errorf("customer phone = %v", record.Customer.Phone)
	}

	if record.TrackingParameters.UTMSource == nil || *record.TrackingParameters.UTMSource != "facebook" {
		t.Errorf("utm_source = %v", record.TrackingParameters.UTMSource)
	}
	if record.TrackingParameters.UTMMedium != nil {
		t.Errorf("absent utm_medium must be nil")
	}
}

func TestBuildTrackingRecord_MissingOrderID(t *testing.T) {
	svc := NewTrackingService(&config.Config{}, nil)

	n := notification(t, `{"status":"paid","amount":5000}`)
	if _, err := svc.BuildTrackingRecord(n, time.Now()); !errors.Is(err, models.ErrClientInput) {
		t.Fatalf("err = %v, want ErrClientInput", err)
	}
}

func TestBuildTrackingRecord_Defaults(t *testing.T) {
	svc := NewTrackingService(&config.Config{}, nil)
	now := time.Date(2024, 12, 1, 10, 0, 0, 0, time.UTC)

	n := notification(t, `{"transactionId":"tx2"}`)
	record, err := svc.BuildTrackingRecord(n, now)
	if err != nil {
		t.Fatalf("BuildTrackingRecord: %v", err)
	}

	if record.Status != models.TrackingStatusWaitingPayment {
		t.Errorf("status = %s, want waiting_payment", record.Status)
	}
	if record.ApprovedDate != nil {
		t.Error("approvedDate must be nil when not paid")
	}
	if record.CreatedAt != "2024-12-01 10:00:00" {
		t.Errorf("createdAt = %q, want clock fallback", record.CreatedAt)
	}
	if record.Customer.Name != "Cliente" || record.Customer.Country != "BR" {
		t.Errorf("customer defaults = %+v", record.Customer)
	}
	if record.Customer.Phone != nil || record.Customer.Document != nil {
		t.Error("absent phone/document must be nil")
	}
}

func TestBuildTrackingRecord_Refunded(t *testing.T) {
	svc := NewTrackingService(&config.Config{}, nil)
	now := time.Date(2024, 12, 2, 8, 30, 0, 0, time.UTC)

	n := notification(t, `{"status":"refunded","transactionId":"tx3"}`)
	record, err := svc.BuildTrackingRecord(n, now)
	if err != nil {
		t.Fatalf("BuildTrackingRecord: %v", err)
	}

	if record.RefundedAt == nil || *record.RefundedAt != "2024-12-02 08:30:00" {
		t.Errorf("refundedAt = %v", record.RefundedAt)
	}
	if record.ApprovedDate != nil {
		t.Error("approvedDate must be nil for refunds")
	}
}

func TestProcessNotification_ForwardsToRelay(t *testing.T) {
	var captured struct {
		path string
		body models.TrackingRecord
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &captured.body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	cfg := &config.Config{
		BaseURL: config.BaseURLConfig{Public: srv.URL},
	}
	svc := NewTrackingService(cfg, srv.Client())

	n := notification(t, `{"status":"paid","transactionId":"tx1","externalRef":"ord1","amount":5000}`)
	result, err := svc.ProcessNotification(context.Background(), n)
	if err != nil {
		t.Fatalf("ProcessNotification: %v", err)
	}

	if captured.path != "/api/v1/relay/record-sale" {
		t.Errorf("relay path = %q", captured.path)
	}
	if captured.body.OrderID != "ord1" {
		t.Errorf("forwarded orderId = %q", captured.body.OrderID)
	}
	if result.RelayStatus != http.StatusOK {
		t.Errorf("relay status = %d", result.RelayStatus)
	}
	if result.Record == nil || result.Record.OrderID != "ord1" {
		t.Errorf("record = %+v", result.Record)
	}
}

func TestProcessNotification_NoBaseURL(t *testing.T) {
	svc := NewTrackingService(&config.Config{}, nil)

	n := notification(t, `{"status":"paid","transactionId":"tx1"}`)
	result, err := svc.ProcessNotification(context.Background(), n)
	if !errors.Is(err, models.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
	if result == nil || result.Record == nil {
		t.Fatal("record must still be built when forwarding cannot happen")
	}
}

func TestProcessNotification_RelayDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	cfg := &config.Config{
		BaseURL: config.BaseURLConfig{Public: srv.URL},
	}
	svc := NewTrackingService(cfg, &http.Client{Timeout: time.Second})

	n := notification(t, `{"status":"paid","transactionId":"tx1"}`)
	result, err := svc.ProcessNotification(context.Background(), n)
	if err == nil {
		t.Fatal("expected a forwarding error")
	}
	if result == nil || result.Record == nil {
		t.Fatal("record must survive a forwarding failure")
	}
}
