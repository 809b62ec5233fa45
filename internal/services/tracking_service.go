package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"pix-bridge-api/internal/config"
	"pix-bridge-api/internal/models"
)

// recordSalePath is the deployment's own relay endpoint; the webhook
// adapter posts through it instead of calling Utmify directly so the
// tracking credential stays on one function.
const recordSalePath = "/api/v1/relay/record-sale"

// trackingService implements TrackingService.
type trackingService struct {
	cfg        *config.Config
	httpClient *http.Client
	now        func() time.Time
}

// NewTrackingService creates a tracking service using the given HTTP client.
func NewTrackingService(cfg *config.Config, httpClient *http.Client) TrackingService {
	if httpClient == nil {
		httpClient = DefaultHTTPClient()
	}
	return &trackingService{
		cfg:        cfg,
		httpClient: httpClient,
		now:        time.Now,
	}
}

// BuildTrackingRecord maps a webhook notification into the tracking
// record schema. The only hard requirement is a resolvable order id;
// everything else degrades to defaults or explicit nulls.
func (s *trackingService) BuildTrackingRecord(notif models.WebhookNotification, now time.Time) (*models.TrackingRecord, error) {
	orderID := notif.OrderID()
	if orderID == "" {
		return nil, fmt.Errorf("%w: missing orderId/externalRef/transactionId", models.ErrClientInput)
	}

	status := models.MapGatewayStatus(notif.Status())
	amount := notif.AmountCents()

	createdAt := now
	if ts, ok := notif.CreatedAt(); ok {
		createdAt = ts
	}

	var approvedDate *string
	if status == models.TrackingStatusPaid {
		approved := now
		if ts, ok := notif.PaidAt(); ok {
			approved = ts
		}
		formatted := models.FormatTrackingTime(approved)
		approvedDate = &formatted
	}

	var refundedAt *string
	if status == models.TrackingStatusRefunded {
		formatted := models.FormatTrackingTime(now)
		refundedAt = &formatted
	}

	record := &models.TrackingRecord{
		OrderID:       orderID,
		Platform:      "BlackCat",
		PaymentMethod: "pix",
		Status:        status,
		CreatedAt:     models.FormatTrackingTime(createdAt),
		ApprovedDate:  approvedDate,
		RefundedAt:    refundedAt,
		Customer:      buildTrackingCustomer(notif.Customer()),
		Products: []models.TrackingProduct{
			{
				ID:           s.cfg.Tracking.ProductID,
				Name:         s.cfg.Tracking.ProductName,
				Quantity:     1,
				PriceInCents: amount,
			},
		},
		TrackingParameters: models.TrackingParameters{
			Src:         notif.TrackingField("src"),
			Sck:         notif.TrackingField("sck"),
			UTMSource:   notif.TrackingField("utm_source"),
			UTMMedium:   notif.TrackingField("utm_medium"),
			UTMCampaign: notif.TrackingField("utm_campaign"),
			UTMContent:  notif.TrackingField("utm_content"),
			UTMTerm:     notif.TrackingField("utm_term"),
		},
		Commission: models.Commission{
			TotalPriceInCents: amount,
			GatewayFeeInCents: notif.FeesCents(),
			// Commission is reported on the full amount; the gateway fee
			// is carried separately and not subtracted.
			UserCommissionInCents: amount,
			Currency:              "BRL",
		},
	}

	return record, nil
}

// ProcessNotification builds the tracking record and forwards it through
// the deployment's relay endpoint. Forwarding failures are returned to
// the caller, which decides the response policy.
func (s *trackingService) ProcessNotification(ctx context.Context, notif models.WebhookNotification) (*NotificationResult, error) {
	record, err := s.BuildTrackingRecord(notif, s.now().UTC())
	if err != nil {
		return nil, err
	}

	baseURL, err := s.cfg.ResolveBaseURL()
	if err != nil {
		return &NotificationResult{Record: record}, fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return &NotificationResult{Record: record}, fmt.Errorf("encode tracking record: %w", err)
	}

	endpoint := baseURL + recordSalePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return &NotificationResult{Record: record}, fmt.Errorf("create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"order_id": record.OrderID,
			"status":   record.Status,
			"endpoint": endpoint,
			"error":    err.Error(),
		}).Error("Tracking relay forward failed")
		return &NotificationResult{Record: record}, fmt.Errorf("forward tracking record: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NotificationResult{Record: record}, fmt.Errorf("read relay response: %w", err)
	}

	result := &NotificationResult{
		Record:      record,
		RelayStatus: resp.StatusCode,
		RelayBody:   decodeLoose(string(text)),
	}

	logrus.WithFields(logrus.Fields{
		"order_id":     record.OrderID,
		"status":       record.Status,
		"relay_status": resp.StatusCode,
	}).Info("Tracking record forwarded")

	return result, nil
}

// buildTrackingCustomer maps the notification's optional customer block,
// substituting the tracking service's defaults for absent fields.
func buildTrackingCustomer(customer map[string]any) models.TrackingCustomer {
	out := models.TrackingCustomer{
		Name:    "Cliente",
		Country: "BR",
	}
	if customer == nil {
		return out
	}

	if name, _ := customer["name"].(string); name != "" {
		out.Name = name
	}
	if email, _ := customer["email"].(string); email != "" {
		out.Email = email
	}
	if phone, _ := customer["phone"].(string); phone != "" {
		if digits := models.OnlyDigits(phone); digits != "" {
			out.Phone = &digits
		}
	}

	switch doc := customer["document"].(type) {
	case map[string]any:
		if number, _ := doc["number"].(string); number != "" {
			out.Document = &number
		}
	case string:
		if doc != "" {
			out.Document = &doc
		}
	}

	return out
}
