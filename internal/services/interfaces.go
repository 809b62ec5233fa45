package services

import (
	"context"
	"encoding/json"
	"time"

	"pix-bridge-api/internal/models"
)

// UpstreamResult is the outcome of one outbound HTTP call: the upstream
// status code and the decoded body. When the upstream returns something
// that is not JSON, Body is a {"raw": <text>} wrapper instead.
type UpstreamResult struct {
	StatusCode int
	Body       any
}

// NotificationResult is the outcome of processing one webhook
// notification: the tracking record that was built and the relay's reply.
type NotificationResult struct {
	Record      *models.TrackingRecord
	RelayStatus int
	RelayBody   any
}

// GatewayService talks to the Blackcat PIX gateway.
type GatewayService interface {
	// CreateSale validates and maps an order, posts it to the gateway's
	// create-sale endpoint and returns the normalized gateway response.
	CreateSale(ctx context.Context, order *models.OrderRequest) (*UpstreamResult, error)

	// GetSaleStatus queries the gateway's per-transaction status endpoint
	// and passes the response through untouched.
	GetSaleStatus(ctx context.Context, transactionID string) (*UpstreamResult, error)
}

// TrackingService turns gateway webhook notifications into tracking
// records and forwards them through the deployment's relay endpoint.
type TrackingService interface {
	// BuildTrackingRecord maps a notification into a tracking record.
	// now supplies the clock for the fallback timestamps.
	BuildTrackingRecord(notif models.WebhookNotification, now time.Time) (*models.TrackingRecord, error)

	// ProcessNotification builds the record and forwards it to the relay.
	ProcessNotification(ctx context.Context, notif models.WebhookNotification) (*NotificationResult, error)
}

// RelayService forwards tracking records to the Utmify orders API.
type RelayService interface {
	RecordSale(ctx context.Context, record *models.TrackingRecord) (*UpstreamResult, error)
}

// decodeLoose parses an upstream response body defensively: empty bodies
// become an empty object and non-JSON bodies a {"raw": <text>} wrapper,
// because the gateway occasionally answers errors with HTML pages.
func decodeLoose(text string) any {
	if text == "" {
		return map[string]any{}
	}
	var body any
	if err := json.Unmarshal([]byte(text), &body); err != nil {
		return map[string]any{"raw": text}
	}
	return body
}
