package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"pix-bridge-api/internal/config"
	"pix-bridge-api/internal/models"
)

const (
	utmifyOrdersPath = "/api-credentials/orders"

	trackingTokenHeader = "x-api-token"
)

// relayService implements RelayService against the Utmify orders API.
type relayService struct {
	cfg        *config.Config
	httpClient *http.Client
	validator  *validator.Validate
}

// NewRelayService creates a relay service using the given HTTP client.
func NewRelayService(cfg *config.Config, httpClient *http.Client) RelayService {
	if httpClient == nil {
		httpClient = DefaultHTTPClient()
	}
	return &relayService{
		cfg:        cfg,
		httpClient: httpClient,
		validator:  validator.New(),
	}
}

// relayRecordChecks are the structural requirements on an inbound
// tracking record before it is forwarded upstream.
type relayRecordChecks struct {
	OrderID string `validate:"required"`
	Status  string `validate:"required,oneof=waiting_payment paid cancelled refunded"`
}

// RecordSale validates a tracking record and forwards it to the Utmify
// orders API, passing the upstream status and body through.
func (s *relayService) RecordSale(ctx context.Context, record *models.TrackingRecord) (*UpstreamResult, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: empty tracking record", models.ErrClientInput)
	}

	checks := relayRecordChecks{
		OrderID: record.OrderID,
		Status:  string(record.Status),
	}
	if err := s.validator.Struct(checks); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrClientInput, err)
	}

	if !s.cfg.HasTrackingToken() {
		return nil, fmt.Errorf("%w: UTMIFY_API_TOKEN is not set", models.ErrConfiguration)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode tracking record: %w", err)
	}

	endpoint := s.cfg.Tracking.BaseURL + utmifyOrdersPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create tracking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(trackingTokenHeader, s.cfg.Tracking.APIToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"order_id": record.OrderID,
			"error":    err.Error(),
		}).Error("Tracking service request failed")
		return nil, fmt.Errorf("tracking request: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tracking response: %w", err)
	}

	return &UpstreamResult{
		StatusCode: resp.StatusCode,
		Body:       decodeLoose(string(text)),
	}, nil
}
