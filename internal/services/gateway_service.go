package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"pix-bridge-api/internal/config"
	"pix-bridge-api/internal/models"
)

const (
	createSalePath = "/api/sales/create-sale"
	saleStatusPath = "/api/sales/%s/status"

	apiKeyHeader = "X-API-Key"
)

// gatewayService implements GatewayService against the Blackcat HTTP API.
type gatewayService struct {
	cfg        *config.Config
	httpClient *http.Client
}

// NewGatewayService creates a gateway service using the given HTTP client.
// A nil client gets a default with timeouts and connection pooling suited
// to short-lived serverless invocations.
func NewGatewayService(cfg *config.Config, httpClient *http.Client) GatewayService {
	if httpClient == nil {
		httpClient = DefaultHTTPClient()
	}
	return &gatewayService{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

// DefaultHTTPClient builds the HTTP client shared by all outbound calls.
func DefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// CreateSale validates the order, maps it into the gateway schema and
// posts it to the create-sale endpoint. The gateway's reply is returned
// with its own status code; the body is normalized so the frontend can
// rely on `id`, `transactionId` and `pix.qrcode`.
func (s *gatewayService) CreateSale(ctx context.Context, order *models.OrderRequest) (*UpstreamResult, error) {
	if !s.cfg.HasGatewayKey() {
		return nil, fmt.Errorf("%w: BLACKCAT_API_KEY is not set", models.ErrConfiguration)
	}

	payload, err := models.BuildGatewaySalePayload(order)
	if err != nil {
		return nil, err
	}

	result, err := s.call(ctx, http.MethodPost, s.cfg.Gateway.BaseURL+createSalePath, payload)
	if err != nil {
		return nil, err
	}

	if body, ok := result.Body.(map[string]any); ok {
		result.Body = models.NormalizeSaleResult(body)
	}
	return result, nil
}

// GetSaleStatus queries the gateway for the state of one transaction and
// passes the response through verbatim.
func (s *gatewayService) GetSaleStatus(ctx context.Context, transactionID string) (*UpstreamResult, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transaction_id is required", models.ErrClientInput)
	}
	if !s.cfg.HasGatewayKey() {
		return nil, fmt.Errorf("%w: BLACKCAT_API_KEY is not set", models.ErrConfiguration)
	}

	endpoint := s.cfg.Gateway.BaseURL + fmt.Sprintf(saleStatusPath, url.PathEscape(transactionID))
	return s.call(ctx, http.MethodGet, endpoint, nil)
}

// call performs one outbound request against the gateway. Upstream
// failure statuses are not errors: the caller relays them as-is.
func (s *gatewayService) call(ctx context.Context, method, endpoint string, payload any) (*UpstreamResult, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode gateway payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, s.cfg.Gateway.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"method":   method,
			"endpoint": endpoint,
			"error":    err.Error(),
		}).Error("Gateway request failed")
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	return &UpstreamResult{
		StatusCode: resp.StatusCode,
		Body:       decodeLoose(string(text)),
	}, nil
}
