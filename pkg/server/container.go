package server

import (
	"net/http"

	"pix-bridge-api/internal/config"
	"pix-bridge-api/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	GatewayService  services.GatewayService
	TrackingService services.TrackingService
	RelayService    services.RelayService

	httpClient *http.Client
}

// NewContainer creates a new dependency injection container. All outbound
// services share one pooled HTTP client so warm serverless invocations
// reuse connections.
func NewContainer(cfg *config.Config) (*Container, error) {
	httpClient := services.DefaultHTTPClient()

	return &Container{
		Config:          cfg,
		GatewayService:  services.NewGatewayService(cfg, httpClient),
		TrackingService: services.NewTrackingService(cfg, httpClient),
		RelayService:    services.NewRelayService(cfg, httpClient),
		httpClient:      httpClient,
	}, nil
}

// Close cleans up all resources
func (c *Container) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}
