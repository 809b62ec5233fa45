package server

import (
	"testing"

	"pix-bridge-api/internal/config"
)

func TestNewContainer(t *testing.T) {
	cfg := &config.Config{
		Gateway:  config.GatewayConfig{APIKey: "key", BaseURL: "https://gateway.example"},
		Tracking: config.TrackingConfig{APIToken: "token", BaseURL: "https://tracking.example"},
	}

	container, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer container.Close()

	if container.GatewayService == nil {
		t.Error("gateway service not wired")
	}
	if container.TrackingService == nil {
		t.Error("tracking service not wired")
	}
	if container.RelayService == nil {
		t.Error("relay service not wired")
	}
	if container.Config != cfg {
		t.Error("config not retained")
	}
}
