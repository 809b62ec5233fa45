package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"pix-bridge-api/internal/models"
	"pix-bridge-api/internal/services"
	"pix-bridge-api/pkg/lambda"
)

// RelayHandler forwards tracking records to the tracking service. It is
// the only endpoint holding the tracking API credential.
type RelayHandler struct {
	relayService services.RelayService
}

// NewRelayHandler creates a new relay handler
func NewRelayHandler(relayService services.RelayService) *RelayHandler {
	return &RelayHandler{
		relayService: relayService,
	}
}

// RecordSale validates a tracking record and forwards it upstream,
// relaying the upstream status and body.
func (h *RelayHandler) RecordSale(c *gin.Context) {
	var record models.TrackingRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	result, err := h.relayService.RecordSale(c.Request.Context(), &record)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(result.StatusCode, result.Body)
}

// HandleRecord handles tracking record forwarding for Lambda
func (h *RelayHandler) HandleRecord(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var record models.TrackingRecord
	if err := json.Unmarshal(req.Body, &record); err != nil {
		return lambdaJSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "Invalid request body: " + err.Error(),
		}), nil
	}

	result, err := h.relayService.RecordSale(ctx, &record)
	if err != nil {
		return lambdaError(err), nil
	}

	return lambdaJSON(result.StatusCode, result.Body), nil
}
