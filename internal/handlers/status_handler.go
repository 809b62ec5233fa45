package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"pix-bridge-api/internal/services"
	"pix-bridge-api/pkg/lambda"
)

// StatusHandler handles transaction status polling from the checkout
// frontend while the buyer waits for the PIX payment to confirm.
type StatusHandler struct {
	gatewayService services.GatewayService
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(gatewayService services.GatewayService) *StatusHandler {
	return &StatusHandler{
		gatewayService: gatewayService,
	}
}

// GetStatus queries the gateway for one transaction and relays the
// reply verbatim. Polling the same transaction twice yields the same
// response as long as the gateway state has not changed.
func (h *StatusHandler) GetStatus(c *gin.Context) {
	result, err := h.gatewayService.GetSaleStatus(c.Request.Context(), c.Query("transaction_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(result.StatusCode, result.Body)
}

// HandleGet handles transaction status retrieval for Lambda
func (h *StatusHandler) HandleGet(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	result, err := h.gatewayService.GetSaleStatus(ctx, req.QueryParams["transaction_id"])
	if err != nil {
		return lambdaError(err), nil
	}

	return lambdaJSON(result.StatusCode, result.Body), nil
}
