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

// SalesHandler handles sale creation requests from the checkout frontend
type SalesHandler struct {
	gatewayService services.GatewayService
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(gatewayService services.GatewayService) *SalesHandler {
	return &SalesHandler{
		gatewayService: gatewayService,
	}
}

// CreateSale accepts a checkout order, maps it into the gateway schema
// and relays the gateway's reply with the upstream status code.
func (h *SalesHandler) CreateSale(c *gin.Context) {
	var order models.OrderRequest
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	result, err := h.gatewayService.CreateSale(c.Request.Context(), &order)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(result.StatusCode, result.Body)
}

// HandleCreate handles sale creation for Lambda
func (h *SalesHandler) HandleCreate(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	var order models.OrderRequest
	if err := json.Unmarshal(req.Body, &order); err != nil {
		return lambdaJSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "Invalid request body: " + err.Error(),
		}), nil
	}

	result, err := h.gatewayService.CreateSale(ctx, &order)
	if err != nil {
		return lambdaError(err), nil
	}

	return lambdaJSON(result.StatusCode, result.Body), nil
}
