package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pix-bridge-api/internal/models"
	"pix-bridge-api/internal/services"
	"pix-bridge-api/pkg/lambda"
)

// WebhookHandler receives payment notifications from the gateway and
// turns them into tracking records.
type WebhookHandler struct {
	trackingService services.TrackingService
	webhookToken    string
}

// NewWebhookHandler creates a new webhook handler. The token guards the
// Lambda entrypoint; the HTTP server applies it as middleware instead.
func NewWebhookHandler(trackingService services.TrackingService, webhookToken string) *WebhookHandler {
	return &WebhookHandler{
		trackingService: trackingService,
		webhookToken:    webhookToken,
	}
}

// webhookAck is the acknowledgment returned to the gateway. Utmify
// carries the relay's reply through; Message explains a failed forward.
type webhookAck struct {
	Success   bool   `json:"success"`
	OrderID   string `json:"orderId,omitempty"`
	Status    string `json:"status,omitempty"`
	Forwarded bool   `json:"forwarded"`
	Utmify    any    `json:"utmify,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ReceiveNotification processes one gateway notification. The gateway
// retries on non-2xx replies, so everything past basic validation is
// acknowledged with 200 even when forwarding the tracking record fails.
func (h *WebhookHandler) ReceiveNotification(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "Unable to read request body",
		})
		return
	}

	notif, err := models.ParseWebhookNotification(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "Invalid notification body: " + err.Error(),
		})
		return
	}

	status, ack := h.process(c.Request.Context(), notif)
	c.JSON(status, ack)
}

// HandleNotify handles gateway notifications for Lambda
func (h *WebhookHandler) HandleNotify(ctx context.Context, req *lambda.Request) (*lambda.Response, error) {
	if h.webhookToken != "" {
		token := req.QueryParams["token"]
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.webhookToken)) != 1 {
			return lambdaJSON(http.StatusUnauthorized, ErrorResponse{
				Success: false,
				Message: "Invalid webhook token",
			}), nil
		}
	}

	notif, err := models.ParseWebhookNotification(req.Body)
	if err != nil {
		return lambdaJSON(http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: "Invalid notification body: " + err.Error(),
		}), nil
	}

	status, ack := h.process(ctx, notif)
	return lambdaJSON(status, ack), nil
}

// process runs the notification through the tracking service and decides
// the acknowledgment. Only unusable notifications earn a 400; forwarding
// problems are logged and acknowledged.
func (h *WebhookHandler) process(ctx context.Context, notif models.WebhookNotification) (int, any) {
	result, err := h.trackingService.ProcessNotification(ctx, notif)
	if err != nil {
		if errors.Is(err, models.ErrClientInput) {
			return http.StatusBadRequest, ErrorResponse{
				Success: false,
				Message: err.Error(),
			}
		}

		ack := webhookAck{Success: false, Forwarded: false, Message: err.Error()}
		if result != nil && result.Record != nil {
			ack.OrderID = result.Record.OrderID
			ack.Status = string(result.Record.Status)
		}
		logrus.WithFields(logrus.Fields{
			"order_id": ack.OrderID,
			"error":    err.Error(),
		}).Warn("Notification acknowledged without forwarding")
		return http.StatusOK, ack
	}

	forwarded := result.RelayStatus >= 200 && result.RelayStatus < 300
	if !forwarded {
		logrus.WithFields(logrus.Fields{
			"order_id":     result.Record.OrderID,
			"relay_status": result.RelayStatus,
		}).Warn("Tracking relay rejected the record")
	}

	return http.StatusOK, webhookAck{
		Success:   true,
		OrderID:   result.Record.OrderID,
		Status:    string(result.Record.Status),
		Forwarded: forwarded,
		Utmify:    result.RelayBody,
	}
}
