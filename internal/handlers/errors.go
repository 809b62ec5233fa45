package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pix-bridge-api/internal/models"
	"pix-bridge-api/pkg/lambda"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// statusForError maps service errors to HTTP status codes: client input
// problems are 400, missing configuration is 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrClientInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the standard error envelope for a service error.
func respondError(c *gin.Context, err error) {
	c.JSON(statusForError(err), ErrorResponse{
		Success: false,
		Message: err.Error(),
	})
}

var jsonHeaders = map[string]string{"Content-Type": "application/json"}

// lambdaJSON marshals a response body for the Lambda transport.
func lambdaJSON(statusCode int, body any) *lambda.Response {
	data, err := json.Marshal(body)
	if err != nil {
		return &lambda.Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    jsonHeaders,
			Body:       []byte(`{"success":false,"message":"Failed to marshal response"}`),
		}
	}
	return &lambda.Response{
		StatusCode: statusCode,
		Headers:    jsonHeaders,
		Body:       data,
	}
}

// lambdaError writes the standard error envelope for the Lambda transport.
func lambdaError(err error) *lambda.Response {
	return lambdaJSON(statusForError(err), ErrorResponse{
		Success: false,
		Message: err.Error(),
	})
}
