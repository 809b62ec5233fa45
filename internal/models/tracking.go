package models

import "time"

// TrackingStatus is the tracking service's fixed status vocabulary.
type TrackingStatus string

const (
	TrackingStatusWaitingPayment TrackingStatus = "waiting_payment"
	TrackingStatusPaid           TrackingStatus = "paid"
	TrackingStatusCancelled      TrackingStatus = "cancelled"
	TrackingStatusRefunded       TrackingStatus = "refunded"
)

// gatewayStatusMap translates the gateway's free-form status vocabulary
// into the tracking vocabulary. Lookup is by lowercased status; anything
// unmatched defaults to waiting_payment.
var gatewayStatusMap = map[string]TrackingStatus{
	"paid":      TrackingStatusPaid,
	"approved":  TrackingStatusPaid,
	"completed": TrackingStatusPaid,
	"succeeded": TrackingStatusPaid,
	"cancelled": TrackingStatusCancelled,
	"canceled":  TrackingStatusCancelled,
	"refused":   TrackingStatusCancelled,
	"expired":   TrackingStatusCancelled,
	"refunded":  TrackingStatusRefunded,
}

// MapGatewayStatus maps a gateway status string (any letter case) to the
// tracking vocabulary.
func MapGatewayStatus(raw string) TrackingStatus {
	if status, ok := gatewayStatusMap[normalizeStatusKey(raw)]; ok {
		return status
	}
	return TrackingStatusWaitingPayment
}

func normalizeStatusKey(raw string) string {
	out := make([]rune, 0, len(raw))
	for _, r := range raw {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if r == ' ' || r == '\t' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// trackingTimeLayout is the UTC timestamp format the tracking service
// expects: YYYY-MM-DD HH:MM:SS.
const trackingTimeLayout = "2006-01-02 15:04:05"

// FormatTrackingTime renders a timestamp in the tracking service's UTC
// format.
func FormatTrackingTime(t time.Time) string {
	return t.UTC().Format(trackingTimeLayout)
}

// TrackingRecord is the sale payload forwarded to the tracking service.
// Nullable fields keep pointer types so absent values serialize as
// explicit nulls, which the tracking API requires.
type TrackingRecord struct {
	OrderID            string             `json:"orderId"`
	Platform           string             `json:"platform"`
	PaymentMethod      string             `json:"paymentMethod"`
	Status             TrackingStatus     `json:"status"`
	CreatedAt          string             `json:"createdAt"`
	ApprovedDate       *string            `json:"approvedDate"`
	RefundedAt         *string            `json:"refundedAt"`
	Customer           TrackingCustomer   `json:"customer"`
	Products           []TrackingProduct  `json:"products"`
	TrackingParameters TrackingParameters `json:"trackingParameters"`
	Commission         Commission         `json:"commission"`
}

// TrackingCustomer is the buyer block of a tracking record.
type TrackingCustomer struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
	Document *string `json:"document"`
	Country  string  `json:"country"`
}

// TrackingProduct is a product line of a tracking record.
type TrackingProduct struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	PlanID       *string `json:"planId"`
	PlanName     *string `json:"planName"`
	Quantity     int     `json:"quantity"`
	PriceInCents int64   `json:"priceInCents"`
}

// TrackingParameters is the attribution block of a tracking record.
type TrackingParameters struct {
	Src         *string `json:"src"`
	Sck         *string `json:"sck"`
	UTMSource   *string `json:"utm_source"`
	UTMMedium   *string `json:"utm_medium"`
	UTMCampaign *string `json:"utm_campaign"`
	UTMContent  *string `json:"utm_content"`
	UTMTerm     *string `json:"utm_term"`
}

// Commission is the amount breakdown of a tracking record. The user
// commission equals the full amount with the gateway fee reported
// separately, matching the upstream accounting contract.
type Commission struct {
	TotalPriceInCents     int64  `json:"totalPriceInCents"`
	GatewayFeeInCents     int64  `json:"gatewayFeeInCents"`
	UserCommissionInCents int64  `json:"userCommissionInCents"`
	Currency              string `json:"currency"`
}
