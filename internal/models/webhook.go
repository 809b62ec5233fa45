package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// WebhookNotification is the transaction object pushed by the gateway on
// payment state changes. The gateway sometimes wraps the transaction in a
// `data` envelope and the field vocabulary is loose, so the notification
// is kept as a generic object and read through accessors.
type WebhookNotification map[string]any

// Candidate keys for the gateway's own transaction identifier.
var webhookTransactionIDKeys = []string{"transactionId", "id", "referenceId"}

// ParseWebhookNotification decodes a webhook body and unwraps the `data`
// envelope when present.
func ParseWebhookNotification(body []byte) (WebhookNotification, error) {
	var root map[string]any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("decode notification: %w", err)
	}

	if data := asMap(root["data"]); data != nil {
		return WebhookNotification(data), nil
	}
	return WebhookNotification(root), nil
}

// Status returns the gateway's raw status string, lowercased.
func (n WebhookNotification) Status() string {
	s, _ := n["status"].(string)
	return strings.ToLower(strings.TrimSpace(s))
}

// TransactionID returns the gateway-assigned transaction identifier.
func (n WebhookNotification) TransactionID() string {
	return stringValue(firstValue(n, webhookTransactionIDKeys))
}

// ExternalRef returns the checkout-assigned order reference: `externalRef`
// directly, or `metadata.orderId`. This is the authoritative correlation
// key because the checkout chose it when creating the sale.
func (n WebhookNotification) ExternalRef() string {
	if ref := stringValue(n["externalRef"]); ref != "" {
		return ref
	}
	if meta := asMap(n["metadata"]); meta != nil {
		return stringValue(meta["orderId"])
	}
	return ""
}

// OrderID resolves the identifier used for tracking correlation,
// preferring the external reference over the gateway transaction id.
func (n WebhookNotification) OrderID() string {
	if ref := n.ExternalRef(); ref != "" {
		return ref
	}
	return n.TransactionID()
}

// AmountCents returns the transaction amount in minor units.
func (n WebhookNotification) AmountCents() int64 {
	return intValue(n["amount"])
}

// FeesCents returns the gateway fee in minor units.
func (n WebhookNotification) FeesCents() int64 {
	return intValue(n["fees"])
}

// CreatedAt returns the notification's creation timestamp, if parseable.
func (n WebhookNotification) CreatedAt() (time.Time, bool) {
	return parseTimestamp(n["createdAt"])
}

// PaidAt returns the payment timestamp, if parseable.
func (n WebhookNotification) PaidAt() (time.Time, bool) {
	return parseTimestamp(n["paidAt"])
}

// Customer returns the customer block, which may be absent.
func (n WebhookNotification) Customer() map[string]any {
	return asMap(n["customer"])
}

// TrackingField returns an attribution field (src, sck, utm_*) as a
// nullable string; absent or empty fields come back nil so the tracking
// record carries explicit nulls.
func (n WebhookNotification) TrackingField(key string) *string {
	if s := stringValue(n[key]); s != "" {
		return &s
	}
	return nil
}

// stringValue renders JSON scalars as strings; identifiers occasionally
// arrive as numbers.
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// intValue renders JSON numbers (or numeric strings) as int64, zero when
// absent or unparseable.
func intValue(v any) int64 {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int64(math.Round(t))
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return int64(math.Round(f))
		}
		return 0
	case string:
		var m MinorUnits
		if err := m.UnmarshalJSON([]byte(`"` + t + `"`)); err != nil {
			return 0
		}
		return int64(m)
	default:
		return 0
	}
}

// Timestamp layouts the gateway has been observed sending.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp accepts ISO-like strings and epoch numbers (seconds or
// milliseconds).
func parseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
		return time.Time{}, false
	case float64:
		if t <= 0 {
			return time.Time{}, false
		}
		// Epoch millis past ~2001 are above this threshold.
		if t > 1e12 {
			return time.UnixMilli(int64(t)).UTC(), true
		}
		return time.Unix(int64(t), 0).UTC(), true
	default:
		return time.Time{}, false
	}
}
