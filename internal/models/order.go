package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// OrderRequest represents the checkout order payload received on the
// sale-creation endpoint. Amounts are integer minor units (centavos).
type OrderRequest struct {
	Amount        MinorUnits     `json:"amount"`
	Currency      string         `json:"currency,omitempty"`
	PaymentMethod string         `json:"paymentMethod,omitempty"`
	Items         []OrderItem    `json:"items"`
	Customer      OrderCustomer  `json:"customer"`
	Pix           map[string]any `json:"pix,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	PostbackURL   string         `json:"postbackUrl,omitempty"`
	ExternalRef   string         `json:"externalRef,omitempty"`
	UTMSource     string         `json:"utm_source,omitempty"`
	UTMMedium     string         `json:"utm_medium,omitempty"`
	UTMCampaign   string         `json:"utm_campaign,omitempty"`
	UTMContent    string         `json:"utm_content,omitempty"`
	UTMTerm       string         `json:"utm_term,omitempty"`
}

// OrderItem is a single checkout line item. The gateway receives items
// verbatim, so unknown fields must survive the round trip; only the
// tangible flag is interpreted locally.
type OrderItem map[string]any

// Tangible reports whether the item is flagged as a physical good.
func (i OrderItem) Tangible() bool {
	v, ok := i["tangible"].(bool)
	return ok && v
}

// HasTangibleItem reports whether any item in the order is tangible.
// Tangible items make the shipping block mandatory.
func HasTangibleItem(items []OrderItem) bool {
	for _, it := range items {
		if it.Tangible() {
			return true
		}
	}
	return false
}

// OrderCustomer holds the buyer identification fields from the checkout.
type OrderCustomer struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Phone    string        `json:"phone"`
	Document Document      `json:"document"`
	Address  *OrderAddress `json:"address,omitempty"`
}

// OrderAddress is the shipping address supplied by the checkout.
type OrderAddress struct {
	Street       string `json:"street"`
	StreetNumber string `json:"streetNumber"`
	Complement   string `json:"complement,omitempty"`
	ZipCode      string `json:"zipCode"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country,omitempty"`
}

// Document is the customer's fiscal document (CPF/CNPJ). The checkout
// sends it either as a plain string or as a {type, number} object.
type Document struct {
	Type   string `json:"type,omitempty"`
	Number string `json:"number"`
}

// UnmarshalJSON accepts both the plain-string and the object form.
func (d *Document) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*d = Document{}
		return nil
	}

	if strings.HasPrefix(trimmed, "{") {
		type documentAlias Document
		var obj documentAlias
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*d = Document(obj)
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// Numeric documents occasionally arrive unquoted.
		var num json.Number
		if numErr := json.Unmarshal(data, &num); numErr != nil {
			return err
		}
		raw = num.String()
	}
	*d = Document{Number: raw}
	return nil
}

// MarshalJSON always emits the object form.
func (d Document) MarshalJSON() ([]byte, error) {
	type documentAlias Document
	return json.Marshal(documentAlias(d))
}

// MinorUnits is an integer amount in currency minor units. The checkout
// sometimes sends amounts as numeric strings, so decoding is tolerant.
type MinorUnits int64

// UnmarshalJSON accepts numbers and numeric strings; non-finite or
// non-numeric values fail decoding.
func (m *MinorUnits) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*m = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*m = 0
		return nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid amount %q: not finite", s)
	}
	*m = MinorUnits(math.Round(f))
	return nil
}

// OnlyDigits strips every non-digit rune from the value. Phone numbers,
// documents and zip codes must reach the gateway as digits-only strings.
func OnlyDigits(v string) string {
	var b strings.Builder
	for _, r := range v {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
