package models

import (
	"fmt"
	"strings"
)

// GatewaySalePayload is the order reshaped into the gateway's create-sale
// schema. Invariants: customer document and phone are digits-only strings,
// and the shipping block is present if and only if at least one item is
// tangible.
type GatewaySalePayload struct {
	Amount        int64            `json:"amount"`
	Currency      string           `json:"currency"`
	PaymentMethod string           `json:"paymentMethod"`
	Items         []OrderItem      `json:"items"`
	Customer      GatewayCustomer  `json:"customer"`
	Shipping      *GatewayShipping `json:"shipping,omitempty"`
	Pix           map[string]any   `json:"pix,omitempty"`
	Metadata      map[string]any   `json:"metadata,omitempty"`
	PostbackURL   string           `json:"postbackUrl,omitempty"`
	ExternalRef   string           `json:"externalRef,omitempty"`
	UTMSource     string           `json:"utm_source,omitempty"`
	UTMMedium     string           `json:"utm_medium,omitempty"`
	UTMCampaign   string           `json:"utm_campaign,omitempty"`
	UTMContent    string           `json:"utm_content,omitempty"`
	UTMTerm       string           `json:"utm_term,omitempty"`
}

// GatewayCustomer is the buyer block in the gateway schema.
type GatewayCustomer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}

// GatewayShipping is the shipping block in the gateway schema.
type GatewayShipping struct {
	Street       string `json:"street"`
	StreetNumber string `json:"streetNumber"`
	Complement   string `json:"complement"`
	ZipCode      string `json:"zipCode"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// BuildGatewaySalePayload validates an order and maps it into the gateway
// schema. All failures wrap ErrClientInput and happen before any network
// call is attempted.
func BuildGatewaySalePayload(req *OrderRequest) (*GatewaySalePayload, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request body", ErrClientInput)
	}

	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive integer in cents", ErrClientInput)
	}

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: items is required (minimum 1)", ErrClientInput)
	}

	customer := GatewayCustomer{
		Name:     strings.TrimSpace(req.Customer.Name),
		Email:    strings.TrimSpace(req.Customer.Email),
		Phone:    OnlyDigits(req.Customer.Phone),
		Document: OnlyDigits(req.Customer.Document.Number),
	}
	if customer.Name == "" || customer.Email == "" || customer.Phone == "" || customer.Document == "" {
		return nil, fmt.Errorf("%w: incomplete customer fields (name/email/phone/document)", ErrClientInput)
	}

	currency := req.Currency
	if currency == "" {
		currency = "BRL"
	}

	payload := &GatewaySalePayload{
		Amount:        int64(req.Amount),
		Currency:      currency,
		PaymentMethod: "PIX", // the only supported rail; inbound value is ignored
		Items:         req.Items,
		Customer:      customer,
		Pix:           req.Pix,
		Metadata:      req.Metadata,
		PostbackURL:   req.PostbackURL,
		ExternalRef:   req.ExternalRef,
		UTMSource:     req.UTMSource,
		UTMMedium:     req.UTMMedium,
		UTMCampaign:   req.UTMCampaign,
		UTMContent:    req.UTMContent,
		UTMTerm:       req.UTMTerm,
	}

	if HasTangibleItem(req.Items) {
		shipping, err := buildShipping(req.Customer.Address)
		if err != nil {
			return nil, err
		}
		payload.Shipping = shipping
	}

	return payload, nil
}

func buildShipping(addr *OrderAddress) (*GatewayShipping, error) {
	if addr == nil {
		return nil, fmt.Errorf("%w: shipping required (tangible item) and customer.address is empty", ErrClientInput)
	}

	shipping := &GatewayShipping{
		Street:       strings.TrimSpace(addr.Street),
		StreetNumber: strings.TrimSpace(addr.StreetNumber),
		Complement:   addr.Complement,
		ZipCode:      OnlyDigits(addr.ZipCode),
		Neighborhood: addr.Neighborhood,
		City:         strings.TrimSpace(addr.City),
		State:        strings.TrimSpace(addr.State),
		Country:      addr.Country,
	}
	if shipping.Country == "" {
		shipping.Country = "BR"
	}

	if shipping.Street == "" || shipping.StreetNumber == "" || shipping.ZipCode == "" ||
		shipping.City == "" || shipping.State == "" {
		return nil, fmt.Errorf("%w: incomplete address (street/number/zip/city/state)", ErrClientInput)
	}

	return shipping, nil
}
