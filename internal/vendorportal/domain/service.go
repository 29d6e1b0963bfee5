// Package domain defines the token-gated vendor portal API. The portal is
// unauthenticated; possession of a valid capability token is the entire
// authorization check.
package domain

import (
	"context"
	"time"
)

// PortalView is what a vendor sees when opening their link: the frozen
// snapshot plus the derived request status.
type PortalView struct {
	VendorRequest VendorRequestView `json:"vendorRequest"`
	Quote         QuoteView         `json:"quote"`
	Items         []ItemView        `json:"items"`
}

type VendorRequestView struct {
	Status      string     `json:"status"`
	Message     *string    `json:"message,omitempty"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
}

type QuoteView struct {
	Title    string `json:"title"`
	Currency string `json:"currency"`
}

type ItemView struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Brand            string            `json:"brand,omitempty"`
	CatalogNumber    string            `json:"catalogNumber,omitempty"`
	Quantity         int               `json:"quantity"`
	Unit             string            `json:"unit"`
	ExistingResponse *ResponseLineView `json:"existingResponse,omitempty"`
}

type ResponseLineView struct {
	UnitPrice    *float64 `json:"unitPrice,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	LeadTimeDays *int     `json:"leadTimeDays,omitempty"`
	MOQ          *int     `json:"moq,omitempty"`
	VendorSku    string   `json:"vendorSku,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// SubmitRequest is a vendor's one-shot response. Lines with no populated
// field are dropped silently.
type SubmitRequest struct {
	Items      []SubmitLine `json:"items"`
	VendorName *string      `json:"vendorName"`
}

type SubmitLine struct {
	QuoteItemID  string   `json:"quoteItemId"`
	UnitPrice    *float64 `json:"unitPrice"`
	Currency     string   `json:"currency"`
	LeadTimeDays *int     `json:"leadTimeDays"`
	MOQ          *int     `json:"moq"`
	VendorSku    string   `json:"vendorSku"`
	Notes        string   `json:"notes"`
}

type Service interface {
	GetByToken(ctx context.Context, rawToken string) (*PortalView, error)
	SubmitResponse(ctx context.Context, rawToken string, req SubmitRequest) error
}
