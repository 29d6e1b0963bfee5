package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// DistributeRequest is the buyer input for one distribution call.
type DistributeRequest struct {
	Items          []LineItemInput   `json:"items" binding:"required"`
	CommonRequest  CommonRequest     `json:"commonRequest"`
	VendorMessages map[string]string `json:"vendorMessages"`
	OrganizationID *string           `json:"organizationId"`
	ExpiresInDays  *int              `json:"expiresInDays"`
}

// LineItemInput is one requested item. Vendor identity is vendorId or
// vendorName; vendorId wins when both are given.
type LineItemInput struct {
	ProductName   string   `json:"productName"`
	Brand         string   `json:"brand"`
	CatalogNumber string   `json:"catalogNumber"`
	VendorID      *string  `json:"vendorId"`
	VendorName    string   `json:"vendorName"`
	Quantity      int      `json:"quantity"`
	Unit          string   `json:"unit"`
	UnitPrice     *float64 `json:"unitPrice"`
	Currency      string   `json:"currency"`
	Notes         string   `json:"notes"`
}

type CommonRequest struct {
	Title            string  `json:"title"`
	DeliveryDate     *string `json:"deliveryDate"`
	DeliveryLocation *string `json:"deliveryLocation"`
	SpecialNotes     *string `json:"specialNotes"`
}

// DistributeResult is the buyer-visible outcome of the whole operation,
// returned regardless of delivery outcomes.
type DistributeResult struct {
	Message        string              `json:"message"`
	Quotes         []QuoteSummary      `json:"quotes"`
	VendorRequests []VendorRequestInfo `json:"vendorRequests"`
	EmailResults   []EmailResult       `json:"emailResults"`
	Summary        DistributeSummary   `json:"summary"`
}

type QuoteSummary struct {
	QuoteID    string `json:"quoteId"`
	VendorKey  string `json:"vendorKey"`
	VendorName string `json:"vendorName"`
	ItemCount  int    `json:"itemCount"`
}

type VendorRequestInfo struct {
	VendorRequestID string    `json:"vendorRequestId"`
	VendorKey       string    `json:"vendorKey"`
	VendorName      string    `json:"vendorName"`
	VendorEmail     string    `json:"vendorEmail"`
	Token           string    `json:"token"`
	ResponseURL     string    `json:"responseUrl"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

type EmailResult struct {
	Email     string  `json:"email"`
	Success   bool    `json:"success"`
	Error     *string `json:"error,omitempty"`
	VendorKey string  `json:"vendorKey"`
}

type DistributeSummary struct {
	TotalVendors int       `json:"totalVendors"`
	TotalItems   int       `json:"totalItems"`
	EmailsSent   int       `json:"emailsSent"`
	EmailsFailed int       `json:"emailsFailed"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// ListQuotesRequest pages through a buyer's quotes, newest first.
type ListQuotesRequest struct {
	UserID snowflake.ID
	OrgID  *snowflake.ID
	Cursor string
	Limit  int
}

type ListQuotesResult struct {
	Quotes     []QuoteListItem `json:"quotes"`
	NextCursor string          `json:"nextCursor,omitempty"`
}

type QuoteListItem struct {
	QuoteID     string     `json:"quoteId"`
	Title       string     `json:"title"`
	VendorLabel string     `json:"vendorLabel"`
	Status      string     `json:"status"`
	ItemCount   int        `json:"itemCount"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	RespondedAt *time.Time `json:"respondedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Service is the buyer-facing RFQ API.
type Service interface {
	Distribute(ctx context.Context, userID snowflake.ID, req DistributeRequest) (*DistributeResult, error)
	ListQuotes(ctx context.Context, req ListQuotesRequest) (*ListQuotesResult, error)
	CancelVendorRequest(ctx context.Context, userID snowflake.ID, vendorRequestID string) error
}
