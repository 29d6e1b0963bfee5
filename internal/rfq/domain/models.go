// Package domain contains persistence models for the RFQ service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Vendor request lifecycle. EXPIRED is derived at read time from
// expires_at and is never written over SENT.
const (
	StatusSent      = "SENT"
	StatusResponded = "RESPONDED"
	StatusCancelled = "CANCELLED"
	StatusExpired   = "EXPIRED"
)

// Quote is the per-vendor request aggregate. Every distribution call
// creates one quote per vendor group.
type Quote struct {
	ID               snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID            *snowflake.ID `gorm:"column:org_id;index" json:"org_id,omitempty"`
	CreatedBy        snowflake.ID  `gorm:"column:created_by;not null;index" json:"created_by"`
	Title            string        `gorm:"type:text;not null" json:"title"`
	Message          *string       `gorm:"type:text" json:"message,omitempty"`
	Currency         string        `gorm:"type:text;not null;default:''" json:"currency"`
	DeliveryDate     *string       `gorm:"column:delivery_date;type:text" json:"delivery_date,omitempty"`
	DeliveryLocation *string       `gorm:"column:delivery_location;type:text" json:"delivery_location,omitempty"`
	SpecialNotes     *string       `gorm:"column:special_notes;type:text" json:"special_notes,omitempty"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Quote) TableName() string { return "quotes" }

// QuoteItem is one ordered line of a quote. Line numbers restart at 1 for
// every quote.
type QuoteItem struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	QuoteID       snowflake.ID `gorm:"column:quote_id;not null;index;uniqueIndex:ux_quote_item_line,priority:1" json:"quote_id"`
	LineNo        int          `gorm:"column:line_no;not null;uniqueIndex:ux_quote_item_line,priority:2" json:"line_no"`
	ProductName   string       `gorm:"column:product_name;type:text;not null" json:"product_name"`
	Brand         string       `gorm:"type:text;not null;default:''" json:"brand"`
	CatalogNumber string       `gorm:"column:catalog_number;type:text;not null;default:''" json:"catalog_number"`
	Quantity      int          `gorm:"not null" json:"quantity"`
	Unit          string       `gorm:"type:text;not null;default:'ea'" json:"unit"`
	UnitPrice     *float64     `gorm:"column:unit_price" json:"unit_price,omitempty"`
	Currency      string       `gorm:"type:text;not null;default:''" json:"currency"`
	Notes         string       `gorm:"type:text;not null;default:''" json:"notes"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (QuoteItem) TableName() string { return "quote_items" }

// QuoteVendorRequest is the token-gated access record for one quote. Only
// the token hash is stored; the raw token is returned once at creation.
type QuoteVendorRequest struct {
	ID             snowflake.ID   `gorm:"primaryKey" json:"id"`
	QuoteID        snowflake.ID   `gorm:"column:quote_id;not null;index" json:"quote_id"`
	VendorID       *snowflake.ID  `gorm:"column:vendor_id;index" json:"vendor_id,omitempty"`
	VendorKey      string         `gorm:"column:vendor_key;type:text;not null" json:"vendor_key"`
	VendorLabel    string         `gorm:"column:vendor_label;type:text;not null" json:"vendor_label"`
	VendorEmail    string         `gorm:"column:vendor_email;type:text;not null" json:"vendor_email"`
	Deliverable    bool           `gorm:"not null;default:true" json:"deliverable"`
	TokenHash      string         `gorm:"column:token_hash;type:text;not null;uniqueIndex" json:"-"`
	Status         string         `gorm:"type:text;not null;default:'SENT'" json:"status"`
	Snapshot       datatypes.JSON `gorm:"type:jsonb;not null" json:"snapshot"`
	ExpiresAt      time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
	RespondedAt    *time.Time     `gorm:"column:responded_at" json:"responded_at,omitempty"`
	RespondentName *string        `gorm:"column:respondent_name;type:text" json:"respondent_name,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (QuoteVendorRequest) TableName() string { return "quote_vendor_requests" }

// DerivedStatus layers read-time expiry over the stored status.
func (r QuoteVendorRequest) DerivedStatus(now time.Time) string {
	if r.Status == StatusSent && now.After(r.ExpiresAt) {
		return StatusExpired
	}
	return r.Status
}

// QuoteVendorResponseLine is one submitted response line. Rows are written
// exactly once, at the single successful submission.
type QuoteVendorResponseLine struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	VendorRequestID snowflake.ID `gorm:"column:vendor_request_id;not null;index;uniqueIndex:ux_response_line,priority:1" json:"vendor_request_id"`
	QuoteItemID     snowflake.ID `gorm:"column:quote_item_id;not null;uniqueIndex:ux_response_line,priority:2" json:"quote_item_id"`
	UnitPrice       *float64     `gorm:"column:unit_price" json:"unit_price,omitempty"`
	Currency        string       `gorm:"type:text;not null;default:''" json:"currency"`
	LeadTimeDays    *int         `gorm:"column:lead_time_days" json:"lead_time_days,omitempty"`
	MOQ             *int         `gorm:"column:moq" json:"moq,omitempty"`
	VendorSku       string       `gorm:"column:vendor_sku;type:text;not null;default:''" json:"vendor_sku"`
	Notes           string       `gorm:"type:text;not null;default:''" json:"notes"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (QuoteVendorResponseLine) TableName() string { return "quote_vendor_response_lines" }
