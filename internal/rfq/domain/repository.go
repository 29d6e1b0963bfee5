package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// QuoteListRow joins a quote with its vendor request for listings.
type QuoteListRow struct {
	QuoteID     snowflake.ID
	Title       string
	VendorLabel string
	Status      string
	ItemCount   int
	ExpiresAt   time.Time
	RespondedAt *time.Time
	CreatedAt   time.Time
}

// Repository is the unit-of-work boundary for RFQ persistence. WithTx
// rebinds it to an open transaction so the writer can commit all vendor
// groups atomically.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateQuote(ctx context.Context, quote *Quote) error
	CreateQuoteItems(ctx context.Context, items []QuoteItem) error
	CreateVendorRequest(ctx context.Context, req *QuoteVendorRequest) error

	GetQuote(ctx context.Context, id snowflake.ID) (*Quote, error)
	GetQuoteItems(ctx context.Context, quoteID snowflake.ID) ([]QuoteItem, error)
	GetVendorRequest(ctx context.Context, id snowflake.ID) (*QuoteVendorRequest, error)
	GetVendorRequestByTokenHash(ctx context.Context, tokenHash string) (*QuoteVendorRequest, error)

	ListQuotesByUser(ctx context.Context, userID snowflake.ID, orgID *snowflake.ID, beforeID snowflake.ID, limit int) ([]QuoteListRow, error)

	// MarkResponded transitions SENT to RESPONDED with a conditional
	// update. Returns ErrAlreadyResponded when the row was no longer SENT.
	MarkResponded(ctx context.Context, id snowflake.ID, respondedAt time.Time, respondentName *string) error

	// MarkCancelled transitions SENT to CANCELLED with a conditional
	// update. Returns ErrNotCancellable when the row was no longer SENT.
	MarkCancelled(ctx context.Context, id snowflake.ID, cancelledAt time.Time) error

	CreateResponseLines(ctx context.Context, lines []QuoteVendorResponseLine) error
	GetResponseLines(ctx context.Context, vendorRequestID snowflake.ID) ([]QuoteVendorResponseLine, error)
}
