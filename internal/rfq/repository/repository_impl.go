package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/procura/internal/rfq/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) CreateQuote(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *repository) CreateQuoteItems(ctx context.Context, items []domain.QuoteItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreateVendorRequest(ctx context.Context, req *domain.QuoteVendorRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) GetQuote(ctx context.Context, id snowflake.ID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrQuoteNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) GetQuoteItems(ctx context.Context, quoteID snowflake.ID) ([]domain.QuoteItem, error) {
	var items []domain.QuoteItem
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("line_no ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) GetVendorRequest(ctx context.Context, id snowflake.ID) (*domain.QuoteVendorRequest, error) {
	var req domain.QuoteVendorRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrVendorRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) GetVendorRequestByTokenHash(ctx context.Context, tokenHash string) (*domain.QuoteVendorRequest, error) {
	var req domain.QuoteVendorRequest
	err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrVendorRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) ListQuotesByUser(ctx context.Context, userID snowflake.ID, orgID *snowflake.ID, beforeID snowflake.ID, limit int) ([]domain.QuoteListRow, error) {
	query := `SELECT q.id AS quote_id, q.title, vr.vendor_label, vr.status,
		 (SELECT COUNT(*) FROM quote_items qi WHERE qi.quote_id = q.id) AS item_count,
		 vr.expires_at, vr.responded_at, q.created_at
		 FROM quotes q
		 JOIN quote_vendor_requests vr ON vr.quote_id = q.id
		 WHERE q.created_by = ?`
	args := []any{userID}

	if orgID != nil {
		query += " AND q.org_id = ?"
		args = append(args, *orgID)
	}
	if beforeID != 0 {
		query += " AND q.id < ?"
		args = append(args, beforeID)
	}
	query += " ORDER BY q.id DESC LIMIT ?"
	args = append(args, limit)

	var rows []domain.QuoteListRow
	err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkResponded only succeeds while the stored status is still SENT. The
// conditional write is the exactly-once guard under concurrent submits.
func (r *repository) MarkResponded(ctx context.Context, id snowflake.ID, respondedAt time.Time, respondentName *string) error {
	updates := map[string]any{
		"status":       domain.StatusResponded,
		"responded_at": respondedAt,
		"updated_at":   respondedAt,
	}
	if respondentName != nil {
		updates["respondent_name"] = *respondentName
	}

	tx := r.db.WithContext(ctx).
		Model(&domain.QuoteVendorRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusSent).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrAlreadyResponded
	}
	return nil
}

func (r *repository) MarkCancelled(ctx context.Context, id snowflake.ID, cancelledAt time.Time) error {
	tx := r.db.WithContext(ctx).
		Model(&domain.QuoteVendorRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusSent).
		Updates(map[string]any{
			"status":     domain.StatusCancelled,
			"updated_at": cancelledAt,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotCancellable
	}
	return nil
}

func (r *repository) CreateResponseLines(ctx context.Context, lines []domain.QuoteVendorResponseLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

func (r *repository) GetResponseLines(ctx context.Context, vendorRequestID snowflake.ID) ([]domain.QuoteVendorResponseLine, error) {
	var lines []domain.QuoteVendorResponseLine
	err := r.db.WithContext(ctx).
		Where("vendor_request_id = ?", vendorRequestID).
		Order("id ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
